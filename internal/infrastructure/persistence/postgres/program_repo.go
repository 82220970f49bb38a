package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// ProgramRepository implements program.Repository and program.Writer.
// Requirement, group and constraint IDs are global across programs.
type ProgramRepository struct {
	conn *Connection
}

// NewProgramRepository creates a new PostgreSQL program repository.
func NewProgramRepository(conn *Connection) *ProgramRepository {
	return &ProgramRepository{conn: conn}
}

var (
	_ program.Repository = (*ProgramRepository)(nil)
	_ program.Writer     = (*ProgramRepository)(nil)
)

// ══════════════════════════════════════════════════════════════════════════════
// WRITES
// ══════════════════════════════════════════════════════════════════════════════

// SaveProgram replaces the program and its whole requirement tree.
func (r *ProgramRepository) SaveProgram(ctx context.Context, p *program.Program) error {
	if p.ID == "" {
		return shared.NewDomainError("program", "Save", shared.ErrEmptyValue, "program id is required")
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO programs (id, name, program_type, institution_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				program_type = EXCLUDED.program_type,
				institution_id = EXCLUDED.institution_id
		`, p.ID, p.Name, p.ProgramType, string(p.Institution))
		if err != nil {
			return fmt.Errorf("failed to save program: %w", err)
		}

		// Cascades to groups, options and constraints.
		if _, err := tx.Exec(ctx, `DELETE FROM requirements WHERE program_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear requirements: %w", err)
		}

		for i, req := range p.Requirements {
			if err := saveRequirement(ctx, tx, p.ID, i, req); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveRequirement(ctx context.Context, tx pgx.Tx, programID string, position int, req *program.Requirement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO requirements (id, program_id, category, description, credits_required,
			requirement_type, priority_order, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		req.ID,
		programID,
		req.Category,
		req.Description,
		req.CreditsRequired,
		string(req.Type),
		req.PriorityOrder,
		position,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("program", "Save", shared.ErrAlreadyExists,
				fmt.Sprintf("requirement %s belongs to another program", req.ID), err)
		}
		return fmt.Errorf("failed to save requirement %s: %w", req.ID, err)
	}

	for gi, g := range req.Groups {
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO requirement_groups (id, requirement_id, name, courses_required,
				credits_required, min_credits_per_course, max_credits_per_course, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			g.ID,
			req.ID,
			g.Name,
			g.CoursesRequired,
			g.CreditsRequired,
			g.MinCreditsPerCourse,
			g.MaxCreditsPerCourse,
			gi,
		)
		if err != nil {
			return fmt.Errorf("failed to save group %s: %w", g.ID, err)
		}

		for oi, opt := range g.Options {
			_, err := tx.Exec(ctx, `
				INSERT INTO group_course_options (group_id, position, course_code, institution_id, is_preferred)
				VALUES ($1, $2, $3, $4, $5)
			`, g.ID, oi, catalog.NormalizeCode(opt.CourseCode), string(opt.Institution), opt.IsPreferred)
			if err != nil {
				return fmt.Errorf("failed to save option %s of group %s: %w", opt.CourseCode, g.ID, err)
			}
		}
	}

	for ci, c := range req.Constraints {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		var params map[string]any
		if c.Rule != nil {
			params = c.Rule.Params()
		}
		if params == nil {
			params = map[string]any{}
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to encode params of constraint %s: %w", c.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO requirement_constraints (id, requirement_id, description, constraint_type,
				params, scope_subject, scope_level_min, scope_level_max, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			c.ID,
			req.ID,
			c.Description,
			c.Type(),
			raw,
			c.Scope.Subject,
			c.Scope.LevelMin,
			c.Scope.LevelMax,
			ci,
		)
		if err != nil {
			return fmt.Errorf("failed to save constraint %s: %w", c.ID, err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// GetByID implements program.Repository. The tree is loaded with one query
// per level and assembled in memory.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*program.Program, error) {
	p := &program.Program{ID: id}
	var institution string

	err := r.conn.QueryRow(ctx, `
		SELECT name, program_type, institution_id FROM programs WHERE id = $1
	`, id).Scan(&p.Name, &p.ProgramType, &institution)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	p.Institution = catalog.InstitutionID(institution)

	reqs, err := r.loadRequirements(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Requirements = reqs
	if len(reqs) == 0 {
		return p, nil
	}

	byReq := make(map[string]*program.Requirement, len(reqs))
	for _, req := range reqs {
		byReq[req.ID] = req
	}

	groups, err := r.loadGroups(ctx, id, byReq)
	if err != nil {
		return nil, err
	}
	if err := r.loadOptions(ctx, id, groups); err != nil {
		return nil, err
	}
	if err := r.loadConstraints(ctx, id, byReq); err != nil {
		return nil, err
	}
	return p, nil
}

// List implements program.Repository.
func (r *ProgramRepository) List(ctx context.Context) ([]*program.Program, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, name, program_type, institution_id FROM programs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	out := []*program.Program{}
	for rows.Next() {
		p := &program.Program{}
		var institution string
		if err := rows.Scan(&p.ID, &p.Name, &p.ProgramType, &institution); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		p.Institution = catalog.InstitutionID(institution)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProgramRepository) loadRequirements(ctx context.Context, programID string) ([]*program.Requirement, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, category, description, credits_required, requirement_type, priority_order
		FROM requirements
		WHERE program_id = $1
		ORDER BY position
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	defer rows.Close()

	var out []*program.Requirement
	for rows.Next() {
		req := &program.Requirement{}
		var reqType string
		if err := rows.Scan(&req.ID, &req.Category, &req.Description, &req.CreditsRequired, &reqType, &req.PriorityOrder); err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		req.Type = program.ParseRequirementType(reqType)
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *ProgramRepository) loadGroups(ctx context.Context, programID string, byReq map[string]*program.Requirement) (map[string]*program.RequirementGroup, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT g.id, g.requirement_id, g.name, g.courses_required, g.credits_required,
			g.min_credits_per_course, g.max_credits_per_course
		FROM requirement_groups g
		JOIN requirements r ON r.id = g.requirement_id
		WHERE r.program_id = $1
		ORDER BY g.requirement_id, g.position
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[string]*program.RequirementGroup)
	for rows.Next() {
		g := &program.RequirementGroup{Options: []program.GroupCourseOption{}}
		if err := rows.Scan(
			&g.ID,
			&g.RequirementID,
			&g.Name,
			&g.CoursesRequired,
			&g.CreditsRequired,
			&g.MinCreditsPerCourse,
			&g.MaxCreditsPerCourse,
		); err != nil {
			return nil, fmt.Errorf("failed to scan requirement group: %w", err)
		}
		if req, ok := byReq[g.RequirementID]; ok {
			req.Groups = append(req.Groups, g)
			groups[g.ID] = g
		}
	}
	return groups, rows.Err()
}

func (r *ProgramRepository) loadOptions(ctx context.Context, programID string, groups map[string]*program.RequirementGroup) error {
	rows, err := r.conn.Query(ctx, `
		SELECT o.group_id, o.course_code, o.institution_id, o.is_preferred
		FROM group_course_options o
		JOIN requirement_groups g ON g.id = o.group_id
		JOIN requirements r ON r.id = g.requirement_id
		WHERE r.program_id = $1
		ORDER BY o.group_id, o.position
	`, programID)
	if err != nil {
		return fmt.Errorf("failed to load group options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, institution string
		var opt program.GroupCourseOption
		if err := rows.Scan(&groupID, &opt.CourseCode, &institution, &opt.IsPreferred); err != nil {
			return fmt.Errorf("failed to scan group option: %w", err)
		}
		opt.Institution = catalog.InstitutionID(institution)
		if g, ok := groups[groupID]; ok {
			g.Options = append(g.Options, opt)
		}
	}
	return rows.Err()
}

func (r *ProgramRepository) loadConstraints(ctx context.Context, programID string, byReq map[string]*program.Requirement) error {
	rows, err := r.conn.Query(ctx, `
		SELECT c.id, c.requirement_id, c.description, c.constraint_type, c.params,
			c.scope_subject, c.scope_level_min, c.scope_level_max
		FROM requirement_constraints c
		JOIN requirements r ON r.id = c.requirement_id
		WHERE r.program_id = $1
		ORDER BY c.requirement_id, c.position
	`, programID)
	if err != nil {
		return fmt.Errorf("failed to load constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &program.Constraint{}
		var constraintType string
		var raw []byte
		if err := rows.Scan(
			&c.ID,
			&c.RequirementID,
			&c.Description,
			&constraintType,
			&raw,
			&c.Scope.Subject,
			&c.Scope.LevelMin,
			&c.Scope.LevelMax,
		); err != nil {
			return fmt.Errorf("failed to scan constraint: %w", err)
		}

		params := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				c.Rule = program.UnknownRule{Name: constraintType, Problem: err.Error()}
			}
		}
		if c.Rule == nil {
			c.Rule = program.RuleOrUnknown(constraintType, params)
		}

		if req, ok := byReq[c.RequirementID]; ok {
			req.Constraints = append(req.Constraints, c)
		}
	}
	return rows.Err()
}
