package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// PlanRepository implements plan.Repository and plan.Writer.
type PlanRepository struct {
	conn *Connection
}

// NewPlanRepository creates a new PostgreSQL plan repository.
func NewPlanRepository(conn *Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

var (
	_ plan.Repository = (*PlanRepository)(nil)
	_ plan.Writer     = (*PlanRepository)(nil)
)

// ══════════════════════════════════════════════════════════════════════════════
// WRITES
// ══════════════════════════════════════════════════════════════════════════════

// SavePlan upserts a plan by code and replaces its course list.
func (r *PlanRepository) SavePlan(ctx context.Context, p *plan.Plan) error {
	if p.Code == "" {
		return shared.NewDomainError("plan", "Save", shared.ErrEmptyValue, "plan code is required")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO plans (id, code, student_name, current_program_id, target_program_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO UPDATE SET
				student_name = EXCLUDED.student_name,
				current_program_id = EXCLUDED.current_program_id,
				target_program_id = EXCLUDED.target_program_id,
				updated_at = EXCLUDED.updated_at
			RETURNING id
		`,
			p.ID,
			p.Code,
			p.StudentName,
			p.CurrentProgramID,
			p.TargetProgramID,
			p.CreatedAt,
			p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM planned_courses WHERE plan_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear planned courses: %w", err)
		}
		for _, pc := range p.Courses {
			if err := insertPlannedCourse(ctx, tx, p.ID, pc); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddCourse implements plan.Repository.
func (r *PlanRepository) AddCourse(ctx context.Context, planID string, pc *plan.PlannedCourse) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE plans SET updated_at = NOW() WHERE id = $1`, planID)
		if err != nil {
			return fmt.Errorf("failed to touch plan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrPlanNotFound
		}
		return insertPlannedCourse(ctx, tx, planID, pc)
	})
}

// SetRequirementGroup implements plan.Repository.
func (r *PlanRepository) SetRequirementGroup(ctx context.Context, plannedCourseID, groupID string) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE planned_courses SET requirement_group_id = $2 WHERE id = $1
	`, plannedCourseID, groupID)
	if err != nil {
		return fmt.Errorf("failed to set requirement group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrPlannedCourseNotFound
	}
	return nil
}

// RemoveCourse implements plan.Repository.
func (r *PlanRepository) RemoveCourse(ctx context.Context, planID, plannedCourseID string) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM planned_courses WHERE id = $1 AND plan_id = $2
		`, plannedCourseID, planID)
		if err != nil {
			return fmt.Errorf("failed to remove planned course: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrPlannedCourseNotFound
		}
		_, err = tx.Exec(ctx, `UPDATE plans SET updated_at = NOW() WHERE id = $1`, planID)
		return err
	})
}

func insertPlannedCourse(ctx context.Context, tx pgx.Tx, planID string, pc *plan.PlannedCourse) error {
	if pc.ID == "" {
		pc.ID = uuid.New().String()
	}
	pc.PlanID = planID

	_, err := tx.Exec(ctx, `
		INSERT INTO planned_courses (id, plan_id, course_id, status, credits_override,
			requirement_group_id, requirement_category, grade, semester, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		pc.ID,
		planID,
		string(pc.CourseID),
		string(pc.Status),
		pc.CreditsOverride,
		pc.RequirementGroupID,
		pc.RequirementCategory,
		pc.Grade,
		pc.Semester,
		pc.Year,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("plan", "AddCourse", shared.ErrAlreadyExists,
				fmt.Sprintf("planned course %s already exists", pc.ID), err)
		}
		return fmt.Errorf("failed to insert planned course: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// GetByCode implements plan.Repository. Courses whose catalog row is gone
// come back with a nil Course.
func (r *PlanRepository) GetByCode(ctx context.Context, code string) (*plan.Plan, error) {
	p := &plan.Plan{}
	err := r.conn.QueryRow(ctx, `
		SELECT id, code, student_name, current_program_id, target_program_id, created_at, updated_at
		FROM plans
		WHERE code = $1
	`, code).Scan(
		&p.ID,
		&p.Code,
		&p.StudentName,
		&p.CurrentProgramID,
		&p.TargetProgramID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPlanNotFound
		}
		return nil, queryError("plan", "Find", "failed to get plan", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT pc.id, pc.course_id, pc.status, pc.credits_override, pc.requirement_group_id,
			pc.requirement_category, pc.grade, pc.semester, pc.year,
			c.id, c.institution_id, c.subject, c.number, c.title, c.credits,
			c.has_lab, c.course_type, c.prerequisites
		FROM planned_courses pc
		LEFT JOIN courses c ON c.id = pc.course_id
		WHERE pc.plan_id = $1
		ORDER BY pc.seq
	`, p.ID)
	if err != nil {
		return nil, queryError("plan", "Find", "failed to load planned courses", err)
	}
	defer rows.Close()

	p.Courses = []*plan.PlannedCourse{}
	for rows.Next() {
		pc, err := scanPlannedCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planned course: %w", err)
		}
		pc.PlanID = p.ID
		p.Courses = append(p.Courses, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// joinedCourse holds the nullable side of the courses LEFT JOIN.
type joinedCourse struct {
	id, institution, subject, number, title *string
	credits                                 *int
	hasLab                                  *bool
	courseType, prerequisites               *string
}

func (j joinedCourse) course() *catalog.Course {
	if j.id == nil {
		return nil
	}
	c := &catalog.Course{
		ID:          catalog.CourseID(*j.id),
		Institution: catalog.InstitutionID(deref(j.institution)),
		Subject:     deref(j.subject),
		Number:      deref(j.number),
		Title:       deref(j.title),
		Type:        catalog.ParseCourseType(deref(j.courseType)),

		Prerequisites: deref(j.prerequisites),
	}
	if j.credits != nil {
		c.Credits = *j.credits
	}
	if j.hasLab != nil {
		c.HasLab = *j.hasLab
	}
	return c
}

func scanPlannedCourse(rows pgx.Rows) (*plan.PlannedCourse, error) {
	pc := &plan.PlannedCourse{}
	var courseID, status string
	var j joinedCourse

	err := rows.Scan(
		&pc.ID,
		&courseID,
		&status,
		&pc.CreditsOverride,
		&pc.RequirementGroupID,
		&pc.RequirementCategory,
		&pc.Grade,
		&pc.Semester,
		&pc.Year,
		&j.id,
		&j.institution,
		&j.subject,
		&j.number,
		&j.title,
		&j.credits,
		&j.hasLab,
		&j.courseType,
		&j.prerequisites,
	)
	if err != nil {
		return nil, err
	}

	pc.CourseID = catalog.CourseID(courseID)
	pc.Status = plan.Status(status)
	pc.Course = j.course()
	return pc, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// queryError marks deadline and cancellation failures as timeouts so callers
// can tell them apart from broken queries.
func queryError(domain, op, msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return shared.WrapError(domain, op, shared.ErrTimeout, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
