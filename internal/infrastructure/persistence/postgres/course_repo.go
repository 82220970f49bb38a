package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// CourseRepository implements catalog.Repository and catalog.Writer.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new PostgreSQL course repository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

var (
	_ catalog.Repository = (*CourseRepository)(nil)
	_ catalog.Writer     = (*CourseRepository)(nil)
)

const courseColumns = `id, institution_id, subject, number, title, credits, has_lab, course_type, prerequisites`

// ══════════════════════════════════════════════════════════════════════════════
// WRITES
// ══════════════════════════════════════════════════════════════════════════════

// SaveCourse upserts a course, creating its institution row on first use.
func (r *CourseRepository) SaveCourse(ctx context.Context, c *catalog.Course) error {
	if err := c.Validate(); err != nil {
		return shared.WrapError("catalog", "SaveCourse", shared.ErrValidation, err.Error(), err)
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO institutions (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
			string(c.Institution),
		); err != nil {
			return fmt.Errorf("failed to ensure institution: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO courses (`+courseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				institution_id = EXCLUDED.institution_id,
				subject = EXCLUDED.subject,
				number = EXCLUDED.number,
				title = EXCLUDED.title,
				credits = EXCLUDED.credits,
				has_lab = EXCLUDED.has_lab,
				course_type = EXCLUDED.course_type,
				prerequisites = EXCLUDED.prerequisites,
				updated_at = NOW()
		`,
			string(c.ID),
			string(c.Institution),
			c.Subject,
			c.Number,
			c.Title,
			c.Credits,
			c.HasLab,
			string(c.Type),
			c.Prerequisites,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return shared.WrapError("catalog", "SaveCourse", shared.ErrAlreadyExists,
					fmt.Sprintf("course %s already exists at %s", c.Code(), c.Institution), err)
			}
			return fmt.Errorf("failed to save course: %w", err)
		}
		return nil
	})
}

// SaveEquivalency inserts an equivalency row. Both courses must exist.
func (r *CourseRepository) SaveEquivalency(ctx context.Context, e catalog.Equivalency) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Type == "" {
		e.Type = catalog.EquivalencyDirect
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO equivalencies (id, course_id, equivalent_course_id, equivalency_type, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			equivalent_course_id = EXCLUDED.equivalent_course_id,
			equivalency_type = EXCLUDED.equivalency_type,
			notes = EXCLUDED.notes
	`,
		e.ID,
		string(e.CourseID),
		string(e.EquivalentID),
		string(e.Type),
		e.Notes,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("failed to save equivalency: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// GetByID implements catalog.Repository.
func (r *CourseRepository) GetByID(ctx context.Context, id catalog.CourseID) (*catalog.Course, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, string(id))

	c, err := scanCourse(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}
	return c, nil
}

// GetByCode implements catalog.Repository.
func (r *CourseRepository) GetByCode(ctx context.Context, code string, institution catalog.InstitutionID) (*catalog.Course, error) {
	courses, err := r.FindByCode(ctx, code, institution)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, shared.ErrCourseNotFound
	}
	return courses[0], nil
}

// FindByCode implements catalog.Repository. Results are ordered by
// institution then ID so that GetByCode is deterministic.
func (r *CourseRepository) FindByCode(ctx context.Context, code string, institution catalog.InstitutionID) ([]*catalog.Course, error) {
	subject, number, ok := catalog.ParseCode(code)
	if !ok {
		return []*catalog.Course{}, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE subject = $1 AND number = $2
		  AND ($3::text = '' OR institution_id = $3)
		ORDER BY institution_id, id
	`, subject, number, string(institution))
	if err != nil {
		return nil, fmt.Errorf("failed to find courses by code: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetByIDs implements catalog.Repository.
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []catalog.CourseID) ([]*catalog.Course, error) {
	if len(ids) == 0 {
		return []*catalog.Course{}, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE id = ANY($1)
		ORDER BY id
	`, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get courses by ids: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// EquivalenciesFor implements catalog.Repository.
func (r *CourseRepository) EquivalenciesFor(ctx context.Context, ids []catalog.CourseID) ([]catalog.Equivalency, error) {
	if len(ids) == 0 {
		return []catalog.Equivalency{}, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT id, course_id, equivalent_course_id, equivalency_type, notes
		FROM equivalencies
		WHERE course_id = ANY($1) OR equivalent_course_id = ANY($1)
		ORDER BY id
	`, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get equivalencies: %w", err)
	}
	defer rows.Close()

	out := []catalog.Equivalency{}
	for rows.Next() {
		var e catalog.Equivalency
		var courseID, equivalentID, eqType string
		if err := rows.Scan(&e.ID, &courseID, &equivalentID, &eqType, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan equivalency: %w", err)
		}
		e.CourseID = catalog.CourseID(courseID)
		e.EquivalentID = catalog.CourseID(equivalentID)
		e.Type = catalog.ParseEquivalencyType(eqType)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func scanCourse(row pgx.Row) (*catalog.Course, error) {
	var c catalog.Course
	var id, institution, courseType string

	err := row.Scan(
		&id,
		&institution,
		&c.Subject,
		&c.Number,
		&c.Title,
		&c.Credits,
		&c.HasLab,
		&courseType,
		&c.Prerequisites,
	)
	if err != nil {
		return nil, err
	}

	c.ID = catalog.CourseID(id)
	c.Institution = catalog.InstitutionID(institution)
	c.Type = catalog.ParseCourseType(courseType)
	return &c, nil
}

func collectCourses(rows pgx.Rows) ([]*catalog.Course, error) {
	out := []*catalog.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func idStrings(ids []catalog.CourseID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
