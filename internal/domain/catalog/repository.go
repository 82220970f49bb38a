package catalog

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository reads catalog reference data.
type Repository interface {
	// GetByID returns a course by storage ID.
	// Returns shared.ErrCourseNotFound when missing.
	GetByID(ctx context.Context, id CourseID) (*Course, error)

	// GetByCode returns a course by canonical code. An empty institution
	// returns the first match across institutions.
	// Returns shared.ErrCourseNotFound when missing.
	GetByCode(ctx context.Context, code string, institution InstitutionID) (*Course, error)

	// FindByCode returns every course carrying the code, across institutions
	// unless one is given. An empty result is not an error.
	FindByCode(ctx context.Context, code string, institution InstitutionID) ([]*Course, error)

	// GetByIDs returns the courses found for ids. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []CourseID) ([]*Course, error)

	// EquivalenciesFor returns all equivalency rows touching any of ids,
	// in either direction.
	EquivalenciesFor(ctx context.Context, ids []CourseID) ([]Equivalency, error)
}

// Writer persists catalog data. Used by importers and seeding.
type Writer interface {
	SaveCourse(ctx context.Context, c *Course) error
	SaveEquivalency(ctx context.Context, e Equivalency) error
}
