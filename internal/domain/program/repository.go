package program

import "context"

// Repository reads program requirement trees.
type Repository interface {
	// GetByID returns the program with requirements, groups, options and
	// constraints loaded. Returns shared.ErrProgramNotFound when missing.
	GetByID(ctx context.Context, id string) (*Program, error)

	// List returns all programs without their requirement trees.
	List(ctx context.Context) ([]*Program, error)
}

// Writer persists programs. Used by importers and seeding.
type Writer interface {
	SaveProgram(ctx context.Context, p *Program) error
}
