package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/transferhub/transfer-hub/internal/domain/program"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// ProgramRepository stores program trees in memory.
type ProgramRepository struct {
	mu       sync.RWMutex
	programs map[string]*program.Program
}

// NewProgramRepository creates an empty ProgramRepository.
func NewProgramRepository() *ProgramRepository {
	return &ProgramRepository{programs: make(map[string]*program.Program)}
}

var (
	_ program.Repository = (*ProgramRepository)(nil)
	_ program.Writer     = (*ProgramRepository)(nil)
)

// SaveProgram inserts or replaces a program.
func (r *ProgramRepository) SaveProgram(_ context.Context, p *program.Program) error {
	if p.ID == "" {
		return shared.NewDomainError("program", "Save", shared.ErrEmptyValue, "program id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[p.ID] = p
	return nil
}

// GetByID implements program.Repository. The returned tree is shared and
// must be treated as read-only.
func (r *ProgramRepository) GetByID(_ context.Context, id string) (*program.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return nil, shared.ErrProgramNotFound
	}
	return p, nil
}

// List implements program.Repository.
func (r *ProgramRepository) List(_ context.Context) ([]*program.Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*program.Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, &program.Program{ID: p.ID, Name: p.Name, ProgramType: p.ProgramType, Institution: p.Institution})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
