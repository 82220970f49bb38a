// Package memory provides map-backed repositories. They back the offline
// audit CLI and the application tests.
package memory

import (
	"context"
	"sync"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// CourseRepository stores courses and equivalencies in memory.
type CourseRepository struct {
	mu           sync.RWMutex
	courses      map[catalog.CourseID]*catalog.Course
	order        []catalog.CourseID
	equivalences []catalog.Equivalency
}

// NewCourseRepository creates an empty CourseRepository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[catalog.CourseID]*catalog.Course)}
}

var (
	_ catalog.Repository = (*CourseRepository)(nil)
	_ catalog.Writer     = (*CourseRepository)(nil)
)

// SaveCourse inserts or replaces a course.
func (r *CourseRepository) SaveCourse(_ context.Context, c *catalog.Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.courses[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

// SaveEquivalency appends an equivalency row.
func (r *CourseRepository) SaveEquivalency(_ context.Context, e catalog.Equivalency) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[e.CourseID]; !ok {
		return shared.ErrCourseNotFound
	}
	if _, ok := r.courses[e.EquivalentID]; !ok {
		return shared.ErrCourseNotFound
	}
	r.equivalences = append(r.equivalences, e)
	return nil
}

// GetByID implements catalog.Repository.
func (r *CourseRepository) GetByID(_ context.Context, id catalog.CourseID) (*catalog.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

// GetByCode implements catalog.Repository.
func (r *CourseRepository) GetByCode(ctx context.Context, code string, institution catalog.InstitutionID) (*catalog.Course, error) {
	found, err := r.FindByCode(ctx, code, institution)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, shared.ErrCourseNotFound
	}
	return found[0], nil
}

// FindByCode implements catalog.Repository. Results follow insertion order.
func (r *CourseRepository) FindByCode(_ context.Context, code string, institution catalog.InstitutionID) ([]*catalog.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*catalog.Course
	for _, id := range r.order {
		c := r.courses[id]
		if c.Matches(code, institution) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// GetByIDs implements catalog.Repository.
func (r *CourseRepository) GetByIDs(_ context.Context, ids []catalog.CourseID) ([]*catalog.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalog.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.courses[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// EquivalenciesFor implements catalog.Repository.
func (r *CourseRepository) EquivalenciesFor(_ context.Context, ids []catalog.CourseID) ([]catalog.Equivalency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[catalog.CourseID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var out []catalog.Equivalency
	for _, e := range r.equivalences {
		_, a := want[e.CourseID]
		_, b := want[e.EquivalentID]
		if a || b {
			out = append(out, e)
		}
	}
	return out, nil
}
