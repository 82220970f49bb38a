package memory

import (
	"context"
	"sync"
	"time"

	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// PlanRepository stores plans in memory and resolves course references
// through a CourseRepository.
type PlanRepository struct {
	mu      sync.RWMutex
	plans   map[string]*plan.Plan // by code
	courses *CourseRepository
}

// NewPlanRepository creates an empty PlanRepository.
func NewPlanRepository(courses *CourseRepository) *PlanRepository {
	return &PlanRepository{plans: make(map[string]*plan.Plan), courses: courses}
}

var (
	_ plan.Repository = (*PlanRepository)(nil)
	_ plan.Writer     = (*PlanRepository)(nil)
)

// SavePlan inserts or replaces a plan by code.
func (r *PlanRepository) SavePlan(_ context.Context, p *plan.Plan) error {
	if p.Code == "" {
		return shared.NewDomainError("plan", "Save", shared.ErrEmptyValue, "plan code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.plans[p.Code] = clonePlan(p)
	return nil
}

// GetByCode implements plan.Repository.
func (r *PlanRepository) GetByCode(ctx context.Context, code string) (*plan.Plan, error) {
	r.mu.RLock()
	stored, ok := r.plans[code]
	var p *plan.Plan
	if ok {
		p = clonePlan(stored)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, shared.ErrPlanNotFound
	}
	for _, pc := range p.Courses {
		if c, err := r.courses.GetByID(ctx, pc.CourseID); err == nil {
			pc.Course = c
		} else {
			pc.Course = nil
		}
	}
	return p, nil
}

// AddCourse implements plan.Repository.
func (r *PlanRepository) AddCourse(_ context.Context, planID string, pc *plan.PlannedCourse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.plans {
		if p.ID != planID {
			continue
		}
		cp := *pc
		cp.PlanID = planID
		cp.Course = nil
		p.Courses = append(p.Courses, &cp)
		p.UpdatedAt = time.Now().UTC()
		return nil
	}
	return shared.ErrPlanNotFound
}

// SetRequirementGroup implements plan.Repository.
func (r *PlanRepository) SetRequirementGroup(_ context.Context, plannedCourseID, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.plans {
		if pc, ok := p.FindCourse(plannedCourseID); ok {
			pc.AssignGroup(groupID)
			return nil
		}
	}
	return shared.ErrPlannedCourseNotFound
}

// RemoveCourse implements plan.Repository.
func (r *PlanRepository) RemoveCourse(_ context.Context, planID, plannedCourseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.plans {
		if p.ID != planID {
			continue
		}
		for i, pc := range p.Courses {
			if pc.ID == plannedCourseID {
				p.Courses = append(p.Courses[:i], p.Courses[i+1:]...)
				p.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return shared.ErrPlannedCourseNotFound
	}
	return shared.ErrPlanNotFound
}

func clonePlan(p *plan.Plan) *plan.Plan {
	cp := *p
	cp.Courses = make([]*plan.PlannedCourse, 0, len(p.Courses))
	for _, pc := range p.Courses {
		c := *pc
		if pc.RequirementGroupID != nil {
			g := *pc.RequirementGroupID
			c.RequirementGroupID = &g
		}
		cp.Courses = append(cp.Courses, &c)
	}
	return &cp
}
