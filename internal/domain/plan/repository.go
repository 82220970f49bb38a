package plan

import "context"

// Repository reads and writes plans.
type Repository interface {
	// GetByCode returns the plan with its courses and resolved Course
	// references, in plan order. Returns shared.ErrPlanNotFound when missing.
	GetByCode(ctx context.Context, code string) (*Plan, error)

	// AddCourse appends a planned course to the plan.
	AddCourse(ctx context.Context, planID string, pc *PlannedCourse) error

	// SetRequirementGroup writes the group assignment of a planned course.
	// Concurrent writers are last-write-wins.
	SetRequirementGroup(ctx context.Context, plannedCourseID, groupID string) error

	// RemoveCourse deletes a planned course from the plan.
	// Returns shared.ErrPlannedCourseNotFound when it is not in the plan.
	RemoveCourse(ctx context.Context, planID, plannedCourseID string) error
}

// Writer creates plans. Used by seeding and the CLI.
type Writer interface {
	SavePlan(ctx context.Context, p *Plan) error
}
