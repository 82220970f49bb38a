package query

import (
	"context"
	"errors"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREREQUISITE QUERIES
// Check whether a student may take a course given what they completed, and
// describe a course's prerequisites with their equivalent codes.
// ══════════════════════════════════════════════════════════════════════════════

// ValidatePrerequisitesQuery contains the parameters of the check.
type ValidatePrerequisitesQuery struct {
	// CourseCode is the course the student wants to take.
	CourseCode string

	// Institution scopes the course and prerequisite lookups. Optional.
	Institution string

	// CompletedCodes lists completed course codes. When PlanCode is set
	// the plan's completed courses are used as well.
	CompletedCodes []string
	PlanCode       string
}

// Validate checks the query.
func (q ValidatePrerequisitesQuery) Validate() error {
	if strings.TrimSpace(q.CourseCode) == "" {
		return errors.New("course_code is required")
	}
	return nil
}

// GetPrerequisiteDetailsQuery asks for a course's prerequisite expansion.
type GetPrerequisiteDetailsQuery struct {
	CourseCode  string
	Institution string
}

// Validate checks the query.
func (q GetPrerequisiteDetailsQuery) Validate() error {
	if strings.TrimSpace(q.CourseCode) == "" {
		return errors.New("course_code is required")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// PrerequisiteHandler serves both prerequisite queries.
type PrerequisiteHandler struct {
	courses catalog.Repository
	plans   plan.Repository
	loader  *SnapshotLoader
}

// NewPrerequisiteHandler creates a new handler.
func NewPrerequisiteHandler(courses catalog.Repository, plans plan.Repository, loader *SnapshotLoader) *PrerequisiteHandler {
	return &PrerequisiteHandler{courses: courses, plans: plans, loader: loader}
}

// Validate runs the prerequisite check.
func (h *PrerequisiteHandler) Validate(ctx context.Context, query ValidatePrerequisitesQuery) (*audit.PrerequisiteReport, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ValidatePrerequisites", shared.ErrValidation, err.Error(), err)
	}
	inst := catalog.InstitutionID(query.Institution)

	target, err := h.courses.GetByCode(ctx, query.CourseCode, inst)
	if err != nil {
		return nil, err
	}

	completed := append([]string(nil), query.CompletedCodes...)
	if query.PlanCode != "" {
		p, err := h.plans.GetByCode(ctx, query.PlanCode)
		if err != nil {
			return nil, err
		}
		completed = append(completed, p.CompletedCodes()...)
	}

	seeds := append(audit.ParsePrerequisites(target.Prerequisites), completed...)
	ix, err := h.loader.LoadCourses(ctx, seeds, "")
	if err != nil {
		return nil, err
	}

	report, err := audit.ValidatePrerequisites(target, completed, ix, inst)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Details describes the prerequisites of a course.
func (h *PrerequisiteHandler) Details(ctx context.Context, query GetPrerequisiteDetailsQuery) (*audit.PrerequisiteDetails, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetPrerequisiteDetails", shared.ErrValidation, err.Error(), err)
	}
	inst := catalog.InstitutionID(query.Institution)

	target, err := h.courses.GetByCode(ctx, query.CourseCode, inst)
	if err != nil {
		return nil, err
	}

	ix, err := h.loader.LoadCourses(ctx, audit.ParsePrerequisites(target.Prerequisites), "")
	if err != nil {
		return nil, err
	}

	details, err := audit.DescribePrerequisites(target, ix, inst)
	if err != nil {
		return nil, err
	}
	return &details, nil
}
