package audit

import (
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/plan"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// View selects which planned courses count and whether equivalency
// substitution is allowed.
type View string

const (
	// ViewCompleted is the strict audit: completed courses only, matched by
	// their own codes.
	ViewCompleted View = "completed"
	// ViewAll is the advisory planning view: every status counts and
	// equivalent courses may stand in for program courses.
	ViewAll View = "all"
	// ViewInProgress counts in-progress and completed courses with
	// substitution.
	ViewInProgress View = "in_progress"
)

// ParseView accepts the short names and the UI labels.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "completed courses", "strict":
		return ViewCompleted, nil
	case "all", "all courses", "advisory":
		return ViewAll, nil
	case "in_progress", "in-progress", "in progress & completed", "in progress and completed":
		return ViewInProgress, nil
	default:
		return "", shared.ErrInvalidView
	}
}

// Counts reports whether a course with the given status counts in the view.
func (v View) Counts(status plan.Status) bool {
	switch v {
	case ViewCompleted:
		return status == plan.StatusCompleted
	case ViewInProgress:
		return status == plan.StatusCompleted || status == plan.StatusInProgress
	case ViewAll:
		return status == plan.StatusCompleted || status == plan.StatusInProgress || status == plan.StatusPlanned
	default:
		return false
	}
}

// AllowsSubstitution reports whether equivalent courses may satisfy
// program course options.
func (v View) AllowsSubstitution() bool {
	return v == ViewAll || v == ViewInProgress
}

// Label is the display name of the view.
func (v View) Label() string {
	switch v {
	case ViewCompleted:
		return "Completed Courses"
	case ViewAll:
		return "All Courses"
	case ViewInProgress:
		return "In Progress & Completed"
	default:
		return string(v)
	}
}

// Filter returns the courses that count in the view, in plan order.
func (v View) Filter(courses []*plan.PlannedCourse) []*plan.PlannedCourse {
	out := make([]*plan.PlannedCourse, 0, len(courses))
	for _, pc := range courses {
		if pc != nil && v.Counts(pc.Status) {
			out = append(out, pc)
		}
	}
	return out
}
