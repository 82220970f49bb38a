// Package plan models a student's transfer plan: the courses they have
// taken or intend to take and the program they are aiming for.
package plan

import (
	"strings"
	"time"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of a planned course.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPlanned, "":
		return StatusPlanned, nil
	case StatusInProgress, "in-progress", "inprogress":
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", shared.ErrInvalidStatus
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PLANNED COURSE
// ══════════════════════════════════════════════════════════════════════════════

// PlannedCourse is a student's instance of a catalog course.
type PlannedCourse struct {
	ID       string           `json:"id"`
	PlanID   string           `json:"plan_id"`
	CourseID catalog.CourseID `json:"course_id"`

	// Course is resolved by the repository. It may be nil when the catalog
	// row has disappeared; such a course contributes nothing.
	Course *catalog.Course `json:"course,omitempty"`

	Status              Status  `json:"status"`
	CreditsOverride     *int    `json:"credits_override,omitempty"`
	RequirementGroupID  *string `json:"requirement_group_id,omitempty"`
	RequirementCategory string  `json:"requirement_category,omitempty"`
	Grade               string  `json:"grade,omitempty"`
	Semester            string  `json:"semester,omitempty"`
	Year                int     `json:"year,omitempty"`
}

// EffectiveCredits returns the override when present, otherwise the
// course's nominal credits. A missing course yields 0.
func (pc *PlannedCourse) EffectiveCredits() int {
	if pc.CreditsOverride != nil {
		return *pc.CreditsOverride
	}
	if pc.Course == nil {
		return 0
	}
	return pc.Course.Credits
}

// Code returns the course code, or "" when the course is unresolved.
func (pc *PlannedCourse) Code() string {
	if pc.Course == nil {
		return ""
	}
	return pc.Course.Code()
}

// GroupID returns the assigned requirement group or "".
func (pc *PlannedCourse) GroupID() string {
	if pc.RequirementGroupID == nil {
		return ""
	}
	return *pc.RequirementGroupID
}

// AssignGroup records the requirement group the course counts toward.
func (pc *PlannedCourse) AssignGroup(groupID string) {
	pc.RequirementGroupID = &groupID
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAN
// ══════════════════════════════════════════════════════════════════════════════

// Plan is a student's ordered list of courses and their target program.
type Plan struct {
	ID               string           `json:"id"`
	Code             string           `json:"code"`
	StudentName      string           `json:"student_name,omitempty"`
	CurrentProgramID string           `json:"current_program_id,omitempty"`
	TargetProgramID  string           `json:"target_program_id,omitempty"`
	Courses          []*PlannedCourse `json:"courses"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// HasTarget reports whether a target program is set.
func (p *Plan) HasTarget() bool {
	return p.TargetProgramID != ""
}

// CompletedCourses returns the planned courses with status completed.
func (p *Plan) CompletedCourses() []*PlannedCourse {
	var out []*PlannedCourse
	for _, pc := range p.Courses {
		if pc.Status == StatusCompleted {
			out = append(out, pc)
		}
	}
	return out
}

// CompletedCodes returns the codes of completed, resolved courses.
func (p *Plan) CompletedCodes() []string {
	var codes []string
	for _, pc := range p.CompletedCourses() {
		if code := pc.Code(); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// CourseIDs returns the catalog IDs of every planned course.
func (p *Plan) CourseIDs() []catalog.CourseID {
	ids := make([]catalog.CourseID, 0, len(p.Courses))
	for _, pc := range p.Courses {
		ids = append(ids, pc.CourseID)
	}
	return ids
}

// FindCourse returns the planned course with the given ID.
func (p *Plan) FindCourse(id string) (*PlannedCourse, bool) {
	for _, pc := range p.Courses {
		if pc.ID == id {
			return pc, true
		}
	}
	return nil, false
}
