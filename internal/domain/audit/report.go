package audit

import (
	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/plan"
)

// Status summarises a requirement's progress.
type Status string

const (
	StatusMet  Status = "met"
	StatusPart Status = "part"
	StatusNone Status = "none"
)

// CourseUse is one planned course counted toward a requirement.
type CourseUse struct {
	PlannedCourseID string      `json:"planned_course_id"`
	Code            string      `json:"code"`
	Title           string      `json:"title,omitempty"`
	Credits         int         `json:"credits"`
	Status          plan.Status `json:"status"`

	// MatchedCode is the program course this one stands in for, set only
	// when it counted through an equivalency.
	MatchedCode string `json:"matched_code,omitempty"`

	// Course is the catalog course used for level, subject and tag checks:
	// the program-side course when substituted, otherwise the course itself.
	Course *catalog.Course `json:"-"`
}

func newCourseUse(pc *plan.PlannedCourse, matchedAs *catalog.Course) CourseUse {
	use := CourseUse{
		PlannedCourseID: pc.ID,
		Code:            pc.Code(),
		Credits:         pc.EffectiveCredits(),
		Status:          pc.Status,
		Course:          pc.Course,
	}
	if pc.Course != nil {
		use.Title = pc.Course.Title
	}
	if matchedAs != nil && matchedAs != pc.Course {
		use.MatchedCode = matchedAs.Code()
		use.Course = matchedAs
	}
	return use
}

// GroupResult is the evaluation of one RequirementGroup.
type GroupResult struct {
	GroupID         string      `json:"group_id"`
	Name            string      `json:"name"`
	Satisfied       bool        `json:"satisfied"`
	CoursesRequired int         `json:"courses_required"`
	CreditsRequired int         `json:"credits_required"`
	CoursesMatched  int         `json:"courses_matched"`
	CreditsEarned   int         `json:"credits_earned"`
	CoursesUsed     []CourseUse `json:"courses_used"`
	Error           string      `json:"error,omitempty"`
}

// ConstraintResult is the evaluation of one constraint.
type ConstraintResult struct {
	ConstraintID string         `json:"constraint_id"`
	Type         string         `json:"constraint_type"`
	Description  string         `json:"description,omitempty"`
	Satisfied    bool           `json:"satisfied"`
	Reason       string         `json:"reason,omitempty"`
	Tally        map[string]int `json:"tally"`
}

// RequirementMatch is the base evaluation of a requirement, before
// constraints.
type RequirementMatch struct {
	Satisfied        bool          `json:"satisfied"`
	CreditsEarned    int           `json:"credits_earned"`
	CreditsRequired  int           `json:"credits_required"`
	RemainingCredits int           `json:"remaining_credits"`
	CoursesUsed      []CourseUse   `json:"courses_used"`
	Groups           []GroupResult `json:"groups,omitempty"`
}

// RequirementResult is a requirement's full evaluation.
type RequirementResult struct {
	RequirementID        string             `json:"requirement_id"`
	Category             string             `json:"category"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"requirement_type"`
	PriorityOrder        int                `json:"priority_order"`
	Status               Status             `json:"status"`
	ConstraintsSatisfied bool               `json:"constraints_satisfied"`
	Constraints          []ConstraintResult `json:"constraints,omitempty"`

	// CompletedCredits is the part of CreditsEarned from completed courses.
	CompletedCredits int `json:"completed_credits"`

	RequirementMatch
}

// Met reports whether both the base evaluation and every constraint pass.
func (r RequirementResult) Met() bool {
	return r.Status == StatusMet
}

// Report is the progress of a plan toward its target program.
type Report struct {
	PlanCode             string              `json:"plan_code"`
	ProgramID            string              `json:"program_id"`
	ProgramName          string              `json:"program_name"`
	ProgramType          string              `json:"program_type"`
	View                 View                `json:"view"`
	GroupedStrict        bool                `json:"grouped_strict"`
	Requirements         []RequirementResult `json:"requirements"`
	TotalCreditsEarned   int                 `json:"total_credits_earned"`
	TotalCreditsRequired int                 `json:"total_credits_required"`
	CompletionPercentage float64             `json:"completion_percentage"`
	RemainingCredits     int                 `json:"remaining_credits"`
}

// Unmet is a requirement that is not fully met.
type Unmet struct {
	RequirementID string   `json:"requirement_id"`
	Category      string   `json:"category"`
	CreditsNeeded int      `json:"credits_needed"`
	Description   string   `json:"description"`
	Reasons       []string `json:"reasons,omitempty"`
}

// Suggestion is a course option that would help an unmet requirement.
type Suggestion struct {
	RequirementID string `json:"requirement_id"`
	Category      string `json:"category"`
	GroupID       string `json:"group_id"`
	GroupName     string `json:"group_name"`
	CourseCode    string `json:"course_code"`
	Institution   string `json:"institution,omitempty"`
	Title         string `json:"title,omitempty"`
	Credits       int    `json:"credits,omitempty"`
	IsPreferred   bool   `json:"is_preferred"`

	// IDs of failing constraints this course would count toward.
	FixesConstraints []string `json:"fixes_constraints,omitempty"`
}
