// Package program models a degree program's requirement tree: simple credit
// buckets, grouped elective pools and the constraints attached to them.
package program

import (
	"sort"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRAM
// ══════════════════════════════════════════════════════════════════════════════

// Program is a degree program at an institution.
type Program struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	ProgramType  string                `json:"program_type"`
	Institution  catalog.InstitutionID `json:"institution"`
	Requirements []*Requirement        `json:"requirements"`
}

// SortedRequirements returns the requirements ordered by PriorityOrder,
// lowest first. Equal priorities keep declaration order.
func (p *Program) SortedRequirements() []*Requirement {
	out := make([]*Requirement, len(p.Requirements))
	copy(out, p.Requirements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityOrder < out[j].PriorityOrder
	})
	return out
}

// FindGroup locates a group and its owning requirement by group ID.
func (p *Program) FindGroup(groupID string) (*Requirement, *RequirementGroup, bool) {
	for _, r := range p.Requirements {
		for _, g := range r.Groups {
			if g.ID == groupID {
				return r, g, true
			}
		}
	}
	return nil, nil, false
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUIREMENT
// ══════════════════════════════════════════════════════════════════════════════

// RequirementType selects how a requirement is evaluated.
type RequirementType string

const (
	RequirementSimple      RequirementType = "simple"
	RequirementGrouped     RequirementType = "grouped"
	RequirementConditional RequirementType = "conditional"
)

// ParseRequirementType normalizes a stored requirement type. Unknown values
// are treated as simple.
func ParseRequirementType(s string) RequirementType {
	switch RequirementType(strings.ToLower(strings.TrimSpace(s))) {
	case RequirementGrouped:
		return RequirementGrouped
	case RequirementConditional:
		return RequirementConditional
	default:
		return RequirementSimple
	}
}

// Requirement is one category of a program, e.g. "Major Electives".
type Requirement struct {
	ID              string              `json:"id"`
	Category        string              `json:"category"`
	Description     string              `json:"description,omitempty"`
	CreditsRequired int                 `json:"credits_required"`
	Type            RequirementType     `json:"requirement_type"`
	PriorityOrder   int                 `json:"priority_order"`
	Groups          []*RequirementGroup `json:"groups,omitempty"`
	Constraints     []*Constraint       `json:"constraints,omitempty"`
}

// IsGrouped reports whether the requirement is evaluated through its groups.
// Conditional requirements behave as grouped when they carry groups.
func (r *Requirement) IsGrouped() bool {
	switch r.Type {
	case RequirementGrouped:
		return true
	case RequirementConditional:
		return len(r.Groups) > 0
	default:
		return false
	}
}

// MatchesCategory compares a free-text category label to the requirement's.
func (r *Requirement) MatchesCategory(label string) bool {
	return normalizeLabel(label) != "" && normalizeLabel(label) == normalizeLabel(r.Category)
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPS
// ══════════════════════════════════════════════════════════════════════════════

// RequirementGroup is a pool of course options. Exactly one of
// CoursesRequired or CreditsRequired defines its policy.
type RequirementGroup struct {
	ID                  string              `json:"id"`
	RequirementID       string              `json:"requirement_id"`
	Name                string              `json:"name"`
	CoursesRequired     *int                `json:"courses_required,omitempty"`
	CreditsRequired     *int                `json:"credits_required,omitempty"`
	MinCreditsPerCourse *int                `json:"min_credits_per_course,omitempty"`
	MaxCreditsPerCourse *int                `json:"max_credits_per_course,omitempty"`
	Options             []GroupCourseOption `json:"options"`
}

// GroupPolicy is the evaluation policy a group's fields resolve to.
type GroupPolicy int

const (
	// PolicyMalformed marks a group with neither field set.
	PolicyMalformed GroupPolicy = iota
	// PolicyEmpty marks a group whose requirement is explicitly zero.
	PolicyEmpty
	PolicyCount
	PolicyCredits
)

// Policy resolves the group's evaluation policy. A positive course count
// wins over a credit total.
func (g *RequirementGroup) Policy() GroupPolicy {
	switch {
	case g.CoursesRequired != nil && *g.CoursesRequired > 0:
		return PolicyCount
	case g.CreditsRequired != nil && *g.CreditsRequired > 0:
		return PolicyCredits
	case g.CoursesRequired == nil && g.CreditsRequired == nil:
		return PolicyMalformed
	default:
		return PolicyEmpty
	}
}

// AcceptsCredits checks a per-course credit value against the group bounds.
func (g *RequirementGroup) AcceptsCredits(credits int) bool {
	if g.MinCreditsPerCourse != nil && credits < *g.MinCreditsPerCourse {
		return false
	}
	if g.MaxCreditsPerCourse != nil && credits > *g.MaxCreditsPerCourse {
		return false
	}
	return true
}

// GroupCourseOption names a course that may satisfy a group.
// An empty Institution matches the course at any school.
type GroupCourseOption struct {
	CourseCode  string                `json:"course_code"`
	Institution catalog.InstitutionID `json:"institution,omitempty"`
	IsPreferred bool                  `json:"is_preferred"`
}

// Matches reports whether c is the course this option names.
func (o GroupCourseOption) Matches(c *catalog.Course) bool {
	return c.Matches(o.CourseCode, o.Institution)
}

// IntPtr is a convenience for building optional group fields.
func IntPtr(v int) *int {
	return &v
}
