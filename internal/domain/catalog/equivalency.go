package catalog

import "strings"

// EquivalencyType describes how strong a declared correspondence is.
// The engine treats every type as a full substitution.
type EquivalencyType string

const (
	EquivalencyDirect      EquivalencyType = "direct"
	EquivalencyPartial     EquivalencyType = "partial"
	EquivalencyConditional EquivalencyType = "conditional"
)

// ParseEquivalencyType normalizes a stored type, defaulting to direct.
func ParseEquivalencyType(s string) EquivalencyType {
	switch EquivalencyType(strings.ToLower(strings.TrimSpace(s))) {
	case EquivalencyPartial:
		return EquivalencyPartial
	case EquivalencyConditional:
		return EquivalencyConditional
	default:
		return EquivalencyDirect
	}
}

// Equivalency pairs two courses. It is stored directed (CourseID -> EquivalentID)
// but read as an undirected edge.
type Equivalency struct {
	ID           string          `json:"id"`
	CourseID     CourseID        `json:"course_id"`
	EquivalentID CourseID        `json:"equivalent_id"`
	Type         EquivalencyType `json:"equivalency_type"`
	Notes        string          `json:"notes,omitempty"`
}

// Other returns the endpoint of the edge opposite to id, and false when the
// edge does not touch id.
func (e Equivalency) Other(id CourseID) (CourseID, bool) {
	switch id {
	case e.CourseID:
		return e.EquivalentID, true
	case e.EquivalentID:
		return e.CourseID, true
	default:
		return "", false
	}
}
