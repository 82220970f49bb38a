// Package catalog holds the reference data a degree audit runs against:
// courses offered by institutions and the equivalencies declared between them.
//
// Catalog entities are immutable for the purposes of evaluation. They are
// written by import tooling and read by the audit engine.
package catalog

import (
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTIFIERS
// ══════════════════════════════════════════════════════════════════════════════

// CourseID is the storage identifier of a course.
type CourseID string

// String returns the ID as a string.
func (id CourseID) String() string {
	return string(id)
}

// InstitutionID identifies a school. Course codes are unique per institution.
type InstitutionID string

// String returns the ID as a string.
func (id InstitutionID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE TYPE
// ══════════════════════════════════════════════════════════════════════════════

// CourseType categorises the delivery format of a course.
type CourseType string

const (
	TypeLecture          CourseType = "lecture"
	TypeLectureLab       CourseType = "lecture_lab"
	TypeLabOnly          CourseType = "lab_only"
	TypeResearch         CourseType = "research"
	TypeSeminar          CourseType = "seminar"
	TypeIndependentStudy CourseType = "independent_study"
	TypeOther            CourseType = "other"
)

// ParseCourseType normalizes a stored course type. Unknown values map to TypeOther.
func ParseCourseType(s string) CourseType {
	switch CourseType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeLecture, "":
		return TypeLecture
	case TypeLectureLab:
		return TypeLectureLab
	case TypeLabOnly:
		return TypeLabOnly
	case TypeResearch:
		return TypeResearch
	case TypeSeminar:
		return TypeSeminar
	case TypeIndependentStudy:
		return TypeIndependentStudy
	default:
		return TypeOther
	}
}

// IsResearchLike reports whether the type falls in the combined research bucket.
func (t CourseType) IsResearchLike() bool {
	return t == TypeResearch || t == TypeSeminar || t == TypeIndependentStudy
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course is a single course offered by an institution.
type Course struct {
	ID          CourseID      `json:"id"`
	Subject     string        `json:"subject"`
	Number      string        `json:"number"`
	Title       string        `json:"title"`
	Credits     int           `json:"credits"`
	Institution InstitutionID `json:"institution"`
	HasLab      bool          `json:"has_lab"`
	Type        CourseType    `json:"course_type"`

	// Prerequisites is the free-text prerequisite expression from the catalog,
	// e.g. "MATH 101 and BIOL 200".
	Prerequisites string `json:"prerequisites,omitempty"`
}

// Code returns the canonical "SUBJECT NUMBER" form of the course code.
func (c *Course) Code() string {
	return FormatCode(c.Subject, c.Number)
}

// Level returns the academic level derived from the course number.
func (c *Course) Level() int {
	return LevelOf(c.Number)
}

// HasTag reports whether the course carries the given constraint tag.
// "lab" checks the lab flag; every other tag is compared to the course type.
func (c *Course) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "lab" {
		return c.HasLab
	}
	return string(c.Type) == tag
}

// Matches reports whether the course has the given code, optionally at the
// given institution. An empty institution matches any school.
func (c *Course) Matches(code string, institution InstitutionID) bool {
	if c == nil {
		return false
	}
	if institution != "" && c.Institution != institution {
		return false
	}
	return c.Code() == NormalizeCode(code)
}

// Validate checks the course for the invariants the engine relies on.
func (c *Course) Validate() error {
	if c.Subject == "" || c.Number == "" {
		return errInvalidCode
	}
	if c.Credits <= 0 {
		return errInvalidCredits
	}
	return nil
}
