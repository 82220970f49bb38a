// Package catalogfile reads catalog and plan definitions from YAML and
// imports them through the domain repository interfaces.
package catalogfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrFileNotFound = errors.New("catalog file not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG FILE
// ══════════════════════════════════════════════════════════════════════════════

// CatalogFile is the document form of catalog.yaml.
type CatalogFile struct {
	Courses       []CourseEntry      `yaml:"courses"`
	Equivalencies []EquivalencyEntry `yaml:"equivalencies"`
	Programs      []ProgramEntry     `yaml:"programs"`
}

// CourseEntry describes one course. Code is "SUBJECT NUMBER".
type CourseEntry struct {
	ID            string `yaml:"id,omitempty"`
	Institution   string `yaml:"institution"`
	Code          string `yaml:"code"`
	Title         string `yaml:"title,omitempty"`
	Credits       int    `yaml:"credits"`
	HasLab        bool   `yaml:"has_lab,omitempty"`
	Type          string `yaml:"course_type,omitempty"`
	Prerequisites string `yaml:"prerequisites,omitempty"`
}

// CourseRef names a course by code, optionally at one institution.
type CourseRef struct {
	Code        string `yaml:"code"`
	Institution string `yaml:"institution,omitempty"`
}

// EquivalencyEntry declares two courses equivalent.
type EquivalencyEntry struct {
	ID    string    `yaml:"id,omitempty"`
	From  CourseRef `yaml:"from"`
	To    CourseRef `yaml:"to"`
	Type  string    `yaml:"type,omitempty"`
	Notes string    `yaml:"notes,omitempty"`
}

// ProgramEntry is a program with its requirement tree.
type ProgramEntry struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	ProgramType  string             `yaml:"program_type,omitempty"`
	Institution  string             `yaml:"institution,omitempty"`
	Requirements []RequirementEntry `yaml:"requirements"`
}

// RequirementEntry is one requirement category.
type RequirementEntry struct {
	ID              string            `yaml:"id"`
	Category        string            `yaml:"category"`
	Description     string            `yaml:"description,omitempty"`
	CreditsRequired int               `yaml:"credits_required"`
	Type            string            `yaml:"type,omitempty"`
	PriorityOrder   int               `yaml:"priority_order,omitempty"`
	Groups          []GroupEntry      `yaml:"groups,omitempty"`
	Constraints     []ConstraintEntry `yaml:"constraints,omitempty"`
}

// GroupEntry is a requirement group and its course options.
type GroupEntry struct {
	ID                  string        `yaml:"id"`
	Name                string        `yaml:"name,omitempty"`
	CoursesRequired     *int          `yaml:"courses_required,omitempty"`
	CreditsRequired     *int          `yaml:"credits_required,omitempty"`
	MinCreditsPerCourse *int          `yaml:"min_credits_per_course,omitempty"`
	MaxCreditsPerCourse *int          `yaml:"max_credits_per_course,omitempty"`
	Options             []OptionEntry `yaml:"options"`
}

// OptionEntry is a course option of a group.
type OptionEntry struct {
	Code        string `yaml:"code"`
	Institution string `yaml:"institution,omitempty"`
	Preferred   bool   `yaml:"preferred,omitempty"`
}

// ConstraintEntry is a requirement constraint. Params are passed through to
// the rule builder unchanged.
type ConstraintEntry struct {
	ID          string         `yaml:"id,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Type        string         `yaml:"type"`
	Params      map[string]any `yaml:"params,omitempty"`
	Scope       ScopeEntry     `yaml:"scope,omitempty"`
}

// ScopeEntry restricts a constraint.
type ScopeEntry struct {
	Subject  string `yaml:"subject,omitempty"`
	LevelMin *int   `yaml:"level_min,omitempty"`
	LevelMax *int   `yaml:"level_max,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAN FILE
// ══════════════════════════════════════════════════════════════════════════════

// PlanFile is the document form of plan.yaml.
type PlanFile struct {
	ID               string         `yaml:"id,omitempty"`
	Code             string         `yaml:"code"`
	StudentName      string         `yaml:"student_name,omitempty"`
	CurrentProgramID string         `yaml:"current_program,omitempty"`
	TargetProgramID  string         `yaml:"target_program,omitempty"`
	Courses          []PlannedEntry `yaml:"courses"`
}

// PlannedEntry is a course on a plan, referenced by code.
type PlannedEntry struct {
	ID              string `yaml:"id,omitempty"`
	Code            string `yaml:"code"`
	Institution     string `yaml:"institution,omitempty"`
	Status          string `yaml:"status,omitempty"`
	CreditsOverride *int   `yaml:"credits_override,omitempty"`
	Group           string `yaml:"group,omitempty"`
	Category        string `yaml:"category,omitempty"`
	Grade           string `yaml:"grade,omitempty"`
	Semester        string `yaml:"semester,omitempty"`
	Year            int    `yaml:"year,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// PARSING
// ══════════════════════════════════════════════════════════════════════════════

// ParseCatalog decodes catalog YAML.
func ParseCatalog(content []byte) (*CatalogFile, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return &f, nil
}

// ParsePlan decodes plan YAML.
func ParsePlan(content []byte) (*PlanFile, error) {
	var f PlanFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse plan yaml: %w", err)
	}
	if f.Code == "" {
		return nil, errors.New("parse plan yaml: code is required")
	}
	return &f, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*CatalogFile, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(content)
}

// LoadPlan reads and parses a plan file.
func LoadPlan(path string) (*PlanFile, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlan(content)
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}
