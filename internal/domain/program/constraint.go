package program

import (
	"fmt"
	"strings"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTRAINTS
// ══════════════════════════════════════════════════════════════════════════════

// Constraint narrows which of a requirement's matched courses are acceptable.
type Constraint struct {
	ID            string `json:"id"`
	RequirementID string `json:"requirement_id"`
	Description   string `json:"description,omitempty"`
	Rule          Rule   `json:"-"`
	Scope         Scope  `json:"scope"`
}

// Type returns the stored constraint type of the rule.
func (c *Constraint) Type() string {
	if c.Rule == nil {
		return ""
	}
	return c.Rule.Type()
}

// Scope restricts a constraint to a subset of the matched courses.
// Zero values mean unrestricted.
type Scope struct {
	Subject  string `json:"subject_code,omitempty"`
	LevelMin *int   `json:"level_min,omitempty"`
	LevelMax *int   `json:"level_max,omitempty"`
}

// Contains reports whether c falls inside the scope.
func (s Scope) Contains(c *catalog.Course) bool {
	if c == nil {
		return false
	}
	if s.Subject != "" && !strings.EqualFold(c.Subject, strings.TrimSpace(s.Subject)) {
		return false
	}
	level := c.Level()
	if s.LevelMin != nil && level < *s.LevelMin {
		return false
	}
	if s.LevelMax != nil && level > *s.LevelMax {
		return false
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Rule variants
// ─────────────────────────────────────────────────────────────────────────────

// Stored constraint type names.
const (
	TypeMinLevelCredits   = "min_level_credits"
	TypeMinTagCourses     = "min_tag_courses"
	TypeMaxTagCredits     = "max_tag_credits"
	TypeMinCoursesAtLevel = "min_courses_at_level"
)

// Rule is the closed set of constraint variants. The unexported method keeps
// implementations inside this package.
type Rule interface {
	Type() string
	Params() map[string]any
	isRule()
}

// MinLevelCredits requires Credits from courses at LevelMin or above.
type MinLevelCredits struct {
	LevelMin int
	Credits  int
}

// MinTagCourses requires Courses courses carrying Tag.
type MinTagCourses struct {
	Tag     string
	Courses int
}

// MaxTagCredits caps the credits of courses carrying Tag.
type MaxTagCredits struct {
	Tag     string
	Credits int
}

// MinCoursesAtLevel requires Courses courses at exactly Level.
type MinCoursesAtLevel struct {
	Level   int
	Courses int
}

// UnknownRule preserves a constraint the engine cannot evaluate: an
// unrecognised type, or a known type whose parameters failed to parse
// (Problem is set in that case).
type UnknownRule struct {
	Name    string
	Raw     map[string]any
	Problem string
}

func (MinLevelCredits) isRule()   {}
func (MinTagCourses) isRule()     {}
func (MaxTagCredits) isRule()     {}
func (MinCoursesAtLevel) isRule() {}
func (UnknownRule) isRule()       {}

func (MinLevelCredits) Type() string   { return TypeMinLevelCredits }
func (MinTagCourses) Type() string     { return TypeMinTagCourses }
func (MaxTagCredits) Type() string     { return TypeMaxTagCredits }
func (MinCoursesAtLevel) Type() string { return TypeMinCoursesAtLevel }
func (u UnknownRule) Type() string     { return u.Name }

func (r MinLevelCredits) Params() map[string]any {
	return map[string]any{"level_min": r.LevelMin, "credits": r.Credits}
}

func (r MinTagCourses) Params() map[string]any {
	return map[string]any{"tag": r.Tag, "courses": r.Courses}
}

func (r MaxTagCredits) Params() map[string]any {
	return map[string]any{"tag": r.Tag, "credits": r.Credits}
}

func (r MinCoursesAtLevel) Params() map[string]any {
	return map[string]any{"level": r.Level, "courses": r.Courses}
}

func (u UnknownRule) Params() map[string]any {
	return u.Raw
}

// NewRule builds a rule variant from a stored type name and its parameters.
// Unrecognised types yield UnknownRule; a recognised type with unusable
// parameters is an error. Loaders use RuleOrUnknown to keep going.
func NewRule(constraintType string, params map[string]any) (Rule, error) {
	name := strings.ToLower(strings.TrimSpace(constraintType))
	switch name {
	case TypeMinLevelCredits:
		level, err := intParam(params, "level_min", "level")
		if err != nil {
			return nil, err
		}
		credits, err := intParam(params, "credits")
		if err != nil {
			return nil, err
		}
		return MinLevelCredits{LevelMin: level, Credits: credits}, nil

	case TypeMinTagCourses:
		tag, err := stringParam(params, "tag")
		if err != nil {
			return nil, err
		}
		courses, err := intParam(params, "courses", "count")
		if err != nil {
			return nil, err
		}
		return MinTagCourses{Tag: tag, Courses: courses}, nil

	case TypeMaxTagCredits:
		tag, err := stringParam(params, "tag")
		if err != nil {
			return nil, err
		}
		credits, err := intParam(params, "credits")
		if err != nil {
			return nil, err
		}
		return MaxTagCredits{Tag: tag, Credits: credits}, nil

	case TypeMinCoursesAtLevel:
		level, err := intParam(params, "level")
		if err != nil {
			return nil, err
		}
		courses, err := intParam(params, "courses", "count")
		if err != nil {
			return nil, err
		}
		return MinCoursesAtLevel{Level: level, Courses: courses}, nil

	default:
		return UnknownRule{Name: constraintType, Raw: params}, nil
	}
}

func intParam(params map[string]any, keys ...string) (int, error) {
	for _, key := range keys {
		v, ok := params[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return n, nil
		case int32:
			return int(n), nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		case float32:
			return int(n), nil
		default:
			return 0, fmt.Errorf("constraint param %q: expected number, got %T", key, v)
		}
	}
	return 0, fmt.Errorf("constraint param %q missing", keys[0])
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("constraint param %q missing", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("constraint param %q: expected non-empty string", key)
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

// RuleOrUnknown is NewRule that degrades a parameter error to an UnknownRule
// carrying the problem.
func RuleOrUnknown(constraintType string, params map[string]any) Rule {
	rule, err := NewRule(constraintType, params)
	if err != nil {
		return UnknownRule{Name: constraintType, Raw: params, Problem: err.Error()}
	}
	return rule
}
