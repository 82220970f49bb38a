package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

func uses(courses ...*catalog.Course) []CourseUse {
	out := make([]CourseUse, 0, len(courses))
	for i, c := range courses {
		out = append(out, newCourseUse(completed(string(rune('a'+i)), c), nil))
	}
	return out
}

func TestEvaluateConstraint_ScopeNarrowing(t *testing.T) {
	c := &program.Constraint{
		ID:    "labs",
		Rule:  program.MinTagCourses{Tag: "lab", Courses: 1},
		Scope: program.Scope{Subject: "BIOS"},
	}
	matched := uses(labCourse("chem", "CHEM", "3100", 4), newCourse("bios", "BIOS", "3200", 3))

	res := EvaluateConstraint(c, matched, DefaultOptions())

	assert.False(t, res.Satisfied)
	assert.Equal(t, 0, res.Tally["courses"])
	assert.Equal(t, 1, res.Tally["scoped_courses"])
	assert.Equal(t, "0 of 1 lab courses", res.Reason)
}

func TestEvaluateConstraint_LevelScope(t *testing.T) {
	c := &program.Constraint{
		Rule:  program.MinTagCourses{Tag: "lab", Courses: 1},
		Scope: program.Scope{LevelMin: program.IntPtr(3000), LevelMax: program.IntPtr(3000)},
	}

	assert.False(t, EvaluateConstraint(c, uses(labCourse("x", "BIOS", "4100", 4)), DefaultOptions()).Satisfied)
	assert.True(t, EvaluateConstraint(c, uses(labCourse("x", "BIOS", "3100", 4)), DefaultOptions()).Satisfied)
}

func TestEvaluateConstraint_Types(t *testing.T) {
	matched := uses(bios3010, bios3150, bios3200, bios4990, bios4800, newCourse("intro", "BIOS", "1107", 4))

	tests := []struct {
		name      string
		rule      program.Rule
		satisfied bool
		tallyKey  string
		tally     int
	}{
		{"level credits met", program.MinLevelCredits{LevelMin: 3000, Credits: 10}, true, "credits", 15},
		{"level credits short", program.MinLevelCredits{LevelMin: 4000, Credits: 5}, false, "credits", 4},
		{"lab courses", program.MinTagCourses{Tag: "lab", Courses: 2}, true, "courses", 2},
		{"seminar courses", program.MinTagCourses{Tag: "seminar", Courses: 2}, false, "courses", 1},
		{"research bucket", program.MaxTagCredits{Tag: "research", Credits: 3}, false, "credits", 4},
		{"seminar cap", program.MaxTagCredits{Tag: "seminar", Credits: 1}, true, "credits", 1},
		{"exact level", program.MinCoursesAtLevel{Level: 3000, Courses: 3}, true, "courses", 3},
		{"exact level excludes others", program.MinCoursesAtLevel{Level: 1000, Courses: 2}, false, "courses", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EvaluateConstraint(&program.Constraint{ID: "c", Rule: tt.rule}, matched, DefaultOptions())

			assert.Equal(t, tt.satisfied, res.Satisfied)
			assert.Equal(t, tt.tally, res.Tally[tt.tallyKey])
			assert.Equal(t, tt.rule.Type(), res.Type)
			if tt.satisfied {
				assert.Empty(t, res.Reason)
			} else {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestEvaluateConstraint_Unknown(t *testing.T) {
	c := &program.Constraint{ID: "gpa", Rule: program.UnknownRule{Name: "min_gpa"}}

	open := EvaluateConstraint(c, nil, Options{UnknownConstraints: FailOpen})
	assert.True(t, open.Satisfied)
	assert.Contains(t, open.Reason, "min_gpa")
	assert.Contains(t, open.Reason, "not enforced")

	closed := EvaluateConstraint(c, nil, Options{UnknownConstraints: FailClosed})
	assert.False(t, closed.Satisfied)
	assert.Contains(t, closed.Reason, "treated as unmet")

	bad := &program.Constraint{Rule: program.RuleOrUnknown("min_tag_courses", map[string]any{"courses": 1})}
	res := EvaluateConstraint(bad, nil, Options{UnknownConstraints: FailOpen})
	assert.True(t, res.Satisfied)
	assert.Contains(t, res.Reason, "tag")

	nilRule := EvaluateConstraint(&program.Constraint{}, nil, DefaultOptions())
	assert.True(t, nilRule.Satisfied)
	assert.NotNil(t, nilRule.Tally)
}

func TestEvaluateConstraint_UsesSubstitutedCourse(t *testing.T) {
	source := &catalog.Course{ID: "gsu", Subject: "BIOL", Number: "2107", Credits: 4, HasLab: true}
	target := labCourse("uga", "BIOS", "2107", 4)
	use := newCourseUse(completed("p", source), target)

	c := &program.Constraint{Rule: program.MinTagCourses{Tag: "lab", Courses: 1}, Scope: program.Scope{Subject: "BIOS"}}
	assert.True(t, EvaluateConstraint(c, []CourseUse{use}, DefaultOptions()).Satisfied)
}
