package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

func suggestionCodes(s []Suggestion) []string {
	out := make([]string, 0, len(s))
	for _, sg := range s {
		out = append(out, sg.CourseCode)
	}
	return out
}

func TestSuggestCourses(t *testing.T) {
	p := biologyProgram()
	p.Requirements[0].Groups[0].Options[4].IsPreferred = true // BIOS 4990
	ix := catalog.NewIndex([]*catalog.Course{bios3010, bios3150, bios3500, bios3200, bios4990, bios4800}, nil)
	s := snapshot(p, ix, completed("1", bios3200), withStatus(completed("2", bios4800), "planned"))

	got, err := NewEvaluator(DefaultOptions()).SuggestCourses(s, ViewCompleted)
	require.NoError(t, err)

	assert.Equal(t, []string{"BIOS 4990", "BIOS 3010", "BIOS 3150", "BIOS 3500"}, suggestionCodes(got))
	assert.True(t, got[0].IsPreferred)
	assert.Equal(t, 3, got[0].Credits)
	assert.Equal(t, "bios-upper", got[0].RequirementID)
	assert.Equal(t, "bios-pool", got[0].GroupID)
}

func TestSuggestCourses_LimitAndEquivalentsInPlan(t *testing.T) {
	target := newCourse("uga-3010", "BIOS", "3010", 4)
	source := &catalog.Course{ID: "gsu-3010", Subject: "BIOL", Number: "3010", Credits: 4, Institution: "gsu"}
	ix := catalog.NewIndex([]*catalog.Course{target, source}, catalog.NewGraph([]catalog.Equivalency{
		{CourseID: "gsu-3010", EquivalentID: "uga-3010"},
	}))
	s := snapshot(biologyProgram(), ix, withStatus(completed("1", source), "planned"))

	opts := DefaultOptions()
	opts.SuggestionLimit = 2
	got, err := NewEvaluator(opts).SuggestCourses(s, ViewCompleted)
	require.NoError(t, err)

	assert.Equal(t, []string{"BIOS 3150", "BIOS 3500"}, suggestionCodes(got))
}

func TestSuggestCourses_ConstraintOnlyShortfall(t *testing.T) {
	c1000 := newCourse("c1000", "CHEM", "1000", 3)
	c1010 := newCourse("c1010", "CHEM", "1010", 3)
	c2000 := newCourse("c2000", "CHEM", "2000", 3)
	c3000 := labCourse("c3000", "CHEM", "3000", 4)
	c3010 := labCourse("c3010", "CHEM", "3010", 4)
	ix := catalog.NewIndex([]*catalog.Course{c1000, c1010, c2000, c3000, c3010}, nil)

	opts := options("CHEM 1000", "CHEM 1010", "CHEM 2000", "CHEM 3000", "CHEM 3010")
	opts[2].IsPreferred = true
	p := &program.Program{ID: "chem", Requirements: []*program.Requirement{{
		ID: "chem-core", Category: "Chemistry", CreditsRequired: 6, Type: program.RequirementGrouped,
		Groups:      []*program.RequirementGroup{{ID: "pool", CreditsRequired: program.IntPtr(6), Options: opts}},
		Constraints: []*program.Constraint{{ID: "c-lab", Rule: program.MinTagCourses{Tag: "lab", Courses: 1}}},
	}}}
	s := snapshot(p, ix, completed("1", c1000), completed("2", c1010))
	e := NewEvaluator(DefaultOptions())

	unmet, err := e.UnmetRequirements(s, ViewCompleted)
	require.NoError(t, err)
	require.Len(t, unmet, 1)
	assert.Equal(t, 0, unmet[0].CreditsNeeded)

	got, err := e.SuggestCourses(s, ViewCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"CHEM 3000", "CHEM 3010", "CHEM 2000"}, suggestionCodes(got))
	assert.Equal(t, []string{"c-lab"}, got[0].FixesConstraints)
	assert.Empty(t, got[2].FixesConstraints)
	assert.True(t, got[2].IsPreferred)
}

func TestHelpsConstraint(t *testing.T) {
	bios := program.Scope{Subject: "BIOS"}
	tests := []struct {
		name   string
		rule   program.Rule
		scope  program.Scope
		course *catalog.Course
		want   bool
	}{
		{"lab tag", program.MinTagCourses{Tag: "lab", Courses: 1}, bios, bios3010, true},
		{"lab tag without lab", program.MinTagCourses{Tag: "lab", Courses: 1}, bios, bios3200, false},
		{"out of scope", program.MinTagCourses{Tag: "lab", Courses: 1}, program.Scope{Subject: "CHEM"}, bios3010, false},
		{"level credits", program.MinLevelCredits{LevelMin: 4000, Credits: 3}, bios, bios4990, true},
		{"level too low", program.MinLevelCredits{LevelMin: 4000, Credits: 3}, bios, bios3200, false},
		{"exact level", program.MinCoursesAtLevel{Level: 3000, Courses: 1}, bios, bios3200, true},
		{"maximum never helped", program.MaxTagCredits{Tag: "research", Credits: 3}, bios, bios3200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &program.Constraint{ID: "c", Rule: tt.rule, Scope: tt.scope}
			assert.Equal(t, tt.want, helpsConstraint(c, tt.course))
		})
	}
}

func TestSuggestCourses_SkipsMetAndSimple(t *testing.T) {
	p := biologyProgram()
	p.Requirements = append(p.Requirements, &program.Requirement{
		ID: "core", Category: "Core", CreditsRequired: 30, Type: program.RequirementSimple,
	})
	s := snapshot(p, nil,
		completed("1", bios3010), completed("2", bios3150), completed("3", bios3500),
		completed("4", bios3200), completed("5", bios4990),
	)

	got, err := NewEvaluator(DefaultOptions()).SuggestCourses(s, ViewCompleted)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNeedsCourses(t *testing.T) {
	rr := RequirementResult{
		RequirementMatch: RequirementMatch{
			RemainingCredits: 3,
			Groups: []GroupResult{
				{Satisfied: true},
				{Satisfied: false},
				{Error: errMalformedGroup},
			},
		},
	}
	assert.False(t, needsCourses(rr, 0))
	assert.True(t, needsCourses(rr, 1))
	assert.False(t, needsCourses(rr, 2))
	assert.False(t, needsCourses(rr, 3))

	rr.Groups = rr.Groups[:1]
	assert.True(t, needsCourses(rr, 0))

	rr.RemainingCredits = 0
	rr.ConstraintsSatisfied = true
	assert.False(t, needsCourses(rr, 0))
	rr.ConstraintsSatisfied = false
	assert.True(t, needsCourses(rr, 0))
}
