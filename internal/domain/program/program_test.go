package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
)

func TestRequirementGroup_Policy(t *testing.T) {
	tests := []struct {
		name    string
		courses *int
		credits *int
		want    GroupPolicy
	}{
		{"neither set", nil, nil, PolicyMalformed},
		{"count", IntPtr(2), nil, PolicyCount},
		{"credits", nil, IntPtr(6), PolicyCredits},
		{"count wins", IntPtr(2), IntPtr(6), PolicyCount},
		{"zero courses", IntPtr(0), nil, PolicyEmpty},
		{"zero both", IntPtr(0), IntPtr(0), PolicyEmpty},
		{"zero courses with credits", IntPtr(0), IntPtr(3), PolicyCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &RequirementGroup{CoursesRequired: tt.courses, CreditsRequired: tt.credits}
			assert.Equal(t, tt.want, g.Policy())
		})
	}
}

func TestRequirementGroup_AcceptsCredits(t *testing.T) {
	g := &RequirementGroup{MinCreditsPerCourse: IntPtr(3), MaxCreditsPerCourse: IntPtr(4)}

	assert.False(t, g.AcceptsCredits(2))
	assert.True(t, g.AcceptsCredits(3))
	assert.True(t, g.AcceptsCredits(4))
	assert.False(t, g.AcceptsCredits(5))
	assert.True(t, (&RequirementGroup{}).AcceptsCredits(12))
}

func TestRequirement_IsGrouped(t *testing.T) {
	assert.False(t, (&Requirement{Type: RequirementSimple}).IsGrouped())
	assert.True(t, (&Requirement{Type: RequirementGrouped}).IsGrouped())
	assert.False(t, (&Requirement{Type: RequirementConditional}).IsGrouped())
	assert.True(t, (&Requirement{Type: RequirementConditional, Groups: []*RequirementGroup{{}}}).IsGrouped())
}

func TestRequirement_MatchesCategory(t *testing.T) {
	r := &Requirement{Category: "Core  Curriculum"}

	assert.True(t, r.MatchesCategory("core curriculum"))
	assert.False(t, r.MatchesCategory(""))
	assert.False(t, r.MatchesCategory("Electives"))
}

func TestProgram_SortedRequirements(t *testing.T) {
	p := &Program{Requirements: []*Requirement{
		{ID: "c", PriorityOrder: 2},
		{ID: "a", PriorityOrder: 1},
		{ID: "b", PriorityOrder: 1},
	}}

	var ids []string
	for _, r := range p.SortedRequirements() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "c", p.Requirements[0].ID)
}

func TestProgram_FindGroup(t *testing.T) {
	p := &Program{Requirements: []*Requirement{
		{ID: "r1", Groups: []*RequirementGroup{{ID: "g1"}}},
	}}

	r, g, ok := p.FindGroup("g1")
	require.True(t, ok)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "g1", g.ID)

	_, _, ok = p.FindGroup("nope")
	assert.False(t, ok)
}

func TestNewRule(t *testing.T) {
	rule, err := NewRule("min_level_credits", map[string]any{"level_min": 3000, "credits": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, MinLevelCredits{LevelMin: 3000, Credits: 10}, rule)

	rule, err = NewRule("MIN_TAG_COURSES", map[string]any{"tag": "Lab", "courses": 2})
	require.NoError(t, err)
	assert.Equal(t, MinTagCourses{Tag: "lab", Courses: 2}, rule)

	rule, err = NewRule("max_tag_credits", map[string]any{"tag": "research", "credits": 7})
	require.NoError(t, err)
	assert.Equal(t, TypeMaxTagCredits, rule.Type())

	rule, err = NewRule("min_courses_at_level", map[string]any{"level": 4000, "count": 1})
	require.NoError(t, err)
	assert.Equal(t, MinCoursesAtLevel{Level: 4000, Courses: 1}, rule)

	rule, err = NewRule("max_gpa", map[string]any{"gpa": 3.5})
	require.NoError(t, err)
	assert.Equal(t, "max_gpa", rule.Type())
	assert.IsType(t, UnknownRule{}, rule)

	_, err = NewRule("min_tag_courses", map[string]any{"courses": 2})
	assert.Error(t, err)

	_, err = NewRule("min_level_credits", map[string]any{"level_min": "3000", "credits": 1})
	assert.Error(t, err)
}

func TestRuleOrUnknown(t *testing.T) {
	rule := RuleOrUnknown("min_tag_courses", map[string]any{"tag": "lab"})

	unknown, ok := rule.(UnknownRule)
	require.True(t, ok)
	assert.Equal(t, "min_tag_courses", unknown.Name)
	assert.Contains(t, unknown.Problem, "courses")
}

func TestScope_Contains(t *testing.T) {
	bios := &catalog.Course{Subject: "BIOS", Number: "3010"}
	chem := &catalog.Course{Subject: "CHEM", Number: "1211"}

	assert.True(t, Scope{}.Contains(bios))
	assert.True(t, Scope{Subject: "bios"}.Contains(bios))
	assert.False(t, Scope{Subject: "BIOS"}.Contains(chem))
	assert.True(t, Scope{LevelMin: IntPtr(3000)}.Contains(bios))
	assert.False(t, Scope{LevelMin: IntPtr(3000)}.Contains(chem))
	assert.False(t, Scope{LevelMax: IntPtr(2000)}.Contains(bios))
	assert.False(t, Scope{}.Contains(nil))
}
