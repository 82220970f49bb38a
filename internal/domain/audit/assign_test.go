package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/catalog"
	"github.com/transferhub/transfer-hub/internal/domain/program"
)

func assignProgram() *program.Program {
	return &program.Program{ID: "p", Requirements: []*program.Requirement{
		{ID: "core", Type: program.RequirementSimple, PriorityOrder: 0},
		{ID: "late", Type: program.RequirementGrouped, PriorityOrder: 5, Groups: []*program.RequirementGroup{
			{ID: "late-g", Options: options("MATH 2250")},
		}},
		{ID: "early", Type: program.RequirementGrouped, PriorityOrder: 1, Groups: []*program.RequirementGroup{
			{ID: "early-a", Options: options("MATH 2250")},
			{ID: "early-b", Options: options("MATH 2250")},
		}},
	}}
}

func TestAssignGroup_PriorityThenDeclaration(t *testing.T) {
	got, ok := AssignGroup(assignProgram(), newCourse("m", "MATH", "2250", 4))
	require.True(t, ok)
	assert.Equal(t, Assignment{RequirementID: "early", GroupID: "early-a"}, got)
}

func TestAssignGroup_PreferredWins(t *testing.T) {
	p := assignProgram()
	p.Requirements[1].Groups[0].Options[0].IsPreferred = true

	got, ok := AssignGroup(p, newCourse("m", "MATH", "2250", 4))
	require.True(t, ok)
	assert.Equal(t, "late-g", got.GroupID)
	assert.True(t, got.Preferred)
}

func TestAssignGroup_InstitutionAndMisses(t *testing.T) {
	p := assignProgram()
	p.Requirements[2].Groups[0].Options[0].Institution = "gsu"

	got, ok := AssignGroup(p, newCourse("m", "MATH", "2250", 4))
	require.True(t, ok)
	assert.Equal(t, "early-b", got.GroupID)

	_, ok = AssignGroup(p, newCourse("x", "ENGL", "1101", 3))
	assert.False(t, ok)

	_, ok = AssignGroup(nil, &catalog.Course{})
	assert.False(t, ok)
}
