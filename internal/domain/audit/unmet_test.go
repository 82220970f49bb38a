package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmetRequirements(t *testing.T) {
	s := snapshot(biologyProgram(), nil, completed("1", bios3200), completed("2", bios4800))

	unmet, err := NewEvaluator(DefaultOptions()).UnmetRequirements(s, ViewCompleted)
	require.NoError(t, err)
	require.Len(t, unmet, 1)

	u := unmet[0]
	assert.Equal(t, "Biology Major", u.Category)
	assert.Equal(t, 13, u.CreditsNeeded)
	assert.Equal(t, "Need 13 more credits in Biology Major", u.Description)
	assert.Contains(t, u.Reasons, "Upper Division Biology: 4 of 17 credits")
	assert.Contains(t, u.Reasons, "0 of 2 lab courses")
	assert.Contains(t, u.Reasons, "4 of 10 credits at level 3000 or above")
}

func TestUnmetRequirements_AllMet(t *testing.T) {
	s := snapshot(biologyProgram(), nil,
		completed("1", bios3010), completed("2", bios3150), completed("3", bios3500),
		completed("4", bios3200), completed("5", bios4990),
	)

	unmet, err := NewEvaluator(DefaultOptions()).UnmetRequirements(s, ViewCompleted)
	require.NoError(t, err)
	assert.Empty(t, unmet)
	assert.NotNil(t, unmet)
	assert.Empty(t, UnmetRequirements(nil))
}

func TestUnmetRequirements_CreditsCompleteRulesNot(t *testing.T) {
	r := &Report{Requirements: []RequirementResult{{
		Category:    "Lab Science",
		Description: "Two lab sciences",
		Status:      StatusPart,
		Constraints: []ConstraintResult{{Satisfied: false, Reason: "1 of 2 lab courses"}},
	}}}

	unmet := UnmetRequirements(r)
	require.Len(t, unmet, 1)
	assert.Equal(t, 0, unmet[0].CreditsNeeded)
	assert.Equal(t, "Credits complete in Lab Science but rules not met (Two lab sciences)", unmet[0].Description)
	assert.Equal(t, []string{"1 of 2 lab courses"}, unmet[0].Reasons)
}
