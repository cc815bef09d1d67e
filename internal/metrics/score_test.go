package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-bff/internal/types"
)

func assessed(prof, eff, cust float64) types.ContactCenterSkill {
	return types.ContactCenterSkill{
		Skill:       "Active listening",
		Category:    types.CategoryCommunication,
		Proficiency: types.ProficiencyAdvanced,
		AssessmentResults: &types.SkillAssessmentResults{
			Score:      75,
			KeyMetrics: types.KeyMetrics{Professionalism: prof, Effectiveness: eff, CustomerFocus: cust},
		},
	}
}

func unassessed() types.ContactCenterSkill {
	return types.ContactCenterSkill{Skill: "Upselling", Category: types.CategoryCustomerService, Proficiency: types.ProficiencyBasic}
}

func viewWith(skills ...types.ContactCenterSkill) *types.ViewProfile {
	return &types.ViewProfile{UserID: "u1", Status: types.StatusDraft, Skills: types.ViewSkills{ContactCenter: skills}}
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name string
		view *types.ViewProfile
		want types.REPSScore
	}{
		{
			name: "single assessed skill",
			view: viewWith(assessed(80, 60, 90)),
			want: types.REPSScore{Reliability: 60, Efficiency: 60, Professionalism: 80, Service: 90},
		},
		{
			name: "no contact center skills",
			view: viewWith(),
			want: types.REPSScore{},
		},
		{
			name: "only unassessed skills",
			view: viewWith(unassessed(), unassessed()),
			want: types.REPSScore{},
		},
		{
			name: "divides by assessed count only",
			view: viewWith(assessed(80, 60, 90), unassessed(), assessed(60, 80, 70)),
			want: types.REPSScore{Reliability: 70, Efficiency: 70, Professionalism: 70, Service: 80},
		},
		{
			name: "rounds half up",
			view: viewWith(assessed(80, 60, 90), assessed(81, 61, 91)),
			want: types.REPSScore{Reliability: 61, Efficiency: 61, Professionalism: 81, Service: 91},
		},
		{
			name: "rounds down below half",
			view: viewWith(assessed(10, 10, 10), assessed(10, 10, 10), assessed(11, 11, 11)),
			want: types.REPSScore{Reliability: 10, Efficiency: 10, Professionalism: 10, Service: 10},
		},
		{
			name: "does not clamp",
			view: viewWith(assessed(150, 120, 101)),
			want: types.REPSScore{Reliability: 120, Efficiency: 120, Professionalism: 150, Service: 101},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeScore(tt.view)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestComputeScore_IgnoresLegacyPerformance(t *testing.T) {
	view := viewWith()
	view.Performance = types.Performance{CustomerSatisfaction: 90, TaskCompletionRate: 80, OnTimeDelivery: 70}

	got, err := ComputeScore(view)
	require.NoError(t, err)
	assert.Equal(t, types.REPSScore{}, *got)
}

func TestComputeScore_NilProfile(t *testing.T) {
	got, err := ComputeScore(nil)

	assert.Nil(t, got)
	var notFound *types.ErrProfileNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 1, roundHalfUp(0.5))
	assert.Equal(t, 0, roundHalfUp(0.49))
	assert.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, 100, roundHalfUp(99.5))
}
