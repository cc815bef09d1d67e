package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-bff/internal/types"
)

func TestComputeCompletion(t *testing.T) {
	tests := []struct {
		name        string
		status      types.ProfileStatus
		steps       types.CompletionSteps
		wantPercent int
		wantDone    bool
	}{
		{
			name:        "two of five in progress",
			status:      types.StatusInProgress,
			steps:       types.CompletionSteps{BasicInfo: true, Experience: true},
			wantPercent: 40,
		},
		{
			name:        "nothing done",
			status:      types.StatusDraft,
			wantPercent: 0,
		},
		{
			name:        "all done and completed",
			status:      types.StatusCompleted,
			steps:       types.CompletionSteps{BasicInfo: true, Experience: true, Skills: true, Languages: true, Assessment: true},
			wantPercent: 100,
			wantDone:    true,
		},
		{
			name:        "status drives isComplete, not steps",
			status:      types.StatusCompleted,
			steps:       types.CompletionSteps{Skills: true},
			wantPercent: 20,
			wantDone:    true,
		},
		{
			name:        "all steps but still in progress",
			status:      types.StatusInProgress,
			steps:       types.CompletionSteps{BasicInfo: true, Experience: true, Skills: true, Languages: true, Assessment: true},
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCompletion(&types.ViewProfile{Status: tt.status, CompletionSteps: tt.steps})
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.steps, got.CompletionSteps)
			assert.Equal(t, tt.wantPercent, got.CompletionPercentage)
			assert.Equal(t, tt.wantDone, got.IsComplete)
		})
	}
}

func TestComputeCompletion_NilProfile(t *testing.T) {
	got, err := ComputeCompletion(nil)

	assert.Nil(t, got)
	var notFound *types.ErrProfileNotFound
	assert.ErrorAs(t, err, &notFound)
}
