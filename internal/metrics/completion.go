package metrics

import (
	"github.com/jonathan/profile-bff/internal/types"
)

// ComputeCompletion aggregates the profile's completion steps. It does not
// recompute the steps from profile content; see DeriveCompletion for that.
func ComputeCompletion(view *types.ViewProfile) (*types.CompletionStatus, error) {
	if view == nil {
		return nil, &types.ErrProfileNotFound{}
	}
	return aggregate(view.Status, view.CompletionSteps), nil
}

func aggregate(status types.ProfileStatus, steps types.CompletionSteps) *types.CompletionStatus {
	all := steps.Steps()
	done := 0
	for _, s := range all {
		if s.Done {
			done++
		}
	}
	return &types.CompletionStatus{
		Status:               status,
		CompletionSteps:      steps,
		CompletionPercentage: roundHalfUp(100 * float64(done) / float64(len(all))),
		IsComplete:           status == types.StatusCompleted,
	}
}
