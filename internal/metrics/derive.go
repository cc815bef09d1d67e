package metrics

import (
	"strings"

	"github.com/jonathan/profile-bff/internal/types"
)

// DeriveSteps recomputes the completion steps from profile content.
func DeriveSteps(view *types.ViewProfile) types.CompletionSteps {
	var steps types.CompletionSteps
	if view == nil {
		return steps
	}

	var languages []types.Language
	if pi := view.PersonalInfo; pi != nil {
		steps.BasicInfo = strings.TrimSpace(pi.Name) != "" && strings.TrimSpace(pi.Email) != ""
		languages = pi.Languages
	}
	steps.Experience = len(view.Experience) > 0

	sk := view.Skills
	steps.Skills = len(sk.Technical)+len(sk.Professional)+len(sk.Soft)+len(sk.ContactCenter) > 0
	steps.Languages = len(languages) > 0

	for _, l := range languages {
		if l.AssessmentResults != nil {
			steps.Assessment = true
			break
		}
	}
	if !steps.Assessment {
		for _, s := range sk.ContactCenter {
			if s.AssessmentResults != nil {
				steps.Assessment = true
				break
			}
		}
	}
	return steps
}

// DeriveStatus picks the lifecycle state implied by a set of steps.
func DeriveStatus(steps types.CompletionSteps) types.ProfileStatus {
	all := steps.Steps()
	done := 0
	for _, s := range all {
		if s.Done {
			done++
		}
	}
	switch done {
	case 0:
		return types.StatusDraft
	case len(all):
		return types.StatusCompleted
	default:
		return types.StatusInProgress
	}
}

// DeriveCompletion recomputes the steps and status from profile content and
// aggregates them the same way ComputeCompletion does.
func DeriveCompletion(view *types.ViewProfile) (*types.CompletionStatus, error) {
	if view == nil {
		return nil, &types.ErrProfileNotFound{}
	}
	steps := DeriveSteps(view)
	return aggregate(DeriveStatus(steps), steps), nil
}
