// Package metrics derives summary figures from a view profile.
package metrics

import (
	"math"

	"github.com/jonathan/profile-bff/internal/types"
)

// ComputeScore returns the REPS score averaged over the contact center skills
// that carry assessment results. Effectiveness feeds both reliability and
// efficiency, professionalism feeds professionalism, and customer focus feeds
// service. With no assessed skills every field is 0. Values are rounded half
// up and not clamped.
func ComputeScore(view *types.ViewProfile) (*types.REPSScore, error) {
	if view == nil {
		return nil, &types.ErrProfileNotFound{}
	}

	var reliability, efficiency, professionalism, service float64
	assessed := 0
	for _, skill := range view.Skills.ContactCenter {
		if skill.AssessmentResults == nil {
			continue
		}
		km := skill.AssessmentResults.KeyMetrics
		reliability += km.Effectiveness
		efficiency += km.Effectiveness
		professionalism += km.Professionalism
		service += km.CustomerFocus
		assessed++
	}

	if assessed == 0 {
		return &types.REPSScore{}, nil
	}
	n := float64(assessed)
	return &types.REPSScore{
		Reliability:     roundHalfUp(reliability / n),
		Efficiency:      roundHalfUp(efficiency / n),
		Professionalism: roundHalfUp(professionalism / n),
		Service:         roundHalfUp(service / n),
	}, nil
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
