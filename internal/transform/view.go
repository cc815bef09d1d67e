package transform

import (
	"github.com/jonathan/profile-bff/internal/types"
)

// Default values applied when the external profile omits a block.
var (
	DefaultPerformance     = types.Performance{}
	DefaultCompletionSteps = types.CompletionSteps{}
	DefaultStatus          = types.StatusDraft
)

// defaultRule fills one field of the view when the external profile lacks it.
type defaultRule struct {
	field   string
	missing func(ext *types.ExternalProfile) bool
	apply   func(view *types.ViewProfile)
}

var defaultRules = []defaultRule{
	{
		field:   "performance",
		missing: func(ext *types.ExternalProfile) bool { return ext.Performance == nil },
		apply:   func(view *types.ViewProfile) { view.Performance = DefaultPerformance },
	},
	{
		field:   "completionSteps",
		missing: func(ext *types.ExternalProfile) bool { return ext.CompletionSteps == nil },
		apply:   func(view *types.ViewProfile) { view.CompletionSteps = DefaultCompletionSteps },
	},
	{
		field:   "status",
		missing: func(ext *types.ExternalProfile) bool { return ext.Status == "" },
		apply:   func(view *types.ViewProfile) { view.Status = DefaultStatus },
	},
	{
		field:   "skills.contactCenter",
		missing: func(ext *types.ExternalProfile) bool { return ext.Skills == nil || ext.Skills.ContactCenter == nil },
		apply:   func(view *types.ViewProfile) { view.Skills.ContactCenter = []types.ContactCenterSkill{} },
	},
}

// MissingFields lists the view fields that ToView would fill with defaults.
func MissingFields(ext *types.ExternalProfile) []string {
	if ext == nil {
		return nil
	}
	var fields []string
	for _, rule := range defaultRules {
		if rule.missing(ext) {
			fields = append(fields, rule.field)
		}
	}
	return fields
}

// ToView projects an external profile into the dashboard view. Fields present
// in ext are carried over unchanged; the four blocks the dashboard needs are
// defaulted when absent. ext is never modified. A nil ext yields nil.
func ToView(ext *types.ExternalProfile) *types.ViewProfile {
	if ext == nil {
		return nil
	}

	view := &types.ViewProfile{
		UserID:              ext.UserID,
		Status:              ext.Status,
		Availability:        ext.Availability,
		PersonalInfo:        ext.PersonalInfo,
		ProfessionalSummary: ext.ProfessionalSummary,
		Achievements:        ext.Achievements,
		Experience:          ext.Experience,
		LastUpdated:         ext.LastUpdated,
		CreatedAt:           ext.CreatedAt,
		UpdatedAt:           ext.UpdatedAt,
	}
	if ext.CompletionSteps != nil {
		view.CompletionSteps = *ext.CompletionSteps
	}
	if ext.Performance != nil {
		view.Performance = *ext.Performance
	}
	if ext.Skills != nil {
		view.Skills = types.ViewSkills{
			Technical:     ext.Skills.Technical,
			Professional:  ext.Skills.Professional,
			Soft:          ext.Skills.Soft,
			ContactCenter: ext.Skills.ContactCenter,
		}
	}

	for _, rule := range defaultRules {
		if rule.missing(ext) {
			rule.apply(view)
		}
	}
	return view
}
