// Package profile composes the profile API gateway, the view transform and
// the derived metrics into the operations the HTTP layer serves.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/profile-bff/internal/metrics"
	"github.com/jonathan/profile-bff/internal/schemas"
	"github.com/jonathan/profile-bff/internal/transform"
	"github.com/jonathan/profile-bff/internal/types"
)

// Gateway reads and writes profiles in the external profile API. Both methods
// return nil, nil when the API has no profile for userID.
type Gateway interface {
	GetProfile(ctx context.Context, userID, token string) (*types.ExternalProfile, error)
	UpdateProfile(ctx context.Context, userID string, update any, token string) (*types.ExternalProfile, error)
}

// Service provides the profile operations.
type Service struct {
	gateway Gateway
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a Service backed by gateway.
func NewService(gateway Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock sets the clock used to stamp lastUpdated.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetProfile returns the view of userID's profile.
func (s *Service) GetProfile(ctx context.Context, userID, token string) (*types.ViewProfile, error) {
	ext, err := s.gateway.GetProfile(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if ext == nil {
		return nil, &types.ErrProfileNotFound{UserID: userID}
	}
	if missing := transform.MissingFields(ext); len(missing) > 0 {
		s.logger.Debug("defaulted profile fields",
			zap.String("user_id", userID),
			zap.Strings("fields", missing),
		)
	}
	return transform.ToView(ext), nil
}

// UpdateProfile validates a nested partial update, flattens it into dot-path
// assignments stamped with lastUpdated, and returns the view of the stored
// profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch []byte, token string) (*types.ViewProfile, error) {
	flat, err := PrepareUpdate(patch, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("updating profile",
		zap.String("user_id", userID),
		zap.Int("fields", flat.Len()),
	)

	ext, err := s.gateway.UpdateProfile(ctx, userID, flat, token)
	if err != nil {
		return nil, err
	}
	if ext == nil {
		return nil, &types.ErrProfileNotFound{UserID: userID}
	}
	return transform.ToView(ext), nil
}

// GetScore returns the REPS score of userID's profile.
func (s *Service) GetScore(ctx context.Context, userID, token string) (*types.REPSScore, error) {
	view, err := s.GetProfile(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	return metrics.ComputeScore(view)
}

// GetCompletionStatus aggregates the completion steps stored on userID's profile.
func (s *Service) GetCompletionStatus(ctx context.Context, userID, token string) (*types.CompletionStatus, error) {
	view, err := s.GetProfile(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	return metrics.ComputeCompletion(view)
}

// GetDerivedCompletionStatus recomputes completion from the content of
// userID's profile, ignoring the stored steps.
func (s *Service) GetDerivedCompletionStatus(ctx context.Context, userID, token string) (*types.CompletionStatus, error) {
	view, err := s.GetProfile(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	return metrics.DeriveCompletion(view)
}

// PrepareUpdate validates patch and returns the dot-path assignments sent to
// the profile API, with lastUpdated set to now.
func PrepareUpdate(patch []byte, now time.Time) (*transform.FlatUpdate, error) {
	// Structural checks: object shape, known fields, enums
	if err := schemas.ValidateProfileUpdate(patch); err != nil {
		return nil, err
	}

	// Model checks: required fields, ranges, dates
	var decoded types.ExternalProfile
	if err := json.Unmarshal(patch, &decoded); err != nil {
		return nil, &types.ErrValidation{Message: fmt.Sprintf("invalid update payload: %v", err)}
	}
	if err := types.ValidateUpdate(&decoded); err != nil {
		return nil, err
	}

	update, err := transform.ParseUpdate(patch)
	if err != nil {
		return nil, &types.ErrValidation{Message: err.Error()}
	}
	flat := transform.FlattenForUpdate(update)

	stamp, err := json.Marshal(now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to encode lastUpdated: %w", err)
	}
	flat.Set("lastUpdated", stamp)
	return flat, nil
}
