package types

import (
	"time"
)

// TokenRequest is the input for issuing a development bearer token.
type TokenRequest struct {
	UserID string `json:"userId" validate:"required"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Validate validates the TokenRequest with the shared profile validator.
func (r *TokenRequest) Validate() error {
	return profileValidator.Struct(r)
}
