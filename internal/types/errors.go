package types

import "fmt"

// ErrProfileNotFound indicates the external API had no profile for the user.
type ErrProfileNotFound struct {
	UserID string
}

func (e *ErrProfileNotFound) Error() string {
	if e.UserID == "" {
		return "profile not found"
	}
	return fmt.Sprintf("profile not found: %s", e.UserID)
}

// ErrValidation indicates a malformed profile update.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}
