package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/profile-bff/internal/profileapi"
	"github.com/jonathan/profile-bff/internal/schemas"
	"github.com/jonathan/profile-bff/internal/types"
)

// ErrUnauthenticated indicates the request carried no usable identity.
type ErrUnauthenticated struct {
	Reason string
}

func (e *ErrUnauthenticated) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return fmt.Sprintf("authentication required: %s", e.Reason)
}

// ErrBadRequest indicates a request the handlers could not read.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Upstream 401 and 403 responses are passed through; every other upstream
// failure is a 502.
func HTTPStatus(err error) int {
	var (
		unauthenticated *ErrUnauthenticated
		badRequest      *ErrBadRequest
		notFound        *types.ErrProfileNotFound
		modelErr        *types.ErrValidation
		schemaErr       *schemas.ValidationError
		upstream        *profileapi.UpstreamError
	)
	switch {
	case errors.As(err, &unauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest), errors.As(err, &modelErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		if upstream.StatusCode == http.StatusUnauthorized || upstream.StatusCode == http.StatusForbidden {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the message shown to clients for err. Internal failures
// are not described beyond their category.
// Upstream responses are never quoted, whatever their status.
func publicMessage(err error, status int) string {
	if profileapi.IsUpstream(err) {
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Not authorized by profile service"
		default:
			return "Profile service unavailable"
		}
	}
	switch status {
	case http.StatusInternalServerError:
		return "Internal server error"
	case http.StatusBadGateway:
		return "Profile service unavailable"
	default:
		return err.Error()
	}
}
