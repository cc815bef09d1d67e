package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/profile-bff/internal/profileapi"
	"github.com/jonathan/profile-bff/internal/schemas"
	"github.com/jonathan/profile-bff/internal/types"
)

func TestErrUnauthenticated(t *testing.T) {
	assert.Equal(t, "authentication required", (&ErrUnauthenticated{}).Error())
	assert.Equal(t, "authentication required: no token", (&ErrUnauthenticated{Reason: "no token"}).Error())
}

func TestErrBadRequest(t *testing.T) {
	assert.Equal(t, "bad request: request body is empty", (&ErrBadRequest{Message: "request body is empty"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "unauthenticated", err: &ErrUnauthenticated{}, expected: http.StatusUnauthorized},
		{name: "profile not found", err: &types.ErrProfileNotFound{UserID: "u1"}, expected: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading: %w", &types.ErrProfileNotFound{}), expected: http.StatusNotFound},
		{name: "bad request", err: &ErrBadRequest{Message: "x"}, expected: http.StatusBadRequest},
		{name: "model validation", err: &types.ErrValidation{Field: "status", Message: "bad"}, expected: http.StatusBadRequest},
		{name: "schema validation", err: &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "status", Message: "bad"}}}, expected: http.StatusBadRequest},
		{name: "upstream server error", err: &profileapi.UpstreamError{Op: "get", StatusCode: 500}, expected: http.StatusBadGateway},
		{name: "upstream network error", err: &profileapi.UpstreamError{Op: "get", Cause: errors.New("refused")}, expected: http.StatusBadGateway},
		{name: "upstream unauthorized", err: &profileapi.UpstreamError{Op: "get", StatusCode: 401}, expected: http.StatusUnauthorized},
		{name: "upstream forbidden", err: &profileapi.UpstreamError{Op: "update", StatusCode: 403}, expected: http.StatusForbidden},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.3:443: connection refused")

	assert.Equal(t, "Internal server error", publicMessage(err, http.StatusInternalServerError))
	assert.Equal(t, "Profile service unavailable", publicMessage(err, http.StatusBadGateway))
	assert.Equal(t, "profile not found: u1", publicMessage(&types.ErrProfileNotFound{UserID: "u1"}, http.StatusNotFound))
}

func TestPublicMessage_HidesUpstreamBody(t *testing.T) {
	body := `{"internal":"db shard users-7 denied acl rule 42"}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       string
	}{
		{
			name:       "forbidden",
			err:        &profileapi.UpstreamError{Op: "get profile", StatusCode: http.StatusForbidden, Body: body},
			wantStatus: http.StatusForbidden,
			want:       "Not authorized by profile service",
		},
		{
			name:       "unauthorized wrapped",
			err:        fmt.Errorf("loading: %w", &profileapi.UpstreamError{Op: "get profile", StatusCode: http.StatusUnauthorized, Body: body}),
			wantStatus: http.StatusUnauthorized,
			want:       "Not authorized by profile service",
		},
		{
			name:       "server error",
			err:        &profileapi.UpstreamError{Op: "update profile", StatusCode: http.StatusInternalServerError, Body: body},
			wantStatus: http.StatusBadGateway,
			want:       "Profile service unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := HTTPStatus(tt.err)
			require.Equal(t, tt.wantStatus, status)

			msg := publicMessage(tt.err, status)
			assert.Equal(t, tt.want, msg)
			assert.NotContains(t, msg, "acl rule")
		})
	}
}
