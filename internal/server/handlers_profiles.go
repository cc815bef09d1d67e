package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan/profile-bff/internal/server/middleware"
	"github.com/jonathan/profile-bff/internal/types"
)

// maxUpdateBody caps the size of a profile update payload.
const maxUpdateBody = 1 << 20

// caller returns the authenticated user id and the bearer token to forward.
func caller(r *http.Request) (userID, token string, err error) {
	userID, err = middleware.GetUserID(r)
	if err != nil {
		return "", "", &ErrUnauthenticated{Reason: err.Error()}
	}
	token, err = middleware.GetToken(r)
	if err != nil {
		return "", "", &ErrUnauthenticated{Reason: err.Error()}
	}
	return userID, token, nil
}

// pathUserID returns the {id} route parameter, or the caller's own id when absent.
func pathUserID(r *http.Request, own string) string {
	if id := strings.TrimSpace(chi.URLParam(r, "id")); id != "" {
		return id
	}
	return own
}

func (s *Server) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	s.serveProfile(w, r)
}

func (s *Server) handleGetProfileByID(w http.ResponseWriter, r *http.Request) {
	s.serveProfile(w, r)
}

func (s *Server) serveProfile(w http.ResponseWriter, r *http.Request) {
	own, token, err := caller(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	userID := pathUserID(r, own)

	view, err := s.profiles.GetProfile(r.Context(), userID, token)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.renderProfile(w, r, http.StatusOK, view)
}

func (s *Server) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r)
}

func (s *Server) handleUpdateProfileByID(w http.ResponseWriter, r *http.Request) {
	s.updateProfile(w, r)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	own, token, err := caller(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	userID := pathUserID(r, own)

	patch, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, r, &ErrBadRequest{Message: "request body too large"})
			return
		}
		s.errorResponse(w, r, &ErrBadRequest{Message: "failed to read request body"})
		return
	}
	if len(strings.TrimSpace(string(patch))) == 0 {
		s.errorResponse(w, r, &ErrBadRequest{Message: "request body is empty"})
		return
	}

	s.logger.Info("profile update requested",
		zap.String("request_id", requestID(r)),
		zap.String("caller", own),
		zap.String("caller_email", middleware.GetEmail(r)),
		zap.String("user_id", userID),
		zap.Int("bytes", len(patch)),
	)

	view, err := s.profiles.UpdateProfile(r.Context(), userID, patch, token)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.renderProfile(w, r, http.StatusOK, view)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	userID, token, err := caller(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	score, err := s.profiles.GetScore(r.Context(), userID, token)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, score)
}

func (s *Server) handleGetCompletionStatus(w http.ResponseWriter, r *http.Request) {
	userID, token, err := caller(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	status, err := s.profiles.GetCompletionStatus(r.Context(), userID, token)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

func (s *Server) handleGetDerivedCompletionStatus(w http.ResponseWriter, r *http.Request) {
	userID, token, err := caller(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	status, err := s.profiles.GetDerivedCompletionStatus(r.Context(), userID, token)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// handleGenerateTestToken issues a signed token for any user id. It is only
// routed outside production.
func (s *Server) handleGenerateTestToken(w http.ResponseWriter, r *http.Request) {
	req := types.TokenRequest{
		UserID: strings.TrimSpace(chi.URLParam(r, "userId")),
		Email:  strings.TrimSpace(r.URL.Query().Get("email")),
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, &ErrBadRequest{Message: err.Error()})
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(req.UserID, req.Email)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("issued development token", zap.String("user_id", req.UserID))
	s.jsonResponse(w, http.StatusOK, types.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// renderProfile writes view using the configured field naming.
func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, status int, view *types.ViewProfile) {
	body, err := s.mapper.Render(view)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.rawJSONResponse(w, status, body)
}
