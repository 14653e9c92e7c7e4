package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/displayhub/internal/audit"
	"github.com/nerrad567/displayhub/internal/auth"
)

// credentialsRequest is the body of POST /auth/register and POST /auth/login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshTokenRequest is the body of POST /auth/refresh and POST /auth/logout.
type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// messageResponse is returned by operations with no resource to show.
type messageResponse struct {
	Message string `json:"message"`
}

// registerResponse is returned by POST /auth/register.
type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// accessTokenResponse is returned by POST /auth/refresh.
type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// handleRegister creates a user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password)
	s.metrics.RecordAuthEvent(audit.ActionRegister, outcomeOf(err))
	if err != nil {
		s.writeServiceError(w, r, "register", err)
		return
	}

	s.record(audit.Entry{
		Action:     audit.ActionRegister,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusOK, registerResponse{
		Message: "User registered successfully",
		ID:      user.ID,
	})
}

// handleLogin exchanges credentials for an access and refresh token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	s.metrics.RecordAuthEvent(audit.ActionLogin, outcomeOf(err))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.record(audit.Entry{
				Action:     audit.ActionLoginFailed,
				EntityType: audit.EntityUser,
				Details:    map[string]any{"email": req.Email},
			})
		}
		s.writeServiceError(w, r, "login", err)
		return
	}

	s.record(audit.Entry{
		Action:     audit.ActionLogin,
		EntityType: audit.EntitySession,
		EntityID:   pair.SessionID,
		UserID:     pair.UserID,
	})

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh issues a new access token for an active refresh token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, id, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	s.metrics.RecordAuthEvent(audit.ActionRefresh, outcomeOf(err))
	if err != nil {
		s.writeServiceError(w, r, "refresh", err)
		return
	}

	s.record(audit.Entry{
		Action:     audit.ActionRefresh,
		EntityType: audit.EntitySession,
		UserID:     id.UserID,
	})

	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: token})
}

// handleLogout revokes a refresh token. Access tokens already issued stay
// valid until they expire.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.auth.Logout(r.Context(), req.RefreshToken)
	s.metrics.RecordAuthEvent(audit.ActionLogout, outcomeOf(err))
	if err != nil {
		s.writeServiceError(w, r, "logout", err)
		return
	}

	s.record(audit.Entry{
		Action:     audit.ActionLogout,
		EntityType: audit.EntitySession,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// handleMe returns the authenticated user's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	user, err := s.auth.Me(r.Context(), id.UserID)
	if err != nil {
		s.writeServiceError(w, r, "me", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
