package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/displayhub/internal/auth"
	"github.com/nerrad567/displayhub/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// errorMapping ties a domain sentinel to its HTTP response.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order, so specific sentinels come before
// the umbrella errors that wrap them.
var errorMappings = []errorMapping{
	// 400
	{auth.ErrCredentialsRequired, http.StatusBadRequest, ErrCodeValidation, "Email and password are required"},
	{auth.ErrInvalidEmail, http.StatusBadRequest, ErrCodeValidation, "Invalid email format"},
	{auth.ErrPasswordTooShort, http.StatusBadRequest, ErrCodeValidation, "Password must be at least 8 characters"},
	{auth.ErrRefreshTokenRequired, http.StatusBadRequest, ErrCodeValidation, "Refresh token is required"},
	{auth.ErrInvalidInput, http.StatusBadRequest, ErrCodeValidation, "Invalid input"},
	{auth.ErrSessionNotFound, http.StatusBadRequest, ErrCodeBadRequest, "Session not found or already revoked"},
	{device.ErrPairingCodeRequired, http.StatusBadRequest, ErrCodeValidation, "Pairing code is required"},
	{device.ErrInvalidName, http.StatusBadRequest, ErrCodeValidation, "Device name must be between 1 and 100 characters"},
	{device.ErrInvalidInput, http.StatusBadRequest, ErrCodeValidation, "Invalid input"},

	// 401
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid email or password"},
	{auth.ErrInvalidRefreshToken, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid refresh token"},
	{auth.ErrTokenInvalid, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid or expired access token"},
	{device.ErrInvalidDeviceSecret, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid device secret"},

	// 404
	{auth.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound, "User not found"},
	{device.ErrDeviceNotFound, http.StatusNotFound, ErrCodeNotFound, "Device not found"},

	// 409
	{auth.ErrEmailExists, http.StatusConflict, ErrCodeConflict, "Email exists"},
}

// classifyError maps a service error to status, code and client message.
// Anything unrecognised is an internal error.
func classifyError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
}

// writeServiceError writes the response for a failed service call.
// Internal errors are logged with the request ID; the client sees a
// generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, message := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
		)
	}
	writeError(w, status, code, message)
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
