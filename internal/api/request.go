package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/displayhub/internal/auth"
	"github.com/nerrad567/displayhub/internal/infrastructure/influxdb"
)

// decodeJSON reads the request body into v. An empty body leaves v at its
// zero value so the service can report which field is missing.
// It writes a 400 response and returns false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
		return false
	}
	writeBadRequest(w, "invalid JSON body")
	return false
}

// callerIdentity returns the identity stored by authMiddleware.
// It writes a 401 and returns false if the route was not protected.
func callerIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "Access token required")
	}
	return id, ok
}

// outcomeOf classifies a service result for telemetry.
func outcomeOf(err error) string {
	if err == nil {
		return influxdb.OutcomeSuccess
	}
	if status, _, _ := classifyError(err); status < http.StatusInternalServerError {
		return influxdb.OutcomeFailure
	}
	return influxdb.OutcomeError
}
