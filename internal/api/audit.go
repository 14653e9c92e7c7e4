package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/displayhub/internal/audit"
)

// record queues an audit entry. It never blocks or fails the request.
func (s *Server) record(entry audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(entry)
}

// handleActivity returns the caller's own audit trail, most recent first.
//
// Query parameters:
//   - action: filter by action (login, device_pair, ...)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if s.auditRepo == nil {
		writeInternalError(w, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		UserID: id.UserID,
		Action: q.Get("action"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, "list activity", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
