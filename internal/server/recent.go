package server

import (
	"net/http"
	"strconv"

	"github.com/askdocs/askdocs-go/internal/registry"
)

// defaultRecentLimit is the number of registry entries returned when the
// caller does not specify a limit.
const defaultRecentLimit = 50

// handleRecent handles GET /api/files/recent. An optional "limit" query
// parameter bounds the result count. Without a configured registry the
// endpoint returns an empty list rather than failing.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lister == nil {
		s.writeJSON(w, r, http.StatusOK, recentResponse{Files: []registry.Entry{}})
		return
	}

	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.deps.Lister.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []registry.Entry{}
	}

	s.writeJSON(w, r, http.StatusOK, recentResponse{Files: entries})
}
