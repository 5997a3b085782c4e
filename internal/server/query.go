package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/askdocs/askdocs-go/internal/errs"
)

// Query outcomes for the requests_total metric.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// handleQuery handles POST /api/retrieve/query. Missing fields are 400s that
// name the field; pipeline failures are 500s carrying the upstream message.
// Unlike ingestion there is no partial success — any stage failure fails the
// whole request.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.queryRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.metrics.queryRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, r, http.StatusBadRequest, errs.NewValidation("query", "is required").Error())
		return
	}
	if strings.TrimSpace(req.IndexName) == "" {
		s.metrics.queryRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		s.writeError(w, r, http.StatusBadRequest, errs.NewValidation("index_name", "is required").Error())
		return
	}

	result, err := s.deps.Querier.Query(r.Context(), req.IndexName, req.Query)
	if err != nil {
		if errs.IsValidation(err) {
			s.metrics.queryRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.metrics.queryRequestsTotal.WithLabelValues(outcomeError).Inc()
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		s.metrics.queryRequestsTotal.WithLabelValues(outcomeError).Inc()
		s.writeError(w, r, http.StatusInternalServerError, "empty pipeline result")
		return
	}

	result.Hits = hitsOrEmpty(result.Hits)
	if result.SignedURLs == nil {
		result.SignedURLs = []string{}
	}

	s.metrics.queryRequestsTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.queryDurationSeconds.Observe(time.Since(start).Seconds())
	s.writeJSON(w, r, http.StatusOK, result)
}
