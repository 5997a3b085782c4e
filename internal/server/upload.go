package server

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/askdocs/askdocs-go/internal/ingestion"
)

// handleUpload handles POST /api/files/upload. The request is multipart form
// data with one or more "files" parts and an optional "index_name" field.
// The response is always 200 with one result per file — per-file failures are
// reported inline, never as a request-level error.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, r, http.StatusBadRequest, "files field is required")
		return
	}

	files := make([]ingestion.File, 0, len(headers))
	for _, h := range headers {
		data, err := readPart(h)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "reading "+h.Filename+": "+err.Error())
			return
		}
		files = append(files, ingestion.File{Name: h.Filename, Data: data})
	}

	indexName := r.FormValue("index_name")
	results := s.deps.Ingester.IngestFiles(r.Context(), indexName, files)

	for _, res := range results {
		s.metrics.ingestFilesTotal.WithLabelValues(res.Status).Inc()
		s.metrics.ingestChunksTotal.Add(float64(res.ChunksIndexed))
	}

	s.writeJSON(w, r, http.StatusOK, uploadResponse{Results: results})
}

// readPart reads one multipart file part fully into memory.
func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
