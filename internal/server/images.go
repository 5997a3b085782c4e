package server

import (
	"net/http"

	"github.com/askdocs/askdocs-go/internal/errs"
	"github.com/askdocs/askdocs-go/internal/ingestion"
)

// handleImageUpload handles POST /api/images/upload. The request is
// multipart form data with parallel "files" parts and "captions" fields plus
// an optional "index_name". Each image is stored and its caption indexed as
// a single vector. Like document upload, the response is always 200 with
// per-file results.
func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	captions := r.MultipartForm.Value["captions"]
	if len(headers) == 0 {
		s.writeError(w, r, http.StatusBadRequest, "files field is required")
		return
	}
	if len(captions) != len(headers) {
		s.writeError(w, r, http.StatusBadRequest, "captions must match files one-to-one")
		return
	}

	indexName := r.FormValue("index_name")
	results := make([]ingestion.FileResult, 0, len(headers))
	for i, h := range headers {
		data, err := readPart(h)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "reading "+h.Filename+": "+err.Error())
			return
		}
		res := s.deps.Ingester.IngestCaption(r.Context(), indexName, h.Filename, data, captions[i])
		s.metrics.ingestFilesTotal.WithLabelValues(res.Status).Inc()
		s.metrics.ingestChunksTotal.Add(float64(res.ChunksIndexed))
		results = append(results, res)
	}

	s.writeJSON(w, r, http.StatusOK, uploadResponse{Results: results})
}

// handleImageCaption handles POST /api/images/caption. The request is
// multipart form data with a single "image" part; the response carries the
// generated caption. Nothing is stored — callers pass the caption to
// /api/images/upload once they have reviewed it.
func (s *Server) handleImageCaption(w http.ResponseWriter, r *http.Request) {
	if s.deps.Captioner == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "captioning is not configured")
		return
	}

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["image"]
	if len(headers) != 1 {
		s.writeError(w, r, http.StatusBadRequest, "image field is required")
		return
	}

	data, err := readPart(headers[0])
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "reading "+headers[0].Filename+": "+err.Error())
		return
	}

	caption, err := s.deps.Captioner.Caption(r.Context(), data, headers[0].Filename)
	if err != nil {
		if errs.IsUnsupportedFormat(err) {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, r, http.StatusOK, captionResponse{
		Filename: headers[0].Filename,
		Caption:  caption,
	})
}
