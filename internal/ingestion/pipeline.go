// Package ingestion implements the per-file indexing pipeline: upload the
// original bytes to object storage, extract text, chunk, embed, and upsert
// into the vector index. One file's failure never aborts the batch — each
// file gets its own result and the caller reports them side by side.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/askdocs/askdocs-go/internal/chunker"
	"github.com/askdocs/askdocs-go/internal/errs"
	"github.com/askdocs/askdocs-go/internal/extractor"
	"github.com/askdocs/askdocs-go/internal/logging"
	"github.com/askdocs/askdocs-go/internal/rag"
)

// Per-file ingestion statuses.
const (
	// StatusIndexed means the file was uploaded, extracted, and its vectors upserted.
	StatusIndexed = "indexed"
	// StatusRejectedType means the extension is not ingestible; nothing was stored.
	StatusRejectedType = "rejected-type"
	// StatusError means ingestion started but failed partway.
	StatusError = "error"
)

// Source kinds stored in vector payloads.
const (
	SourceChunk   = "chunk"
	SourceCaption = "caption"
)

// DefaultIndexName is used when the caller does not name a knowledge base.
const DefaultIndexName = "general"

// documentExts is the set of extensions the document pipeline accepts.
var documentExts = map[string]bool{
	"pdf": true, "docx": true, "doc": true, "txt": true,
	"mp3": true, "wav": true, "m4a": true,
}

// imageExts is the set of extensions the caption pipeline accepts.
var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
}

// File is one uploaded file awaiting ingestion.
type File struct {
	// Name is the client-declared filename; its extension drives dispatch.
	Name string
	// Data is the raw file content.
	Data []byte
}

// FileResult is the per-file outcome reported back to the caller.
type FileResult struct {
	Filename      string `json:"filename"`
	Status        string `json:"status"`
	FileKey       string `json:"filekey,omitempty"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Error         string `json:"error,omitempty"`
}

// Uploader stores original file bytes under a key. objectstore.Client
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// Extractor turns file bytes into plain text. extractor.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Recorder persists one row per ingestion attempt. registry.Registry
// satisfies it. May be nil, in which case attempts are not recorded.
type Recorder interface {
	Record(ctx context.Context, indexName, filename, fileKey, sourceKind string, chunks int, status string) error
}

// Pipeline wires the ingestion stages together. It is safe for concurrent use.
type Pipeline struct {
	uploader  Uploader
	extractor Extractor
	chunker   *chunker.Chunker
	embedder  rag.Embedder
	index     rag.Index
	recorder  Recorder
	dim       int
}

// Config holds the dependencies for constructing a Pipeline.
type Config struct {
	// Uploader stores original files; required.
	Uploader Uploader
	// Extractor converts bytes to text; required.
	Extractor Extractor
	// Chunker windows extracted text; required.
	Chunker *chunker.Chunker
	// Embedder vectorises chunk text; required.
	Embedder rag.Embedder
	// Index receives the vectors; required.
	Index rag.Index
	// Recorder logs attempts to the document registry; optional.
	Recorder Recorder
	// Dimensions is the embedding size used when creating collections.
	Dimensions int
}

// New constructs a Pipeline from the given config.
func New(cfg *Config) (*Pipeline, error) {
	if cfg.Uploader == nil || cfg.Extractor == nil || cfg.Chunker == nil ||
		cfg.Embedder == nil || cfg.Index == nil {
		return nil, fmt.Errorf("ingestion: uploader, extractor, chunker, embedder and index are all required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("ingestion: dimensions must be positive, got %d", cfg.Dimensions)
	}
	return &Pipeline{
		uploader:  cfg.Uploader,
		extractor: cfg.Extractor,
		chunker:   cfg.Chunker,
		embedder:  cfg.Embedder,
		index:     cfg.Index,
		recorder:  cfg.Recorder,
		dim:       cfg.Dimensions,
	}, nil
}

// IngestFiles runs the document pipeline for each file in turn and returns
// one result per file, in input order. The collection is ensured lazily on
// the first accepted file, so a batch of rejected files never touches the
// remote index; an Ensure failure fails every accepted file.
func (p *Pipeline) IngestFiles(ctx context.Context, indexName string, files []File) []FileResult {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	ensured := false
	ensure := func() error {
		if ensured {
			return nil
		}
		if err := p.index.Ensure(ctx, indexName, p.dim); err != nil {
			return err
		}
		ensured = true
		return nil
	}

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, p.ingestOne(ctx, indexName, f, ensure))
	}
	return results
}

// ingestOne runs the full pipeline for a single file and maps any failure
// onto its result instead of returning an error. ensure creates the target
// collection on first use; it is only called after the extension gate.
func (p *Pipeline) ingestOne(ctx context.Context, indexName string, f File, ensure func() error) FileResult {
	log := logging.FromContext(ctx)

	if !documentExts[extractor.Ext(f.Name)] {
		p.record(ctx, indexName, f.Name, "", SourceChunk, 0, StatusRejectedType)
		return FileResult{
			Filename: f.Name,
			Status:   StatusRejectedType,
			Error:    errs.NewUnsupportedFormat(extractor.Ext(f.Name)).Error(),
		}
	}

	if err := ensure(); err != nil {
		return FileResult{
			Filename: f.Name,
			Status:   StatusError,
			Error:    err.Error(),
		}
	}

	fileKey := indexName + "/" + f.Name
	if err := p.uploader.Upload(ctx, fileKey, f.Data); err != nil {
		return p.failed(ctx, indexName, f.Name, fileKey, err)
	}

	text, err := p.extractor.Extract(ctx, f.Data, f.Name)
	if err != nil {
		return p.failed(ctx, indexName, f.Name, fileKey, err)
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		log.Warn("ingestion: file produced no indexable text",
			slog.String("filename", f.Name), slog.String("index", indexName))
	}

	vectors := make([]rag.Vector, 0, len(chunks))
	for _, c := range chunks {
		values, err := p.embedder.Embed(ctx, c.Text)
		if err != nil {
			return p.failed(ctx, indexName, f.Name, fileKey, err)
		}
		vectors = append(vectors, rag.Vector{
			ID:     rag.VectorID(rag.ChunkKey(f.Name, c.Index)),
			Values: values,
			Meta: rag.Metadata{
				Filename:   f.Name,
				FileKey:    fileKey,
				ChunkIndex: c.Index,
				Text:       c.Text,
				SourceKind: SourceChunk,
			},
		})
	}

	if len(vectors) > 0 {
		if err := p.index.Upsert(ctx, indexName, vectors); err != nil {
			return p.failed(ctx, indexName, f.Name, fileKey, err)
		}
	}

	log.Info("ingestion: file indexed",
		slog.String("filename", f.Name),
		slog.String("index", indexName),
		slog.Int("chunks", len(vectors)),
	)
	p.record(ctx, indexName, f.Name, fileKey, SourceChunk, len(vectors), StatusIndexed)
	return FileResult{
		Filename:      f.Name,
		Status:        StatusIndexed,
		FileKey:       fileKey,
		ChunksIndexed: len(vectors),
	}
}

// IngestCaption stores an image and indexes its caption as a single vector.
// The image bytes are uploaded as-is; only the caption text is embedded.
func (p *Pipeline) IngestCaption(ctx context.Context, indexName, filename string, data []byte, caption string) FileResult {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	if !imageExts[extractor.Ext(filename)] {
		p.record(ctx, indexName, filename, "", SourceCaption, 0, StatusRejectedType)
		return FileResult{
			Filename: filename,
			Status:   StatusRejectedType,
			Error:    errs.NewUnsupportedFormat(extractor.Ext(filename)).Error(),
		}
	}
	if strings.TrimSpace(caption) == "" {
		p.record(ctx, indexName, filename, "", SourceCaption, 0, StatusError)
		return FileResult{
			Filename: filename,
			Status:   StatusError,
			Error:    errs.NewValidation("caption", "must not be empty").Error(),
		}
	}

	if err := p.index.Ensure(ctx, indexName, p.dim); err != nil {
		return FileResult{Filename: filename, Status: StatusError, Error: err.Error()}
	}

	fileKey := indexName + "/" + filename
	if err := p.uploader.Upload(ctx, fileKey, data); err != nil {
		return p.failedCaption(ctx, indexName, filename, fileKey, err)
	}

	values, err := p.embedder.Embed(ctx, caption)
	if err != nil {
		return p.failedCaption(ctx, indexName, filename, fileKey, err)
	}

	vector := rag.Vector{
		ID:     rag.VectorID(rag.CaptionKey(filename)),
		Values: values,
		Meta: rag.Metadata{
			Filename:   filename,
			FileKey:    fileKey,
			ChunkIndex: 0,
			Text:       caption,
			SourceKind: SourceCaption,
		},
	}
	if err := p.index.Upsert(ctx, indexName, []rag.Vector{vector}); err != nil {
		return p.failedCaption(ctx, indexName, filename, fileKey, err)
	}

	logging.FromContext(ctx).Info("ingestion: image caption indexed",
		slog.String("filename", filename), slog.String("index", indexName))
	p.record(ctx, indexName, filename, fileKey, SourceCaption, 1, StatusIndexed)
	return FileResult{
		Filename:      filename,
		Status:        StatusIndexed,
		FileKey:       fileKey,
		ChunksIndexed: 1,
	}
}

// failed logs the failure, records the attempt, and shapes the error result.
func (p *Pipeline) failed(ctx context.Context, indexName, filename, fileKey string, err error) FileResult {
	logging.FromContext(ctx).Error("ingestion: file failed",
		slog.String("filename", filename),
		slog.String("index", indexName),
		slog.Any("error", err),
	)
	p.record(ctx, indexName, filename, fileKey, SourceChunk, 0, StatusError)
	return FileResult{
		Filename: filename,
		Status:   StatusError,
		FileKey:  fileKey,
		Error:    err.Error(),
	}
}

// failedCaption is the caption-path counterpart of failed.
func (p *Pipeline) failedCaption(ctx context.Context, indexName, filename, fileKey string, err error) FileResult {
	logging.FromContext(ctx).Error("ingestion: image failed",
		slog.String("filename", filename),
		slog.String("index", indexName),
		slog.Any("error", err),
	)
	p.record(ctx, indexName, filename, fileKey, SourceCaption, 0, StatusError)
	return FileResult{
		Filename: filename,
		Status:   StatusError,
		FileKey:  fileKey,
		Error:    err.Error(),
	}
}

// record persists the attempt when a recorder is configured. Registry
// failures are logged, never propagated — bookkeeping must not fail ingestion.
func (p *Pipeline) record(ctx context.Context, indexName, filename, fileKey, sourceKind string, chunks int, status string) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, indexName, filename, fileKey, sourceKind, chunks, status); err != nil {
		logging.FromContext(ctx).Warn("ingestion: registry record failed",
			slog.String("filename", filename), slog.Any("error", err))
	}
}
