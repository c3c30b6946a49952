package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fcstore/internal/auth"
	"fcstore/internal/storage"
	"fcstore/internal/ui"

	"github.com/a-h/templ"
)

// UploadField is the multipart form field carrying the uploaded file.
const UploadField = "filedata"

// Server provides the fcstore HTTP API on top of a StorageEngine.
type Server struct {
	Config  Config
	Metrics *Metrics
}

// NewServer prepares the storage root and returns a new Server.
func NewServer(cfg Config) (*Server, error) {

	if cfg.Engine == nil {
		if cfg.DataDir == "" {
			return nil, errors.New("DataDir must not be empty")
		}

		engine, err := storage.NewLocalBucketStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("create bucket store: %w", err)
		}
		cfg.Engine = engine
	}

	if cfg.Authenticator == nil {
		cfg.Authenticator = auth.NewAuthEngine(cfg.Secret)
	}

	if cfg.Secret == "" {
		slog.Warn("No shared secret configured, authentication is disabled")
	}

	return &Server{Config: cfg, Metrics: NewMetrics()}, nil
}

// writeJSON encodes v as JSON and writes it to w with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeError writes a {status:"error", reason} JSON body.
func writeError(w http.ResponseWriter, status int, reason string) {
	_ = writeJSON(w, status, StatusResponse{Status: StatusError, Reason: reason})
}

// writeStorageError maps a bucket store error onto an HTTP status. Missing
// items are reported as 404 rather than a generic 500; every other filesystem
// failure is a 500.
func writeStorageError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storage.ErrMissingBucket), errors.Is(err, storage.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// prefersHTML reports whether the client asked for an HTML page, which is
// what browsers do when navigating.
func prefersHTML(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return true
		case "application/json":
			return false
		}
	}
	return false
}

// parseLimit reads the optional limit query parameter. Zero means no limit.
func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return limit, nil
}

func toItemSummaries(items []storage.ItemInfo) []ItemSummary {
	summaries := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, ItemSummary{
			Name:         item.Name,
			LastModified: item.LastModified,
		})
	}
	return summaries
}

// handleListBuckets implements GET /.
func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.Config.Engine.ListBuckets()
	s.Metrics.ObserveOperation("ListBuckets", err)
	if err != nil {
		slog.Error("Error reading buckets list", "err", err)
		writeStorageError(w, err)
		return
	}

	if prefersHTML(r) {
		s.renderPage(w, r, ui.BucketsPage(buckets))
		return
	}

	if err := writeJSON(w, http.StatusOK, buckets); err != nil {
		slog.Error("Encode bucket list", "err", err)
	}
}

// handleListBucketContents implements GET /{bucket}[?limit=N].
func (s *Server) handleListBucketContents(w http.ResponseWriter, r *http.Request, bucket string) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.Config.Engine.ListBucketContents(bucket, limit)
	s.Metrics.ObserveOperation("ListBucketContents", err)
	if err != nil {
		slog.Error("Error reading bucket", "bucket", bucket, "err", err)
		writeStorageError(w, err)
		return
	}

	if prefersHTML(r) {
		uiItems := make([]ui.Item, 0, len(items))
		for _, item := range items {
			uiItems = append(uiItems, ui.Item{
				Name:         item.Name,
				LastModified: time.UnixMilli(item.LastModified).UTC().Format(time.RFC3339),
			})
		}
		s.renderPage(w, r, ui.BucketPage(bucket, uiItems))
		return
	}

	if err := writeJSON(w, http.StatusOK, toItemSummaries(items)); err != nil {
		slog.Error("Encode bucket listing", "bucket", bucket, "err", err)
	}
}

// handleReadItem implements GET /{bucket}/{file}. The default response is
// JSON with base64 content; ?raw=1 streams the bytes instead. An item that
// cannot be read answers 404.
func (s *Server) handleReadItem(w http.ResponseWriter, r *http.Request, bucket string, name string) {
	item, err := s.Config.Engine.ReadItem(bucket, name)
	s.Metrics.ObserveOperation("ReadItem", err)
	if err != nil {
		slog.Error("Getting bucket file failed", "bucket", bucket, "file", name, "err", err)
		writeStorageError(w, err)
		return
	}

	if raw, _ := strconv.ParseBool(r.URL.Query().Get("raw")); raw {
		writeRawItem(w, item)
		return
	}

	resp := ItemContent{
		Name:         item.Name,
		LastModified: item.LastModified,
		Content:      item.Content,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		slog.Error("Encode item", "bucket", bucket, "file", name, "err", err)
	}
}

func writeRawItem(w http.ResponseWriter, item *storage.Item) {
	contentType := mime.TypeByExtension(filepath.Ext(item.Name))
	if contentType == "" {
		contentType = http.DetectContentType(item.Content)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(item.Content)))
	w.Header().Set("Last-Modified", time.UnixMilli(item.LastModified).UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(item.Content); err != nil {
		slog.Debug("Write raw item", "file", item.Name, "err", err)
	}
}

// handleUpload implements POST /{bucket}. The first part named UploadField is
// streamed straight into the bucket under its original file name. A body
// exceeding MaxUploadSize answers 413 and leaves the item truncated at the
// point the limit was hit.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, bucket string) {
	if s.Config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadSize)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "missing "+UploadField+" field")
			return
		}
		if err != nil {
			slog.Error("Upload failed", "bucket", bucket, "err", err)
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeStorageError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if part.FormName() != UploadField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		err = s.Config.Engine.WriteItem(bucket, name, part)
		_ = part.Close()
		s.Metrics.ObserveOperation("WriteItem", err)
		if err != nil {
			slog.Error("Upload failed", "bucket", bucket, "file", name, "err", err)
			writeStorageError(w, err)
			return
		}

		slog.Debug("Upload stored", "bucket", bucket, "file", name)
		break
	}

	if err := writeJSON(w, http.StatusOK, StatusResponse{Status: StatusSuccess}); err != nil {
		slog.Error("Encode upload response", "bucket", bucket, "err", err)
	}
}

// renderPage renders an HTML page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("Render page", "path", r.URL.Path, "err", err)
	}
}
