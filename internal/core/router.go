package core

import (
	"net/http"
)

// Handler returns an http.Handler implementing the fcstore API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// List all buckets
	mux.HandleFunc("GET /{$}", s.handleListBuckets)

	// Uploads without a bucket are rejected by the store.
	mux.HandleFunc("POST /{$}", func(w http.ResponseWriter, r *http.Request) {
		s.handleUpload(w, r, "")
	})

	// Bucket-level operations
	mux.HandleFunc("GET /{bucket}", func(w http.ResponseWriter, r *http.Request) {
		bucket := r.PathValue("bucket")
		s.handleListBucketContents(w, r, bucket)
	})
	mux.HandleFunc("POST /{bucket}", func(w http.ResponseWriter, r *http.Request) {
		bucket := r.PathValue("bucket")
		s.handleUpload(w, r, bucket)
	})

	// Item-level operations
	mux.HandleFunc("GET /{bucket}/{file}", func(w http.ResponseWriter, r *http.Request) {
		bucket := r.PathValue("bucket")
		file := r.PathValue("file")
		s.handleReadItem(w, r, bucket, file)
	})

	// Add middleware
	handler := SlashFix(mux)
	handler = s.RequireAuthentication(handler)
	handler = s.LogRequest(handler)
	handler = s.CollectMetrics(handler)
	handler = RequestID(handler)
	handler = Recoverer(handler)
	return handler
}
