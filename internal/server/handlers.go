package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/queue"
	"github.com/finsift/finsift/internal/rag"
	"github.com/finsift/finsift/internal/storage"
	"github.com/finsift/finsift/internal/walker"
)

// timeNow is swappable for signature-expiry tests.
var timeNow = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleUpload accepts a multipart file plus application_id and
// enqueues it. The response carries the job id; processing is async.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds size limit")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = walker.DetectMime(header.Filename)
	}

	jobID, err := s.uploads.Enqueue(queue.FileUpload{
		OwnerID:  ownerID(r),
		Filename: header.Filename,
		MimeType: mimeType,
		Data:     data,
	}, r.FormValue("application_id"))
	switch {
	case errors.Is(err, queue.ErrNoFile), errors.Is(err, queue.ErrNoApplication):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

type queueResponse struct {
	Jobs       []queue.Job `json:"jobs"`
	Processing bool        `json:"processing"`
	Completed  int         `json:"completed"`
	Errors     int         `json:"errors"`
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	jobs := s.uploads.Jobs()
	if jobs == nil {
		jobs = []queue.Job{}
	}
	writeJSON(w, http.StatusOK, queueResponse{
		Jobs:       jobs,
		Processing: s.uploads.IsProcessing(),
		Completed:  s.uploads.CompletedCount(),
		Errors:     s.uploads.ErrorCount(),
	})
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	s.uploads.ClearCompleted()
	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.searcher.Search(r.Context(), ownerID(r), req.Query, req.TopK)
	switch {
	case errors.Is(err, rag.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("server: search: %v", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListByOwner(r.Context(), ownerID(r))
	if err != nil {
		log.Printf("server: listing documents: %v", err)
		writeError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}
	if docs == nil {
		docs = []document.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, document.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		log.Printf("server: loading document %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "loading document failed")
		return
	}
	// A document belonging to someone else is indistinguishable from a
	// missing one.
	if doc.OwnerID != ownerID(r) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	fields, err := s.store.FieldsByDocument(r.Context(), id)
	if err != nil {
		log.Printf("server: loading fields for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "loading fields failed")
		return
	}
	if fields == nil {
		fields = []document.ExtractedField{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc, "fields": fields})
}

// handleFile serves a stored object after verifying the signed-URL
// token minted by the storage layer.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	storedPath := chi.URLParam(r, "*")
	exp := r.URL.Query().Get("exp")
	sig := r.URL.Query().Get("sig")

	if !storage.Verify(s.cfg.SigningSecret, storedPath, exp, sig, timeNow()) {
		writeError(w, http.StatusForbidden, "invalid or expired signature")
		return
	}

	data, err := s.blobs.Get(r.Context(), storedPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}

	w.Header().Set("Content-Type", walker.DetectMime(storedPath))
	w.Write(data)
}
