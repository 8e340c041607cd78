// Package server exposes the upload queue, document store, and search
// over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/queue"
	"github.com/finsift/finsift/internal/rag"
	"github.com/finsift/finsift/internal/storage"
)

// defaultOwner is used when a request carries no X-Owner-ID header.
// The server is a single-user tool by default.
const defaultOwner = "local"

// maxUploadBytes caps multipart upload size (20 MB, matching the
// batch-ingest limit).
const maxUploadBytes = 20 << 20

// Config holds server configuration.
type Config struct {
	Port          int
	AllowAll      bool // allow all CORS origins (dev mode)
	SigningSecret string
}

// Searcher is the search surface the server exposes. *rag.Searcher
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, ownerID, query string, topK int) (*rag.SearchResponse, error)
}

// Server wires the HTTP surface over the queue, store, and searcher.
type Server struct {
	cfg        Config
	store      *document.Store
	uploads    *queue.UploadQueue
	searcher   Searcher
	blobs      storage.Storage
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all dependencies.
func New(cfg Config, store *document.Store, uploads *queue.UploadQueue, searcher Searcher, blobs storage.Storage) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		uploads:  uploads,
		searcher: searcher,
		blobs:    blobs,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Owner-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/queue", s.handleQueue)
		r.Delete("/queue/completed", s.handleClearCompleted)
		r.Post("/search", s.handleSearch)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{id}", s.handleGetDocument)
	})

	r.Get("/ws/queue", s.handleQueueSocket)
	r.Get("/files/*", s.handleFile)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("finsift server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ownerID resolves the requesting owner, defaulting to the local
// single-user identity.
func ownerID(r *http.Request) string {
	if owner := r.Header.Get("X-Owner-ID"); owner != "" {
		return owner
	}
	return defaultOwner
}
