// Package mcp exposes document search and queue status to AI agents
// over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/finsift/finsift/internal/queue"
	"github.com/finsift/finsift/internal/rag"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Searcher answers document queries for an owner.
type Searcher interface {
	Search(ctx context.Context, ownerID, query string, topK int) (*rag.SearchResponse, error)
}

// QueueStatus reports upload-queue state. *queue.UploadQueue satisfies it.
type QueueStatus interface {
	Jobs() []queue.Job
	IsProcessing() bool
	CompletedCount() int
	ErrorCount() int
}

// Server wraps an MCP server exposing the finsift tools.
type Server struct {
	searcher Searcher
	uploads  QueueStatus
	ownerID  string
	mcp      *server.MCPServer
}

// NewServer creates an MCP server bound to one owner's corpus. uploads
// may be nil when no queue is running (search-only mode).
func NewServer(searcher Searcher, uploads QueueStatus, ownerID string) *Server {
	s := &Server{
		searcher: searcher,
		uploads:  uploads,
		ownerID:  ownerID,
	}

	s.mcp = server.NewMCPServer(
		"finsift",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(queueStatusTool, s.handleQueueStatus)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
