package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/finsift/finsift/internal/rag"
)

// handleSearchDocuments runs a semantic search over the owner's corpus.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", rag.DefaultTopK)
	if limit <= 0 {
		limit = rag.DefaultTopK
	}

	resp, err := s.searcher.Search(ctx, s.ownerID, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(resp.Results) == 0 {
		msg := resp.Message
		if msg == "" {
			msg = rag.MsgNoMatch
		}
		return mcp.NewToolResultText(msg), nil
	}

	return mcp.NewToolResultText(formatSearchResponse(resp)), nil
}

// handleQueueStatus summarizes the upload queue.
func (s *Server) handleQueueStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.uploads == nil {
		return mcp.NewToolResultText("No upload queue is running."), nil
	}

	jobs := s.uploads.Jobs()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Queue: %d job(s), %d completed, %d failed",
		len(jobs), s.uploads.CompletedCount(), s.uploads.ErrorCount())
	if s.uploads.IsProcessing() {
		sb.WriteString(", one in flight")
	}
	sb.WriteString("\n")

	for _, j := range jobs {
		fmt.Fprintf(&sb, "\n%s (%s): %s, %d%%", j.Filename, j.ID, j.Status, j.Progress)
		if j.Error != "" {
			fmt.Fprintf(&sb, ": %s", j.Error)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResponse renders results as text for agent consumption.
func formatSearchResponse(resp *rag.SearchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matching document(s):\n", len(resp.Results))

	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "\n--- Document %d ---\n", i+1)
		fmt.Fprintf(&sb, "ID: %s\n", r.DocumentID)
		fmt.Fprintf(&sb, "Similarity: %.1f%%\n", r.MaxSimilarity*100)
		fmt.Fprintf(&sb, "Matching chunks: %d\n", r.MatchedChunks)
		for _, e := range r.Excerpts {
			sb.WriteString("\n")
			sb.WriteString(e)
			sb.WriteString("\n")
		}
	}

	if resp.Answer != "" {
		fmt.Fprintf(&sb, "\nAnswer: %s\n", resp.Answer)
	}
	return sb.String()
}
