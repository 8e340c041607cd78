package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/embeddings"
)

// ErrEmptyQuery is returned when the search query is blank.
var ErrEmptyQuery = errors.New("query is required")

// Diagnostic messages for the distinct empty-result states. The caller
// can tell "upload something" apart from "still processing" and from
// "no relevant match".
const (
	MsgNoDocuments  = "No documents uploaded yet. Upload a document to get started."
	MsgNoneComplete = "Your documents are still being processed. Try again in a moment."
	MsgNoIndex      = "No document text has been indexed yet."
	MsgNoMatch      = "No documents matched your query."
)

// ChunkSource provides the candidate chunks and corpus statistics for an
// owner. It is implemented by document.Store.
type ChunkSource interface {
	ChunksByOwner(ctx context.Context, ownerID string) ([]document.Chunk, error)
	CorpusStats(ctx context.Context, ownerID string) (document.Stats, error)
}

// Summarizer condenses the top excerpts into a short answer. Optional.
type Summarizer interface {
	Summarize(ctx context.Context, query string, excerpts []string) (string, error)
}

// SearchResponse is the outcome of one search request. When Results is
// empty, Message carries the diagnostic explaining why.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []DocumentMatch `json:"results"`
	Answer  string          `json:"answer,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Searcher answers natural-language queries over an owner's indexed
// document corpus.
type Searcher struct {
	embedder   embeddings.Embedder
	source     ChunkSource
	summarizer Summarizer
	threshold  float64
	topK       int
}

// NewSearcher creates a Searcher. summarizer may be nil to skip answer
// generation. Threshold and topK fall back to the package defaults when
// zero-valued.
func NewSearcher(embedder embeddings.Embedder, source ChunkSource, summarizer Summarizer, threshold float64, topK int) *Searcher {
	if threshold == 0 {
		threshold = DefaultScoreThreshold
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Searcher{
		embedder:   embedder,
		source:     source,
		summarizer: summarizer,
		threshold:  threshold,
		topK:       topK,
	}
}

// Search embeds the query, ranks the owner's chunks against it, and
// returns document-level results. Store or embedding failures surface as
// errors; an empty corpus or an empty match set is a normal response with
// a diagnostic message.
func (s *Searcher) Search(ctx context.Context, ownerID, query string, topK int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.topK
	}

	resp := &SearchResponse{Query: query}

	stats, err := s.source.CorpusStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading corpus stats: %w", err)
	}
	switch {
	case stats.TotalDocuments == 0:
		resp.Message = MsgNoDocuments
		return resp, nil
	case stats.CompletedDocuments == 0:
		resp.Message = MsgNoneComplete
		return resp, nil
	case stats.IndexedChunks == 0:
		resp.Message = MsgNoIndex
		return resp, nil
	}

	queryVec, err := embeddings.EmbedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := s.source.ChunksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading candidate chunks: %w", err)
	}

	resp.Results = Rank(queryVec, candidates, s.threshold, topK)
	if len(resp.Results) == 0 {
		resp.Message = MsgNoMatch
		return resp, nil
	}

	if s.summarizer != nil {
		answer, err := s.summarizer.Summarize(ctx, query, topExcerpts(resp.Results))
		if err == nil {
			resp.Answer = answer
		}
		// A failed summary never fails the search; results stand alone.
	}

	return resp, nil
}

// topExcerpts gathers the excerpts of the best-ranked documents, capped
// to keep the summary prompt bounded.
func topExcerpts(results []DocumentMatch) []string {
	const limit = 9
	var out []string
	for _, r := range results {
		for _, e := range r.Excerpts {
			if len(out) == limit {
				return out
			}
			out = append(out, e)
		}
	}
	return out
}
