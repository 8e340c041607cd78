package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/finsift/finsift/internal/document"
)

type fakeEmbedder struct {
	vec  []float32
	err  error
	dims int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Name() string    { return "fake" }

type fakeSource struct {
	stats     document.Stats
	chunks    []document.Chunk
	statsErr  error
	chunksErr error
}

func (f *fakeSource) ChunksByOwner(ctx context.Context, ownerID string) ([]document.Chunk, error) {
	return f.chunks, f.chunksErr
}

func (f *fakeSource) CorpusStats(ctx context.Context, ownerID string) (document.Stats, error) {
	return f.stats, f.statsErr
}

type fakeSummarizer struct {
	answer string
	err    error
	called bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, query string, excerpts []string) (string, error) {
	f.called = true
	return f.answer, f.err
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, &fakeSource{}, nil, 0, 0)
	if _, err := s.Search(context.Background(), "u1", "   ", 0); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearchDiagnosticMessages(t *testing.T) {
	tests := []struct {
		name  string
		stats document.Stats
		want  string
	}{
		{"no documents", document.Stats{}, MsgNoDocuments},
		{"none complete", document.Stats{TotalDocuments: 2}, MsgNoneComplete},
		{"no index", document.Stats{TotalDocuments: 2, CompletedDocuments: 1}, MsgNoIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSearcher(&fakeEmbedder{vec: queryAxis}, &fakeSource{stats: tt.stats}, nil, 0, 0)
			resp, err := s.Search(context.Background(), "u1", "rent", 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(resp.Results) != 0 {
				t.Errorf("expected no results, got %d", len(resp.Results))
			}
			if resp.Message != tt.want {
				t.Errorf("message = %q, want %q", resp.Message, tt.want)
			}
		})
	}
}

func TestSearchNoMatch(t *testing.T) {
	source := &fakeSource{
		stats:  document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
		chunks: []document.Chunk{axisChunk("A", 0, "unrelated", 0.1)},
	}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, nil, 0, 0)
	resp, err := s.Search(context.Background(), "u1", "rent", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != MsgNoMatch {
		t.Errorf("message = %q, want %q", resp.Message, MsgNoMatch)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	source := &fakeSource{
		stats: document.Stats{TotalDocuments: 2, CompletedDocuments: 2, IndexedChunks: 3},
		chunks: []document.Chunk{
			axisChunk("A", 0, "rent due on the first", 0.8),
			axisChunk("B", 0, "utility charges", 0.6),
			axisChunk("A", 1, "late fee policy", 0.1),
		},
	}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, nil, 0, 0)
	resp, err := s.Search(context.Background(), "u1", "when is rent due", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].DocumentID != "A" || resp.Results[1].DocumentID != "B" {
		t.Errorf("unexpected order: %s, %s", resp.Results[0].DocumentID, resp.Results[1].DocumentID)
	}
	if resp.Message != "" {
		t.Errorf("expected no diagnostic message, got %q", resp.Message)
	}
}

func TestSearchEmbedFailureSurfaces(t *testing.T) {
	source := &fakeSource{
		stats: document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
	}
	s := NewSearcher(&fakeEmbedder{err: errors.New("quota exceeded")}, source, nil, 0, 0)
	if _, err := s.Search(context.Background(), "u1", "rent", 0); err == nil {
		t.Error("expected embedding failure to surface as an error")
	}
}

func TestSearchStoreFailureSurfaces(t *testing.T) {
	source := &fakeSource{
		stats:     document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
		chunksErr: errors.New("disk i/o error"),
	}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, nil, 0, 0)
	if _, err := s.Search(context.Background(), "u1", "rent", 0); err == nil {
		t.Error("expected store failure to surface as an error")
	}

	source = &fakeSource{statsErr: errors.New("database locked")}
	s = NewSearcher(&fakeEmbedder{vec: queryAxis}, source, nil, 0, 0)
	if _, err := s.Search(context.Background(), "u1", "rent", 0); err == nil {
		t.Error("expected stats failure to surface as an error")
	}
}

func TestSearchSummarizerAnswer(t *testing.T) {
	source := &fakeSource{
		stats:  document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
		chunks: []document.Chunk{axisChunk("A", 0, "rent is $1200 monthly", 0.9)},
	}
	sum := &fakeSummarizer{answer: "Rent is $1200 per month."}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, sum, 0, 0)

	resp, err := s.Search(context.Background(), "u1", "how much is rent", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.called {
		t.Error("summarizer was not invoked")
	}
	if resp.Answer != "Rent is $1200 per month." {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestSearchSummarizerFailureTolerated(t *testing.T) {
	source := &fakeSource{
		stats:  document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
		chunks: []document.Chunk{axisChunk("A", 0, "rent is $1200 monthly", 0.9)},
	}
	sum := &fakeSummarizer{err: errors.New("model overloaded")}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, sum, 0, 0)

	resp, err := s.Search(context.Background(), "u1", "how much is rent", 0)
	if err != nil {
		t.Fatalf("summary failure must not fail the search: %v", err)
	}
	if resp.Answer != "" {
		t.Errorf("expected empty answer, got %q", resp.Answer)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results must survive summary failure, got %d", len(resp.Results))
	}
}

func TestSearchSummarizerSkippedWithoutMatches(t *testing.T) {
	source := &fakeSource{
		stats:  document.Stats{TotalDocuments: 1, CompletedDocuments: 1, IndexedChunks: 1},
		chunks: []document.Chunk{axisChunk("A", 0, "noise", 0.05)},
	}
	sum := &fakeSummarizer{answer: "should not appear"}
	s := NewSearcher(&fakeEmbedder{vec: queryAxis}, source, sum, 0, 0)

	resp, err := s.Search(context.Background(), "u1", "rent", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.called {
		t.Error("summarizer must not run when nothing matched")
	}
	if resp.Answer != "" {
		t.Errorf("expected no answer, got %q", resp.Answer)
	}
}

func TestTopExcerptsCapped(t *testing.T) {
	results := []DocumentMatch{
		{DocumentID: "A", Excerpts: []string{"1", "2", "3"}},
		{DocumentID: "B", Excerpts: []string{"4", "5", "6"}},
		{DocumentID: "C", Excerpts: []string{"7", "8", "9"}},
		{DocumentID: "D", Excerpts: []string{"10", "11"}},
	}
	got := topExcerpts(results)
	if len(got) != 9 {
		t.Fatalf("expected 9 excerpts, got %d", len(got))
	}
	if got[0] != "1" || got[8] != "9" {
		t.Errorf("excerpt order broken: %v", got)
	}
}
