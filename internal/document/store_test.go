package document

import (
	"context"
	"errors"
	"testing"

	"github.com/finsift/finsift/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func testDoc(id string) *Document {
	return &Document{
		ID:            id,
		OwnerID:       "user-1",
		ApplicationID: "app-1",
		Filename:      "invoice.pdf",
		MimeType:      "application/pdf",
		FileSize:      1024,
		Status:        StatusPending,
	}
}

func TestUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("doc-1")
	if err := store.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Filename != "invoice.pdf" || got.Status != StatusPending {
		t.Errorf("unexpected document: %+v", got)
	}

	// Upsert again with new status replaces, not duplicates.
	doc.Status = StatusProcessing
	if err := store.Upsert(ctx, doc); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	got, err = store.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get after upsert failed: %v", err)
	}
	if got.Status != StatusProcessing {
		t.Errorf("expected status %q, got %q", StatusProcessing, got.Status)
	}

	docs, err := store.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteAndSetError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, testDoc("doc-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := store.Complete(ctx, "doc-1", "INVOICE", 0.93, "some invoice text"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	got, _ := store.Get(ctx, "doc-1")
	if got.Status != StatusCompleted || got.DocType != "INVOICE" || got.OCRText != "some invoice text" {
		t.Errorf("unexpected completed document: %+v", got)
	}

	if err := store.SetError(ctx, "doc-1", "ocr failed"); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}
	got, _ = store.Get(ctx, "doc-1")
	if got.Status != StatusError || got.ErrorMessage != "ocr failed" {
		t.Errorf("unexpected errored document: %+v", got)
	}

	if err := store.SetError(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestReplaceFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, testDoc("doc-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	total := "1250.00"
	fields := []ExtractedField{
		{Key: "total_amount", Value: &total, Confidence: 0.95},
		{Key: "vendor_name", Value: nil, Confidence: 0.4},
	}
	if err := store.ReplaceFields(ctx, "doc-1", fields); err != nil {
		t.Fatalf("ReplaceFields failed: %v", err)
	}

	got, err := store.FieldsByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("FieldsByDocument failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got))
	}
	// Sorted by key: total_amount, vendor_name.
	if got[0].Validation != ValidationValid {
		t.Errorf("confidence 0.95 should be valid, got %q", got[0].Validation)
	}
	if got[1].Validation != ValidationReview {
		t.Errorf("confidence 0.4 should be review, got %q", got[1].Validation)
	}
	if got[1].Value != nil {
		t.Errorf("expected nil value to round-trip, got %v", *got[1].Value)
	}

	// Replacing writes a fresh batch.
	if err := store.ReplaceFields(ctx, "doc-1", fields[:1]); err != nil {
		t.Fatalf("second ReplaceFields failed: %v", err)
	}
	got, _ = store.FieldsByDocument(ctx, "doc-1")
	if len(got) != 1 {
		t.Errorf("expected 1 field after replace, got %d", len(got))
	}
}

func TestValidationFor(t *testing.T) {
	if ValidationFor(0.81) != ValidationValid {
		t.Error("0.81 should be valid")
	}
	if ValidationFor(0.8) != ValidationReview {
		t.Error("exactly 0.8 should be review")
	}
	if ValidationFor(0.1) != ValidationReview {
		t.Error("0.1 should be review")
	}
}

func TestChunksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("doc-1")
	if err := store.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Complete(ctx, "doc-1", "INVOICE", 0.9, "text"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	chunks := []Chunk{
		{Index: 0, Text: "first part", Embedding: []float32{0.1, 0.2, 0.3}},
		{Index: 1, Text: "second part", Embedding: []float32{-0.4, 0.5, 0.6}},
	}
	if err := store.ReplaceChunks(ctx, "doc-1", chunks); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}

	got, err := store.ChunksByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ChunksByOwner failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("chunks out of order: %d, %d", got[0].Index, got[1].Index)
	}
	if got[1].Embedding[0] != float32(-0.4) {
		t.Errorf("embedding did not round-trip: %v", got[1].Embedding)
	}
}

func TestChunksByOwnerExcludesUnfinished(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Pending document's chunks must not be search candidates.
	if err := store.Upsert(ctx, testDoc("doc-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.ReplaceChunks(ctx, "doc-1", []Chunk{{Index: 0, Text: "x", Embedding: []float32{1}}}); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}

	got, err := store.ChunksByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ChunksByOwner failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates from pending document, got %d", len(got))
	}
}

func TestCorpusStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st, err := store.CorpusStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if st.TotalDocuments != 0 || st.CompletedDocuments != 0 || st.IndexedChunks != 0 {
		t.Errorf("expected empty stats, got %+v", st)
	}

	if err := store.Upsert(ctx, testDoc("doc-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	doc2 := testDoc("doc-2")
	if err := store.Upsert(ctx, doc2); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Complete(ctx, "doc-2", "PAY_STUB", 0.8, "stub"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := store.ReplaceChunks(ctx, "doc-2", []Chunk{{Index: 0, Text: "x", Embedding: []float32{1}}}); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}

	st, err = store.CorpusStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if st.TotalDocuments != 2 || st.CompletedDocuments != 1 || st.IndexedChunks != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestCorpusStatsIgnoresUnfinishedChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Chunks of a document that never completed are not search
	// candidates, so they must not count as indexed either.
	if err := store.Upsert(ctx, testDoc("doc-1")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.ReplaceChunks(ctx, "doc-1", []Chunk{{Index: 0, Text: "x", Embedding: []float32{1}}}); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}

	st, err := store.CorpusStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if st.IndexedChunks != 0 {
		t.Errorf("IndexedChunks = %d, want 0 before completion", st.IndexedChunks)
	}

	if err := store.Complete(ctx, "doc-1", "INVOICE", 0.9, "x"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	st, err = store.CorpusStats(ctx, "user-1")
	if err != nil {
		t.Fatalf("CorpusStats failed: %v", err)
	}
	if st.IndexedChunks != 1 {
		t.Errorf("IndexedChunks = %d, want 1 after completion", st.IndexedChunks)
	}
}
