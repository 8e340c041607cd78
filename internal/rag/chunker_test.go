package rag

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkByStructureEmptyInput(t *testing.T) {
	if got := ChunkByStructure("", 1000); got != nil {
		t.Errorf("empty input: expected nil, got %v", got)
	}
	if got := ChunkByStructure("   \n\n  \t ", 1000); got != nil {
		t.Errorf("whitespace input: expected nil, got %v", got)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if got := ChunkText("", 1000, 200); got != nil {
		t.Errorf("empty input: expected nil, got %v", got)
	}
	if got := ChunkText("   ", 1000, 200); got != nil {
		t.Errorf("whitespace input: expected nil, got %v", got)
	}
}

func TestChunkByStructureSingleParagraph(t *testing.T) {
	got := ChunkByStructure("Invoice #42 from Acme Corp.", 1000)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0].Index != 0 || got[0].Text != "Invoice #42 from Acme Corp." {
		t.Errorf("unexpected chunk: %+v", got[0])
	}
}

func TestChunkByStructurePacksParagraphs(t *testing.T) {
	paras := []string{
		strings.Repeat("a", 400),
		strings.Repeat("b", 400),
		strings.Repeat("c", 400),
	}
	text := strings.Join(paras, "\n\n")

	got := ChunkByStructure(text, 1000)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	// First two paragraphs fit together (400+400+2 <= 1000), the third starts a new chunk.
	if !strings.HasPrefix(got[0].Text, "aaa") || !strings.Contains(got[0].Text, "bbb") {
		t.Errorf("first chunk should contain both leading paragraphs")
	}
	if !strings.HasPrefix(got[1].Text, "ccc") {
		t.Errorf("second chunk should start with the third paragraph")
	}
}

func TestChunkByStructureSizeBound(t *testing.T) {
	var paras []string
	for i := 0; i < 10; i++ {
		paras = append(paras, strings.Repeat("x", 300)+".")
	}
	text := strings.Join(paras, "\n\n")

	for _, c := range ChunkByStructure(text, 700) {
		if len(c.Text) > 700 {
			t.Errorf("chunk %d exceeds budget: %d chars", c.Index, len(c.Text))
		}
	}
}

func TestChunkByStructureOversizedParagraph(t *testing.T) {
	// One paragraph well over the budget must be sub-split, never truncated.
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := b.String()

	got := ChunkByStructure(text, 500)
	if len(got) < 2 {
		t.Fatalf("expected oversized paragraph to be split, got %d chunks", len(got))
	}
	for _, c := range got {
		if len(c.Text) > 500 {
			t.Errorf("sub-chunk %d exceeds budget: %d chars", c.Index, len(c.Text))
		}
	}

	// No content may be lost: every sentence occurrence count is preserved
	// at least once across chunks (overlap can duplicate, never drop).
	joined := strings.Join(chunkTexts(got), " ")
	if !strings.Contains(joined, "quick brown fox") {
		t.Error("split output lost source content")
	}
}

func TestChunkIndicesContiguous(t *testing.T) {
	text := strings.Repeat("Paragraph one.\n\n", 50) + strings.Repeat("z", 3000)
	got := ChunkByStructure(text, 400)
	for i, c := range got {
		if c.Index != i {
			t.Fatalf("index %d at position %d: indices must be 0-based and contiguous", c.Index, i)
		}
	}
}

func TestChunkTextPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence is also present and keeps going for a while to fill the window."
	got := ChunkText(text, 40, 0)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	if got[0].Text != "First sentence ends here." {
		t.Errorf("expected cut after sentence terminator, got %q", got[0].Text)
	}
}

func TestChunkTextFallsBackToSpace(t *testing.T) {
	// No sentence terminators at all: the cut must land on a space, not
	// mid-word.
	words := strings.Repeat("alpha bravo charlie delta echo ", 20)
	got := ChunkText(words, 50, 0)
	for _, c := range got {
		if strings.Contains(c.Text, "alph ") || strings.HasSuffix(c.Text, "alph") {
			t.Errorf("chunk cut mid-word: %q", c.Text)
		}
	}
}

func TestChunkTextOverlapDuplicatesContext(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight nine ten. ", 10)
	got := ChunkText(text, 100, 40)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	// The tail of chunk N should reappear at the head of chunk N+1.
	tail := got[0].Text[len(got[0].Text)-10:]
	if !strings.Contains(got[1].Text, strings.TrimSpace(tail)) {
		t.Errorf("expected overlap to duplicate trailing context, tail %q not in %q", tail, got[1].Text)
	}
}

func TestChunkTextForwardProgressWithHugeOverlap(t *testing.T) {
	// overlap >= chunkSize must still terminate and never re-emit a window.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "w%03d ", i)
	}
	got := ChunkText(b.String(), 50, 500)
	if len(got) == 0 {
		t.Fatal("expected chunks")
	}
	seen := make(map[string]int)
	for _, c := range got {
		seen[c.Text]++
	}
	for txt, n := range seen {
		if n > 1 {
			t.Errorf("window re-emitted %d times: %q", n, txt)
		}
	}
	// Coverage: the last token must appear, proving the walk reached the end.
	if !strings.Contains(got[len(got)-1].Text, "w199") {
		t.Errorf("walk did not reach end of text: last chunk %q", got[len(got)-1].Text)
	}
}

func TestChunkReconstruction(t *testing.T) {
	// With zero overlap, concatenated chunks cover the source text in
	// order with no gaps (modulo trimmed whitespace).
	text := "Rent payment received. Thank you for your business.\n" +
		"Balance due is now zero. Please retain this receipt for your records."
	got := ChunkText(text, 30, 0)

	joined := strings.Join(chunkTexts(got), " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Errorf("reconstruction lost %q", word)
		}
	}

	// Order preserved: "Rent" appears before "zero".
	if strings.Index(joined, "Rent") > strings.Index(joined, "zero") {
		t.Error("reconstruction out of order")
	}
}

func TestEndToEndChunkCount(t *testing.T) {
	// 2500 characters of paragraph text at a 1000-char budget packs into 3 chunks.
	var paras []string
	for i := 0; i < 5; i++ {
		paras = append(paras, strings.Repeat("v", 480)+".")
	}
	text := strings.Join(paras, "\n\n") // 5 paragraphs, ~2500 chars total

	got := ChunkByStructure(text, 1000)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks for 2500 chars at budget 1000, got %d", len(got))
	}
	for _, c := range got {
		if len(c.Text) > 1000 {
			t.Errorf("chunk %d exceeds 1000 chars: %d", c.Index, len(c.Text))
		}
	}
}

func chunkTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
