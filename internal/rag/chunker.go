// Package rag implements the retrieval pipeline: text chunking,
// similarity ranking, and the search service over indexed documents.
package rag

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the default character budget per chunk.
	DefaultChunkSize = 1000

	// DefaultOverlap is the default trailing context duplicated into the
	// next chunk in size-based mode.
	DefaultOverlap = 200

	// subSplitOverlap is the overlap used when an oversized paragraph is
	// sub-split inside structure mode.
	subSplitOverlap = 100

	// boundarySearchWindow is how far back from a window edge to look for
	// a sentence terminator before falling back to a space.
	boundarySearchWindow = 100
)

// Chunk is one bounded segment of a document's text. Indices are 0-based
// and contiguous over the chunker's output.
type Chunk struct {
	Text  string
	Index int
}

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// ChunkByStructure splits text on blank-line-delimited paragraphs and
// greedily packs them into chunks of at most maxChunkSize characters.
// A single paragraph longer than the budget is itself sub-split in
// size-based mode rather than truncated. Empty or whitespace-only input
// yields no chunks.
func ChunkByStructure(text string, maxChunkSize int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	var current string
	index := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, Chunk{Text: trimmed, Index: index})
			index++
		}
		current = ""
	}

	for _, paragraph := range paragraphSplit.Split(text, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}

		// Flush when appending this paragraph would exceed the budget.
		if current != "" && len(current)+len(trimmed)+2 > maxChunkSize {
			flush()
		}

		if len(trimmed) > maxChunkSize {
			flush()
			for _, sub := range ChunkText(trimmed, maxChunkSize, subSplitOverlap) {
				chunks = append(chunks, Chunk{Text: sub.Text, Index: index})
				index++
			}
			continue
		}

		if current == "" {
			current = trimmed
		} else {
			current += "\n\n" + trimmed
		}
	}
	flush()

	return chunks
}

// ChunkText splits text into windows of at most chunkSize characters,
// preferring to cut after a sentence terminator found within the last
// boundarySearchWindow characters of the window, then at the nearest
// preceding space. Each window after the first starts overlap characters
// before the previous cut to preserve cross-boundary context. The walk
// always advances, even when overlap >= chunkSize.
func ChunkText(text string, chunkSize, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + chunkSize
		last := false
		if end >= len(text) {
			end = len(text)
			last = true
		} else {
			end = cutPoint(text, start, end)
		}

		if segment := strings.TrimSpace(text[start:end]); segment != "" {
			chunks = append(chunks, Chunk{Text: segment, Index: index})
			index++
		}

		if last {
			break
		}

		next := end - overlap
		if next <= start {
			// Overlap would revisit the same window; advance past it.
			next = end
		}
		start = next
	}

	return chunks
}

// cutPoint finds the best boundary at or before end: a sentence
// terminator followed by whitespace within the search window, else the
// nearest preceding space, else the raw window edge.
func cutPoint(text string, start, end int) int {
	searchStart := end - boundarySearchWindow
	if searchStart < start {
		searchStart = start
	}

	for i := searchStart; i < end-1; i++ {
		if isSentenceEnd(text[i]) && isSpace(text[i+1]) {
			return i + 1
		}
	}

	if lastSpace := strings.LastIndexByte(text[:end], ' '); lastSpace > start {
		return lastSpace
	}
	return end
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
