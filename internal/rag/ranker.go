package rag

import (
	"math"
	"sort"

	"github.com/finsift/finsift/internal/document"
)

const (
	// DefaultScoreThreshold is the minimum cosine similarity a chunk must
	// exceed to count as a match.
	DefaultScoreThreshold = 0.3

	// DefaultTopK is the default result-set truncation.
	DefaultTopK = 20

	// maxExcerptsPerDocument caps how many matching chunks are kept as
	// representative excerpts per document.
	maxExcerptsPerDocument = 3
)

// DocumentMatch is the per-document aggregation of matching chunks.
type DocumentMatch struct {
	DocumentID    string   `json:"document_id"`
	MaxSimilarity float64  `json:"max_similarity"`
	Excerpts      []string `json:"excerpts"`
	MatchedChunks int      `json:"matched_chunks"`
}

// CosineSimilarity returns the cosine of the angle between a and b,
// computed over their common length. It returns 0 when either vector has
// zero norm, so it never divides by zero or produces NaN.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores candidate chunks against the query vector, keeps those with
// similarity strictly above threshold, groups them by owning document,
// and returns documents ordered by their best chunk score.
//
// Each document's relevance is its MaxSimilarity: one strong chunk match
// surfaces a document even when its remaining chunks are irrelevant.
// Ties keep candidate order (stable sort). The result is truncated to
// topK entries; topK <= 0 selects DefaultTopK.
func Rank(queryVec []float32, candidates []document.Chunk, threshold float64, topK int) []DocumentMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var order []string
	byDoc := make(map[string]*DocumentMatch)

	for _, c := range candidates {
		score := CosineSimilarity(queryVec, c.Embedding)
		if score <= threshold {
			continue
		}

		m, ok := byDoc[c.DocumentID]
		if !ok {
			m = &DocumentMatch{DocumentID: c.DocumentID}
			byDoc[c.DocumentID] = m
			order = append(order, c.DocumentID)
		}
		if score > m.MaxSimilarity {
			m.MaxSimilarity = score
		}
		if len(m.Excerpts) < maxExcerptsPerDocument {
			m.Excerpts = append(m.Excerpts, c.Text)
		}
		m.MatchedChunks++
	}

	results := make([]DocumentMatch, 0, len(order))
	for _, id := range order {
		results = append(results, *byDoc[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MaxSimilarity > results[j].MaxSimilarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
