package embeddings

import (
	"context"
	"fmt"
	"time"
)

// interBatchDelay is the pause between successive batch calls to stay
// under the embedding service's rate limits. Skipped after the last batch.
const interBatchDelay = 100 * time.Millisecond

// batchFunc calls the external embedding service for one group of texts.
type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// embedBatched partitions texts into groups of at most batchSize, calls
// the service once per group, and concatenates the results in input order.
// The first failed group fails the whole call (fail-fast, no partial
// results). An empty input returns an empty result without any call.
func embedBatched(ctx context.Context, texts []string, batchSize int, call batchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize < 1 {
		batchSize = 1
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		vecs, err := call(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("embedding service returned %d vectors, expected %d", len(vecs), len(batch))
		}
		all = append(all, vecs...)

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interBatchDelay):
			}
		}
	}

	return all, nil
}
