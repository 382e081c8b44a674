package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// embedDim is the fixed dimensionality of the deterministic hashed n-gram
// vectors used in place of real ML inference (see Non-goals).
const embedDim = 64

// embedder computes deterministic hashed-trigram embeddings on a bounded
// worker pool so CPU-bound hashing never blocks the caller's goroutine
// scheduling, mirroring the bounded-concurrency style used elsewhere in
// this codebase for external-call fan-out.
type embedder struct {
	workers *semaphore.Weighted
}

func newEmbedder(maxWorkers int64) *embedder {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &embedder{workers: semaphore.NewWeighted(maxWorkers)}
}

// embed computes the embedding for text on the worker pool, respecting ctx
// cancellation while waiting for a worker slot; once a slot is held the
// (synchronous, CPU-bound) hashing runs to completion.
func (e *embedder) embed(ctx context.Context, text string) ([]float32, error) {
	g, ctx := errgroup.WithContext(ctx)
	var vec []float32
	g.Go(func() error {
		if err := e.workers.Acquire(ctx, 1); err != nil {
			return err
		}
		defer e.workers.Release(1)
		vec = hashEmbed(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vec, nil
}

// hashEmbed hashes each overlapping trigram of text (plus the shorter
// grams starting at the last two positions) into one of embedDim
// buckets and accumulates a signed count per bucket, then L2-normalizes
// the result so cosine similarity is well behaved.
func hashEmbed(text string) []float32 {
	vec := make([]float32, embedDim)
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return vec
	}
	runes := []rune(norm)
	n := len(runes)
	for i := 0; i < n; i++ {
		end := i + 3
		if end > n {
			end = n
		}
		gram := string(runes[i:end])
		h := fnv.New32a()
		_, _ = h.Write([]byte(gram))
		sum := h.Sum32()
		bucket := sum % embedDim
		if (sum>>31)&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return vec
	}
	norm64 := math.Sqrt(sumSq)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm64)
	}
	return vec
}

// cosineSimilarity assumes both vectors are already L2-normalized.
func cosineSimilarity(a, b []float32) float32 {
	var dot float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}
