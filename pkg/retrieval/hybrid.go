package retrieval

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// defaultConcurrencyLimit bounds in-flight ingest+retrieve operations
// against the index when the caller does not configure one explicitly.
const defaultConcurrencyLimit = 8

// Hybrid is the production Retriever: dense vector similarity over a
// purpose-built in-process index, boosted by lexical keyword overlap. It
// stands in for a Qdrant-backed collection bootstrap (cosine distance,
// warmup-derived dimension) with an in-memory equivalent — see DESIGN.md
// for why no external vector store client is wired here.
type Hybrid struct {
	sem      *semaphore.Weighted
	embedder *embedder

	mu     sync.RWMutex
	points map[string][]Point // by session_id
}

// NewHybrid constructs a Hybrid index with the given concurrency bound. A
// non-positive limit falls back to the configured default (8).
func NewHybrid(concurrencyLimit int) *Hybrid {
	if concurrencyLimit <= 0 {
		concurrencyLimit = defaultConcurrencyLimit
	}
	return &Hybrid{
		sem:      semaphore.NewWeighted(int64(concurrencyLimit)),
		embedder: newEmbedder(int64(concurrencyLimit)),
		points:   make(map[string][]Point),
	}
}

// Ingest embeds and indexes each document, extracting up to 32 unique
// keyword tokens per document. Empty input is a no-op.
func (h *Hybrid) Ingest(ctx context.Context, sessionID string, docs []IngestDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	newPoints := make([]Point, 0, len(docs))
	for _, doc := range docs {
		vec, err := h.embedder.embed(ctx, doc.Text)
		if err != nil {
			return err
		}
		newPoints = append(newPoints, Point{
			ID:     doc.ID,
			Vector: vec,
			Payload: Payload{
				SessionID: sessionID,
				Text:      doc.Text,
				Source:    doc.Source,
				Keywords:  Tokenize(doc.Text),
			},
		})
	}

	h.mu.Lock()
	h.points[sessionID] = append(h.points[sessionID], newPoints...)
	h.mu.Unlock()
	return nil
}

type scoredPoint struct {
	point Point
	score float32
}

// Retrieve embeds query once, scores every point indexed for sessionID by
// dense cosine similarity plus the lexical boost, and returns the top
// limit results sorted by descending final score. An empty result set
// yields a single placeholder document.
func (h *Hybrid) Retrieve(ctx context.Context, sessionID, query string, limit int) ([]Document, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	queryVec, err := h.embedder.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	queryTokens := Tokenize(query)

	h.mu.RLock()
	points := append([]Point(nil), h.points[sessionID]...)
	h.mu.RUnlock()

	if len(points) == 0 {
		return []Document{placeholderDocument()}, nil
	}

	scored := make([]scoredPoint, 0, len(points))
	for _, p := range points {
		dense := cosineSimilarity(queryVec, p.Vector)
		boost := lexicalBoost(queryTokens, p.Payload.Keywords)
		scored = append(scored, scoredPoint{point: p, score: dense + boost})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if limit <= 0 || limit > len(scored) {
		limit = len(scored)
	}
	out := make([]Document, 0, limit)
	for _, sp := range scored[:limit] {
		out = append(out, Document{
			Text:   sp.point.Payload.Text,
			Score:  sp.score,
			Source: sp.point.Payload.Source,
		})
	}
	return out, nil
}
