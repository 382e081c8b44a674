package retrieval

import (
	"context"
	"sync"
)

// Stub is the fallback in-memory Retriever used by tests and offline runs.
// Retrieve returns the first N inserts for the session with a flat score
// of 1.0, or a single placeholder document if nothing was ingested.
type Stub struct {
	mu   sync.Mutex
	docs map[string][]IngestDocument
}

// NewStub returns an empty Stub retriever.
func NewStub() *Stub {
	return &Stub{docs: make(map[string][]IngestDocument)}
}

// Ingest appends docs under sessionID. Empty input is a no-op.
func (s *Stub) Ingest(_ context.Context, sessionID string, docs []IngestDocument) error {
	if len(docs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[sessionID] = append(s.docs[sessionID], docs...)
	return nil
}

// Retrieve returns up to limit previously ingested documents for sessionID,
// in insertion order, each scored 1.0.
func (s *Stub) Retrieve(_ context.Context, sessionID, _ string, limit int) ([]Document, error) {
	s.mu.Lock()
	docs := s.docs[sessionID]
	s.mu.Unlock()

	if len(docs) == 0 {
		return []Document{placeholderDocument()}, nil
	}
	if limit <= 0 || limit > len(docs) {
		limit = len(docs)
	}
	out := make([]Document, 0, limit)
	for _, d := range docs[:limit] {
		out = append(out, Document{Text: d.Text, Score: 1.0, Source: d.Source})
	}
	return out, nil
}
