package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

type record struct {
	currentTaskID string
	status        graph.Status
	snapshot      map[string]json.RawMessage
}

// Memory is a concurrent in-memory Storage. Save stores a deep copy of
// the session's serialized Context snapshot rather than the live pointer,
// so a later Get always returns an independently mutable Context.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]record
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]record)}
}

// Save upserts the session snapshot.
func (m *Memory) Save(_ context.Context, s *graph.Session) error {
	snap := s.Context.Snapshot()
	m.mu.Lock()
	m.sessions[s.ID] = record{
		currentTaskID: s.CurrentTaskID,
		status:        s.Status,
		snapshot:      snap,
	}
	m.mu.Unlock()
	return nil
}

// Get returns a freshly rebuilt Session for id.
func (m *Memory) Get(_ context.Context, id string) (*graph.Session, error) {
	m.mu.RLock()
	rec, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", rerrors.ErrNotFound, id)
	}
	return &graph.Session{
		ID:            id,
		CurrentTaskID: rec.currentTaskID,
		Status:        rec.status,
		Context:       rcontext.FromSnapshot(rec.snapshot),
	}, nil
}

// Delete removes id if present; deleting an absent id is a no-op.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
