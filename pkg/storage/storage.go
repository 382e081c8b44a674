// Package storage persists Session snapshots so a workflow can resume
// across process restarts. Two variants are provided: an in-memory
// concurrent map for tests and single-process deployments, and a
// relational variant backed directly by pgx against the single-table
// schema named in the external interface contract.
package storage

import (
	"context"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
)

// Storage is the persistence contract: save/get/delete over Session
// snapshots. It also satisfies graph.Store so an Engine can drive a
// session directly against either variant.
type Storage interface {
	Save(ctx context.Context, s *graph.Session) error
	Get(ctx context.Context, id string) (*graph.Session, error)
	Delete(ctx context.Context, id string) error
}

var _ graph.Store = Storage(nil)
