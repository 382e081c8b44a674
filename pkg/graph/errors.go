package graph

import (
	"errors"
	"fmt"
)

// Sentinel validation errors the Builder reports at Build time, following
// this codebase's per-package sentinel-error convention.
var (
	ErrMissingStartTask = errors.New("graph: no start task declared")
	ErrDuplicateNode    = errors.New("graph: duplicate node id")
	ErrDanglingEdge     = errors.New("graph: edge references unknown node")
)

// ValidationError wraps a sentinel with the offending node/edge id.
type ValidationError struct {
	Err    error
	NodeID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.NodeID)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
