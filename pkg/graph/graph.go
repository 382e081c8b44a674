// Package graph implements the directed task graph that drives one
// session to completion: a fixed set of named task nodes connected by
// unconditional or context-predicated edges, executed via a persistent
// load -> run task -> persist -> decide edge -> repeat loop so a session
// can resume across process restarts.
package graph

import (
	"context"

	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

// NextAction is the disposition a Task reports after running once.
type NextAction int

const (
	// ContinueAndExecute advances to the next node via the outgoing edge.
	ContinueAndExecute NextAction = iota
	// WaitingForInput yields control back to the caller without failing.
	WaitingForInput
	// End marks the session completed; no further node runs.
	End
	// ErrorAction marks the session failed with TaskResult.ErrMessage.
	ErrorAction
)

// TaskResult is what a Task returns after one execution.
type TaskResult struct {
	Message    string
	NextAction NextAction
	ErrMessage string
}

// Task is one named workflow step. It consumes and produces a fixed slice
// of Context keys and must never block indefinitely without honoring ctx.
type Task interface {
	ID() string
	Run(ctx context.Context, rc *rcontext.Context) (TaskResult, error)
}

// Predicate is a synchronously-evaluable condition over Context, used by
// conditional edges. It must be pure and must use only Context.GetSync.
type Predicate func(rc *rcontext.Context) bool

type edgeKind int

const (
	edgeUnconditional edgeKind = iota
	edgeConditional
)

type edge struct {
	kind      edgeKind
	to        string // edgeUnconditional
	predicate Predicate
	then      string
	els       string
}

// Graph is a validated, immutable set of task nodes and edges.
type Graph struct {
	nodes map[string]Task
	edges map[string]edge
	start string
}

// Status is the terminal (or waiting) disposition of one Engine.Run call.
type Status string

const (
	StatusRunning         Status = "running"
	StatusWaitingForInput Status = "waiting_for_input"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// NodeIDs returns every node id in the graph, for diagnostics/tests.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// nextNodeID evaluates the outgoing edge of "from" and returns the next
// node id, or ("", false) if "from" has no outgoing edge. Build does not
// reject such dead ends; the Engine fails the session if a task without an
// outgoing edge returns ContinueAndExecute.
func (g *Graph) nextNodeID(from string, rc *rcontext.Context) (string, bool) {
	e, ok := g.edges[from]
	if !ok {
		return "", false
	}
	if e.kind == edgeUnconditional {
		return e.to, true
	}
	if e.predicate(rc) {
		return e.then, true
	}
	return e.els, true
}
