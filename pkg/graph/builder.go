package graph

// Builder accumulates nodes and edges before Build validates and freezes
// them into a Graph. Customizers receive a *Builder so they can insert
// extra nodes/edges before the default wiring is applied.
type Builder struct {
	nodes      map[string]Task
	edges      map[string]edge
	start      string
	duplicates []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]Task),
		edges: make(map[string]edge),
	}
}

// AddNode registers a task under its own ID. Calling AddNode twice with
// the same id is a Build-time error (ErrDuplicateNode), not a panic here,
// so customizers can be combined without ordering concerns.
func (b *Builder) AddNode(t Task) *Builder {
	if _, exists := b.nodes[t.ID()]; exists {
		b.duplicates = append(b.duplicates, t.ID())
	}
	b.nodes[t.ID()] = t
	return b
}

// SetStart declares the graph's single entry node.
func (b *Builder) SetStart(id string) *Builder {
	b.start = id
	return b
}

// AddEdge adds an unconditional edge from -> to.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges[from] = edge{kind: edgeUnconditional, to: to}
	return b
}

// AddConditionalEdge adds a conditional edge from "from": predicate(ctx)
// selects "then", otherwise "els".
func (b *Builder) AddConditionalEdge(from string, predicate Predicate, then, els string) *Builder {
	b.edges[from] = edge{kind: edgeConditional, predicate: predicate, then: then, els: els}
	return b
}

// Build validates the accumulated nodes/edges and returns an immutable
// Graph, rejecting a missing start task, duplicate node ids, or any edge
// referencing a node that was never added.
func (b *Builder) Build() (*Graph, error) {
	if len(b.duplicates) > 0 {
		return nil, &ValidationError{Err: ErrDuplicateNode, NodeID: b.duplicates[0]}
	}
	if b.start == "" {
		return nil, &ValidationError{Err: ErrMissingStartTask, NodeID: ""}
	}
	if _, ok := b.nodes[b.start]; !ok {
		return nil, &ValidationError{Err: ErrMissingStartTask, NodeID: b.start}
	}

	for from, e := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, &ValidationError{Err: ErrDanglingEdge, NodeID: from}
		}
		switch e.kind {
		case edgeUnconditional:
			if _, ok := b.nodes[e.to]; !ok {
				return nil, &ValidationError{Err: ErrDanglingEdge, NodeID: e.to}
			}
		case edgeConditional:
			if _, ok := b.nodes[e.then]; !ok {
				return nil, &ValidationError{Err: ErrDanglingEdge, NodeID: e.then}
			}
			if _, ok := b.nodes[e.els]; !ok {
				return nil, &ValidationError{Err: ErrDanglingEdge, NodeID: e.els}
			}
		}
	}

	g := &Graph{
		nodes: make(map[string]Task, len(b.nodes)),
		edges: make(map[string]edge, len(b.edges)),
		start: b.start,
	}
	for id, t := range b.nodes {
		g.nodes[id] = t
	}
	for from, e := range b.edges {
		g.edges[from] = e
	}
	return g, nil
}
