// Package rcontext implements the typed, session-scoped key-value store
// shared by every task in a workflow run.
//
// Values are held internally as opaque serialized blobs (encoding/json).
// Get/GetSync never error on a missing key or a type mismatch — both are
// reported as "absent" so callers degrade gracefully instead of aborting
// the session (see the Context invariants in the research workflow spec).
package rcontext

import (
	"encoding/json"
	"sync"

	"github.com/deepresearch-go/deepresearch/pkg/trace"
)

// Context is a mapping from string keys to typed values, private to the
// session currently holding it. Tasks on a given session never run
// concurrently, so Context itself only needs to guard against callers that
// read it from a different goroutine (e.g. the façade's status snapshot).
//
// collector is carried outside the opaque value map: it is a live object
// tasks call Record on, not data that round-trips through JSON. It is never
// part of Snapshot/FromSnapshot — when a run or resume asks for tracing, the
// orchestrator reattaches that run's collector each time the session is
// reloaded from storage.
type Context struct {
	mu        sync.RWMutex
	values    map[string]json.RawMessage
	collector *trace.Collector
}

// New returns an empty Context.
func New() *Context {
	return &Context{values: make(map[string]json.RawMessage)}
}

// FromSnapshot rebuilds a Context from a previously captured snapshot. The
// snapshot map is copied so later mutation of either side is isolated.
func FromSnapshot(snapshot map[string]json.RawMessage) *Context {
	values := make(map[string]json.RawMessage, len(snapshot))
	for k, v := range snapshot {
		values[k] = append(json.RawMessage(nil), v...)
	}
	return &Context{values: values}
}

// Set serializes value and stores it under key. Set is the "async" entry
// point used by task bodies; in this runtime it never actually suspends,
// but it keeps the same call shape the predicate-only GetSync deliberately
// omits (no context.Context parameter needed since encoding/json does not
// block).
func (c *Context) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = raw
	c.mu.Unlock()
	return nil
}

// Get deserializes the value stored under key into out. It reports whether
// the key was present and decodable; a missing key or a type mismatch both
// yield false rather than an error.
func (c *Context) Get(key string, out any) bool {
	c.mu.RLock()
	raw, ok := c.values[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

// GetSync is the synchronous accessor conditional edge predicates must use.
// Behaviorally identical to Get; the distinct name documents that it is
// the only accessor safe to call from a predicate evaluated on the graph
// engine's hot path.
func (c *Context) GetSync(key string, out any) bool {
	return c.Get(key, out)
}

// Has reports whether key is present, independent of decodability.
func (c *Context) Has(key string) bool {
	c.mu.RLock()
	_, ok := c.values[key]
	c.mu.RUnlock()
	return ok
}

// Snapshot returns a deep copy of the current key/value set, suitable for
// persisting as a Session's context_snapshot.
func (c *Context) Snapshot() map[string]json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(c.values))
	for k, v := range c.values {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// GetString is a convenience typed accessor for the common string case.
func (c *Context) GetString(key string) (string, bool) {
	var s string
	if !c.Get(key, &s) {
		return "", false
	}
	return s, true
}

// GetBool is a convenience typed accessor for the common bool case.
func (c *Context) GetBool(key string) (bool, bool) {
	var b bool
	if !c.Get(key, &b) {
		return false, false
	}
	return b, true
}

// SetTraceCollector attaches the live trace collector for this session.
func (c *Context) SetTraceCollector(tc *trace.Collector) {
	c.mu.Lock()
	c.collector = tc
	c.mu.Unlock()
}

// TraceCollector returns the attached collector, or nil if none was set.
func (c *Context) TraceCollector() *trace.Collector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collector
}
