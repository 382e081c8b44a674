// Package facade implements the Session Service Façade: the process-wide
// admission-controlled entry point that turns a query into a running
// session, tracks its lifecycle, and exposes status/outcome/stream/list
// views over it. It is the only component that talks to the Orchestrator
// directly on the request path — everything else (HTTP adapter, tests)
// goes through here.
package facade

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/google/uuid"

	"github.com/deepresearch-go/deepresearch/pkg/orchestrator"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

const context7Prefix = "use context7"

// State is the lifecycle stage of a tracked session.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// record is the Façade's private bookkeeping for one session; it never
// outlives the process.
type record struct {
	state          State
	summary        string
	errMsg         string
	traceAvailable bool
	tracePath      string
	requiresManual bool
}

// Request is what a caller hands the Façade to start a session.
type Request struct {
	Query       string
	SessionID   string // optional; minted if empty
	EnableTrace *bool  // nil defers to the Façade's default
}

// StartResult is returned synchronously from StartSession; the session
// itself keeps running in the background.
type StartResult struct {
	SessionID string
	State     State
}

// Status is the point-in-time view returned by Status().
type Status struct {
	SessionID      string
	State          State
	Summary        string
	Error          string
	TraceAvailable bool
	TracePath      string
	RequiresManual bool
}

// Metrics is the Façade's observable admission/activity snapshot.
type Metrics struct {
	MaxConcurrency  int64
	AvailablePermits int64
	RunningSessions int64
	TotalSessions   int64
	ActiveStreams   int64
}

// Service is one process-wide Façade instance.
type Service struct {
	orchestrator      *orchestrator.Orchestrator
	admission         *semaphore.Weighted
	maxConcurrency    int64
	namespace         string
	defaultEnableTrace bool

	mu       sync.RWMutex
	sessions map[string]*record
	streams  map[string]*broadcaster
}

// Config controls the Façade's admission and defaulting behavior.
type Config struct {
	MaxConcurrency     int64 // default 4 if <= 0
	Namespace          string
	DefaultEnableTrace bool
}

// New constructs a Façade bound to one Orchestrator.
func New(o *orchestrator.Orchestrator, cfg Config) *Service {
	n := cfg.MaxConcurrency
	if n <= 0 {
		n = 4
	}
	return &Service{
		orchestrator:       o,
		admission:          semaphore.NewWeighted(n),
		maxConcurrency:     n,
		namespace:          cfg.Namespace,
		defaultEnableTrace: cfg.DefaultEnableTrace,
		sessions:           make(map[string]*record),
		streams:            make(map[string]*broadcaster),
	}
}

// normalizeSessionID prefixes a caller-supplied id with "{namespace}::"
// unless it is already prefixed, or mints a namespaced UUID when the
// caller supplied none.
func (s *Service) normalizeSessionID(id string) string {
	if id == "" {
		id = uuid.NewString()
		if s.namespace != "" {
			return s.namespace + "::" + id
		}
		return id
	}
	if s.namespace != "" && !strings.HasPrefix(id, s.namespace+"::") {
		return s.namespace + "::" + id
	}
	return id
}

// ensureContext7Prefix guarantees the query carries a leading literal
// "use context7" token, case-insensitively, without double-prefixing an
// already-compliant query.
func ensureContext7Prefix(query string) string {
	trimmed := strings.TrimLeft(query, " \t\n\r")
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, context7Prefix):
		return query
	case trimmed == "":
		return context7Prefix
	default:
		return context7Prefix + " " + query
	}
}

// StartSession normalizes the request, registers a Running record and a
// broadcaster, and spawns the background worker that awaits an
// admission permit before driving the Orchestrator. It returns as soon
// as the session is registered — callers follow up with Status or
// EventStream to observe progress.
func (s *Service) StartSession(ctx context.Context, req Request) (StartResult, error) {
	sessionID, query, enableTrace, err := s.prepareSession(req)
	if err != nil {
		return StartResult{}, err
	}

	go s.runWorker(sessionID, query, enableTrace, false)

	return StartResult{SessionID: sessionID, State: StateRunning}, nil
}

// prepareSession validates the request, assigns the session its ID, and
// registers the Running record and broadcaster other calls observe
// before any worker touches the Orchestrator.
func (s *Service) prepareSession(req Request) (sessionID, query string, enableTrace bool, err error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", "", false, fmt.Errorf("%w: query must not be empty", rerrors.ErrInputValidation)
	}

	sessionID = s.normalizeSessionID(req.SessionID)
	query = ensureContext7Prefix(req.Query)
	enableTrace = s.defaultEnableTrace
	if req.EnableTrace != nil {
		enableTrace = *req.EnableTrace
	}

	b := newBroadcaster()
	s.mu.Lock()
	s.sessions[sessionID] = &record{state: StateRunning}
	s.streams[sessionID] = b
	s.mu.Unlock()
	b.publish(startedEvent())

	return sessionID, query, enableTrace, nil
}

// runWorker is the background session worker. When permitHeld is false
// it awaits an admission permit itself (unbounded wait — the caller
// already got an Accepted response); when true, the caller (e.g.
// TryStartSession) has already reserved the permit and runWorker only
// releases it. Either way the Orchestrator runs under exactly one held
// permit and runWorker records the terminal outcome.
func (s *Service) runWorker(sessionID, query string, enableTrace, permitHeld bool) {
	workCtx := context.Background()
	if !permitHeld {
		if err := s.admission.Acquire(workCtx, 1); err != nil {
			s.recordFailure(sessionID, err)
			return
		}
	}
	defer s.admission.Release(1)

	outcome, err := s.orchestrator.Run(workCtx, orchestrator.RunOptions{
		Query:        query,
		SessionID:    sessionID,
		TraceEnabled: enableTrace,
	})
	if err != nil {
		s.recordFailure(sessionID, err)
		return
	}
	s.recordSuccess(sessionID, outcome)
}

func (s *Service) recordSuccess(sessionID string, outcome orchestrator.SessionOutcome) {
	traceAvailable := outcome.TracePath != ""
	s.mu.Lock()
	s.sessions[sessionID] = &record{
		state:          StateCompleted,
		summary:        outcome.Summary,
		traceAvailable: traceAvailable,
		tracePath:      outcome.TracePath,
		requiresManual: outcome.RequiresManual,
	}
	b := s.streams[sessionID]
	delete(s.streams, sessionID)
	s.mu.Unlock()

	if b != nil {
		b.finish(completedEvent(outcome.Summary, traceAvailable, outcome.RequiresManual))
	}
}

func (s *Service) recordFailure(sessionID string, err error) {
	s.mu.Lock()
	s.sessions[sessionID] = &record{state: StateFailed, errMsg: err.Error()}
	b := s.streams[sessionID]
	delete(s.streams, sessionID)
	s.mu.Unlock()

	if b != nil {
		b.finish(errorEvent(err))
	}
}

// Status returns the current lifecycle view of a tracked session.
func (s *Service) Status(sessionID string) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[sessionID]
	if !ok {
		return Status{}, fmt.Errorf("%w: unknown session %q", rerrors.ErrNotFound, sessionID)
	}
	return Status{
		SessionID:      sessionID,
		State:          r.state,
		Summary:        r.summary,
		Error:          r.errMsg,
		TraceAvailable: r.traceAvailable,
		TracePath:      r.tracePath,
		RequiresManual: r.requiresManual,
	}, nil
}

// Outcome is an alias for Status used once a session is known terminal;
// kept distinct at the call site for readability even though the
// underlying view is identical.
func (s *Service) Outcome(sessionID string) (Status, error) {
	return s.Status(sessionID)
}

// EventStream subscribes to a session's broadcaster, or — for a session
// that has already finished — returns a single-item replay channel so a
// late subscriber never hangs.
func (s *Service) EventStream(sessionID string) (<-chan Event, error) {
	s.mu.RLock()
	b, ok := s.streams[sessionID]
	_, known := s.sessions[sessionID]
	s.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("%w: unknown session %q", rerrors.ErrNotFound, sessionID)
	}
	if !ok {
		// Terminal: rebuild the replay from the stored record.
		st, _ := s.Status(sessionID)
		ch := make(chan Event, 1)
		switch st.State {
		case StateCompleted:
			ch <- completedEvent(st.Summary, st.TraceAvailable, st.RequiresManual)
		case StateFailed:
			ch <- Event{Kind: EventError, Message: st.Error}
		}
		close(ch)
		return ch, nil
	}
	return b.subscribe(), nil
}

// ListSessions returns every tracked session's current status.
func (s *Service) ListSessions() []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Status, 0, len(s.sessions))
	for id, r := range s.sessions {
		out = append(out, Status{
			SessionID:      id,
			State:          r.state,
			Summary:        r.summary,
			Error:          r.errMsg,
			TraceAvailable: r.traceAvailable,
			TracePath:      r.tracePath,
			RequiresManual: r.requiresManual,
		})
	}
	return out
}

// Metrics reports the Façade's admission and activity snapshot.
func (s *Service) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var running int64
	var active int64
	for _, r := range s.sessions {
		if r.state == StateRunning {
			running++
		}
	}
	for _, b := range s.streams {
		active += int64(b.activeSubscribers())
	}

	return Metrics{
		MaxConcurrency:   s.maxConcurrency,
		AvailablePermits: s.maxConcurrency - running,
		RunningSessions:  running,
		TotalSessions:    int64(len(s.sessions)),
		ActiveStreams:    active,
	}
}

// TryStartSession is the synchronous-backpressure variant: it fails fast
// with AdmissionRejected if no permit is free right now, instead of
// queuing the worker behind an unbounded wait. The permit acquired here
// is held through registration and handed directly to the worker, so
// the check is atomic with the actual reservation — no window where a
// second caller can slip past TryAcquire before the first worker claims
// its permit.
func (s *Service) TryStartSession(ctx context.Context, req Request) (StartResult, error) {
	if !s.admission.TryAcquire(1) {
		return StartResult{}, fmt.Errorf("%w: no admission permit available", rerrors.ErrAdmissionRejected)
	}

	sessionID, query, enableTrace, err := s.prepareSession(req)
	if err != nil {
		s.admission.Release(1)
		return StartResult{}, err
	}

	go s.runWorker(sessionID, query, enableTrace, true)

	return StartResult{SessionID: sessionID, State: StateRunning}, nil
}
