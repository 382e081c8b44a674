package facade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-go/deepresearch/pkg/orchestrator"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/deepresearch-go/deepresearch/pkg/storage"
	"github.com/deepresearch-go/deepresearch/pkg/tasks"
)

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	return sandbox.Result{Status: sandbox.StatusSuccess}, nil
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	o := &orchestrator.Orchestrator{
		Storage:   storage.NewMemory(),
		Retrieval: retrieval.NewStub(),
		Sandbox:   noopExecutor{},
		FactCheck: tasks.DefaultFactCheckSettings(),
	}
	return New(o, cfg)
}

func waitTerminal(t *testing.T, s *Service, id string) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, err := s.Status(id)
		require.NoError(t, err)
		if st.State != StateRunning {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session %q never reached a terminal state", id)
	return Status{}
}

func TestEnsureContext7Prefix(t *testing.T) {
	assert.Equal(t, "use context7 summarize this", ensureContext7Prefix("summarize this"))
	assert.Equal(t, "Use Context7 summarize this", ensureContext7Prefix("Use Context7 summarize this"))
	assert.Equal(t, "use context7", ensureContext7Prefix(""))
	assert.Equal(t, "use context7", ensureContext7Prefix("   "))
}

func TestService_NormalizeSessionIDAppliesNamespace(t *testing.T) {
	s := newTestService(t, Config{Namespace: "team-a"})
	assert.Equal(t, "team-a::explicit", s.normalizeSessionID("explicit"))
	assert.Equal(t, "team-a::explicit", s.normalizeSessionID("team-a::explicit"))
}

func TestService_StartSessionRunsToCompletion(t *testing.T) {
	s := newTestService(t, Config{MaxConcurrency: 2})

	res, err := s.StartSession(context.Background(), Request{Query: "battery market outlook"})
	require.NoError(t, err)
	require.Equal(t, StateRunning, res.State)

	st := waitTerminal(t, s, res.SessionID)
	assert.Equal(t, StateCompleted, st.State)
	assert.Contains(t, st.Summary, "Analysis passes automated checks")
}

func TestService_StartSessionRejectsEmptyQuery(t *testing.T) {
	s := newTestService(t, Config{})
	_, err := s.StartSession(context.Background(), Request{Query: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrInputValidation))
}

func TestService_EventStreamReplaysTerminalEventForLateSubscriber(t *testing.T) {
	s := newTestService(t, Config{})
	res, err := s.StartSession(context.Background(), Request{Query: "battery market outlook"})
	require.NoError(t, err)
	waitTerminal(t, s, res.SessionID)

	ch, err := s.EventStream(res.SessionID)
	require.NoError(t, err)

	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, EventCompleted, ev.Kind)

	_, ok = <-ch
	assert.False(t, ok, "channel must close after the single replayed event")
}

func TestService_EventStreamUnknownSessionFails(t *testing.T) {
	s := newTestService(t, Config{})
	_, err := s.EventStream("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrNotFound))
}

func TestService_MetricsReflectAdmissionState(t *testing.T) {
	s := newTestService(t, Config{MaxConcurrency: 3})
	m := s.Metrics()
	assert.Equal(t, int64(3), m.MaxConcurrency)
	assert.Equal(t, int64(3), m.AvailablePermits)
	assert.Equal(t, int64(0), m.TotalSessions)

	res, err := s.StartSession(context.Background(), Request{Query: "battery market outlook"})
	require.NoError(t, err)
	waitTerminal(t, s, res.SessionID)

	m = s.Metrics()
	assert.Equal(t, int64(1), m.TotalSessions)
	assert.Equal(t, int64(0), m.RunningSessions)
}

func TestService_TryStartSessionRejectsWhenSaturated(t *testing.T) {
	s := newTestService(t, Config{MaxConcurrency: 1})
	require.True(t, s.admission.TryAcquire(1))
	defer s.admission.Release(1)

	_, err := s.TryStartSession(context.Background(), Request{Query: "battery market outlook"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerrors.ErrAdmissionRejected))
}

func TestService_ListSessionsIncludesTrackedSessions(t *testing.T) {
	s := newTestService(t, Config{})
	res, err := s.StartSession(context.Background(), Request{Query: "battery market outlook"})
	require.NoError(t, err)
	waitTerminal(t, s, res.SessionID)

	list := s.ListSessions()
	require.Len(t, list, 1)
	assert.Equal(t, res.SessionID, list[0].SessionID)
}
