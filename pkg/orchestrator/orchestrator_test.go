package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/deepresearch-go/deepresearch/pkg/storage"
	"github.com/deepresearch-go/deepresearch/pkg/tasks"
)

type noopExecutor struct{}

func (noopExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	return sandbox.Result{Status: sandbox.StatusSuccess}, nil
}

func newTestOrchestrator() *Orchestrator {
	stub := retrieval.NewStub()
	_ = stub.Ingest(context.Background(), "seeded", []retrieval.IngestDocument{
		{ID: "a", Text: "Lithium battery demand is projected to grow through 2024 and beyond.", Source: "market-report"},
		{ID: "b", Text: "Supply chain constraints remain a bottleneck for cell manufacturers.", Source: "industry-note"},
	})
	return &Orchestrator{
		Storage:   storage.NewMemory(),
		Retrieval: stub,
		Sandbox:   noopExecutor{},
		FactCheck: tasks.DefaultFactCheckSettings(),
	}
}

func TestOrchestrator_HappyPathCompletesWithVerdictPrefix(t *testing.T) {
	o := newTestOrchestrator()

	outcome, err := o.Run(context.Background(), RunOptions{
		Query:     "Assess lithium battery market drivers 2024",
		SessionID: "seeded",
	})
	require.NoError(t, err)
	require.Contains(t, outcome.Summary, "Analysis passes automated checks")
	require.False(t, outcome.RequiresManual)
}

func TestOrchestrator_ManualReviewBranch(t *testing.T) {
	o := newTestOrchestrator()
	o.FactCheck.MinConfidence = 0.95
	o.FactCheck.VerificationCount = 0

	outcome, err := o.Run(context.Background(), RunOptions{
		Query:     "Assess lithium battery market drivers 2024",
		SessionID: "seeded",
	})
	require.NoError(t, err)
	require.True(t, outcome.RequiresManual)
	require.Contains(t, outcome.Summary, "manual")
}

func TestOrchestrator_ResumeAcrossRestartReturnsSameSummary(t *testing.T) {
	mem := storage.NewMemory()
	o := &Orchestrator{
		Storage:   mem,
		Retrieval: retrieval.NewStub(),
		Sandbox:   noopExecutor{},
		FactCheck: tasks.DefaultFactCheckSettings(),
	}

	first, err := o.Run(context.Background(), RunOptions{Query: "q", SessionID: "s1"})
	require.NoError(t, err)

	resumed, err := o.Resume(context.Background(), ResumeOptions{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, first.Summary, resumed.Summary)
}

func TestOrchestrator_DeleteUnknownSessionFails(t *testing.T) {
	o := newTestOrchestrator()
	err := o.Delete(context.Background(), DeleteOptions{SessionID: "missing"})
	require.Error(t, err)
}
