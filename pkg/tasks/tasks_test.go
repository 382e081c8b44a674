package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContext(t *testing.T, query, sessionID string) *rcontext.Context {
	t.Helper()
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyQuery, query))
	require.NoError(t, rc.Set(KeySessionID, sessionID))
	return rc
}

func TestRetriever_WritesFindingsFromRetriever(t *testing.T) {
	stub := retrieval.NewStub()
	require.NoError(t, stub.Ingest(context.Background(), "s1", []retrieval.IngestDocument{
		{ID: "a", Text: "lithium battery demand is rising", Source: "a"},
	}))
	task := &Retriever{Retriever: stub}
	rc := seedContext(t, "lithium battery market", "s1")

	res, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	var findings []string
	rc.Get(KeyResearchFindings, &findings)
	assert.NotEmpty(t, findings)
	assert.Equal(t, "retrieval complete", res.Message)
}

type erroringRetriever struct{}

func (erroringRetriever) Ingest(ctx context.Context, sessionID string, docs []retrieval.IngestDocument) error {
	return nil
}

func (erroringRetriever) Retrieve(ctx context.Context, sessionID, query string, limit int) ([]retrieval.Document, error) {
	return nil, assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "retrieval backend unavailable" }

func TestRetriever_DemotesErrorToPlaceholder(t *testing.T) {
	task := &Retriever{Retriever: erroringRetriever{}}
	rc := seedContext(t, "q", "s1")

	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	var findings []string
	rc.Get(KeyResearchFindings, &findings)
	require.Len(t, findings, 1)
}

func TestAnalyst_EmptyFindingsFixedSummary(t *testing.T) {
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyResearchFindings, []string{}))
	require.NoError(t, rc.Set(KeyResearchSources, []string{}))

	task := &Analyst{}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	var out AnalysisOutput
	rc.Get(KeyAnalysisOutput, &out)
	assert.Equal(t, noFindingsSummary, out.Summary)
}

type fakeExecutor struct {
	result sandbox.Result
	err    error
}

func (f fakeExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	return f.result, f.err
}

func TestNumericTool_SkipsBlankScript(t *testing.T) {
	rc := rcontext.New()
	task := &NumericTool{Executor: fakeExecutor{}}

	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	status, _ := rc.GetString(KeyMathStatus)
	assert.Equal(t, string(sandbox.StatusSkipped), status)
	retry, _ := rc.GetBool(KeyMathRetry)
	assert.False(t, retry)
}

func TestNumericTool_TimeoutRecommendsRetry(t *testing.T) {
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyMathRequest, MathRequest{Script: "import time; time.sleep(10)"}))

	task := &NumericTool{Executor: fakeExecutor{result: sandbox.Result{Status: sandbox.StatusTimeout, TimedOut: true}}}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	status, _ := rc.GetString(KeyMathStatus)
	assert.Equal(t, string(sandbox.StatusTimeout), status)
	retry, _ := rc.GetBool(KeyMathRetry)
	assert.True(t, retry)
}

func TestFactChecker_ZeroVerificationFailsThreshold(t *testing.T) {
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyAnalysisOutput, AnalysisOutput{Sources: []string{"s1", "s2"}}))

	task := &FactChecker{
		Settings: FactCheckSettings{MinConfidence: 0.95, VerificationCount: 0, TimeoutMs: 5},
		Sleep:    func(time.Duration) {},
	}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	passed, _ := rc.GetBool(KeyFactPassed)
	assert.False(t, passed)
	var confidence float32
	rc.Get(KeyFactConfidence, &confidence)
	assert.InDelta(t, 0.5, confidence, 0.001)
}

func TestCritic_RequiresTwoSentencesAndSources(t *testing.T) {
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyAnalysisOutput, AnalysisOutput{Summary: "One sentence only", Sources: []string{"a"}}))
	require.NoError(t, rc.Set(KeyFactPassed, true))

	task := &Critic{}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	confident, _ := rc.GetBool(KeyCritiqueConfident)
	assert.False(t, confident)
}

func TestFinalizer_SummaryCarriesVerdictPrefix(t *testing.T) {
	rc := rcontext.New()
	require.NoError(t, rc.Set(KeyAnalysisOutput, AnalysisOutput{Summary: "s", Highlight: "h", Sources: []string{"a"}}))
	require.NoError(t, rc.Set(KeyFactConfidence, float32(0.9)))
	require.NoError(t, rc.Set(KeyFactVerified, []string{"a"}))

	task := &Finalizer{}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	summary, _ := rc.GetString(KeyFinalSummary)
	assert.Contains(t, summary, "Analysis passes automated checks")
	requiresManual, _ := rc.GetBool(KeyFinalRequireMan)
	assert.False(t, requiresManual)
}

func TestManualReview_FixedSummary(t *testing.T) {
	rc := rcontext.New()
	task := &ManualReview{}
	_, err := task.Run(context.Background(), rc)
	require.NoError(t, err)

	summary, _ := rc.GetString(KeyFinalSummary)
	assert.Contains(t, summary, "manual")
	requiresManual, _ := rc.GetBool(KeyFinalRequireMan)
	assert.True(t, requiresManual)
}
