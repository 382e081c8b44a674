// Package orchestrator binds Session Storage, the Graph Engine, the Task
// Library, the Retrieval Layer, and the Sandbox Runner behind the five
// entry points a caller drives a research session through: run, resume,
// load, delete, ingest.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deepresearch-go/deepresearch/pkg/cleanup"
	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/masking"
	"github.com/deepresearch-go/deepresearch/pkg/pipeline"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
	"github.com/deepresearch-go/deepresearch/pkg/storage"
	"github.com/deepresearch-go/deepresearch/pkg/tasks"
	"github.com/deepresearch-go/deepresearch/pkg/trace"
)

// Orchestrator binds one set of collaborators; the Façade holds one
// instance per process and passes a shared storage handle through to
// every session it drives.
type Orchestrator struct {
	Storage      storage.Storage
	Retrieval    retrieval.Retriever
	Sandbox      sandbox.Executor
	FactCheck    tasks.FactCheckSettings
	TraceDir     string // empty disables trace persistence
	PipelineSink *pipeline.Sink
	SessionLog   *cleanup.Logger
}

// RunOptions seeds a brand new session.
type RunOptions struct {
	Query          string
	SessionID      string // minted if empty
	Customizer     graph.Customizer
	InitialContext map[string]any
	TraceEnabled   bool
}

// SessionOutcome is the terminal bundle reported back to callers.
type SessionOutcome struct {
	SessionID           string
	Summary             string
	TraceEvents         []trace.Event
	TracePath           string
	RequiresManual      bool
	FactCheckConfidence float32
	FactCheckPassed     bool
	CriticConfident     bool
}

func (o *Orchestrator) buildEngine(customizer graph.Customizer) (*graph.Engine, error) {
	taskList := []graph.Task{
		&tasks.Retriever{Retriever: o.Retrieval},
		&tasks.Analyst{},
		&tasks.NumericTool{Executor: o.Sandbox},
		&tasks.FactChecker{Settings: o.FactCheck},
		&tasks.Critic{},
		&tasks.Finalizer{},
		&tasks.ManualReview{},
	}
	g, err := graph.BuildDefault(taskList, customizer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rerrors.ErrGraphExecution, err)
	}
	return graph.NewEngine(g), nil
}

// Run seeds a fresh Session and drives it to completion.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (SessionOutcome, error) {
	if opts.Query == "" {
		return SessionOutcome{}, fmt.Errorf("%w: query must not be empty", rerrors.ErrInputValidation)
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	rc := rcontext.New()
	_ = rc.Set(tasks.KeyQuery, opts.Query)
	_ = rc.Set(tasks.KeySessionID, sessionID)
	_ = rc.Set(tasks.KeyTraceEnabled, opts.TraceEnabled)
	for k, v := range opts.InitialContext {
		_ = rc.Set(k, v)
	}

	var collector *trace.Collector
	if opts.TraceEnabled {
		collector = trace.NewCollector(true)
		rc.SetTraceCollector(collector)
	}

	engine, err := o.buildEngine(opts.Customizer)
	if err != nil {
		return SessionOutcome{}, err
	}

	sess := &graph.Session{
		ID:            sessionID,
		CurrentTaskID: graph.TaskRetriever,
		Status:        graph.StatusRunning,
		Context:       rc,
	}
	if err := o.Storage.Save(ctx, sess); err != nil {
		return SessionOutcome{}, fmt.Errorf("%w: seed session %q: %v", rerrors.ErrStorageError, sessionID, err)
	}

	return o.driveToCompletion(ctx, engine, sessionID, collector)
}

// driveToCompletion repeatedly invokes the Engine until a terminal status
// is observed. WaitingForInput retries immediately: no task in the
// default graph ever yields it, so this path only matters for a
// customizer-inserted task that genuinely needs external input before
// its next call.
func (o *Orchestrator) driveToCompletion(ctx context.Context, engine *graph.Engine, sessionID string, collector *trace.Collector) (SessionOutcome, error) {
	for {
		status, err := engine.Run(ctx, collectorStore{Storage: o.Storage, collector: collector}, sessionID)
		if err != nil {
			return SessionOutcome{}, err
		}
		switch status {
		case graph.StatusCompleted:
			return o.finish(ctx, sessionID, collector)
		case graph.StatusWaitingForInput:
			continue
		default:
			return SessionOutcome{}, fmt.Errorf("%w: session %q ended in unexpected status %q", rerrors.ErrGraphExecution, sessionID, status)
		}
	}
}

// collectorStore reattaches the run's trace collector to every Session the
// Engine reloads, since storage persists only the serializable Context
// values.
type collectorStore struct {
	storage.Storage
	collector *trace.Collector
}

func (s collectorStore) Get(ctx context.Context, id string) (*graph.Session, error) {
	sess, err := s.Storage.Get(ctx, id)
	if err == nil && s.collector != nil {
		sess.Context.SetTraceCollector(s.collector)
	}
	return sess, err
}

// finish loads the completed session, persists the trace if configured,
// writes the redacted session log entry, forwards to the Pipeline Sink,
// and returns the outcome.
func (o *Orchestrator) finish(ctx context.Context, sessionID string, collector *trace.Collector) (SessionOutcome, error) {
	sess, err := o.Storage.Get(ctx, sessionID)
	if err != nil {
		return SessionOutcome{}, fmt.Errorf("%w: load completed session %q: %v", rerrors.ErrStorageError, sessionID, err)
	}

	outcome := extractOutcome(sess)
	events := collector.Events()
	outcome.TraceEvents = events

	if o.TraceDir != "" && len(events) > 0 {
		path, err := trace.Persist(o.TraceDir, sessionID, events)
		if err != nil {
			// Trace persistence failure is not session-fatal.
			path = ""
		}
		outcome.TracePath = path
	}

	if o.SessionLog != nil {
		_ = o.SessionLog.LogCompletion(cleanup.CompletionInput{
			SessionID:      sessionID,
			Query:          mustGetString(sess.Context, tasks.KeyQuery),
			Summary:        outcome.Summary,
			Verdict:        mustGetString(sess.Context, tasks.KeyCritiqueVerdict),
			RequiresManual: outcome.RequiresManual,
			Sources:        mustGetStrings(sess.Context, tasks.KeyResearchSources),
			TracePath:      outcome.TracePath,
		})
	}

	if o.PipelineSink != nil {
		o.PipelineSink.Append(buildPipelineRecord(sess, outcome))
	}

	return outcome, nil
}

func extractOutcome(sess *graph.Session) SessionOutcome {
	summary, _ := sess.Context.GetString(tasks.KeyFinalSummary)
	requiresManual, _ := sess.Context.GetBool(tasks.KeyFinalRequireMan)
	confident, _ := sess.Context.GetBool(tasks.KeyCritiqueConfident)
	var confidence float32
	sess.Context.Get(tasks.KeyFactConfidence, &confidence)
	passed, _ := sess.Context.GetBool(tasks.KeyFactPassed)

	return SessionOutcome{
		SessionID:           sess.ID,
		Summary:             summary,
		RequiresManual:      requiresManual,
		CriticConfident:     confident,
		FactCheckConfidence: confidence,
		FactCheckPassed:     passed,
	}
}

func mustGetString(rc *rcontext.Context, key string) string {
	v, _ := rc.GetString(key)
	return v
}

func mustGetStrings(rc *rcontext.Context, key string) []string {
	var v []string
	rc.Get(key, &v)
	return v
}

func buildPipelineRecord(sess *graph.Session, outcome SessionOutcome) pipeline.SessionRecord {
	status, _ := sess.Context.GetString(tasks.KeyMathStatus)
	alertRequired, _ := sess.Context.GetBool(tasks.KeyMathAlertRequired)
	stdout, _ := sess.Context.GetString(tasks.KeyMathStdout)
	stderr, _ := sess.Context.GetString(tasks.KeyMathStderr)
	query, _ := sess.Context.GetString(tasks.KeyQuery)
	verdict, _ := sess.Context.GetString(tasks.KeyCritiqueVerdict)

	var mathOutputs []tasks.MathOutput
	sess.Context.Get(tasks.KeyMathOutputs, &mathOutputs)

	artifacts := make([]pipeline.MathArtifactRecord, 0, len(mathOutputs))
	for _, o := range mathOutputs {
		artifacts = append(artifacts, pipeline.MathArtifactRecord{Path: o.Path, Kind: o.Kind, BytesLen: len(o.Bytes)})
	}

	record := pipeline.SessionRecord{
		SessionID:            sess.ID,
		Timestamp:            time.Now().UTC(),
		Query:                query,
		Verdict:              verdict,
		RequiresManualReview: outcome.RequiresManual,
		MathStatus:           status,
		MathAlertRequired:    alertRequired,
		MathOutputs:          artifacts,
		MathStdout:           stdout,
		MathStderr:           stderr,
	}
	if outcome.TracePath != "" {
		p := outcome.TracePath
		record.TracePath = &p
	}
	return record
}
