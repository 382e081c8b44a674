package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/sandbox"
)

// NumericTool invokes the Sandbox Runner when math.request carries a
// non-blank script, and always leaves a full, self-consistent set of
// math.* keys behind so the analyst/finalizer can read a degraded result
// without special-casing "never ran".
type NumericTool struct {
	Executor sandbox.Executor
}

func (t *NumericTool) ID() string { return graph.TaskNumericTool }

func (t *NumericTool) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	var req MathRequest
	hasReq := rc.Get(KeyMathRequest, &req)

	if !hasReq || strings.TrimSpace(req.Script) == "" {
		t.writeSkipped(rc)
		if tc := rc.TraceCollector(); tc != nil {
			tc.Record(t.ID(), "numeric tool skipped: no script requested")
		}
		return graph.TaskResult{Message: "numeric tool skipped", NextAction: graph.ContinueAndExecute}, nil
	}

	sreq := sandbox.Request{
		ScriptName: req.ScriptName,
		Script:     req.Script,
		Args:       req.Args,
		TimeoutMs:  req.TimeoutMs,
	}
	for _, f := range req.Files {
		sreq.Files = append(sreq.Files, sandbox.FileInput{Path: f.Path, Bytes: f.Bytes})
	}
	for _, eo := range req.ExpectedOutputs {
		sreq.ExpectedOutputs = append(sreq.ExpectedOutputs, sandbox.ExpectedOutput{
			Path: eo.Path,
			Kind: sandbox.OutputKind(eo.Kind),
		})
	}

	result, err := t.Executor.Execute(ctx, sreq)
	if err != nil {
		// SandboxError is contained here: the analyst degrades gracefully
		// via math.degradation_note rather than the session failing.
		result = sandbox.Result{Status: sandbox.StatusFailure, Stderr: err.Error()}
	}
	t.writeResult(rc, result)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), fmt.Sprintf("numeric tool finished: %s", result.Status))
	}

	return graph.TaskResult{Message: "numeric tool complete", NextAction: graph.ContinueAndExecute}, nil
}

func (t *NumericTool) writeSkipped(rc *rcontext.Context) {
	_ = rc.Set(KeyMathStatus, string(sandbox.StatusSkipped))
	_ = rc.Set(KeyMathStdout, "")
	_ = rc.Set(KeyMathStderr, "")
	_ = rc.Set(KeyMathTimedOut, false)
	_ = rc.Set(KeyMathDurationMs, int64(0))
	_ = rc.Set(KeyMathOutputs, []MathOutput{})
	_ = rc.Set(KeyMathAlertRequired, false)
	_ = rc.Set(KeyMathRetry, false)
	_ = rc.Set(KeyMathDegradation, "")
}

func (t *NumericTool) writeResult(rc *rcontext.Context, result sandbox.Result) {
	_ = rc.Set(KeyMathResult, result)
	_ = rc.Set(KeyMathStatus, string(result.Status))
	_ = rc.Set(KeyMathStdout, result.Stdout)
	_ = rc.Set(KeyMathStderr, result.Stderr)
	if result.ExitCode != nil {
		_ = rc.Set(KeyMathExitCode, *result.ExitCode)
	}
	_ = rc.Set(KeyMathTimedOut, result.TimedOut)
	_ = rc.Set(KeyMathDurationMs, result.DurationMs)

	outputs := make([]MathOutput, 0, len(result.Outputs))
	for _, o := range result.Outputs {
		outputs = append(outputs, MathOutput{Path: o.Path, Kind: string(o.Kind), Bytes: o.Bytes})
	}
	_ = rc.Set(KeyMathOutputs, outputs)

	retryRecommended := result.Status == sandbox.StatusFailure || result.Status == sandbox.StatusTimeout
	_ = rc.Set(KeyMathRetry, retryRecommended)
	_ = rc.Set(KeyMathAlertRequired, result.Status != sandbox.StatusSuccess)

	note := ""
	switch result.Status {
	case sandbox.StatusTimeout:
		note = "numeric tool timed out; treat math result as unavailable"
	case sandbox.StatusFailure:
		note = "numeric tool failed; treat math result as unavailable"
	}
	_ = rc.Set(KeyMathDegradation, note)
}
