// Package sandbox runs attacker-controlled numeric scripts inside a
// locked-down, network-denied container and harvests whatever artifacts
// the script produced, while guaranteeing the ephemeral workspace is
// always removed and tracking a process-wide consecutive-failure streak.
package sandbox

import "context"

// Status classifies the outcome of one sandbox execution.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusSuccess Status = "success"
	StatusTimeout Status = "timeout"
	StatusFailure Status = "failure"
)

// FileInput is one file materialized into the workspace before the script
// runs.
type FileInput struct {
	Path  string `json:"path"`
	Bytes []byte `json:"bytes"`
}

// OutputKind distinguishes how an expected output's bytes should be
// interpreted by the caller.
type OutputKind string

const (
	KindBinary OutputKind = "binary"
	KindText   OutputKind = "text"
)

// ExpectedOutput names a workspace-relative file the caller wants
// harvested after the script exits, if present.
type ExpectedOutput struct {
	Path string     `json:"path"`
	Kind OutputKind `json:"kind"`
}

// Request is one script execution request.
type Request struct {
	ScriptName      string           `json:"script_name,omitempty"`
	Script          string           `json:"script"`
	Args            []string         `json:"args,omitempty"`
	Files           []FileInput      `json:"files,omitempty"`
	ExpectedOutputs []ExpectedOutput `json:"expected_outputs,omitempty"`
	TimeoutMs       int64            `json:"timeout_ms,omitempty"`
}

// OutputArtifact is one harvested output file.
type OutputArtifact struct {
	Path  string     `json:"path"`
	Kind  OutputKind `json:"kind"`
	Bytes []byte     `json:"bytes"`
}

// Result is the outcome of one sandbox execution.
type Result struct {
	Status     Status           `json:"status"`
	ExitCode   *int             `json:"exit_code,omitempty"`
	TimedOut   bool             `json:"timed_out"`
	DurationMs int64            `json:"duration_ms"`
	Stdout     string           `json:"stdout"`
	Stderr     string           `json:"stderr"`
	Outputs    []OutputArtifact `json:"outputs"`
}

// Executor is the capability interface the numeric-tool task depends on.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// FailureStreakObserver is notified whenever the process-wide consecutive
// non-success streak reaches or passes the elevated threshold. It is an
// optional collaborator (e.g. a chat-ops notifier) wired at construction.
type FailureStreakObserver interface {
	ObserveFailureStreak(streak int64)
}

// elevatedStreakThreshold is the consecutive-failure count at which the
// runner surfaces degradation to operators (observable only, not a gate).
const elevatedStreakThreshold = 3
