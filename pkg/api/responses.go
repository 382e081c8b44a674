package api

import "github.com/deepresearch-go/deepresearch/pkg/trace"

// createSessionResponse is returned by POST /sessions.
type createSessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Capacity  int64  `json:"capacity"`
	Message   string `json:"message,omitempty"`
}

// sessionStatusResponse is returned by GET /sessions/{id}.
type sessionStatusResponse struct {
	SessionID      string `json:"session_id"`
	State          string `json:"state"`
	Summary        string `json:"summary,omitempty"`
	Error          string `json:"error,omitempty"`
	TraceAvailable bool   `json:"trace_available"`
	RequiresManual bool   `json:"requires_manual"`
}

// listSessionsResponse is returned by GET /sessions.
type listSessionsResponse struct {
	Sessions []sessionStatusResponse `json:"sessions"`
	Capacity capacitySnapshot        `json:"capacity"`
}

type capacitySnapshot struct {
	MaxConcurrency   int64 `json:"max_concurrency"`
	AvailablePermits int64 `json:"available_permits"`
	RunningSessions  int64 `json:"running_sessions"`
	TotalSessions    int64 `json:"total_sessions"`
	ActiveStreams    int64 `json:"active_streams"`
}

// traceBundleResponse is returned by GET /sessions/{id}/trace.
type traceBundleResponse struct {
	SessionID  string                `json:"session_id"`
	Summary    string                `json:"summary,omitempty"`
	Events     []trace.Event         `json:"events"`
	Timeline   []trace.Step          `json:"timeline"`
	Aggregates []trace.TaskAggregate `json:"aggregates"`
	Markdown   string                `json:"markdown"`
	Mermaid    string                `json:"mermaid"`
	Graphviz   string                `json:"graphviz"`
}
