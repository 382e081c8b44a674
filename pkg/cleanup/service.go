// Package cleanup provides the session log and audit log writer plus the
// background retention service that prunes them past their configured age.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/deepresearch-go/deepresearch/pkg/masking"
)

// defaultRetentionDays is the log retention period, in days, used when
// none is configured.
const defaultRetentionDays = 90

// CompletionInput is what the orchestrator reports after a session
// terminates, before redaction.
type CompletionInput struct {
	SessionID       string
	Query           string
	Summary         string
	Verdict         string
	RequiresManual  bool
	Sources         []string
	TracePath       string
}

type sessionLogRecord struct {
	Timestamp      string   `json:"timestamp"`
	SessionID      string   `json:"session_id"`
	Query          string   `json:"query,omitempty"`
	Summary        string   `json:"summary"`
	Verdict        string   `json:"verdict,omitempty"`
	RequiresManual bool     `json:"requires_manual"`
	Sources        []string `json:"sources,omitempty"`
	TracePath      string   `json:"trace_path,omitempty"`
	Redactions     []string `json:"redactions"`
}

type auditLogRecord struct {
	Timestamp  string   `json:"timestamp"`
	SessionID  string   `json:"session_id"`
	Redactions []string `json:"redactions"`
}

// Logger appends the per-session completion record and, when a redaction
// fired, the accompanying audit record, to logs/YYYY/MM/ under Dir.
type Logger struct {
	Dir string
}

// NewLogger returns a Logger rooted at dir (typically "logs").
func NewLogger(dir string) *Logger {
	return &Logger{Dir: dir}
}

// LogCompletion sanitizes every free-text field of in via the redaction
// pass, appends the canonical completion record to session.jsonl, and
// appends an audit record to audit.jsonl only if any redaction fired.
func (l *Logger) LogCompletion(in CompletionInput) error {
	now := time.Now().UTC()
	seen := make(map[string]struct{})

	query, fired := masking.Redact(in.Query)
	markFired(seen, fired)
	summary, fired := masking.Redact(in.Summary)
	markFired(seen, fired)
	verdict, fired := masking.Redact(in.Verdict)
	markFired(seen, fired)

	sources := make([]string, len(in.Sources))
	for i, s := range in.Sources {
		var f []string
		sources[i], f = masking.Redact(s)
		markFired(seen, f)
	}

	redactions := make([]string, 0, len(seen))
	for name := range seen {
		redactions = append(redactions, name)
	}

	record := sessionLogRecord{
		Timestamp:      now.Format(time.RFC3339),
		SessionID:      in.SessionID,
		Query:          query,
		Summary:        summary,
		Verdict:        verdict,
		RequiresManual: in.RequiresManual,
		Sources:        sources,
		TracePath:      in.TracePath,
		Redactions:     redactions,
	}

	monthDir := filepath.Join(l.Dir, now.Format("2006"), now.Format("01"))
	if err := appendJSONLine(filepath.Join(monthDir, "session.jsonl"), record); err != nil {
		return err
	}

	if len(redactions) > 0 {
		audit := auditLogRecord{Timestamp: record.Timestamp, SessionID: in.SessionID, Redactions: redactions}
		if err := appendJSONLine(filepath.Join(monthDir, "audit.jsonl"), audit); err != nil {
			return err
		}
		slog.Warn("redacted potential secrets from session log", "session_id", in.SessionID, "fields", redactions)
	}

	return nil
}

func markFired(seen map[string]struct{}, fired []string) {
	for _, f := range fired {
		seen[f] = struct{}{}
	}
}
