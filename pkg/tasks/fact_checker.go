package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

// FactCheckSettings configures the fact-checker task; defaults per the
// configuration surface (0.75 / 3 / 20000ms).
type FactCheckSettings struct {
	MinConfidence     float32
	VerificationCount int
	TimeoutMs         int64
}

// DefaultFactCheckSettings returns the documented defaults.
func DefaultFactCheckSettings() FactCheckSettings {
	return FactCheckSettings{MinConfidence: 0.75, VerificationCount: 3, TimeoutMs: 20000}
}

const factCheckMaxWaitMs = 500

// FactChecker verifies up to VerificationCount sources and derives a
// confidence score. The wait before verifying mimics latency but is
// capped at factCheckMaxWaitMs regardless of the configured timeout.
type FactChecker struct {
	Settings FactCheckSettings
	Sleep    func(d time.Duration) // overridable for tests; defaults to time.Sleep
}

func (t *FactChecker) ID() string { return graph.TaskFactChecker }

func (t *FactChecker) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	var out AnalysisOutput
	rc.Get(KeyAnalysisOutput, &out)

	wait := t.Settings.TimeoutMs
	if wait > factCheckMaxWaitMs {
		wait = factCheckMaxWaitMs
	}
	if wait > 0 {
		sleep := t.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(time.Duration(wait) * time.Millisecond)
	}

	verified := t.Settings.VerificationCount
	if verified > len(out.Sources) {
		verified = len(out.Sources)
	}
	if verified < 0 {
		verified = 0
	}
	verifiedSources := append([]string(nil), out.Sources[:verified]...)

	var coverage float32
	if len(out.Sources) > 0 {
		coverage = float32(verified) / float32(len(out.Sources))
	}
	confidence := float32(0.5) + float32(0.5)*coverage
	if confidence > 1.0 {
		confidence = 1.0
	}
	passed := confidence >= t.Settings.MinConfidence

	_ = rc.Set(KeyFactConfidence, confidence)
	_ = rc.Set(KeyFactVerified, verifiedSources)
	_ = rc.Set(KeyFactPassed, passed)
	_ = rc.Set(KeyFactNotes, fmt.Sprintf("verified %d of %d source(s), confidence=%.2f", verified, len(out.Sources), confidence))

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), fmt.Sprintf("fact-check passed=%v confidence=%.2f", passed, confidence))
	}

	return graph.TaskResult{Message: "fact-check complete", NextAction: graph.ContinueAndExecute}, nil
}
