package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

// Finalizer is the terminal-on-confident task: it composes final.summary
// and ends the workflow.
type Finalizer struct{}

func (t *Finalizer) ID() string { return graph.TaskFinalizer }

func (t *Finalizer) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	var out AnalysisOutput
	rc.Get(KeyAnalysisOutput, &out)
	var conf float32
	rc.Get(KeyFactConfidence, &conf)
	var verified []string
	rc.Get(KeyFactVerified, &verified)

	summary := fmt.Sprintf(
		"Analysis passes automated checks. %s Highlight: %s Sources consulted: %s. Fact-check confidence: %.2f with %d source(s) verified.",
		out.Summary,
		out.Highlight,
		strings.Join(out.Sources, ", "),
		conf,
		len(verified),
	)

	_ = rc.Set(KeyFinalSummary, summary)
	_ = rc.Set(KeyFinalRequireMan, false)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), "finalized: automated acceptance")
	}

	return graph.TaskResult{Message: "finalized", NextAction: graph.End}, nil
}
