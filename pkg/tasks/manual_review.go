package tasks

import (
	"context"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

const manualReviewSummary = "manual verification required: the automated critique did not reach confidence to finalize this session without a human check"

// ManualReview is the terminal-on-not-confident task.
type ManualReview struct{}

func (t *ManualReview) ID() string { return graph.TaskManualReview }

func (t *ManualReview) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	_ = rc.Set(KeyFinalSummary, manualReviewSummary)
	_ = rc.Set(KeyFinalRequireMan, true)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), "routed to manual review")
	}

	return graph.TaskResult{Message: "routed to manual review", NextAction: graph.End}, nil
}
