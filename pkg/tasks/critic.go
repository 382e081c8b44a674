package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

// Critic derives critique.confident from the fact-check verdict and the
// shape of the analysis summary.
type Critic struct{}

func (t *Critic) ID() string { return graph.TaskCritic }

func (t *Critic) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	var out AnalysisOutput
	rc.Get(KeyAnalysisOutput, &out)
	passed, _ := rc.GetBool(KeyFactPassed)

	confident := passed && sentenceCount(out.Summary) >= 2 && len(out.Sources) > 0

	verdict := "The analysis does not yet meet the bar for automated acceptance."
	if confident {
		verdict = "The analysis meets the bar for automated acceptance."
	}

	_ = rc.Set(KeyCritiqueConfident, confident)
	_ = rc.Set(KeyCritiqueVerdict, verdict)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), fmt.Sprintf("critique confident=%v", confident))
	}

	return graph.TaskResult{Message: "critique complete", NextAction: graph.ContinueAndExecute}, nil
}

// sentenceCount counts non-empty segments split on '.', '!', '?'.
func sentenceCount(s string) int {
	n := 0
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
