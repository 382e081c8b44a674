package tasks

import (
	"context"
	"fmt"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
)

const noFindingsSummary = "No findings were available to analyze."

// Analyst composes analysis.output from the retriever's findings/sources.
type Analyst struct{}

func (t *Analyst) ID() string { return graph.TaskAnalyst }

func (t *Analyst) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	var findings []string
	rc.Get(KeyResearchFindings, &findings)
	var sources []string
	rc.Get(KeyResearchSources, &sources)

	out := AnalysisOutput{Sources: sources}
	if len(findings) == 0 {
		out.Summary = noFindingsSummary
		out.Highlight = ""
	} else {
		out.Summary = fmt.Sprintf(
			"Top insight: %s. Confidence supported by %d source(s).",
			findings[0], len(sources),
		)
		out.Highlight = findings[0]
	}
	_ = rc.Set(KeyAnalysisOutput, out)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), "analysis composed")
	}

	return graph.TaskResult{Message: "analysis complete", NextAction: graph.ContinueAndExecute}, nil
}
