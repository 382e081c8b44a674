package tasks

import (
	"context"
	"fmt"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/retrieval"
)

// retrieverLimit is the fixed number of documents requested per query.
const retrieverLimit = 5

// Retriever calls the Retrieval Layer and writes research.findings /
// research.sources. A retrieval error is contained here and demoted to a
// single placeholder finding rather than failing the session.
type Retriever struct {
	Retriever retrieval.Retriever
}

func (t *Retriever) ID() string { return graph.TaskRetriever }

func (t *Retriever) Run(ctx context.Context, rc *rcontext.Context) (graph.TaskResult, error) {
	query, _ := rc.GetString(KeyQuery)
	sessionID, _ := rc.GetString(KeySessionID)

	docs, err := t.Retriever.Retrieve(ctx, sessionID, query, retrieverLimit)
	if err != nil {
		docs = []retrieval.Document{{
			Text:   "Retrieval was unavailable for this query.",
			Score:  0,
			Source: fmt.Sprintf("retrieval-error: %v", err),
		}}
	}

	findings := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		findings = append(findings, d.Text)
		sources = append(sources, d.Source)
	}
	_ = rc.Set(KeyResearchFindings, findings)
	_ = rc.Set(KeyResearchSources, sources)

	if tc := rc.TraceCollector(); tc != nil {
		tc.Record(t.ID(), fmt.Sprintf("retrieved %d finding(s)", len(findings)))
	}

	return graph.TaskResult{Message: "retrieval complete", NextAction: graph.ContinueAndExecute}, nil
}
