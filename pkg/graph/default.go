package graph

import "github.com/deepresearch-go/deepresearch/pkg/rcontext"

// Customizer inserts extra nodes/edges into b before the default research
// wiring is applied.
type Customizer func(b *Builder)

// Task id constants for the fixed default research DAG.
const (
	TaskRetriever    = "retriever"
	TaskAnalyst      = "analyst"
	TaskNumericTool  = "numeric-tool"
	TaskFactChecker  = "fact-checker"
	TaskCritic       = "critic"
	TaskFinalizer    = "finalizer"
	TaskManualReview = "manual-review"
)

// CritiqueConfidentKey is the Context key the critic -> finalizer/
// manual-review conditional edge predicate reads.
const CritiqueConfidentKey = "critique.confident"

// BuildDefault wires the fixed research DAG:
//
//	retriever -> analyst -> numeric-tool -> fact-checker -> critic
//	critic -[critique.confident]-> finalizer
//	critic -[!critique.confident]-> manual-review
//
// tasks supplies the seven Task implementations keyed by their own ID();
// customizer, if non-nil, may add extra nodes/edges first.
func BuildDefault(tasks []Task, customizer Customizer) (*Graph, error) {
	b := NewBuilder()
	if customizer != nil {
		customizer(b)
	}
	for _, t := range tasks {
		b.AddNode(t)
	}

	b.SetStart(TaskRetriever)
	b.AddEdge(TaskRetriever, TaskAnalyst)
	b.AddEdge(TaskAnalyst, TaskNumericTool)
	b.AddEdge(TaskNumericTool, TaskFactChecker)
	b.AddEdge(TaskFactChecker, TaskCritic)
	b.AddConditionalEdge(TaskCritic, func(rc *rcontext.Context) bool {
		var confident bool
		rc.GetSync(CritiqueConfidentKey, &confident)
		return confident
	}, TaskFinalizer, TaskManualReview)

	return b.Build()
}
