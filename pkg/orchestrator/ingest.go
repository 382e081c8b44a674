package orchestrator

import "github.com/deepresearch-go/deepresearch/pkg/retrieval"

func toIngestDocuments(docs []IngestDoc) []retrieval.IngestDocument {
	out := make([]retrieval.IngestDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, retrieval.IngestDocument{ID: d.ID, Text: d.Text, Source: d.Source})
	}
	return out
}
