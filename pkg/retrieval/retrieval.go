// Package retrieval implements the session-scoped hybrid document index:
// dense vector similarity boosted by lexical keyword overlap, plus a
// stub in-memory variant used for tests and offline runs.
package retrieval

import "context"

// Document is one scored result returned by Retrieve.
type Document struct {
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
	Source string  `json:"source,omitempty"`
}

// IngestDocument is one caller-supplied document to index.
type IngestDocument struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// Point is the persisted unit of the vector index.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Payload is the metadata stored alongside a Point's vector.
type Payload struct {
	SessionID string
	Text      string
	Source    string
	Keywords  []string
}

// Retriever is the capability interface tasks depend on; it is
// implemented by the in-memory Stub and the dense+lexical Hybrid index.
type Retriever interface {
	Ingest(ctx context.Context, sessionID string, docs []IngestDocument) error
	Retrieve(ctx context.Context, sessionID, query string, limit int) ([]Document, error)
}

// placeholderDocument is returned whenever a retrieve call has nothing to
// offer, so downstream tasks can still complete deterministically.
func placeholderDocument() Document {
	return Document{Text: "No relevant documents were found for this query.", Score: 0, Source: "placeholder"}
}
