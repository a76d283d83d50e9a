package vectorstore

import "time"

// Document is the external record model stored in the table: an opaque
// stable identifier, the text content, and a flat metadata mapping.
type Document struct {
	// ID uniquely identifies the record and is the upsert key.
	ID string `json:"id"`

	// Content is the document text the embedding was generated from.
	Content string `json:"content"`

	// Metadata is the merged view of the typed metadata columns and the
	// catch-all JSON metadata column.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument pairs a document with its raw distance to the query
// vector, as returned by the backend's distance function.
type ScoredDocument struct {
	Document

	// Distance is the raw distance; lower is nearer for every strategy.
	Distance float64 `json:"distance"`
}

// SearchOptions are the per-call knobs for similarity searches.
// Zero values fall back to the store-level defaults.
type SearchOptions struct {
	// K caps the number of returned rows.
	K int

	// Filter is a structured metadata filter (see CompileFilter).
	Filter map[string]any
}

// MMRSearchOptions are the per-call knobs for diversity re-ranked searches.
type MMRSearchOptions struct {
	// K caps the number of selected results.
	K int

	// FetchK is the candidate pool size fetched by plain similarity order.
	FetchK int

	// LambdaMult balances relevance (1) against diversity (0).
	// nil falls back to the store-level default.
	LambdaMult *float64

	// Filter is a structured metadata filter.
	Filter map[string]any
}

// OperationContext describes one completed store operation for an Observer.
type OperationContext struct {
	Operation string
	Table     string
	Duration  time.Duration
	Err       error
}

// Observer receives a notification per completed store operation.
// metrics.StoreObserver is the prometheus-backed implementation.
type Observer interface {
	ObserveOperation(op OperationContext)
}

// Logger is the minimal logging surface this package needs.
// logger.Logger satisfies it.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}
