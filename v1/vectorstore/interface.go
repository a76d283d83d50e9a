package vectorstore

import "context"

// EmbeddingService turns text into fixed-length float vectors.
// The store never calls a model directly; it depends on this interface.
//
// Implementations returning vectors of a different length than the table's
// declared vector size will fail at insert time with the backend's
// dimension error.
type EmbeddingService interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of document texts, one vector per
	// input, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageEmbeddingService is the capability-tagged extension for providers
// that can embed images. The store resolves this capability once at
// construction; image operations on a store whose embedder does not
// implement it fail with ErrImageEmbeddingUnsupported before any network
// or database call.
type ImageEmbeddingService interface {
	EmbeddingService

	// EmbedImages embeds the images referenced by the given URIs, one
	// vector per input, in input order.
	EmbedImages(ctx context.Context, uris []string) ([][]float32, error)
}
