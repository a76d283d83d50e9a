// Package embedding computes text and image embeddings over an
// OpenAI-compatible inference service.
//
// Client implements vectorstore.EmbeddingService; ImageClient additionally
// implements vectorstore.ImageEmbeddingService for multimodal models.
// Document batches are split by the configured batch size and requested
// concurrently.
//
// # Configuration
//
//	EMBEDDING_ENDPOINT=https://inference.example.com
//	EMBEDDING_SERVICE_TOKEN=token
//	EMBEDDING_MODEL=luminous-base
//	EMBEDDING_BATCH_SIZE=32
//	EMBEDDING_HTTP_TIMEOUT_SECONDS=30
//
// # Basic Usage
//
//	client, err := embedding.NewClient(embedding.NewConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vectors, err := client.EmbedDocuments(ctx, []string{"a", "b"})
package embedding
