package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Client computes embeddings over an OpenAI-compatible inference service.
// It implements vectorstore.EmbeddingService and hides all provider
// details (endpoints, HTTP, auth) from the application layer.
type Client struct {
	provider  *inferenceProvider
	batchSize int
}

// NewClient constructs a Client from Config.
// It validates the config and internally constructs the inference provider.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Client{provider: p, batchSize: batchSize}, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.provider.create(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of document texts, one vector per input,
// in input order. Inputs are split into batches of the configured size and
// the batches are requested concurrently.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	g, ctx := errgroup.WithContext(ctx)

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		g.Go(func() error {
			vectors, err := c.provider.create(ctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ImageClient is a Client whose model also embeds images into the same
// vector space. It additionally implements
// vectorstore.ImageEmbeddingService; use it when constructing stores that
// serve image operations.
type ImageClient struct {
	Client
}

// NewImageClient constructs a client for a multimodal embedding model.
func NewImageClient(cfg *Config) (*ImageClient, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ImageClient{Client: *c}, nil
}

// EmbedImages embeds the images referenced by the given URIs, one vector
// per input, in input order.
func (c *ImageClient) EmbedImages(ctx context.Context, uris []string) ([][]float32, error) {
	return c.provider.create(ctx, uris)
}
