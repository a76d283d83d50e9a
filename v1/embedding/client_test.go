package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/pgvec/v1/vectorstore"
)

var (
	_ vectorstore.EmbeddingService      = (*Client)(nil)
	_ vectorstore.ImageEmbeddingService = (*ImageClient)(nil)
)

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// newEmbeddingsServer fakes the /v1/embeddings endpoint: each input gets a
// one-element vector holding its global sequence number.
func newEmbeddingsServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests.Add(1)

		type datum struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]datum, len(req.Input))
		for i, input := range req.Input {
			var seq float32
			fmt.Sscanf(input, "text-%f", &seq)
			data[i] = datum{Index: i, Embedding: []float32{seq}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func testConfig(endpoint string) *Config {
	return &Config{
		Endpoint:     endpoint,
		ServiceToken: "test-token",
		Model:        "test-model",
		BatchSize:    2,
		HTTPTimeoutS: 5,
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost"})
	assert.Error(t, err)
}

func TestEmbedQuery(t *testing.T) {
	var requests atomic.Int64
	server := newEmbeddingsServer(t, &requests)
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	vec, err := client.EmbedQuery(context.Background(), "text-7")
	require.NoError(t, err)
	assert.Equal(t, []float32{7}, vec)
	assert.EqualValues(t, 1, requests.Load())
}

func TestEmbedDocuments_BatchedInOrder(t *testing.T) {
	var requests atomic.Int64
	server := newEmbeddingsServer(t, &requests)
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	texts := []string{"text-0", "text-1", "text-2", "text-3", "text-4"}
	vectors, err := client.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i := range texts {
		assert.Equal(t, []float32{float32(i)}, vectors[i], "vector %d out of order", i)
	}
	// Batch size 2 over 5 inputs makes 3 requests.
	assert.EqualValues(t, 3, requests.Load())
}

func TestEmbedDocuments_Empty(t *testing.T) {
	client, err := NewClient(testConfig("http://localhost:1"))
	require.NoError(t, err)

	vectors, err := client.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedDocuments_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.EmbedDocuments(context.Background(), []string{"text-0"})
	assert.ErrorContains(t, err, "http 500")
}

func TestImageClient(t *testing.T) {
	var requests atomic.Int64
	server := newEmbeddingsServer(t, &requests)
	defer server.Close()

	client, err := NewImageClient(testConfig(server.URL))
	require.NoError(t, err)

	vectors, err := client.EmbedImages(context.Background(), []string{"text-3", "text-4"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{3}, vectors[0])
	assert.Equal(t, []float32{4}, vectors[1])
}
