package vectorstore

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

const testVectorSize = 768

// fakeEmbedder returns canned vectors so similarity ordering in the tests
// is fully controlled.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return axisVector(0), nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeImageEmbedder extends fakeEmbedder with the image capability so
// stores built from it serve image operations.
type fakeImageEmbedder struct {
	fakeEmbedder
}

func (f *fakeImageEmbedder) EmbedImages(ctx context.Context, uris []string) ([][]float32, error) {
	return f.EmbedDocuments(ctx, uris)
}

// axisVector is the unit vector along the given axis.
func axisVector(axis int) []float32 {
	v := make([]float32, testVectorSize)
	v[axis] = 1
	return v
}

// blendVector leans towards the given axis but keeps a component on axis 0
// so distances to axisVector(0) are graded.
func blendVector(axis int, weight float32) []float32 {
	v := make([]float32, testVectorSize)
	v[0] = 1 - weight
	v[axis] = weight
	return v
}

func initializePostgres(ctx context.Context, t *testing.T) pgengine.Config {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "vectors",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	}
	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := containerInstance.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)
	port, err := containerInstance.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return pgengine.Config{
		Connection: pgengine.Connection{
			Host:     host,
			Port:     port.Port(),
			User:     "postgres",
			Password: "postgres",
			DbName:   "vectors",
		},
	}
}

func newTestStore(ctx context.Context, t *testing.T, embedder EmbeddingService) (*pgengine.Engine, *Store) {
	t.Helper()

	cfg := initializePostgres(ctx, t)
	engine, err := pgengine.NewEngine(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	err = engine.InitVectorStoreTable(ctx, pgengine.VectorTableOptions{
		TableName:  "documents",
		VectorSize: testVectorSize,
		MetadataColumns: []pgengine.Column{
			{Name: "topic", DataType: "TEXT", Nullable: true},
			{Name: "year", DataType: "INTEGER", Nullable: true},
		},
		OverwriteExisting: true,
	})
	require.NoError(t, err)

	store, err := NewStore(ctx, engine, embedder, Config{
		TableName:       "documents",
		MetadataColumns: []string{"topic", "year"},
	})
	require.NoError(t, err)
	return engine, store
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"go":     blendVector(1, 0.1),
		"db":     blendVector(2, 0.4),
		"sports": blendVector(3, 0.9),
		"query":  axisVector(0),
	}}
	engine, store := newTestStore(ctx, t, embedder)

	ids, err := store.AddTexts(ctx,
		[]string{"go", "db", "sports"},
		[]map[string]any{
			{"topic": "programming", "year": 2023, "author": "ada"},
			{"topic": "databases", "year": 2022},
			{"topic": "sports", "year": 2021},
		},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	t.Run("RoundTrip", func(t *testing.T) {
		docs, err := store.GetByIDs(ctx, ids[:1])
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, ids[0], docs[0].ID)
		assert.Equal(t, "go", docs[0].Content)
		assert.Equal(t, "programming", docs[0].Metadata["topic"])
		// Keys without a typed column come back from the JSON column.
		assert.Equal(t, "ada", docs[0].Metadata["author"])
	})

	t.Run("SimilarityOrdering", func(t *testing.T) {
		results, err := store.SimilaritySearchWithScore(ctx, "query", SearchOptions{K: 3})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "go", results[0].Content)
		for i := 1; i < len(results); i++ {
			assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
		}
	})

	t.Run("FilteredSearch", func(t *testing.T) {
		// k=2 with a filter excluding one of the three documents.
		results, err := store.SimilaritySearch(ctx, "query", SearchOptions{
			K:      2,
			Filter: map[string]any{"topic": map[string]any{"$ne": "sports"}},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "go", results[0].Content)
		assert.Equal(t, "db", results[1].Content)
	})

	t.Run("FilterOperators", func(t *testing.T) {
		results, err := store.SimilaritySearch(ctx, "query", SearchOptions{
			Filter: map[string]any{"year": map[string]any{"$between": []any{2022, 2023}}},
		})
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = store.SimilaritySearch(ctx, "query", SearchOptions{
			Filter: map[string]any{"$or": []map[string]any{
				{"topic": "sports"},
				{"year": 2023},
			}},
		})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		_, err := store.AddTexts(ctx, []string{"go"}, []map[string]any{{"topic": "golang", "year": 2024}}, ids[:1])
		require.NoError(t, err)

		docs, err := store.GetByIDs(ctx, ids[:1])
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "golang", docs[0].Metadata["topic"])

		rows, err := engine.Fetch(ctx, "SELECT count(*) AS n FROM documents")
		require.NoError(t, err)
		assert.EqualValues(t, 3, rows[0]["n"])
	})

	t.Run("MMRSearch", func(t *testing.T) {
		lambda := 0.0
		results, err := store.MaxMarginalRelevanceSearch(ctx, "query", MMRSearchOptions{
			K:          2,
			FetchK:     3,
			LambdaMult: &lambda,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		// The first pick is the most relevant document.
		assert.Equal(t, "go", results[0].Content)
	})

	t.Run("IndexLifecycle", func(t *testing.T) {
		err := store.ApplyVectorIndex(ctx, NewHNSWIndex(), ApplyIndexOptions{})
		require.NoError(t, err)

		valid, err := store.IsValidIndex(ctx, "")
		require.NoError(t, err)
		assert.True(t, valid)

		require.NoError(t, store.Reindex(ctx, ""))

		require.NoError(t, store.DropVectorIndex(ctx, ""))
		valid, err = store.IsValidIndex(ctx, "")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("Delete", func(t *testing.T) {
		deleted, err := store.Delete(ctx, nil)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = store.Delete(ctx, []string{"8b9cbc50-6b36-4cb8-a532-0c8961fbd4f0"})
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, ids[2:])
		require.NoError(t, err)
		assert.True(t, deleted)

		rows, err := engine.Fetch(ctx, "SELECT count(*) AS n FROM documents")
		require.NoError(t, err)
		assert.EqualValues(t, 2, rows[0]["n"])
	})

	t.Run("InvalidIDForUUIDColumn", func(t *testing.T) {
		_, err := store.AddTexts(ctx, []string{"go"}, nil, []string{"not-a-uuid"})
		assert.ErrorIs(t, err, ErrColumnTypeMismatch)
	})

	t.Run("ImageOperationsUnsupported", func(t *testing.T) {
		_, err := store.AddImages(ctx, []string{"file:///img.png"}, nil, nil, AddImagesOptions{})
		assert.ErrorIs(t, err, ErrImageEmbeddingUnsupported)

		_, err = store.SimilaritySearchImage(ctx, "file:///img.png", SearchOptions{})
		assert.ErrorIs(t, err, ErrImageEmbeddingUnsupported)
	})

	t.Run("AddImages", func(t *testing.T) {
		imgPath := filepath.Join(t.TempDir(), "img.png")
		require.NoError(t, os.WriteFile(imgPath, []byte("png-bytes"), 0o600))

		imgStore, err := NewStore(ctx, engine, &fakeImageEmbedder{fakeEmbedder: *embedder}, Config{
			TableName:       "documents",
			MetadataColumns: []string{"topic", "year"},
		})
		require.NoError(t, err)

		var added []string
		imgIDs, err := imgStore.AddImages(ctx, []string{imgPath},
			[]map[string]any{{"image_uri": "s3://bucket/img.png"}}, nil, AddImagesOptions{})
		require.NoError(t, err)
		added = append(added, imgIDs...)
		docs, err := imgStore.GetByIDs(ctx, imgIDs)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		// Default path stores the base64-encoded image bytes.
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), docs[0].Content)
		// A caller-supplied image_uri is kept.
		assert.Equal(t, "s3://bucket/img.png", docs[0].Metadata["image_uri"])

		imgIDs, err = imgStore.AddImages(ctx, []string{imgPath}, nil, nil, AddImagesOptions{StoreURIOnly: true})
		require.NoError(t, err)
		added = append(added, imgIDs...)
		docs, err = imgStore.GetByIDs(ctx, imgIDs)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, imgPath, docs[0].Content)
		assert.Equal(t, imgPath, docs[0].Metadata["image_uri"])

		_, err = imgStore.Delete(ctx, added)
		require.NoError(t, err)
	})

	t.Run("SyncFacade", func(t *testing.T) {
		syncStore, err := NewSyncStore(store)
		require.NoError(t, err)

		results, err := syncStore.SimilaritySearch("query", SearchOptions{K: 1})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "go", results[0].Content)
	})
}

func TestStoreConstructionValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg := initializePostgres(ctx, t)
	engine, err := pgengine.NewEngine(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	require.NoError(t, engine.InitVectorStoreTable(ctx, pgengine.VectorTableOptions{
		TableName:  "documents",
		VectorSize: testVectorSize,
	}))

	embedder := &fakeEmbedder{}

	t.Run("MissingTable", func(t *testing.T) {
		_, err := NewStore(ctx, engine, embedder, Config{TableName: "nope"})
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("MissingColumn", func(t *testing.T) {
		_, err := NewStore(ctx, engine, embedder, Config{TableName: "documents", IDColumn: "nope"})
		assert.ErrorIs(t, err, ErrMissingColumn)

		_, err = NewStore(ctx, engine, embedder, Config{TableName: "documents", MetadataColumns: []string{"nope"}})
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("ContentTypeMismatch", func(t *testing.T) {
		_, err := NewStore(ctx, engine, embedder, Config{TableName: "documents", ContentColumn: "document_id"})
		assert.ErrorIs(t, err, ErrColumnTypeMismatch)
	})

	t.Run("EmbeddingTypeMismatch", func(t *testing.T) {
		_, err := NewStore(ctx, engine, embedder, Config{TableName: "documents", EmbeddingColumn: "content"})
		assert.ErrorIs(t, err, ErrColumnTypeMismatch)
	})

	t.Run("SyncFacadeRequiresWorker", func(t *testing.T) {
		external := pgengine.NewEngineFromPool(engine.Pool())
		store, err := NewStore(ctx, external, embedder, Config{TableName: "documents"})
		require.NoError(t, err)

		_, err = NewSyncStore(store)
		assert.ErrorIs(t, err, pgengine.ErrNoWorker)
		assert.True(t, pgengine.IsNoWorkerError(err))
	})
}
