package vectorstore

import (
	"context"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// SyncStore drives a Store from synchronous call sites. Every call is
// marshalled onto the engine's background worker and blocks the caller
// until it completes, surfacing any failure as the returned error.
//
// Construction fails fast with pgengine.ErrNoWorker when the engine was
// created from an external pool and therefore cannot be driven
// synchronously.
type SyncStore struct {
	store *Store
}

// NewSyncStore wraps the given store in its synchronous facade.
func NewSyncStore(store *Store) (*SyncStore, error) {
	if !store.engine.HasWorker() {
		return nil, pgengine.ErrNoWorker
	}
	return &SyncStore{store: store}, nil
}

// Store returns the wrapped asynchronous store.
func (s *SyncStore) Store() *Store {
	return s.store
}

func (s *SyncStore) AddEmbeddings(contents []string, embeddings [][]float32, metadatas []map[string]any, ids []string) ([]string, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]string, error) {
		return s.store.AddEmbeddings(ctx, contents, embeddings, metadatas, ids)
	})
}

func (s *SyncStore) AddTexts(texts []string, metadatas []map[string]any, ids []string) ([]string, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]string, error) {
		return s.store.AddTexts(ctx, texts, metadatas, ids)
	})
}

func (s *SyncStore) AddDocuments(docs []Document) ([]string, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]string, error) {
		return s.store.AddDocuments(ctx, docs)
	})
}

func (s *SyncStore) AddImages(uris []string, metadatas []map[string]any, ids []string, opts AddImagesOptions) ([]string, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]string, error) {
		return s.store.AddImages(ctx, uris, metadatas, ids, opts)
	})
}

func (s *SyncStore) Delete(ids []string) (bool, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) (bool, error) {
		return s.store.Delete(ctx, ids)
	})
}

func (s *SyncStore) GetByIDs(ids []string) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.GetByIDs(ctx, ids)
	})
}

func (s *SyncStore) SimilaritySearch(query string, opts SearchOptions) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.SimilaritySearch(ctx, query, opts)
	})
}

func (s *SyncStore) SimilaritySearchWithScore(query string, opts SearchOptions) ([]ScoredDocument, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]ScoredDocument, error) {
		return s.store.SimilaritySearchWithScore(ctx, query, opts)
	})
}

func (s *SyncStore) SimilaritySearchByVector(embedding []float32, opts SearchOptions) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.SimilaritySearchByVector(ctx, embedding, opts)
	})
}

func (s *SyncStore) SimilaritySearchWithScoreByVector(embedding []float32, opts SearchOptions) ([]ScoredDocument, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]ScoredDocument, error) {
		return s.store.SimilaritySearchWithScoreByVector(ctx, embedding, opts)
	})
}

func (s *SyncStore) SimilaritySearchImage(uri string, opts SearchOptions) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.SimilaritySearchImage(ctx, uri, opts)
	})
}

func (s *SyncStore) MaxMarginalRelevanceSearch(query string, opts MMRSearchOptions) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.MaxMarginalRelevanceSearch(ctx, query, opts)
	})
}

func (s *SyncStore) MaxMarginalRelevanceSearchByVector(embedding []float32, opts MMRSearchOptions) ([]Document, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]Document, error) {
		return s.store.MaxMarginalRelevanceSearchByVector(ctx, embedding, opts)
	})
}

func (s *SyncStore) MaxMarginalRelevanceSearchWithScoreByVector(embedding []float32, opts MMRSearchOptions) ([]ScoredDocument, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) ([]ScoredDocument, error) {
		return s.store.MaxMarginalRelevanceSearchWithScoreByVector(ctx, embedding, opts)
	})
}

func (s *SyncStore) ApplyVectorIndex(index VectorIndex, opts ApplyIndexOptions) error {
	return s.store.engine.RunSync(func(ctx context.Context) error {
		return s.store.ApplyVectorIndex(ctx, index, opts)
	})
}

func (s *SyncStore) Reindex(name string) error {
	return s.store.engine.RunSync(func(ctx context.Context) error {
		return s.store.Reindex(ctx, name)
	})
}

func (s *SyncStore) DropVectorIndex(name string) error {
	return s.store.engine.RunSync(func(ctx context.Context) error {
		return s.store.DropVectorIndex(ctx, name)
	})
}

func (s *SyncStore) IsValidIndex(name string) (bool, error) {
	return pgengine.Await(s.store.engine, func(ctx context.Context) (bool, error) {
		return s.store.IsValidIndex(ctx, name)
	})
}

func (s *SyncStore) SetMaintenanceWorkMem(numLeaves, vectorSize int) error {
	return s.store.engine.RunSync(func(ctx context.Context) error {
		return s.store.SetMaintenanceWorkMem(ctx, numLeaves, vectorSize)
	})
}
