// Package vectorstore persists documents with embeddings in a PostgreSQL
// table using the pgvector extension and serves nearest-neighbor and
// filtered queries against them.
//
// # Core Features
//
//   - Upsert semantics keyed by document id (AddTexts, AddDocuments,
//     AddEmbeddings, AddImages)
//   - Similarity search with cosine, Euclidean or inner-product distance
//   - Structured metadata filters compiled into SQL predicates
//   - Typed metadata columns plus a catch-all JSON metadata column
//   - Diversity re-ranking via maximal marginal relevance
//   - ANN index lifecycle management (HNSW, IVFFlat, IVF, ScaNN)
//   - Synchronous facade driving the same store over the engine bridge
//
// # Basic Usage
//
//	engine, err := pgengine.NewEngine(ctx, engineCfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	err = engine.InitVectorStoreTable(ctx, pgengine.VectorTableOptions{
//	    TableName:  "documents",
//	    VectorSize: 768,
//	    MetadataColumns: []pgengine.Column{
//	        {Name: "topic", DataType: "TEXT", Nullable: true},
//	    },
//	})
//
//	store, err := vectorstore.NewStore(ctx, engine, embedder, vectorstore.Config{
//	    TableName:       "documents",
//	    MetadataColumns: []string{"topic"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := store.AddTexts(ctx, texts, metadatas, nil)
//
//	results, err := store.SimilaritySearch(ctx, "vector databases", vectorstore.SearchOptions{
//	    K:      2,
//	    Filter: map[string]any{"topic": map[string]any{"$ne": "sports"}},
//	})
//
// # Filters
//
// A filter maps field names to conditions and compiles into the WHERE
// clause of the search:
//
//	{"topic": "go"}                                  // equality
//	{"year": {"$gte": 2020}}                          // comparison
//	{"topic": {"$in": []any{"go", "db"}}}             // membership
//	{"$or": []map[string]any{{"a": 1}, {"b": 2}}}     // logical combinator
//
// Supported field operators: $eq, $ne, $lt, $lte, $gt, $gte, $between,
// $in, $nin, $like, $ilike, $exists. Logical combinators: $and, $or,
// $not. Malformed filters fail with ErrMalformedFilter before any query
// is issued. Field names are validated as identifiers; filter values are
// rendered as SQL literals and must therefore come from trusted input.
//
// # Synchronous Usage
//
// SyncStore exposes the same operations without a context parameter; each
// call is marshalled onto the engine's background worker and blocks until
// it completes:
//
//	sync, err := vectorstore.NewSyncStore(store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := sync.SimilaritySearch("vector databases", vectorstore.SearchOptions{K: 2})
//
// # Indexes
//
// ApplyVectorIndex builds an ANN index for the store's distance strategy;
// applying ExactNearestNeighbor drops the index instead:
//
//	err = store.ApplyVectorIndex(ctx, vectorstore.NewHNSWIndex(), vectorstore.ApplyIndexOptions{
//	    Concurrently: true,
//	})
//
// Per-query tuning goes through Config.IndexQueryOptions, applied with
// SET LOCAL inside each search's transaction.
//
// # Thread Safety
//
// All exported methods on Store and SyncStore are safe for concurrent use
// by multiple goroutines.
package vectorstore
