// Package metrics exposes Prometheus metrics for the pgvec vector store.
//
// It maintains an isolated Prometheus registry per service, serves it over
// a /metrics HTTP endpoint, and provides StoreObserver, an implementation
// of vectorstore.Observer that records operation counts and durations.
//
// Wire it through the store Config:
//
//	m := metrics.NewMetrics(metrics.NewConfig())
//	go m.Server.ListenAndServe()
//
//	store, err := vectorstore.NewStore(ctx, engine, embedder, vectorstore.Config{
//	    TableName: "documents",
//	    Observer:  metrics.NewStoreObserver(m),
//	})
package metrics
