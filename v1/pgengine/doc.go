// Package pgengine manages the PostgreSQL connection pool behind the pgvec
// vector store and the bridge that lets the same pool be driven from
// synchronous call sites.
//
// # Engine
//
// An Engine wraps a pgx connection pool. Every operation acquires a
// connection per call, executes, and releases it; writes run as their own
// transaction with an explicit commit. ExecuteOutsideTx exists for
// statements PostgreSQL refuses inside a transaction block (CREATE INDEX
// CONCURRENTLY).
//
//	engine, err := pgengine.NewEngine(ctx, pgengine.Config{
//	    Connection: pgengine.Connection{
//	        Host:   "localhost",
//	        Port:   "5432",
//	        User:   "postgres",
//	        DbName: "documents",
//	    },
//	})
//	defer engine.Close()
//
// # Synchronous driving
//
// NewEngine starts a dedicated background worker goroutine. RunSync and
// Await submit a closure onto that worker over a channel and block the
// caller on its completion signal, so blocking code can share one pool with
// context-driven code without duplicating any query logic. An engine built
// with NewEngineFromPool wraps an externally owned pool, has no worker, and
// rejects synchronous driving with ErrNoWorker.
//
// # Table DDL
//
// InitVectorStoreTable creates the table layout the vectorstore package
// validates at construction: a UUID primary key, a NOT NULL text content
// column, a fixed-dimension vector column, optional typed metadata columns
// and an optional catch-all JSON metadata column.
package pgengine
