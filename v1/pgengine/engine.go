package pgengine

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Engine manages the shared connection pool used by the vector store.
//
// Every operation acquires a connection per call, executes, and releases it;
// no connection is held across calls. An engine created through NewEngine
// additionally owns a background worker that lets the same pool be driven
// from synchronous call sites (see RunSync and Await).
//
// Returns concrete *Engine from constructors (accept interfaces, return structs).
type Engine struct {
	pool     *pgxpool.Pool
	worker   *worker
	logger   Logger
	ownsPool bool
}

// NewEngine connects to PostgreSQL using the provided configuration and
// returns an engine that owns both the pool and a background worker.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("pgengine: invalid connection config: %w", err)
	}

	maxConns := cfg.Pool.MaxConns
	if maxConns == 0 {
		maxConns = 50
	}
	minConns := cfg.Pool.MinConns
	if minConns == 0 {
		minConns = 2
	}
	maxLifetime := cfg.Pool.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = defaultConnMaxLifetime
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = maxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgengine: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgengine: failed to connect to PostgreSQL: %w", err)
	}

	e := &Engine{
		pool:     pool,
		worker:   newWorker(),
		logger:   cfg.Logger,
		ownsPool: true,
	}
	if e.logger != nil {
		e.logger.Info("connected to PostgreSQL", nil, map[string]interface{}{
			"host":   cfg.Connection.Host,
			"dbname": cfg.Connection.DbName,
		})
	}
	return e, nil
}

// NewEngineFromPool wraps an externally managed pool. The returned engine
// has no background worker: synchronous driving via RunSync or Await fails
// with ErrNoWorker, and Close does not close the pool.
func NewEngineFromPool(pool *pgxpool.Pool) *Engine {
	return &Engine{pool: pool}
}

// Pool exposes the underlying pgx pool for advanced use cases.
func (e *Engine) Pool() *pgxpool.Pool {
	return e.pool
}

// HasWorker reports whether the engine owns a background worker and can
// therefore be driven synchronously.
func (e *Engine) HasWorker() bool {
	return e.worker != nil
}

// Execute runs a single statement in its own transaction and commits it.
func (e *Engine) Execute(ctx context.Context, sql string, args ...any) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// ExecuteOutsideTx runs a statement with no surrounding transaction block.
// Required for statements PostgreSQL refuses to run inside a transaction,
// such as CREATE INDEX CONCURRENTLY.
func (e *Engine) ExecuteOutsideTx(ctx context.Context, sql string) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, sql)
	return err
}

// Fetch runs a query and returns all rows as column-name keyed maps.
func (e *Engine) Fetch(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

// Close stops the background worker and, if the engine owns its pool,
// closes the pool. Safe to call once; pending synchronous calls complete
// before the worker stops.
func (e *Engine) Close() {
	if e.worker != nil {
		e.worker.stop()
	}
	if e.ownsPool {
		e.pool.Close()
	}
	if e.logger != nil {
		e.logger.Info("engine closed", nil)
	}
}
