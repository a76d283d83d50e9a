package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// ApplyIndexOptions tune how ApplyVectorIndex builds the index.
type ApplyIndexOptions struct {
	// Name overrides the default table-derived index name.
	Name string

	// Concurrently builds the index without locking out writes. The
	// statements then run outside a transaction block, as PostgreSQL
	// requires for CREATE INDEX CONCURRENTLY.
	Concurrently bool

	// PartialPredicate, when set, restricts the index to rows matching
	// this raw predicate (the WHERE clause of a partial index).
	PartialPredicate string
}

// ApplyVectorIndex builds the given ANN index over the embedding column,
// creating the backing extension first when the index needs one. Applying
// ExactNearestNeighbor instead drops any existing index, reverting the
// table to brute-force search.
func (s *Store) ApplyVectorIndex(ctx context.Context, index VectorIndex, opts ApplyIndexOptions) (err error) {
	defer s.observe("apply_vector_index", time.Now(), &err)

	switch index.(type) {
	case ExactNearestNeighbor, *ExactNearestNeighbor:
		return s.dropIndex(ctx, opts.Name)
	}

	if ext := index.Extension(); ext != "" {
		stmt := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", pgengine.QuoteIdentifier(ext))
		if err := s.engine.Execute(ctx, stmt); err != nil {
			return err
		}
	}

	name := opts.Name
	if name == "" {
		name = defaultIndexName(s.cfg.TableName)
	}

	var b strings.Builder
	b.WriteString("CREATE INDEX ")
	if opts.Concurrently {
		b.WriteString("CONCURRENTLY ")
	}
	fmt.Fprintf(&b, "%s ON %s USING %s (%s %s)",
		pgengine.QuoteIdentifier(name), s.qualifiedTable(), index.IndexType(),
		pgengine.QuoteIdentifier(s.cfg.EmbeddingColumn), s.cfg.DistanceStrategy.IndexFunction())
	if options := index.IndexOptions(); options != "" {
		fmt.Fprintf(&b, " WITH %s", options)
	}
	if opts.PartialPredicate != "" {
		fmt.Fprintf(&b, " WHERE (%s)", opts.PartialPredicate)
	}

	if opts.Concurrently {
		return s.engine.ExecuteOutsideTx(ctx, b.String())
	}
	return s.engine.Execute(ctx, b.String())
}

// Reindex rebuilds the index with the given name, or the default
// table-derived name when empty.
func (s *Store) Reindex(ctx context.Context, name string) (err error) {
	defer s.observe("reindex", time.Now(), &err)

	if name == "" {
		name = defaultIndexName(s.cfg.TableName)
	}
	return s.engine.Execute(ctx, fmt.Sprintf("REINDEX INDEX %s", pgengine.QuoteIdentifier(name)))
}

// DropVectorIndex drops the index with the given name, or the default
// table-derived name when empty. Dropping a non-existent index is a no-op.
func (s *Store) DropVectorIndex(ctx context.Context, name string) (err error) {
	defer s.observe("drop_vector_index", time.Now(), &err)
	return s.dropIndex(ctx, name)
}

func (s *Store) dropIndex(ctx context.Context, name string) error {
	if name == "" {
		name = defaultIndexName(s.cfg.TableName)
	}
	return s.engine.Execute(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", pgengine.QuoteIdentifier(name)))
}

// IsValidIndex reports whether an index with the given name (default
// table-derived name when empty) exists on the table.
func (s *Store) IsValidIndex(ctx context.Context, name string) (bool, error) {
	if name == "" {
		name = defaultIndexName(s.cfg.TableName)
	}
	rows, err := s.engine.Fetch(ctx,
		"SELECT indexname FROM pg_indexes WHERE tablename = $1 AND schemaname = $2 AND indexname = $3",
		s.cfg.TableName, s.cfg.SchemaName, name,
	)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// SetMaintenanceWorkMem raises the session maintenance memory to what a
// ScaNN build over the given tree and vector size needs.
func (s *Store) SetMaintenanceWorkMem(ctx context.Context, numLeaves, vectorSize int) error {
	// 4 bytes per float, 50 vectors sampled per leaf during training,
	// rounded up to whole megabytes with one spare.
	requiredMB := numLeaves*vectorSize*4*50/(1024*1024) + 1
	return s.engine.Execute(ctx, fmt.Sprintf("SET maintenance_work_mem TO '%d MB'", requiredMB))
}
