package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// Store runs document and similarity operations against one pgvector
// table. Construct it with NewStore; the constructor validates the live
// table schema so that configuration mistakes surface immediately instead
// of at query time.
//
// All methods take a context and are safe for concurrent use. For driving
// the store from synchronous call sites see SyncStore.
type Store struct {
	engine   *pgengine.Engine
	embedder EmbeddingService

	// imageEmbedder is non-nil only when the embedder supports image
	// embedding; resolved once at construction.
	imageEmbedder ImageEmbeddingService

	cfg Config

	// metadataColumns is the resolved set of typed metadata columns.
	metadataColumns []string

	// jsonColumn is the effective JSON metadata column, empty when the
	// table has none.
	jsonColumn string

	// idIsUUID records whether the id column is uuid-typed, in which case
	// ids are validated before insert.
	idIsUUID bool
}

// NewStore introspects the table named by cfg, validates the configured
// columns against it, and returns a ready store. It does not create the
// table; see pgengine.InitVectorStoreTable for that.
func NewStore(ctx context.Context, engine *pgengine.Engine, embedder EmbeddingService, cfg Config) (*Store, error) {
	if engine == nil {
		return nil, fmt.Errorf("vectorstore: engine is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("vectorstore: embedding service is required")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	columns, err := introspectColumns(ctx, engine, cfg.SchemaName, cfg.TableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("vectorstore: table %q does not exist in schema %q", cfg.TableName, cfg.SchemaName)
	}

	idType, ok := columns[cfg.IDColumn]
	if !ok {
		return nil, fmt.Errorf("%w: id column %q not found in table %q", ErrMissingColumn, cfg.IDColumn, cfg.TableName)
	}
	contentType, ok := columns[cfg.ContentColumn]
	if !ok {
		return nil, fmt.Errorf("%w: content column %q not found in table %q", ErrMissingColumn, cfg.ContentColumn, cfg.TableName)
	}
	if !isCharacterType(contentType) {
		return nil, fmt.Errorf("%w: content column %q is of type %q, expected a character type", ErrColumnTypeMismatch, cfg.ContentColumn, contentType)
	}
	embeddingType, ok := columns[cfg.EmbeddingColumn]
	if !ok {
		return nil, fmt.Errorf("%w: embedding column %q not found in table %q", ErrMissingColumn, cfg.EmbeddingColumn, cfg.TableName)
	}
	// pgvector's vector type reports as USER-DEFINED in information_schema.
	if embeddingType != "USER-DEFINED" {
		return nil, fmt.Errorf("%w: embedding column %q is of type %q, expected the vector type", ErrColumnTypeMismatch, cfg.EmbeddingColumn, embeddingType)
	}

	jsonColumn := cfg.MetadataJSONColumn
	if _, ok := columns[jsonColumn]; !ok {
		jsonColumn = ""
	}

	metadataColumns, err := resolveMetadataColumns(columns, cfg, jsonColumn)
	if err != nil {
		return nil, err
	}

	s := &Store{
		engine:          engine,
		embedder:        embedder,
		cfg:             cfg,
		metadataColumns: metadataColumns,
		jsonColumn:      jsonColumn,
		idIsUUID:        idType == "uuid",
	}
	if ie, ok := embedder.(ImageEmbeddingService); ok {
		s.imageEmbedder = ie
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("vector store ready", nil, map[string]interface{}{
			"table":            cfg.TableName,
			"schema":           cfg.SchemaName,
			"distanceStrategy": cfg.DistanceStrategy.String(),
			"metadataColumns":  len(metadataColumns),
		})
	}
	return s, nil
}

// introspectColumns fetches the table's column names and declared types
// from the catalog.
func introspectColumns(ctx context.Context, engine *pgengine.Engine, schema, table string) (map[string]string, error) {
	rows, err := engine.Fetch(ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 AND table_schema = $2",
		table, schema,
	)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: failed to introspect table %q: %w", table, err)
	}
	columns := make(map[string]string, len(rows))
	for _, row := range rows {
		name, _ := row["column_name"].(string)
		dataType, _ := row["data_type"].(string)
		columns[name] = dataType
	}
	return columns, nil
}

// resolveMetadataColumns determines the typed metadata column set, either
// from the explicit allow-list or by ignore-list subtraction.
func resolveMetadataColumns(columns map[string]string, cfg Config, jsonColumn string) ([]string, error) {
	if len(cfg.MetadataColumns) > 0 {
		for _, name := range cfg.MetadataColumns {
			if _, ok := columns[name]; !ok {
				return nil, fmt.Errorf("%w: metadata column %q not found in table %q", ErrMissingColumn, name, cfg.TableName)
			}
		}
		out := make([]string, len(cfg.MetadataColumns))
		copy(out, cfg.MetadataColumns)
		return out, nil
	}

	if len(cfg.IgnoreMetadataColumns) == 0 {
		return nil, nil
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoreMetadataColumns)+4)
	for _, name := range cfg.IgnoreMetadataColumns {
		ignored[name] = struct{}{}
	}
	ignored[cfg.IDColumn] = struct{}{}
	ignored[cfg.ContentColumn] = struct{}{}
	ignored[cfg.EmbeddingColumn] = struct{}{}
	if jsonColumn != "" {
		ignored[jsonColumn] = struct{}{}
	}

	var out []string
	for name := range columns {
		if _, skip := ignored[name]; !skip {
			out = append(out, name)
		}
	}
	// Map iteration order is random; sort for a stable column layout.
	sort.Strings(out)
	return out, nil
}

func isCharacterType(dataType string) bool {
	return strings.Contains(dataType, "char") || strings.Contains(dataType, "text")
}

// qualifiedTable renders the quoted schema.table reference.
func (s *Store) qualifiedTable() string {
	return pgengine.QuoteIdentifier(s.cfg.SchemaName) + "." + pgengine.QuoteIdentifier(s.cfg.TableName)
}

// MetadataColumns returns the resolved typed metadata column names.
func (s *Store) MetadataColumns() []string {
	out := make([]string, len(s.metadataColumns))
	copy(out, s.metadataColumns)
	return out
}

// Engine returns the engine the store operates through.
func (s *Store) Engine() *pgengine.Engine {
	return s.engine
}
