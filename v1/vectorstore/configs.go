package vectorstore

import (
	"fmt"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

const (
	defaultK          = 4
	defaultFetchK     = 20
	defaultLambdaMult = 0.5
)

// Config describes the table a store operates on and the store-level
// search defaults. Column names not set fall back to the pgengine table
// defaults.
type Config struct {
	// TableName is the table holding the records. Required.
	TableName string

	// SchemaName of the table. Defaults to "public".
	SchemaName string

	// IDColumn is the primary-key column. Defaults to "document_id".
	IDColumn string

	// ContentColumn holds the document text. Defaults to "content".
	ContentColumn string

	// EmbeddingColumn holds the vector. Defaults to "embedding".
	EmbeddingColumn string

	// MetadataJSONColumn is the catch-all JSON column. Defaults to
	// "document_metadata"; silently disabled when the table has no such
	// column.
	MetadataJSONColumn string

	// MetadataColumns is the explicit list of typed metadata columns.
	// Mutually exclusive with IgnoreMetadataColumns.
	MetadataColumns []string

	// IgnoreMetadataColumns derives the typed metadata columns by
	// subtracting the named columns (plus the id, content, embedding and
	// JSON columns) from the table's full column set.
	IgnoreMetadataColumns []string

	// DistanceStrategy selects the similarity metric. Defaults to
	// CosineDistance.
	DistanceStrategy DistanceStrategy

	// K is the default result cap for similarity searches.
	K int

	// FetchK is the default candidate pool size for MMR searches.
	FetchK int

	// LambdaMult is the default MMR relevance/diversity balance.
	LambdaMult float64

	// IndexQueryOptions, when set, are applied with SET LOCAL before
	// every search, scoped to the search's transaction.
	IndexQueryOptions QueryOptions

	// Logger is optional; a nil logger disables logging.
	Logger Logger

	// Observer is optional; it receives one notification per completed
	// store operation.
	Observer Observer
}

func (c *Config) normalize() {
	if c.SchemaName == "" {
		c.SchemaName = pgengine.DefaultSchemaName
	}
	if c.IDColumn == "" {
		c.IDColumn = pgengine.DefaultIDColumn
	}
	if c.ContentColumn == "" {
		c.ContentColumn = pgengine.DefaultContentColumn
	}
	if c.EmbeddingColumn == "" {
		c.EmbeddingColumn = pgengine.DefaultEmbeddingColumn
	}
	if c.MetadataJSONColumn == "" {
		c.MetadataJSONColumn = pgengine.DefaultMetadataJSONColumn
	}
	if c.K <= 0 {
		c.K = defaultK
	}
	if c.FetchK <= 0 {
		c.FetchK = defaultFetchK
	}
	if c.LambdaMult <= 0 {
		c.LambdaMult = defaultLambdaMult
	}
}

// Validate checks the parts of the configuration that can be checked
// without the database; NewStore additionally validates against the live
// table schema.
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("vectorstore: table name is required")
	}
	if len(c.MetadataColumns) > 0 && len(c.IgnoreMetadataColumns) > 0 {
		return ErrConflictingMetadataOptions
	}
	return c.DistanceStrategy.validate()
}
