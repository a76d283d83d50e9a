package pgengine

import (
	"context"
	"fmt"
	"strings"
)

// Default column names shared with the vectorstore package.
const (
	DefaultSchemaName         = "public"
	DefaultIDColumn           = "document_id"
	DefaultContentColumn      = "content"
	DefaultEmbeddingColumn    = "embedding"
	DefaultMetadataJSONColumn = "document_metadata"
)

// Column describes one typed metadata column of a vector store table.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// VectorTableOptions configures InitVectorStoreTable.
type VectorTableOptions struct {
	// TableName is the table to create. Required.
	TableName string

	// VectorSize is the fixed embedding dimension. Required.
	VectorSize int

	// SchemaName defaults to "public".
	SchemaName string

	// IDColumn defaults to "document_id" (UUID primary key).
	IDColumn string

	// ContentColumn defaults to "content".
	ContentColumn string

	// EmbeddingColumn defaults to "embedding".
	EmbeddingColumn string

	// MetadataColumns declares typed metadata columns, in order.
	MetadataColumns []Column

	// MetadataJSONColumn is the catch-all JSON column. Defaults to
	// "document_metadata"; ignored when DisableMetadataJSON is set.
	MetadataJSONColumn string

	// DisableMetadataJSON omits the catch-all JSON column so metadata keys
	// without a typed column are dropped on write.
	DisableMetadataJSON bool

	// OverwriteExisting drops an existing table with the same name first.
	OverwriteExisting bool
}

func (o *VectorTableOptions) normalize() {
	if o.SchemaName == "" {
		o.SchemaName = DefaultSchemaName
	}
	if o.IDColumn == "" {
		o.IDColumn = DefaultIDColumn
	}
	if o.ContentColumn == "" {
		o.ContentColumn = DefaultContentColumn
	}
	if o.EmbeddingColumn == "" {
		o.EmbeddingColumn = DefaultEmbeddingColumn
	}
	if o.MetadataJSONColumn == "" {
		o.MetadataJSONColumn = DefaultMetadataJSONColumn
	}
}

// QuoteIdentifier quotes a SQL identifier (table, schema or column name)
// for safe interpolation. Identifiers cannot be bound as statement
// parameters.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildVectorTableSQL assembles the CREATE TABLE statement for a vector
// store table.
func buildVectorTableSQL(opts VectorTableOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s.%s(\n", QuoteIdentifier(opts.SchemaName), QuoteIdentifier(opts.TableName))
	fmt.Fprintf(&b, "%s UUID PRIMARY KEY,\n", QuoteIdentifier(opts.IDColumn))
	fmt.Fprintf(&b, "%s TEXT NOT NULL,\n", QuoteIdentifier(opts.ContentColumn))
	fmt.Fprintf(&b, "%s vector(%d) NOT NULL", QuoteIdentifier(opts.EmbeddingColumn), opts.VectorSize)
	for _, col := range opts.MetadataColumns {
		nullable := ""
		if !col.Nullable {
			nullable = " NOT NULL"
		}
		fmt.Fprintf(&b, ",\n%s %s%s", QuoteIdentifier(col.Name), col.DataType, nullable)
	}
	if !opts.DisableMetadataJSON {
		fmt.Fprintf(&b, ",\n%s JSON", QuoteIdentifier(opts.MetadataJSONColumn))
	}
	b.WriteString("\n);")
	return b.String()
}

// InitVectorStoreTable creates a table for storing documents with vector
// embeddings. It enables the pgvector extension first, and fails if the
// table already exists unless OverwriteExisting is set.
func (e *Engine) InitVectorStoreTable(ctx context.Context, opts VectorTableOptions) error {
	if opts.TableName == "" {
		return fmt.Errorf("pgengine: table name is required")
	}
	if opts.VectorSize <= 0 {
		return fmt.Errorf("pgengine: vector size must be positive, got %d", opts.VectorSize)
	}
	opts.normalize()

	if err := e.Execute(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	if opts.OverwriteExisting {
		drop := fmt.Sprintf("DROP TABLE IF EXISTS %s.%s",
			QuoteIdentifier(opts.SchemaName), QuoteIdentifier(opts.TableName))
		if err := e.Execute(ctx, drop); err != nil {
			return err
		}
	}
	return e.Execute(ctx, buildVectorTableSQL(opts))
}

// InitChatHistoryTable creates a table for persisting chat history
// messages, keyed by session.
func (e *Engine) InitChatHistoryTable(ctx context.Context, tableName string) error {
	if tableName == "" {
		return fmt.Errorf("pgengine: table name is required")
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s(
id SERIAL PRIMARY KEY,
session_id TEXT NOT NULL,
data JSONB NOT NULL,
type TEXT NOT NULL
);`, QuoteIdentifier(tableName))
	return e.Execute(ctx, query)
}

// DocumentTableOptions configures InitDocumentTable.
type DocumentTableOptions struct {
	TableName           string
	ContentColumn       string
	MetadataColumns     []Column
	MetadataJSONColumn  string
	DisableMetadataJSON bool
}

// InitDocumentTable creates a plain document table without an embedding
// column, for pipelines that stage documents before vectorization.
func (e *Engine) InitDocumentTable(ctx context.Context, opts DocumentTableOptions) error {
	if opts.TableName == "" {
		return fmt.Errorf("pgengine: table name is required")
	}
	if opts.ContentColumn == "" {
		opts.ContentColumn = DefaultContentColumn
	}
	if opts.MetadataJSONColumn == "" {
		opts.MetadataJSONColumn = DefaultMetadataJSONColumn
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s(\n", QuoteIdentifier(opts.TableName))
	fmt.Fprintf(&b, "%s TEXT NOT NULL", QuoteIdentifier(opts.ContentColumn))
	for _, col := range opts.MetadataColumns {
		nullable := ""
		if !col.Nullable {
			nullable = " NOT NULL"
		}
		fmt.Fprintf(&b, ",\n%s %s%s", QuoteIdentifier(col.Name), col.DataType, nullable)
	}
	if !opts.DisableMetadataJSON {
		fmt.Fprintf(&b, ",\n%s JSON", QuoteIdentifier(opts.MetadataJSONColumn))
	}
	b.WriteString("\n);")
	return e.Execute(ctx, b.String())
}

// DropTable removes a table if it exists.
func (e *Engine) DropTable(ctx context.Context, schemaName, tableName string) error {
	if schemaName == "" {
		schemaName = DefaultSchemaName
	}
	return e.Execute(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s.%s",
		QuoteIdentifier(schemaName), QuoteIdentifier(tableName)))
}
