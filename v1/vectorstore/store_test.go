package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

func TestConfigNormalize_Defaults(t *testing.T) {
	cfg := Config{TableName: "documents"}
	cfg.normalize()

	assert.Equal(t, pgengine.DefaultSchemaName, cfg.SchemaName)
	assert.Equal(t, pgengine.DefaultIDColumn, cfg.IDColumn)
	assert.Equal(t, pgengine.DefaultContentColumn, cfg.ContentColumn)
	assert.Equal(t, pgengine.DefaultEmbeddingColumn, cfg.EmbeddingColumn)
	assert.Equal(t, pgengine.DefaultMetadataJSONColumn, cfg.MetadataJSONColumn)
	assert.Equal(t, defaultK, cfg.K)
	assert.Equal(t, defaultFetchK, cfg.FetchK)
	assert.Equal(t, defaultLambdaMult, cfg.LambdaMult)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg = Config{TableName: "documents"}
	assert.NoError(t, cfg.Validate())

	cfg = Config{
		TableName:             "documents",
		MetadataColumns:       []string{"a"},
		IgnoreMetadataColumns: []string{"b"},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrConflictingMetadataOptions)

	cfg = Config{TableName: "documents", DistanceStrategy: DistanceStrategy(42)}
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedDistanceStrategy)
}

func TestResolveMetadataColumns_ExplicitList(t *testing.T) {
	columns := map[string]string{
		"document_id": "uuid",
		"content":     "text",
		"embedding":   "USER-DEFINED",
		"topic":       "text",
		"year":        "integer",
	}
	cfg := Config{TableName: "documents", MetadataColumns: []string{"year", "topic"}}
	cfg.normalize()

	resolved, err := resolveMetadataColumns(columns, cfg, "")
	require.NoError(t, err)
	// Explicit lists keep their given order.
	assert.Equal(t, []string{"year", "topic"}, resolved)
}

func TestResolveMetadataColumns_ExplicitListMissingColumn(t *testing.T) {
	columns := map[string]string{"document_id": "uuid"}
	cfg := Config{TableName: "documents", MetadataColumns: []string{"nope"}}
	cfg.normalize()

	_, err := resolveMetadataColumns(columns, cfg, "")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestResolveMetadataColumns_IgnoreList(t *testing.T) {
	columns := map[string]string{
		"document_id":       "uuid",
		"content":           "text",
		"embedding":         "USER-DEFINED",
		"document_metadata": "json",
		"topic":             "text",
		"year":              "integer",
		"internal":          "text",
	}
	cfg := Config{TableName: "documents", IgnoreMetadataColumns: []string{"internal"}}
	cfg.normalize()

	resolved, err := resolveMetadataColumns(columns, cfg, "document_metadata")
	require.NoError(t, err)
	// Sorted, with id/content/embedding/json columns subtracted.
	assert.Equal(t, []string{"topic", "year"}, resolved)
}

func TestResolveMetadataColumns_NoneConfigured(t *testing.T) {
	resolved, err := resolveMetadataColumns(map[string]string{"a": "text"}, Config{TableName: "t"}, "")
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestIsCharacterType(t *testing.T) {
	assert.True(t, isCharacterType("text"))
	assert.True(t, isCharacterType("character varying"))
	assert.True(t, isCharacterType("varchar"))
	assert.False(t, isCharacterType("integer"))
	assert.False(t, isCharacterType("USER-DEFINED"))
}

func TestDecodeID(t *testing.T) {
	assert.Equal(t, "abc", decodeID("abc"))

	raw := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", decodeID(raw))

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", decodeID(raw[:]))
	assert.Equal(t, "7", decodeID(7))
}

func TestDecodeDocument_MergePrecedence(t *testing.T) {
	s := &Store{
		cfg: Config{
			TableName:     "documents",
			IDColumn:      "document_id",
			ContentColumn: "content",
		},
		metadataColumns: []string{"topic"},
		jsonColumn:      "document_metadata",
	}

	doc := s.decodeDocument(map[string]any{
		"document_id": "id-1",
		"content":     "hello",
		"topic":       "typed",
		"document_metadata": map[string]any{
			"topic": "json",
			"extra": "kept",
		},
	})

	assert.Equal(t, "id-1", doc.ID)
	assert.Equal(t, "hello", doc.Content)
	// Typed columns overwrite same-named JSON keys.
	assert.Equal(t, "typed", doc.Metadata["topic"])
	assert.Equal(t, "kept", doc.Metadata["extra"])
}

func TestDecodeDocument_JSONBytes(t *testing.T) {
	s := &Store{
		cfg:        Config{TableName: "documents", IDColumn: "document_id", ContentColumn: "content"},
		jsonColumn: "document_metadata",
	}
	doc := s.decodeDocument(map[string]any{
		"document_id":       "id-1",
		"content":           "hello",
		"document_metadata": []byte(`{"k":"v"}`),
	})
	assert.Equal(t, "v", doc.Metadata["k"])
}

func TestDecodeDocument_NullTypedColumnSkipped(t *testing.T) {
	s := &Store{
		cfg:             Config{TableName: "documents", IDColumn: "document_id", ContentColumn: "content"},
		metadataColumns: []string{"topic"},
	}
	doc := s.decodeDocument(map[string]any{
		"document_id": "id-1",
		"content":     "hello",
		"topic":       nil,
	})
	assert.Nil(t, doc.Metadata)
}
