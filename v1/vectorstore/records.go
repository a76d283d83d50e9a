package vectorstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// AddEmbeddings upserts one row per input. contents, embeddings and, when
// non-nil, metadatas and ids are parallel sequences of the same length.
// Missing or empty ids are replaced with random UUIDs. Returns the ids
// actually used, in input order.
//
// Each row is written and committed as its own statement: a failure
// partway through a batch leaves the already-committed rows in place.
func (s *Store) AddEmbeddings(ctx context.Context, contents []string, embeddings [][]float32, metadatas []map[string]any, ids []string) (usedIDs []string, err error) {
	defer s.observe("add_embeddings", time.Now(), &err)

	if len(contents) != len(embeddings) ||
		(metadatas != nil && len(metadatas) != len(contents)) ||
		(ids != nil && len(ids) != len(contents)) {
		return nil, ErrLengthMismatch
	}

	usedIDs = make([]string, len(contents))
	for i := range contents {
		id := ""
		if ids != nil {
			id = ids[i]
		}
		if id == "" {
			id = uuid.NewString()
		} else if s.idIsUUID {
			if _, parseErr := uuid.Parse(id); parseErr != nil {
				return nil, fmt.Errorf("%w: id %q is not a valid value for uuid column %q", ErrColumnTypeMismatch, id, s.cfg.IDColumn)
			}
		}
		usedIDs[i] = id

		var metadata map[string]any
		if metadatas != nil {
			metadata = metadatas[i]
		}
		if upsertErr := s.upsertRow(ctx, id, contents[i], embeddings[i], metadata); upsertErr != nil {
			return nil, upsertErr
		}
	}
	return usedIDs, nil
}

// upsertRow writes a single record with insert-or-update semantics keyed
// by id. Typed metadata columns take the matching metadata keys; the
// leftovers go into the JSON column when one is configured and are dropped
// otherwise.
func (s *Store) upsertRow(ctx context.Context, id, content string, embedding []float32, metadata map[string]any) error {
	columns := []string{s.cfg.IDColumn, s.cfg.ContentColumn, s.cfg.EmbeddingColumn}
	args := []any{id, content, encodeVector(embedding)}

	consumed := make(map[string]struct{}, len(s.metadataColumns))
	for _, col := range s.metadataColumns {
		columns = append(columns, col)
		if v, ok := metadata[col]; ok {
			args = append(args, v)
			consumed[col] = struct{}{}
		} else {
			args = append(args, nil)
		}
	}

	if s.jsonColumn != "" {
		leftover := make(map[string]any)
		for k, v := range metadata {
			if _, ok := consumed[k]; !ok {
				leftover[k] = v
			}
		}
		encoded, err := json.Marshal(leftover)
		if err != nil {
			return fmt.Errorf("vectorstore: failed to encode metadata for id %q: %w", id, err)
		}
		columns = append(columns, s.jsonColumn)
		args = append(args, string(encoded))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (", s.qualifiedTable())
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgengine.QuoteIdentifier(col))
	}
	b.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i+1)
	}
	fmt.Fprintf(&b, ") ON CONFLICT (%s) DO UPDATE SET ", pgengine.QuoteIdentifier(s.cfg.IDColumn))
	for i, col := range columns[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		quoted := pgengine.QuoteIdentifier(col)
		fmt.Fprintf(&b, "%s = EXCLUDED.%s", quoted, quoted)
	}

	return s.engine.Execute(ctx, b.String(), args...)
}

// AddTexts embeds the given texts and upserts them. See AddEmbeddings for
// the sequence and id semantics.
func (s *Store) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any, ids []string) ([]string, error) {
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	return s.AddEmbeddings(ctx, texts, embeddings, metadatas, ids)
}

// AddDocuments embeds and upserts the given documents, using each
// document's ID and Metadata.
func (s *Store) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	texts := make([]string, len(docs))
	metadatas := make([]map[string]any, len(docs))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
		metadatas[i] = doc.Metadata
		ids[i] = doc.ID
	}
	return s.AddTexts(ctx, texts, metadatas, ids)
}

// AddImagesOptions tune how AddImages stores each image.
type AddImagesOptions struct {
	// StoreURIOnly stores the image URI as the record's content instead
	// of the base64-encoded image bytes.
	StoreURIOnly bool
}

// AddImages embeds the images referenced by the given URIs and upserts
// them. By default the record's content is the base64 encoding of the
// image bytes; with StoreURIOnly it is the URI itself. Each record's
// metadata carries the URI under "image_uri" unless the caller already
// set that key. Fails with ErrImageEmbeddingUnsupported when the
// configured embedding service cannot embed images.
func (s *Store) AddImages(ctx context.Context, uris []string, metadatas []map[string]any, ids []string, opts AddImagesOptions) ([]string, error) {
	if s.imageEmbedder == nil {
		return nil, ErrImageEmbeddingUnsupported
	}
	if metadatas != nil && len(metadatas) != len(uris) {
		return nil, ErrLengthMismatch
	}

	embeddings, err := s.imageEmbedder.EmbedImages(ctx, uris)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(uris))
	merged := make([]map[string]any, len(uris))
	for i, uri := range uris {
		var metadata map[string]any
		if metadatas != nil {
			metadata = metadatas[i]
		}
		merged[i] = imageMetadata(uri, metadata)

		if opts.StoreURIOnly {
			contents[i] = uri
			continue
		}
		data, err := loadImageContent(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: failed to load image %q: %w", uri, err)
		}
		contents[i] = base64.StdEncoding.EncodeToString(data)
	}
	return s.AddEmbeddings(ctx, contents, embeddings, merged, ids)
}

// imageMetadata copies the caller's metadata and fills in the image_uri
// key when absent. A caller-supplied image_uri wins.
func imageMetadata(uri string, metadata map[string]any) map[string]any {
	m := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		m[k] = v
	}
	if _, ok := m["image_uri"]; !ok {
		m["image_uri"] = uri
	}
	return m
}

// loadImageContent reads the image bytes behind a URI: http(s) URLs are
// downloaded, everything else is treated as a filesystem path (a file://
// prefix is stripped).
func loadImageContent(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("http %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(strings.TrimPrefix(uri, "file://"))
}

// Delete removes the rows with the given ids. An empty id list is a no-op
// returning false; otherwise true is returned regardless of how many rows
// matched.
func (s *Store) Delete(ctx context.Context, ids []string) (deleted bool, err error) {
	defer s.observe("delete", time.Now(), &err)

	if len(ids) == 0 {
		return false, nil
	}
	// The ::text cast keeps the membership test valid for uuid-typed id
	// columns with a bound text array.
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s::text = ANY($1)",
		s.qualifiedTable(), pgengine.QuoteIdentifier(s.cfg.IDColumn))
	if err := s.engine.Execute(ctx, stmt, ids); err != nil {
		return false, err
	}
	return true, nil
}

// GetByIDs fetches the documents with the given ids. Unknown ids are
// silently absent from the result; the result order is unspecified.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (docs []Document, err error) {
	defer s.observe("get_by_ids", time.Now(), &err)

	if len(ids) == 0 {
		return []Document{}, nil
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(pgengine.QuoteIdentifier(s.cfg.IDColumn))
	b.WriteString(", ")
	b.WriteString(pgengine.QuoteIdentifier(s.cfg.ContentColumn))
	for _, col := range s.metadataColumns {
		b.WriteString(", ")
		b.WriteString(pgengine.QuoteIdentifier(col))
	}
	if s.jsonColumn != "" {
		b.WriteString(", ")
		b.WriteString(pgengine.QuoteIdentifier(s.jsonColumn))
	}
	fmt.Fprintf(&b, " FROM %s WHERE %s::text = ANY($1)",
		s.qualifiedTable(), pgengine.QuoteIdentifier(s.cfg.IDColumn))

	rows, err := s.engine.Fetch(ctx, b.String(), ids)
	if err != nil {
		return nil, err
	}
	docs = make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, s.decodeDocument(row))
	}
	return docs, nil
}

// decodeDocument turns a fetched row into a Document, merging the JSON
// metadata column and the typed metadata columns into one flat mapping.
// Typed columns win over same-named JSON keys.
func (s *Store) decodeDocument(row map[string]any) Document {
	metadata := make(map[string]any)
	if s.jsonColumn != "" {
		switch v := row[s.jsonColumn].(type) {
		case map[string]any:
			for k, val := range v {
				metadata[k] = val
			}
		case []byte:
			_ = json.Unmarshal(v, &metadata)
		case string:
			_ = json.Unmarshal([]byte(v), &metadata)
		}
	}
	for _, col := range s.metadataColumns {
		if v, ok := row[col]; ok && v != nil {
			metadata[col] = v
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	content, _ := row[s.cfg.ContentColumn].(string)
	return Document{
		ID:       decodeID(row[s.cfg.IDColumn]),
		Content:  content,
		Metadata: metadata,
	}
}

// decodeID normalizes the id column value: uuid columns come back from the
// driver as raw 16-byte values.
func decodeID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case [16]byte:
		return uuid.UUID(id).String()
	case []byte:
		if parsed, err := uuid.FromBytes(id); err == nil {
			return parsed.String()
		}
		return string(id)
	default:
		return fmt.Sprintf("%v", v)
	}
}
