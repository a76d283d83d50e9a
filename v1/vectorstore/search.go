package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// queryCollection fetches the k nearest rows to the query embedding,
// optionally restricted by a compiled metadata filter. Rows come back
// nearest first, each with the raw embedding and a "distance" column.
func (s *Store) queryCollection(ctx context.Context, embedding []float32, k int, filter map[string]any) ([]map[string]any, error) {
	if k <= 0 {
		k = s.cfg.K
	}
	predicate, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(pgengine.QuoteIdentifier(s.cfg.IDColumn))
	b.WriteString(", ")
	b.WriteString(pgengine.QuoteIdentifier(s.cfg.ContentColumn))
	b.WriteString(", ")
	b.WriteString(pgengine.QuoteIdentifier(s.cfg.EmbeddingColumn))
	for _, col := range s.metadataColumns {
		b.WriteString(", ")
		b.WriteString(pgengine.QuoteIdentifier(col))
	}
	if s.jsonColumn != "" {
		b.WriteString(", ")
		b.WriteString(pgengine.QuoteIdentifier(s.jsonColumn))
	}
	quotedEmbedding := pgengine.QuoteIdentifier(s.cfg.EmbeddingColumn)
	fmt.Fprintf(&b, ", %s(%s, $1::vector) AS distance FROM %s",
		s.cfg.DistanceStrategy.SearchFunction(), quotedEmbedding, s.qualifiedTable())
	if predicate != "" {
		b.WriteString(" WHERE ")
		b.WriteString(predicate)
	}
	fmt.Fprintf(&b, " ORDER BY %s %s $1::vector LIMIT %d",
		quotedEmbedding, s.cfg.DistanceStrategy.Operator(), k)

	query := b.String()
	arg := encodeVector(embedding)

	if s.cfg.IndexQueryOptions == nil {
		return s.engine.Fetch(ctx, query, arg)
	}

	// SET LOCAL is scoped to the enclosing transaction, so the tuning
	// statements and the search have to share one.
	conn, err := s.engine.Pool().Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, setting := range s.cfg.IndexQueryOptions.ParameterSettings() {
		if _, err := tx.Exec(ctx, setting); err != nil {
			return nil, err
		}
	}
	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) decodeScored(rows []map[string]any) []ScoredDocument {
	out := make([]ScoredDocument, 0, len(rows))
	for _, row := range rows {
		distance, _ := toFloat64(row["distance"])
		out = append(out, ScoredDocument{
			Document: s.decodeDocument(row),
			Distance: distance,
		})
	}
	return out
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	default:
		return 0, false
	}
}

// SimilaritySearch embeds the query text and returns the nearest
// documents, nearest first.
func (s *Store) SimilaritySearch(ctx context.Context, query string, opts SearchOptions) ([]Document, error) {
	scored, err := s.SimilaritySearchWithScore(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return stripScores(scored), nil
}

// SimilaritySearchWithScore embeds the query text and returns the nearest
// documents with their raw distances, nearest first.
func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, opts SearchOptions) ([]ScoredDocument, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.SimilaritySearchWithScoreByVector(ctx, embedding, opts)
}

// SimilaritySearchByVector returns the nearest documents to the given
// vector, nearest first.
func (s *Store) SimilaritySearchByVector(ctx context.Context, embedding []float32, opts SearchOptions) ([]Document, error) {
	scored, err := s.SimilaritySearchWithScoreByVector(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	return stripScores(scored), nil
}

// SimilaritySearchWithScoreByVector returns the nearest documents to the
// given vector with their raw distances, nearest first.
func (s *Store) SimilaritySearchWithScoreByVector(ctx context.Context, embedding []float32, opts SearchOptions) (docs []ScoredDocument, err error) {
	defer s.observe("similarity_search", time.Now(), &err)

	rows, err := s.queryCollection(ctx, embedding, opts.K, opts.Filter)
	if err != nil {
		return nil, err
	}
	return s.decodeScored(rows), nil
}

// SimilaritySearchImage embeds the image referenced by the given URI and
// returns the nearest documents. Fails with ErrImageEmbeddingUnsupported
// when the configured embedding service cannot embed images.
func (s *Store) SimilaritySearchImage(ctx context.Context, uri string, opts SearchOptions) ([]Document, error) {
	if s.imageEmbedder == nil {
		return nil, ErrImageEmbeddingUnsupported
	}
	embeddings, err := s.imageEmbedder.EmbedImages(ctx, []string{uri})
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("vectorstore: embedding service returned %d vectors for one image", len(embeddings))
	}
	return s.SimilaritySearchByVector(ctx, embeddings[0], opts)
}

// MaxMarginalRelevanceSearch embeds the query text and returns up to k
// documents selected for relevance and diversity, in selection order.
func (s *Store) MaxMarginalRelevanceSearch(ctx context.Context, query string, opts MMRSearchOptions) ([]Document, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.MaxMarginalRelevanceSearchByVector(ctx, embedding, opts)
}

// MaxMarginalRelevanceSearchByVector is the vector-input form of
// MaxMarginalRelevanceSearch.
func (s *Store) MaxMarginalRelevanceSearchByVector(ctx context.Context, embedding []float32, opts MMRSearchOptions) ([]Document, error) {
	scored, err := s.MaxMarginalRelevanceSearchWithScoreByVector(ctx, embedding, opts)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.Document
	}
	return docs, nil
}

// MaxMarginalRelevanceSearchWithScoreByVector fetches FetchK candidates by
// plain similarity order, then greedily selects K of them balancing
// relevance against diversity. The returned documents keep the distance
// from the original fetch and appear in selection order.
func (s *Store) MaxMarginalRelevanceSearchWithScoreByVector(ctx context.Context, embedding []float32, opts MMRSearchOptions) (docs []ScoredDocument, err error) {
	defer s.observe("mmr_search", time.Now(), &err)

	k := opts.K
	if k <= 0 {
		k = s.cfg.K
	}
	fetchK := opts.FetchK
	if fetchK <= 0 {
		fetchK = s.cfg.FetchK
	}
	lambda := s.cfg.LambdaMult
	if opts.LambdaMult != nil {
		lambda = *opts.LambdaMult
	}

	rows, err := s.queryCollection(ctx, embedding, fetchK, opts.Filter)
	if err != nil {
		return nil, err
	}

	candidates := make([][]float32, len(rows))
	for i, row := range rows {
		vec, parseErr := parseVector(row[s.cfg.EmbeddingColumn])
		if parseErr != nil {
			return nil, fmt.Errorf("vectorstore: failed to decode embedding column: %w", parseErr)
		}
		candidates[i] = vec
	}

	scored := s.decodeScored(rows)
	selected := maximalMarginalRelevance(embedding, candidates, lambda, k)
	docs = make([]ScoredDocument, 0, len(selected))
	for _, idx := range selected {
		docs = append(docs, scored[idx])
	}
	return docs, nil
}

func stripScores(scored []ScoredDocument) []Document {
	docs := make([]Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.Document
	}
	return docs
}
