package vectorstore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-length or mismatched vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// maximalMarginalRelevance selects up to k candidate indices balancing
// relevance to the query against diversity among the already selected
// set. lambda 1 is pure relevance, lambda 0 pure diversity. The returned
// indices are in selection order, most relevant pick first.
func maximalMarginalRelevance(query []float32, candidates [][]float32, lambda float64, k int) []int {
	if k <= 0 || len(candidates) == 0 {
		return []int{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		relevance[i] = cosineSimilarity(query, c)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, len(candidates))

	// Seed with the most relevant candidate.
	best := 0
	for i := 1; i < len(candidates); i++ {
		if relevance[i] > relevance[best] {
			best = i
		}
	}
	selected = append(selected, best)
	picked[best] = true

	// maxRedundancy[i] tracks the highest similarity of candidate i to any
	// selected candidate, updated incrementally per pick.
	maxRedundancy := make([]float64, len(candidates))
	for i := range candidates {
		maxRedundancy[i] = cosineSimilarity(candidates[i], candidates[best])
	}

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range candidates {
			if picked[i] {
				continue
			}
			score := lambda*relevance[i] - (1-lambda)*maxRedundancy[i]
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, bestIdx)
		picked[bestIdx] = true
		for i := range candidates {
			if picked[i] {
				continue
			}
			if sim := cosineSimilarity(candidates[i], candidates[bestIdx]); sim > maxRedundancy[i] {
				maxRedundancy[i] = sim
			}
		}
	}
	return selected
}

// parseVector decodes the pgvector text representation "[1,2,3]" into a
// float32 slice. Drivers return the column either as string or raw bytes.
func parseVector(raw any) ([]float32, error) {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case []float32:
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected vector representation %T", raw)
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")
	if text == "" {
		return []float32{}, nil
	}
	parts := strings.Split(text, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector element %q: %w", p, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// encodeVector renders a float32 slice as a pgvector text literal so it
// can be bound as a query parameter.
func encodeVector(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
