package vectorstore

import (
	"fmt"
	"math"
)

// DistanceStrategy selects the similarity metric governing nearest-neighbor
// ordering and relevance scoring. It is fixed per store instance.
type DistanceStrategy int

const (
	// CosineDistance orders by the pgvector <=> operator. Default.
	CosineDistance DistanceStrategy = iota

	// EuclideanDistance orders by the pgvector <-> operator.
	EuclideanDistance

	// InnerProduct orders by the pgvector <#> operator.
	InnerProduct
)

func (s DistanceStrategy) String() string {
	switch s {
	case CosineDistance:
		return "cosine"
	case EuclideanDistance:
		return "euclidean"
	case InnerProduct:
		return "innerProduct"
	default:
		return fmt.Sprintf("DistanceStrategy(%d)", int(s))
	}
}

// Operator returns the pgvector ordering operator for ORDER BY clauses.
func (s DistanceStrategy) Operator() string {
	switch s {
	case EuclideanDistance:
		return "<->"
	case InnerProduct:
		return "<#>"
	default:
		return "<=>"
	}
}

// SearchFunction returns the scalar distance function used in the SELECT
// list to report each row's distance.
func (s DistanceStrategy) SearchFunction() string {
	switch s {
	case EuclideanDistance:
		return "l2_distance"
	case InnerProduct:
		return "inner_product"
	default:
		return "cosine_distance"
	}
}

// IndexFunction returns the pgvector operator class used when building an
// index for this strategy.
func (s DistanceStrategy) IndexFunction() string {
	switch s {
	case EuclideanDistance:
		return "vector_l2_ops"
	case InnerProduct:
		return "vector_ip_ops"
	default:
		return "vector_cosine_ops"
	}
}

// RelevanceScore maps a raw distance to a bounded relevance score.
// Cosine and inner-product scores are monotonic transforms into [0, 1];
// the Euclidean transform assumes unit-norm embeddings.
func (s DistanceStrategy) RelevanceScore(distance float64) float64 {
	switch s {
	case EuclideanDistance:
		return 1 - distance/math.Sqrt2
	case InnerProduct:
		if distance > 0 {
			return 1 - distance
		}
		return -distance
	default:
		return 1 - distance
	}
}

func (s DistanceStrategy) validate() error {
	switch s {
	case CosineDistance, EuclideanDistance, InnerProduct:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedDistanceStrategy, int(s))
	}
}
