package vectorstore

import (
	"fmt"
	"strings"
)

// DefaultIndexNameSuffix is appended to the table name when an index is
// created without an explicit name.
const DefaultIndexNameSuffix = "vectorindex"

// VectorIndex describes an ANN index over the embedding column. Each
// implementation knows its access method and its build-time options.
type VectorIndex interface {
	// IndexType is the PostgreSQL access method, e.g. "hnsw".
	IndexType() string
	// IndexOptions renders the WITH clause of CREATE INDEX, or the empty
	// string when the method takes no options.
	IndexOptions() string
	// Extension names the PostgreSQL extension providing the access
	// method, empty when plain pgvector suffices.
	Extension() string
}

// QueryOptions are per-query tuning knobs applied with SET LOCAL inside
// the search transaction.
type QueryOptions interface {
	// ParameterSettings renders the SET LOCAL statements for this search.
	ParameterSettings() []string
}

// HNSWIndex builds a hierarchical navigable small world graph. The
// defaults match pgvector's.
type HNSWIndex struct {
	M              int
	EfConstruction int
}

// NewHNSWIndex returns an HNSW index with pgvector's default build
// parameters.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{M: 16, EfConstruction: 64}
}

func (i *HNSWIndex) IndexType() string { return "hnsw" }

func (i *HNSWIndex) IndexOptions() string {
	return fmt.Sprintf("(m = %d, ef_construction = %d)", i.M, i.EfConstruction)
}

func (i *HNSWIndex) Extension() string { return "" }

// HNSWQueryOptions tune the search-time candidate list size.
type HNSWQueryOptions struct {
	EfSearch int
}

func (o *HNSWQueryOptions) ParameterSettings() []string {
	return []string{fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", o.EfSearch)}
}

// IVFFlatIndex partitions vectors into lists and probes a subset at
// query time.
type IVFFlatIndex struct {
	Lists int
}

// NewIVFFlatIndex returns an IVFFlat index with pgvector's default list
// count.
func NewIVFFlatIndex() *IVFFlatIndex {
	return &IVFFlatIndex{Lists: 100}
}

func (i *IVFFlatIndex) IndexType() string { return "ivfflat" }

func (i *IVFFlatIndex) IndexOptions() string {
	return fmt.Sprintf("(lists = %d)", i.Lists)
}

func (i *IVFFlatIndex) Extension() string { return "" }

// IVFFlatQueryOptions set how many lists are probed per search.
type IVFFlatQueryOptions struct {
	Probes int
}

func (o *IVFFlatQueryOptions) ParameterSettings() []string {
	return []string{fmt.Sprintf("SET LOCAL ivfflat.probes = %d", o.Probes)}
}

// IVFIndex is the quantizing IVF variant shipped by some managed
// PostgreSQL offerings.
type IVFIndex struct {
	Lists     int
	Quantizer string
}

// NewIVFIndex returns an IVF index with default list count and scalar
// quantizer.
func NewIVFIndex() *IVFIndex {
	return &IVFIndex{Lists: 100, Quantizer: "sq8"}
}

func (i *IVFIndex) IndexType() string { return "ivf" }

func (i *IVFIndex) IndexOptions() string {
	return fmt.Sprintf("(lists = %d, quantizer = %s)", i.Lists, i.Quantizer)
}

func (i *IVFIndex) Extension() string { return "" }

// IVFQueryOptions set how many lists are probed per search.
type IVFQueryOptions struct {
	Probes int
}

func (o *IVFQueryOptions) ParameterSettings() []string {
	return []string{fmt.Sprintf("SET LOCAL ivf.probes = %d", o.Probes)}
}

// ScaNNIndex builds a tree quantization index; it requires the
// alloydb_scann extension.
type ScaNNIndex struct {
	NumLeaves int
	Quantizer string
}

// NewScaNNIndex returns a ScaNN index with default build parameters.
func NewScaNNIndex() *ScaNNIndex {
	return &ScaNNIndex{NumLeaves: 5, Quantizer: "sq8"}
}

func (i *ScaNNIndex) IndexType() string { return "ScaNN" }

func (i *ScaNNIndex) IndexOptions() string {
	return fmt.Sprintf("(num_leaves = %d, quantizer = %s)", i.NumLeaves, i.Quantizer)
}

func (i *ScaNNIndex) Extension() string { return "alloydb_scann" }

// ScaNNQueryOptions tune the leaf scan breadth and the pre-reordering
// candidate count.
type ScaNNQueryOptions struct {
	NumLeavesToSearch         int
	PreReorderingNumNeighbors int
}

func (o *ScaNNQueryOptions) ParameterSettings() []string {
	return []string{
		fmt.Sprintf("SET LOCAL scann.num_leaves_to_search = %d", o.NumLeavesToSearch),
		fmt.Sprintf("SET LOCAL scann.pre_reordering_num_neighbors = %d", o.PreReorderingNumNeighbors),
	}
}

// ExactNearestNeighbor disables ANN indexing: searches scan the whole
// table. Applying it drops any existing vector index.
type ExactNearestNeighbor struct{}

func (ExactNearestNeighbor) IndexType() string    { return "exactnearestneighbor" }
func (ExactNearestNeighbor) IndexOptions() string { return "" }
func (ExactNearestNeighbor) Extension() string    { return "" }

// defaultIndexName derives the index name from the table.
func defaultIndexName(table string) string {
	return strings.ToLower(table) + DefaultIndexNameSuffix
}
