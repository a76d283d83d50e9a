package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/pgvec/v1/vectorstore"
)

var _ vectorstore.Observer = (*StoreObserver)(nil)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{Address: ":0", ServiceName: "test"})
	obs := NewStoreObserver(m)

	obs.ObserveOperation(vectorstore.OperationContext{
		Operation: "similarity_search",
		Table:     "documents",
		Duration:  15 * time.Millisecond,
	})
	obs.ObserveOperation(vectorstore.OperationContext{
		Operation: "similarity_search",
		Table:     "documents",
		Duration:  5 * time.Millisecond,
		Err:       errors.New("boom"),
	})

	ok := testutil.ToFloat64(m.operationsTotal.WithLabelValues("similarity_search", "documents", "ok"))
	assert.Equal(t, 1.0, ok)
	failed := testutil.ToFloat64(m.operationsTotal.WithLabelValues("similarity_search", "documents", "error"))
	assert.Equal(t, 1.0, failed)

	count, err := testutil.GatherAndCount(m.Registry,
		"vectorstore_operations_total", "vectorstore_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestObserveOperation_NilSafe(t *testing.T) {
	var obs *StoreObserver
	// Should not panic.
	obs.ObserveOperation(vectorstore.OperationContext{Operation: "delete", Table: "documents"})
}
