package metrics

import (
	"github.com/Aleph-Alpha/pgvec/v1/vectorstore"
)

// StoreObserver adapts a Metrics instance to the vectorstore.Observer
// interface, recording one counter increment and one duration observation
// per store operation.
type StoreObserver struct {
	metrics *Metrics
}

// NewStoreObserver creates an observer backed by the given Metrics instance.
//
//	store, err := vectorstore.NewStore(ctx, engine, embedder, vectorstore.Config{
//	    TableName: "documents",
//	    Observer:  metrics.NewStoreObserver(m),
//	})
func NewStoreObserver(m *Metrics) *StoreObserver {
	return &StoreObserver{metrics: m}
}

// ObserveOperation records the outcome and duration of a store operation.
func (o *StoreObserver) ObserveOperation(op vectorstore.OperationContext) {
	if o == nil || o.metrics == nil {
		return
	}

	status := "ok"
	if op.Err != nil {
		status = "error"
	}

	o.metrics.operationsTotal.WithLabelValues(op.Operation, op.Table, status).Inc()
	o.metrics.operationDuration.WithLabelValues(op.Operation, op.Table).Observe(op.Duration.Seconds())
}
