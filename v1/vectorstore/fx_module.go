package vectorstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
)

// FXModule provides the store (and its synchronous facade) to an fx
// application.
//
// Usage:
//
//	app := fx.New(
//	    pgengine.FXModule,
//	    vectorstore.FXModule,
//	    fx.Provide(pgengine.NewConfig, newStoreConfig, newEmbedder),
//	)
var FXModule = fx.Module("vectorstore",
	fx.Provide(
		NewStoreWithDI,
		NewSyncStore,
	),
)

// StoreParams groups the dependencies needed to create a store.
type StoreParams struct {
	fx.In

	Engine   *pgengine.Engine
	Embedder EmbeddingService
	Config   Config
	Logger   Logger   `optional:"true"`
	Observer Observer `optional:"true"`
}

// NewStoreWithDI creates a new store using dependency injection. Optional
// logger and observer instances available in the container are injected
// into the config before delegating to NewStore.
func NewStoreWithDI(params StoreParams) (*Store, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}
	if params.Observer != nil {
		params.Config.Observer = params.Observer
	}
	return NewStore(context.Background(), params.Engine, params.Embedder, params.Config)
}
