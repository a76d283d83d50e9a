package pgengine

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the engine to an fx application and ties its shutdown
// to the application lifecycle.
//
// Usage:
//
//	app := fx.New(
//	    pgengine.FXModule,
//	    fx.Provide(pgengine.NewConfig),
//	)
var FXModule = fx.Module("pgengine",
	fx.Provide(
		NewEngineWithDI,
	),
	fx.Invoke(RegisterEngineLifecycle),
)

// EngineParams groups the dependencies needed to create an engine.
type EngineParams struct {
	fx.In

	Config Config
	Logger Logger `optional:"true"`
}

// NewEngineWithDI creates a new engine using dependency injection. If an
// optional logger is available in the container it is injected into the
// config before delegating to NewEngine.
func NewEngineWithDI(params EngineParams) (*Engine, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}
	return NewEngine(context.Background(), params.Config)
}

// RegisterEngineLifecycle closes the engine (worker and pool) on
// application shutdown.
func RegisterEngineLifecycle(lc fx.Lifecycle, e *Engine) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			e.Close()
			return nil
		},
	})
}
