package embedding

import (
	"go.uber.org/fx"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - Config   (NewConfig)
//   - *Client  (NewClient)
//
// Bind the client to the vectorstore interface in the application:
//
//	fx.Provide(func(c *embedding.Client) vectorstore.EmbeddingService { return c })
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig, // -> *Config
		NewClient, // -> *Client
	),
)
