// Package logger provides structured logging for the pgvec library.
//
// It wraps Uber's Zap logger behind the simplified (msg, err, fields)
// surface that the other pgvec packages accept as their optional logger.
// Packages in this library never require a logger; pass one through their
// Config to enable logging.
//
// # Direct Usage (Without FX)
//
//	import "github.com/Aleph-Alpha/pgvec/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "ingest-worker",
//	})
//
//	log.Info("store ready", nil, map[string]interface{}{
//		"table": "documents",
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Info, ServiceName: "ingest-worker"}
//		}),
//	)
package logger
