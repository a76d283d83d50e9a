package pgengine

import "errors"

// Common engine errors
var (
	// ErrNoWorker is returned when a synchronous call is attempted on an
	// engine that was created from an external pool and therefore has no
	// background worker.
	ErrNoWorker = errors.New("pgengine: engine has no background worker; create it with NewEngine to drive it synchronously")

	// ErrEngineClosed is returned when a synchronous call is attempted
	// after Close.
	ErrEngineClosed = errors.New("pgengine: engine is closed")
)

// IsNoWorkerError checks if the error indicates a worker-less engine.
func IsNoWorkerError(err error) bool {
	return errors.Is(err, ErrNoWorker)
}
