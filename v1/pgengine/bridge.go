package pgengine

import (
	"context"
	"sync"
)

// task is one unit of work submitted to the background worker.
type task struct {
	fn   func(ctx context.Context) error
	done chan error
}

// worker serializes synchronous callers onto a single background goroutine,
// mirroring the dedicated event loop the asynchronous surface would own in
// a cooperative runtime. All tasks run with a background context: a caller
// abandoning the blocking call does not cancel the statement.
type worker struct {
	tasks chan *task

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newWorker() *worker {
	w := &worker{tasks: make(chan *task)}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *worker) run() {
	defer w.wg.Done()
	for t := range w.tasks {
		t.done <- t.fn(context.Background())
	}
}

// submit enqueues fn onto the worker and blocks until it completes.
func (w *worker) submit(fn func(ctx context.Context) error) error {
	t := &task{fn: fn, done: make(chan error, 1)}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrEngineClosed
	}
	w.tasks <- t
	w.mu.Unlock()

	return <-t.done
}

// stop waits for in-flight tasks and shuts the worker goroutine down.
func (w *worker) stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.tasks)
	w.mu.Unlock()

	w.wg.Wait()
}

// RunSync executes fn on the engine's background worker and blocks the
// calling goroutine until it completes. Any error fn returns is surfaced
// to the caller unchanged.
//
// Engines created via NewEngineFromPool have no worker and return
// ErrNoWorker.
func (e *Engine) RunSync(fn func(ctx context.Context) error) error {
	if e.worker == nil {
		return ErrNoWorker
	}
	return e.worker.submit(fn)
}

// Await runs fn on the engine's background worker, blocks until it
// completes, and returns its result. It is the value-returning counterpart
// of RunSync used by the synchronous store facade.
func Await[T any](e *Engine, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.RunSync(func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
