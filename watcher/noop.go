package watcher

import (
	"context"
	"sync"
)

// noopWatcher implements Watcher but never reports changes. Used for
// immutable sources, where "watching" is well-defined but trivial.
type noopWatcher struct {
	results chan Result
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewNoop creates a Watcher that never emits a Result. Immutable sources
// return it so that callers can watch any source uniformly.
func NewNoop() Watcher {
	return &noopWatcher{}
}

func (w *noopWatcher) Type() Type {
	return TypeNoop
}

func (w *noopWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.results = make(chan Result)
	w.stopCh = make(chan struct{})

	go func() {
		defer close(w.results)
		select {
		case <-ctx.Done():
		case <-w.stopCh:
		}
	}()
	return nil
}

func (w *noopWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *noopWatcher) Results() <-chan Result {
	return w.results
}
