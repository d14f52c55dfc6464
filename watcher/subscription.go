package watcher

import (
	"context"
	"sync"
)

// subscriptionWatcher turns source notifications into Results. The
// handler only signals that something may have changed; the watcher
// fetches the data itself and compares it against the last observation,
// so spurious events never reach the consumer.
type subscriptionWatcher struct {
	handler SubscriptionHandler
	load    LoadFunc
	cfg     Config

	trigger chan struct{}
	errCh   chan error
	results chan Result
	stopCh  chan struct{}
	stopFn  StopFunc

	mu      sync.Mutex
	running bool
}

// NewSubscription creates an event-driven Watcher. load fetches the
// current data whenever the handler reports a change.
func NewSubscription(handler SubscriptionHandler, load LoadFunc, cfg Config) Watcher {
	if cfg.Compare == nil {
		cfg.Compare = DefaultCompare
	}
	return &subscriptionWatcher{handler: handler, load: load, cfg: cfg}
}

func (w *subscriptionWatcher) Type() Type {
	return TypeSubscription
}

func (w *subscriptionWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	w.trigger = make(chan struct{}, 1)
	w.errCh = make(chan error, 1)
	w.results = make(chan Result)
	w.stopCh = make(chan struct{})

	// Baseline observation. A load failure here (e.g. the file does not
	// exist yet) just means the first successful load counts as a change.
	last, err := w.load(ctx)
	if err != nil {
		last = nil
	}

	stopFn, err := w.handler.Subscribe(ctx, func(err error) {
		if err != nil {
			select {
			case w.errCh <- err:
			default:
			}
			return
		}
		// Coalesce bursts of notifications into one pending trigger.
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		// The run goroutine never starts, so close Results here: a
		// consumer that grabbed the channel must not block forever.
		close(w.results)
		return err
	}
	w.stopFn = stopFn
	w.running = true

	go w.run(ctx, last)
	return nil
}

// run owns the last-observed data: all loads, comparisons, and sends
// happen on this goroutine.
func (w *subscriptionWatcher) run(ctx context.Context, last []byte) {
	defer close(w.results)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case err := <-w.errCh:
			select {
			case w.results <- Result{Err: err}:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		case <-w.trigger:
			data, err := w.load(ctx)
			var r Result
			switch {
			case err != nil:
				r = Result{Err: err}
			case w.cfg.Compare(last, data):
				last = data
				r = Result{Data: data}
			default:
				continue
			}
			select {
			case w.results <- r:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

func (w *subscriptionWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	if w.stopFn != nil {
		return w.stopFn(ctx)
	}
	return nil
}

func (w *subscriptionWatcher) Results() <-chan Result {
	return w.results
}
