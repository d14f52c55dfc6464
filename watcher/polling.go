package watcher

import (
	"context"
	"sync"
	"time"
)

// pollingWatcher reloads the source at a fixed interval and emits a
// Result when the data differs from the previous observation. It is the
// fallback for sources that cannot deliver change events.
type pollingWatcher struct {
	load LoadFunc
	cfg  Config

	results chan Result
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewPolling creates an interval-based Watcher. The interval and the
// comparison function come from cfg.
func NewPolling(load LoadFunc, cfg Config) Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Compare == nil {
		cfg.Compare = DefaultCompare
	}
	return &pollingWatcher{load: load, cfg: cfg}
}

func (w *pollingWatcher) Type() Type {
	return TypePolling
}

func (w *pollingWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	w.results = make(chan Result)
	w.stopCh = make(chan struct{})

	last, err := w.load(ctx)
	if err != nil {
		last = nil
	}

	w.running = true
	go w.run(ctx, last)
	return nil
}

func (w *pollingWatcher) run(ctx context.Context, last []byte) {
	defer close(w.results)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
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

func (w *pollingWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *pollingWatcher) Results() <-chan Result {
	return w.results
}
