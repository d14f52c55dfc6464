package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSource is an in-memory SubscriptionHandler with mutable data.
type fakeSource struct {
	mu           sync.Mutex
	data         []byte
	loadErr      error
	subscribeErr error
	notify       NotifyFunc
}

func (f *fakeSource) Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.notify = notify
	return func(ctx context.Context) error { return nil }, nil
}

func (f *fakeSource) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeSource) set(data []byte) {
	f.mu.Lock()
	f.data = data
	notify := f.notify
	f.mu.Unlock()
	if notify != nil {
		notify(nil)
	}
}

func waitResult(t *testing.T, w Watcher) Result {
	t.Helper()
	select {
	case res := <-w.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Result{}
	}
}

func TestSubscriptionWatcherEmitsChanges(t *testing.T) {
	src := &fakeSource{data: []byte("v=1\n")}
	w := NewSubscription(src, src.Load, NewConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop(context.Background())

	if w.Type() != TypeSubscription {
		t.Errorf("Type() = %q", w.Type())
	}

	src.set([]byte("v=2\n"))
	res := waitResult(t, w)
	if res.Err != nil {
		t.Fatalf("Result error: %v", res.Err)
	}
	if string(res.Data) != "v=2\n" {
		t.Errorf("Result data = %q", res.Data)
	}
}

func TestSubscriptionWatcherIgnoresSpuriousNotifications(t *testing.T) {
	src := &fakeSource{data: []byte("same\n")}
	w := NewSubscription(src, src.Load, NewConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop(context.Background())

	// Data did not change, so no result should arrive.
	src.set([]byte("same\n"))

	select {
	case res := <-w.Results():
		t.Fatalf("unexpected result: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSubscriptionWatcherReportsLoadErrors(t *testing.T) {
	src := &fakeSource{data: []byte("v=1\n")}
	w := NewSubscription(src, src.Load, NewConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop(context.Background())

	boom := errors.New("boom")
	src.mu.Lock()
	src.loadErr = boom
	notify := src.notify
	src.mu.Unlock()
	notify(nil)

	res := waitResult(t, w)
	if !errors.Is(res.Err, boom) {
		t.Errorf("Result error = %v, want the load error", res.Err)
	}
}

func TestSubscriptionWatcherForwardsHandlerErrors(t *testing.T) {
	src := &fakeSource{data: []byte("v=1\n")}
	w := NewSubscription(src, src.Load, NewConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop(context.Background())

	// A failure inside the subscription itself (not a data change) must
	// surface on Results, or the consumer never learns the watch broke.
	overflow := errors.New("event queue overflow")
	src.mu.Lock()
	notify := src.notify
	src.mu.Unlock()
	notify(overflow)

	res := waitResult(t, w)
	if !errors.Is(res.Err, overflow) {
		t.Errorf("Result error = %v, want the handler error", res.Err)
	}
	if res.Data != nil {
		t.Errorf("Result data = %q, want none", res.Data)
	}

	// The watch keeps running after reporting the failure.
	src.set([]byte("v=2\n"))
	res = waitResult(t, w)
	if res.Err != nil || string(res.Data) != "v=2\n" {
		t.Errorf("Result after handler error = %+v", res)
	}
}

func TestSubscriptionWatcherSubscribeFailure(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{subscribeErr: boom}
	w := NewSubscription(src, src.Load, NewConfig())

	if err := w.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want the subscribe error", err)
	}

	// Results must not leave a consumer blocked after a failed Start.
	select {
	case _, ok := <-w.Results():
		if ok {
			t.Error("Results should be closed after a failed Start")
		}
	case <-time.After(time.Second):
		t.Error("Results channel not closed after a failed Start")
	}
}

func TestSubscriptionWatcherStopClosesResults(t *testing.T) {
	src := &fakeSource{}
	w := NewSubscription(src, src.Load, NewConfig())

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	select {
	case _, ok := <-w.Results():
		if ok {
			t.Error("Results should be closed after Stop")
		}
	case <-time.After(time.Second):
		t.Error("Results channel not closed after Stop")
	}

	// Stopping twice is a no-op.
	if err := w.Stop(ctx); err != nil {
		t.Errorf("second Stop() error: %v", err)
	}
}

func TestPollingWatcherEmitsChanges(t *testing.T) {
	src := &fakeSource{data: []byte("v=1\n")}
	w := NewPolling(src.Load, NewConfig(WithPollInterval(10*time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop(context.Background())

	if w.Type() != TypePolling {
		t.Errorf("Type() = %q", w.Type())
	}

	src.mu.Lock()
	src.data = []byte("v=2\n")
	src.mu.Unlock()

	res := waitResult(t, w)
	if res.Err != nil {
		t.Fatalf("Result error: %v", res.Err)
	}
	if string(res.Data) != "v=2\n" {
		t.Errorf("Result data = %q", res.Data)
	}
}

func TestNoopWatcherNeverFires(t *testing.T) {
	w := NewNoop()
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if w.Type() != TypeNoop {
		t.Errorf("Type() = %q", w.Type())
	}

	select {
	case res := <-w.Results():
		t.Fatalf("unexpected result: %+v", res)
	case <-time.After(100 * time.Millisecond):
	}

	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}

func TestCompareFuncs(t *testing.T) {
	if DefaultCompare([]byte("a"), []byte("a")) {
		t.Error("DefaultCompare should report equal data as unchanged")
	}
	if !DefaultCompare([]byte("a"), []byte("b")) {
		t.Error("DefaultCompare should report different data as changed")
	}
	if HashCompare([]byte("a"), []byte("a")) {
		t.Error("HashCompare should report equal data as unchanged")
	}
	if !HashCompare([]byte("a"), []byte("b")) {
		t.Error("HashCompare should report different data as changed")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.Compare == nil {
		t.Error("Compare should default to DefaultCompare")
	}

	cfg = NewConfig(WithPollInterval(time.Second), WithCompare(HashCompare))
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
}
