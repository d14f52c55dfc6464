// Package watcher provides change detection for serialized documents
// stored outside the process, so that files edited by hand can be picked
// up without restarting. It supports event-driven (subscription) and
// interval-based (polling) detection.
package watcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"time"
)

// Type identifies a watcher implementation.
type Type string

const (
	// TypePolling is a watcher that reloads at regular intervals.
	TypePolling Type = "polling"

	// TypeSubscription is an event-based watcher (e.g. fsnotify).
	TypeSubscription Type = "subscription"

	// TypeNoop is a watcher that never fires, for immutable sources.
	TypeNoop Type = "noop"
)

// DefaultPollInterval is the default interval for polling watchers.
const DefaultPollInterval = 30 * time.Second

// CompareFunc reports whether the data changed between two observations.
type CompareFunc func(old, new []byte) bool

// DefaultCompare compares byte slices directly.
func DefaultCompare(old, new []byte) bool {
	return !bytes.Equal(old, new)
}

// HashCompare compares SHA-256 digests. Useful when keeping a full copy
// of the previous data is too expensive.
func HashCompare(old, new []byte) bool {
	return sha256.Sum256(old) != sha256.Sum256(new)
}

// Config configures watcher behavior.
type Config struct {
	// PollInterval is the interval between polls. Only used by polling
	// watchers.
	PollInterval time.Duration

	// Compare detects changes between observations.
	Compare CompareFunc
}

// Option is a functional option for Config.
type Option func(*Config)

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithCompare sets the comparison function used for change detection.
func WithCompare(f CompareFunc) Option {
	return func(c *Config) {
		c.Compare = f
	}
}

// NewConfig creates a Config with the given options applied over the
// defaults (DefaultPollInterval, DefaultCompare).
func NewConfig(opts ...Option) Config {
	cfg := Config{
		PollInterval: DefaultPollInterval,
		Compare:      DefaultCompare,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Result is one observation emitted by a watcher.
type Result struct {
	// Data is the latest raw data, set when a change was detected.
	Data []byte

	// Err is set if the observation failed.
	Err error
}

// NotifyFunc is called by a SubscriptionHandler when the underlying
// source may have changed, or with a non-nil err when the subscription
// itself failed (for example an event queue overflow). The watcher
// fetches and compares the data itself; subscription failures are
// forwarded to Results so a broken watch is visible to the consumer.
type NotifyFunc func(err error)

// StopFunc stops a subscription or a watcher. The context bounds any
// cleanup work.
type StopFunc func(ctx context.Context) error

// LoadFunc fetches the current raw data from the source.
type LoadFunc func(ctx context.Context) ([]byte, error)

// SubscriptionHandler registers for change notifications from a source
// that can deliver events (for example a file system).
type SubscriptionHandler interface {
	// Subscribe starts delivering notifications to notify and returns a
	// StopFunc to unsubscribe.
	Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error)
}

// Watcher observes a source and emits a Result whenever its data
// changes.
type Watcher interface {
	// Type returns the watcher type identifier.
	Type() Type

	// Start begins watching. Starting an already started watcher is a
	// no-op.
	Start(ctx context.Context) error

	// Stop stops watching and closes the Results channel.
	Stop(ctx context.Context) error

	// Results returns the channel on which observations are delivered.
	Results() <-chan Result
}
