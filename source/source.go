// Package source provides interfaces and implementations for the places
// a serialized document lives. A source handles raw bytes only; encoding
// and decoding are the concern of the mapfile codec.
package source

import (
	"context"
	"errors"

	"github.com/mapfile/go/watcher"
)

// ErrSaveNotSupported is returned when Save is called on a read-only
// source.
var ErrSaveNotSupported = errors.New("save not supported for this source")

// ErrWatchNotSupported is returned when a caller asks to watch a source
// that does not implement Watchable.
var ErrWatchNotSupported = errors.New("watch not supported for this source")

// Type identifies a source implementation.
type Type string

const (
	// TypeFS is a file system source.
	TypeFS Type = "fs"

	// TypeBytes is an in-memory source.
	TypeBytes Type = "bytes"
)

// UpdateFunc produces the data to save. It receives the current bytes of
// the source so callers can merge with external edits instead of blindly
// overwriting them.
type UpdateFunc func(current []byte) ([]byte, error)

// Source loads and optionally saves raw document data. Implementations
// are format-agnostic.
type Source interface {
	// Load reads the raw data from the source.
	Load(ctx context.Context) ([]byte, error)

	// Save writes data back to the source. The updateFunc receives the
	// current contents; implementations should write its result
	// atomically. Returns ErrSaveNotSupported for read-only sources.
	Save(ctx context.Context, updateFunc UpdateFunc) error

	// CanSave reports whether the source supports saving.
	CanSave() bool

	// Type returns the source type identifier.
	Type() Type
}

// Watchable is implemented by sources whose data can change behind the
// process's back, such as files edited by hand.
type Watchable interface {
	// Watch returns a watcher over this source, configured with cfg.
	Watch(cfg watcher.Config) (watcher.Watcher, error)
}
