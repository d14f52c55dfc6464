package mapfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/mapfile/go/document"
	"github.com/mapfile/go/source"
	"github.com/mapfile/go/watcher"
)

// Store binds a source to the codec: it loads and parses a document from
// the source, writes documents back, and can watch the source for
// external edits. A Store serializes its own operations; the Documents
// it hands out must be treated as read-only.
type Store struct {
	src       source.Source
	parseOpts []ParseOption
	watchOpts []watcher.Option

	mu  sync.Mutex
	doc *document.Document
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithParseOptions sets the parse options used by Load and Watch.
func WithParseOptions(opts ...ParseOption) StoreOption {
	return func(s *Store) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// WithWatchOptions sets the watcher configuration used by Watch.
func WithWatchOptions(opts ...watcher.Option) StoreOption {
	return func(s *Store) {
		s.watchOpts = append(s.watchOpts, opts...)
	}
}

// NewStore creates a Store over the given source.
//
// Example:
//
//	store := mapfile.NewStore(fs.New("players.txt"))
//	doc, err := store.Load(ctx)
func NewStore(src source.Source, opts ...StoreOption) *Store {
	s := &Store{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the source and parses it into a fresh Document, replacing
// the cached one. Any prior content of the cache is discarded.
func (s *Store) Load(ctx context.Context) (*document.Document, error) {
	data, err := s.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	doc, err := Parse(data, s.parseOpts...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return doc, nil
}

// Document returns the most recently loaded Document, or nil if Load has
// not succeeded yet.
func (s *Store) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Save encodes a map-shaped value (Document, map, or Storable) and
// writes it to the source. The canonical sorted form is written
// regardless of what the source currently contains.
func (s *Store) Save(ctx context.Context, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return s.src.Save(ctx, func(current []byte) ([]byte, error) {
		return data, nil
	})
}

// Watch observes the source for external changes, reparsing on every
// change and invoking fn with the new Document (or with the load/parse
// error). The cached Document is updated on success. Returns a StopFunc,
// or ErrWatchNotSupported if the source cannot be watched.
func (s *Store) Watch(ctx context.Context, fn func(*document.Document, error)) (watcher.StopFunc, error) {
	ws, ok := s.src.(source.Watchable)
	if !ok {
		return nil, source.ErrWatchNotSupported
	}

	w, err := ws.Watch(watcher.NewConfig(s.watchOpts...))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	go func() {
		for res := range w.Results() {
			if res.Err != nil {
				fn(nil, res.Err)
				continue
			}
			doc, err := Parse(res.Data, s.parseOpts...)
			if err != nil {
				fn(nil, err)
				continue
			}
			s.mu.Lock()
			s.doc = doc
			s.mu.Unlock()
			fn(doc, nil)
		}
	}()

	return w.Stop, nil
}
