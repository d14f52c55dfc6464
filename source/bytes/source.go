// Package bytes provides a read-only in-memory source, mainly for tests
// and embedded defaults. Save operations return ErrSaveNotSupported.
package bytes

import (
	"context"

	"github.com/mapfile/go/source"
	"github.com/mapfile/go/watcher"
)

// Source serves raw document data from a byte slice.
type Source struct {
	data []byte
}

var _ source.Source = (*Source)(nil)
var _ source.Watchable = (*Source)(nil)

// New creates a source from raw bytes.
func New(data []byte) *Source {
	return &Source{data: data}
}

// FromString creates a source from a string.
//
// Example:
//
//	src := bytes.FromString("name=Avery\n")
func FromString(data string) *Source {
	return New([]byte(data))
}

// Load implements source.Source. It returns a copy so callers cannot
// modify the source data.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make([]byte, len(s.data))
	copy(result, s.data)
	return result, nil
}

// Save implements source.Source and always returns ErrSaveNotSupported.
func (s *Source) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	return source.ErrSaveNotSupported
}

// CanSave returns false; byte slice sources are read-only.
func (s *Source) CanSave() bool {
	return false
}

// Type returns the source type identifier.
func (s *Source) Type() source.Type {
	return source.TypeBytes
}

// Watch implements source.Watchable with a watcher that never fires,
// because the data cannot change.
func (s *Source) Watch(cfg watcher.Config) (watcher.Watcher, error) {
	return watcher.NewNoop(), nil
}
