// Package fs provides a file system backed source. Saves are atomic
// (temp file + rename) and the parent directory is watched with fsnotify
// so external edits, including editors that replace the file, are
// detected.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mapfile/go/source"
	"github.com/mapfile/go/watcher"
)

// Default permission modes.
const (
	DefaultFileMode = 0644
	DefaultDirMode  = 0755
)

// Source loads and saves raw document data from/to a file.
type Source struct {
	path     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

var _ source.Source = (*Source)(nil)
var _ source.Watchable = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithFileMode sets the file permission mode used when saving.
// Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.fileMode = mode
	}
}

// WithDirMode sets the permission mode used when creating parent
// directories. Default is 0755.
func WithDirMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.dirMode = mode
	}
}

// New creates a source that reads from and writes to a file. The path
// can be absolute or relative; tilde (~) expansion is supported.
//
// Example:
//
//	src := fs.New("~/.local/share/app/players.txt")
//	src := fs.New("world.txt", fs.WithFileMode(0600))
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		fileMode: DefaultFileMode,
		dirMode:  DefaultDirMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path the source was created with.
func (s *Source) Path() string {
	return s.path
}

// Load implements source.Source.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := expandTilde(s.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", s.path, err)
	}
	return data, nil
}

// Save implements source.Source. The updateFunc receives the current
// file contents (nil if the file does not exist yet) and its result is
// written to a temporary file in the same directory, synced, and renamed
// over the target. Parent directories are created as needed.
func (s *Source) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := expandTilde(s.path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read current file %q: %w", s.path, err)
		}
		current = nil
	}

	newData, err := updateFunc(current)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mapfile-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(newData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, s.fileMode); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file to %q: %w", path, err)
	}

	success = true
	return nil
}

// CanSave returns true; file sources support saving.
func (s *Source) CanSave() bool {
	return true
}

// Type returns the source type identifier.
func (s *Source) Type() source.Type {
	return source.TypeFS
}

// Watch implements source.Watchable using an fsnotify subscription.
func (s *Source) Watch(cfg watcher.Config) (watcher.Watcher, error) {
	return watcher.NewSubscription(s, s.Load, cfg), nil
}

// Subscribe implements watcher.SubscriptionHandler. The parent directory
// is watched rather than the file itself so that atomic replaces (temp
// file + rename) and recreation after deletion keep being observed.
func (s *Source) Subscribe(ctx context.Context, notify watcher.NotifyFunc) (watcher.StopFunc, error) {
	path, err := expandTilde(s.path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	filename := filepath.Base(path)

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filename {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					notify(nil)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				notify(fmt.Errorf("failed to watch %q: %w", s.path, err))
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(ctx context.Context) error {
		return w.Close()
	}, nil
}

// expandTilde expands a leading tilde to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand home directory: %w", err)
	}

	if len(path) == 1 {
		return home, nil
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
