package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// FileBackend stores one namespace as a flat JSON object at
// <dir>/<namespace>.json. Values are cached in memory after open and every
// write rewrites the file atomically before returning.
type FileBackend struct {
	path string
	vals *values

	// mu serializes cache mutation with persistence and reloads.
	mu          sync.Mutex
	lastWritten []byte
}

// FileOpener returns an OpenFunc that keeps each namespace in its own file
// under dir.
func FileOpener(dir string) OpenFunc {
	return func(namespace string) (Backend, error) {
		return OpenFileBackend(filepath.Join(dir, namespace+".json"))
	}
}

// OpenFileBackend loads path, creating its directory if needed. A missing
// file is an empty region; an unparsable one is logged and treated as empty.
func OpenFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating preferences dir: %w", err)
	}
	b := &FileBackend{path: path, vals: newValues()}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Path is the file backing this region.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) load() error {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading preferences file %s: %w", b.path, err)
	}
	m, err := decodeValues(data)
	if err != nil {
		slog.Warn("could not parse preferences file, using default values", "path", b.path, "error", err)
		return nil
	}
	b.vals.replace(m)
	b.lastWritten = data
	return nil
}

func decodeValues(data []byte) (map[string]any, error) {
	m := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// save must be called with b.mu held.
func (b *FileBackend) save() error {
	data, err := json.MarshalIndent(b.vals.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := b.path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing preferences file: %w", err)
	}
	b.lastWritten = data
	return nil
}

// write applies fn to the cache and persists it. If the file cannot be
// written the cached entry for key is put back as it was.
func (b *FileBackend) write(key string, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, had := b.vals.get(key)
	fn()
	if err := b.save(); err != nil {
		if had {
			b.vals.set(key, prev)
		} else {
			b.vals.delete(key)
		}
		return err
	}
	return nil
}

func (b *FileBackend) GetBool(key string) (bool, bool, error) {
	return b.vals.getBool(key)
}

func (b *FileBackend) GetInt(key string) (int32, bool, error) {
	return b.vals.getInt(key)
}

func (b *FileBackend) GetFloat(key string) (float32, bool, error) {
	return b.vals.getFloat(key)
}

func (b *FileBackend) GetString(key string) (string, bool, error) {
	return b.vals.getString(key)
}

func (b *FileBackend) SetBool(key string, val bool) error {
	return b.write(key, func() { b.vals.set(key, val) })
}

func (b *FileBackend) SetInt(key string, val int32) error {
	return b.write(key, func() { b.vals.set(key, val) })
}

func (b *FileBackend) SetFloat(key string, val float32) error {
	if err := checkFinite(key, val); err != nil {
		return err
	}
	return b.write(key, func() { b.vals.set(key, val) })
}

func (b *FileBackend) SetString(key, val string) error {
	return b.write(key, func() { b.vals.set(key, val) })
}

func (b *FileBackend) Delete(key string) error {
	return b.write(key, func() { b.vals.delete(key) })
}

// Reload re-reads the file if another writer changed it.
func (b *FileBackend) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.vals.replace(make(map[string]any))
			b.lastWritten = nil
			return nil
		}
		return fmt.Errorf("reading preferences file %s: %w", b.path, err)
	}
	if bytes.Equal(data, b.lastWritten) {
		return nil
	}
	m, err := decodeValues(data)
	if err != nil {
		return fmt.Errorf("parsing preferences file %s: %w", b.path, err)
	}
	b.vals.replace(m)
	b.lastWritten = data
	return nil
}

// Watch reloads the cache whenever the file is replaced or rewritten by
// another process, until ctx is done.
func (b *FileBackend) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: atomic renames replace the file's inode.
	if err := w.Add(filepath.Dir(b.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(b.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(b.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := b.Reload(); err != nil {
				slog.Warn("reloading preferences failed", "path", b.path, "error", err)
			} else {
				slog.Debug("preferences reloaded", "path", b.path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("preferences watcher error", "path", b.path, "error", err)
		}
	}
}
