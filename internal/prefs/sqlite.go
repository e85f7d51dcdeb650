package prefs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kalambet/simpledraw/internal/storage"
)

// SQLiteBackend keeps one namespace as rows of a shared preferences table.
// Writes are committed before returning.
type SQLiteBackend struct {
	store     *storage.Store
	namespace string
}

func NewSQLiteBackend(store *storage.Store, namespace string) *SQLiteBackend {
	return &SQLiteBackend{store: store, namespace: namespace}
}

// SQLiteOpener binds namespaces to rows of an already open database. The
// store is owned by the caller and is not closed by Store.Close.
func SQLiteOpener(store *storage.Store) OpenFunc {
	return func(namespace string) (Backend, error) {
		return NewSQLiteBackend(store, namespace), nil
	}
}

const (
	kindBool   = "bool"
	kindInt    = "int"
	kindFloat  = "float"
	kindString = "string"
)

func (b *SQLiteBackend) read(key, kind string) (string, bool, error) {
	p, err := b.store.GetPreference(b.namespace, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	if p.Kind != kind {
		return "", true, fmt.Errorf("%w: %s is %s, want %s", ErrTypeMismatch, key, p.Kind, kind)
	}
	return p.Value, true, nil
}

func (b *SQLiteBackend) write(key, kind, value string) error {
	return b.store.SetPreference(storage.Preference{
		Namespace: b.namespace,
		Key:       key,
		Kind:      kind,
		Value:     value,
	})
}

func (b *SQLiteBackend) GetBool(key string) (bool, bool, error) {
	s, ok, err := b.read(key, kindBool)
	if !ok || err != nil {
		return false, ok, err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, true, fmt.Errorf("invalid bool for %s: %w", key, err)
	}
	return v, true, nil
}

func (b *SQLiteBackend) GetInt(key string) (int32, bool, error) {
	s, ok, err := b.read(key, kindInt)
	if !ok || err != nil {
		return 0, ok, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return int32(v), true, nil
}

func (b *SQLiteBackend) GetFloat(key string) (float32, bool, error) {
	s, ok, err := b.read(key, kindFloat)
	if !ok || err != nil {
		return 0, ok, err
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, true, fmt.Errorf("invalid float for %s: %w", key, err)
	}
	return float32(v), true, nil
}

func (b *SQLiteBackend) GetString(key string) (string, bool, error) {
	return b.read(key, kindString)
}

func (b *SQLiteBackend) SetBool(key string, val bool) error {
	return b.write(key, kindBool, strconv.FormatBool(val))
}

func (b *SQLiteBackend) SetInt(key string, val int32) error {
	return b.write(key, kindInt, strconv.FormatInt(int64(val), 10))
}

func (b *SQLiteBackend) SetFloat(key string, val float32) error {
	return b.write(key, kindFloat, formatFloat(val))
}

func (b *SQLiteBackend) SetString(key, val string) error {
	return b.write(key, kindString, val)
}

func (b *SQLiteBackend) Delete(key string) error {
	return b.store.DeletePreference(b.namespace, key)
}
