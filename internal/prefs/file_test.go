package prefs

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestFileBackendWritesNativeJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	require.NoError(t, b.SetBool("is-dark-theme", true))
	require.NoError(t, b.SetInt("brush-color", int32(Black)))
	require.NoError(t, b.SetFloat("stroke-width", 12.5))
	require.NoError(t, b.SetString("last-save-extension", "svg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["is-dark-theme"])
	assert.Equal(t, float64(-16777216), raw["brush-color"])
	assert.Equal(t, 12.5, raw["stroke-width"])
	assert.Equal(t, "svg", raw["last-save-extension"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	b, err := OpenFileBackend(filepath.Join(t.TempDir(), "nested", "ns.json"))
	require.NoError(t, err)

	_, ok, err := b.GetBool("is-first-run")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendCorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	require.NoError(t, writeFile(path, "{not json"))

	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	s := New(b, WithLogger(quietLogger()))
	assert.True(t, s.IsFirstRun())

	s.SetIsFirstRun(false)
	assert.False(t, s.IsFirstRun())
}

func TestFileBackendDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	require.NoError(t, b.SetString("last-save-folder", "/tmp"))
	require.NoError(t, b.Delete("last-save-folder"))

	reopened, err := OpenFileBackend(path)
	require.NoError(t, err)
	_, ok, err := reopened.GetString("last-save-folder")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendReloadPicksUpExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.SetBool("is-dark-theme", false))

	require.NoError(t, writeFile(path, `{"is-dark-theme": true, "stroke-width": 7.5}`))
	require.NoError(t, b.Reload())

	v, ok, err := b.GetBool("is-dark-theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	w, _, err := b.GetFloat("stroke-width")
	require.NoError(t, err)
	assert.Equal(t, float32(7.5), w)
}

func TestFileBackendReloadKeepsOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	require.NoError(t, b.SetInt("brush-color", 42))
	require.NoError(t, b.Reload())

	v, ok, err := b.GetInt("brush-color")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(42), v)
}

func TestFileBackendWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Watch(ctx) }()

	other, err := OpenFileBackend(path)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		if err := other.SetBool("is-dark-theme", true); err != nil {
			return false
		}
		v, _, _ := b.GetBool("is-dark-theme")
		return v
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestFileBackendFailedSaveRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prefs")
	path := filepath.Join(dir, "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.SetInt("brush-color", 1))

	// Replace the directory with a regular file so no temp file can be created.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, writeFile(dir, "not a directory"))

	assert.Error(t, b.SetInt("brush-color", 2))
	assert.Error(t, b.SetBool("is-dark-theme", true))

	v, ok, err := b.GetInt("brush-color")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), v)
	_, ok, err = b.GetBool("is-dark-theme")
	require.NoError(t, err)
	assert.False(t, ok, "failed write left a value in the cache")

	require.NoError(t, os.Remove(dir))
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, b.SetString("last-save-extension", "svg"))

	reopened, err := OpenFileBackend(path)
	require.NoError(t, err)
	ext, ok, err := reopened.GetString("last-save-extension")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "svg", ext)
	c, _, err := reopened.GetInt("brush-color")
	require.NoError(t, err)
	assert.Equal(t, int32(1), c)
	_, ok, err = reopened.GetBool("is-dark-theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendRejectsNonFiniteFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.json")
	b, err := OpenFileBackend(path)
	require.NoError(t, err)

	err = b.SetFloat("stroke-width", float32(math.Inf(1)))
	assert.ErrorIs(t, err, ErrInvalidValue)
	require.NoError(t, b.SetBool("is-dark-theme", true))

	reopened, err := OpenFileBackend(path)
	require.NoError(t, err)
	v, ok, err := reopened.GetBool("is-dark-theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)
	_, ok, err = reopened.GetFloat("stroke-width")
	require.NoError(t, err)
	assert.False(t, ok)
}
