package prefs

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/simpledraw/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backendCase opens stores for the same namespace repeatedly, simulating a
// process restart between opens.
type backendCase struct {
	name string
	open func(t *testing.T) OpenFunc
}

func backendCases() []backendCase {
	return []backendCase{
		{
			name: "memory",
			open: func(t *testing.T) OpenFunc {
				return NewMemoryRegistry().Open
			},
		},
		{
			name: "file",
			open: func(t *testing.T) OpenFunc {
				return FileOpener(t.TempDir())
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) OpenFunc {
				st, err := storage.Open(t.TempDir())
				require.NoError(t, err)
				t.Cleanup(func() { st.Close() })
				return SQLiteOpener(st)
			},
		},
	}
}

func openStore(t *testing.T, opener OpenFunc, namespace string) *Store {
	t.Helper()
	s, err := Open(namespace, WithOpener(opener), WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreshStoreReturnsDefaults(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			s := openStore(t, bc.open(t), "com.simplemobiletools.draw")

			assert.True(t, s.IsFirstRun())
			assert.False(t, s.IsDarkTheme())
			assert.False(t, s.IsStrokeWidthBarEnabled())
			assert.Equal(t, Black, s.BrushColor())
			assert.Equal(t, int32(-16777216), int32(s.BrushColor()))
			assert.Equal(t, float32(5.0), s.StrokeWidth())
			assert.Equal(t, White, s.BackgroundColor())
			assert.Equal(t, int32(-1), int32(s.BackgroundColor()))

			assert.False(t, s.UseEnglish())
			assert.False(t, s.WasUseEnglishToggled())
			assert.Equal(t, "", s.LastSaveFolder())
			assert.Equal(t, "png", s.LastSaveExtension())
			assert.Equal(t, "", s.LastSaveFilename())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			s := openStore(t, bc.open(t), "ns")

			for _, v := range []bool{false, true, false} {
				s.SetIsFirstRun(v)
				assert.Equal(t, v, s.IsFirstRun())
				s.SetIsDarkTheme(v)
				assert.Equal(t, v, s.IsDarkTheme())
				s.SetIsStrokeWidthBarEnabled(v)
				assert.Equal(t, v, s.IsStrokeWidthBarEnabled())
			}

			for _, c := range []Color{0, 1, White, Black, ARGB(0x80, 0x12, 0x34, 0x56), Color(math.MinInt32), Color(math.MaxInt32)} {
				s.SetBrushColor(c)
				assert.Equal(t, c, s.BrushColor())
				s.SetBackgroundColor(c)
				assert.Equal(t, c, s.BackgroundColor())
			}

			for _, w := range []float32{0, 0.1, 1, 12.5, -3.25, 1e-7, math.MaxFloat32, math.SmallestNonzeroFloat32} {
				s.SetStrokeWidth(w)
				assert.Equal(t, w, s.StrokeWidth())
			}

			for _, v := range []string{"", "jpg", "/storage/emulated/0/Simple Draw", "ünïcode"} {
				s.SetLastSaveFolder(v)
				assert.Equal(t, v, s.LastSaveFolder())
			}
		})
	}
}

func TestSetTwiceKeepsLastValue(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			s := openStore(t, bc.open(t), "ns")

			s.SetStrokeWidth(8)
			s.SetStrokeWidth(8)
			assert.Equal(t, float32(8), s.StrokeWidth())

			s.SetBrushColor(ARGB(0xFF, 0xFF, 0, 0))
			s.SetBrushColor(ARGB(0xFF, 0, 0xFF, 0))
			assert.Equal(t, ARGB(0xFF, 0, 0xFF, 0), s.BrushColor())
		})
	}
}

func TestKeyIsolation(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			s := openStore(t, bc.open(t), "ns")

			s.SetBrushColor(ARGB(0xFF, 0x11, 0x22, 0x33))
			assert.Equal(t, White, s.BackgroundColor())

			s.SetIsDarkTheme(true)
			assert.True(t, s.IsFirstRun())
			assert.False(t, s.IsStrokeWidthBarEnabled())
		})
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			opener := bc.open(t)

			first, err := Open("ns", WithOpener(opener), WithLogger(quietLogger()))
			require.NoError(t, err)
			first.SetIsFirstRun(false)
			first.SetStrokeWidth(12.5)
			first.SetBackgroundColor(ARGB(0xFF, 0x20, 0x20, 0x20))
			first.SetLastSaveExtension("svg")
			require.NoError(t, first.Close())

			second := openStore(t, opener, "ns")
			assert.False(t, second.IsFirstRun())
			assert.Equal(t, float32(12.5), second.StrokeWidth())
			assert.Equal(t, ARGB(0xFF, 0x20, 0x20, 0x20), second.BackgroundColor())
			assert.Equal(t, "svg", second.LastSaveExtension())
			assert.Equal(t, Black, second.BrushColor())
		})
	}
}

func TestNamespaceIsolation(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			opener := bc.open(t)

			used := openStore(t, opener, "com.simplemobiletools.draw")
			used.SetIsFirstRun(false)
			used.SetIsDarkTheme(true)
			used.SetStrokeWidth(20)

			fresh := openStore(t, opener, "com.simplemobiletools.draw.debug")
			for _, e := range fresh.Snapshot() {
				assert.Equal(t, e.Default, e.Value, "key %s", e.Key)
			}
		})
	}
}

func TestConcreteScenario(t *testing.T) {
	s := openStore(t, NewMemoryRegistry().Open, "com.simplemobiletools.draw")

	assert.True(t, s.IsFirstRun())
	s.SetIsFirstRun(false)
	assert.False(t, s.IsFirstRun())
	assert.Equal(t, int32(-16777216), int32(s.BrushColor()))
	s.SetStrokeWidth(12.5)
	assert.Equal(t, float32(12.5), s.StrokeWidth())
}

func TestOpenRejectsBadNamespace(t *testing.T) {
	for _, ns := range []string{"", "   ", "a/b", `a\b`, ".."} {
		_, err := Open(ns, WithOpener(NewMemoryRegistry().Open))
		assert.ErrorIs(t, err, ErrInvalidNamespace, "namespace %q", ns)
	}
}

func TestOpenSurfacesBackendFailure(t *testing.T) {
	boom := errors.New("permission denied")
	_, err := Open("ns", WithOpener(func(string) (Backend, error) { return nil, boom }))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestOpenFileBackendUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, writeFile(blocker, "x"))

	_, err := Open("ns", WithOpener(FileOpener(blocker)))
	assert.ErrorIs(t, err, ErrUnavailable)
}

// failingBackend accepts reads but rejects every write.
type failingBackend struct {
	*MemoryBackend
	err error
}

func (f failingBackend) SetBool(string, bool) error     { return f.err }
func (f failingBackend) SetInt(string, int32) error     { return f.err }
func (f failingBackend) SetFloat(string, float32) error { return f.err }
func (f failingBackend) SetString(string, string) error { return f.err }
func (f failingBackend) Delete(string) error            { return f.err }

func TestWriteFailureIsReportedNotReturned(t *testing.T) {
	boom := errors.New("disk full")
	var failed []string
	s := New(failingBackend{MemoryBackend: NewMemoryBackend(), err: boom},
		WithLogger(quietLogger()),
		WithWriteErrorHandler(func(key string, err error) {
			assert.ErrorIs(t, err, boom)
			failed = append(failed, key)
		}),
	)

	s.SetIsDarkTheme(true)
	s.SetStrokeWidth(9)
	s.Reset(BrushColor)

	assert.Equal(t, []string{"is-dark-theme", "stroke-width", "brush-color"}, failed)
	// The setting silently reads back its default.
	assert.False(t, s.IsDarkTheme())
	assert.Equal(t, float32(5), s.StrokeWidth())
}

func TestTypeMismatchFallsBackToDefault(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.SetString("stroke-width", "wide"))
	require.NoError(t, b.SetFloat("is-dark-theme", 1))

	s := New(b, WithLogger(quietLogger()))
	assert.Equal(t, float32(5), s.StrokeWidth())
	assert.False(t, s.IsDarkTheme())
}

func TestReset(t *testing.T) {
	s := openStore(t, NewMemoryRegistry().Open, "ns")

	s.SetLastSaveExtension("jpg")
	s.Reset(LastSaveExtension)
	assert.Equal(t, "png", s.LastSaveExtension())
}

func TestTextSurface(t *testing.T) {
	s := openStore(t, NewMemoryRegistry().Open, "ns")

	v, err := s.Get("brush-color")
	require.NoError(t, err)
	assert.Equal(t, "#FF000000", v)

	require.NoError(t, s.SetText("brush-color", "#336699"))
	assert.Equal(t, ARGB(0xFF, 0x33, 0x66, 0x99), s.BrushColor())

	require.NoError(t, s.SetText("stroke-width", " 12.5 "))
	v, err = s.Get("stroke-width")
	require.NoError(t, err)
	assert.Equal(t, "12.5", v)

	require.NoError(t, s.SetText("is-dark-theme", "true"))
	assert.True(t, s.IsDarkTheme())

	require.NoError(t, s.SetText("last-save-folder", " spaced "))
	assert.Equal(t, " spaced ", s.LastSaveFolder())

	require.NoError(t, s.ResetText("is-dark-theme"))
	assert.False(t, s.IsDarkTheme())

	_, err = s.Get("brush-colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.ErrorIs(t, s.SetText("nope", "1"), ErrUnknownKey)
	assert.ErrorIs(t, s.ResetText("nope"), ErrUnknownKey)
	assert.Error(t, s.SetText("stroke-width", "thick"))
	assert.Error(t, s.SetText("is-first-run", "maybe"))
}

func TestSnapshotListsEveryKey(t *testing.T) {
	s := openStore(t, NewMemoryRegistry().Open, "ns")
	s.SetIsDarkTheme(true)

	entries := s.Snapshot()
	require.Len(t, entries, len(Keys()))
	assert.Equal(t, "is-first-run", entries[0].Key)

	byKey := make(map[string]Entry)
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "true", byKey["is-dark-theme"].Value)
	assert.Equal(t, "false", byKey["is-dark-theme"].Default)
	assert.Equal(t, "bool", byKey["is-dark-theme"].Kind)
	assert.Equal(t, "5", byKey["stroke-width"].Value)
	assert.Equal(t, "color", byKey["background-color"].Kind)
	assert.Equal(t, "#FFFFFFFF", byKey["background-color"].Value)
}

func TestSharedRegionSeesOtherInstanceWrites(t *testing.T) {
	reg := NewMemoryRegistry()
	a := openStore(t, reg.Open, "ns")
	b := openStore(t, reg.Open, "ns")

	a.SetIsDarkTheme(true)
	assert.True(t, b.IsDarkTheme())
}

func TestNonFiniteFloatIsRejected(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			opener := bc.open(t)
			var failed []error
			first, err := Open("ns", WithOpener(opener), WithLogger(quietLogger()),
				WithWriteErrorHandler(func(_ string, err error) { failed = append(failed, err) }))
			require.NoError(t, err)

			first.SetStrokeWidth(12)
			for _, w := range []float32{float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN())} {
				first.SetStrokeWidth(w)
				assert.Equal(t, float32(12), first.StrokeWidth())
			}
			require.Len(t, failed, 3)
			for _, err := range failed {
				assert.ErrorIs(t, err, ErrInvalidValue)
			}

			// Later writes to other keys are unaffected.
			first.SetIsDarkTheme(true)
			assert.Len(t, failed, 3)
			require.NoError(t, first.Close())

			second := openStore(t, opener, "ns")
			assert.True(t, second.IsDarkTheme())
			assert.Equal(t, float32(12), second.StrokeWidth())
		})
	}
}

func TestExtremeFloatsPersistAcrossReopen(t *testing.T) {
	for _, bc := range backendCases() {
		t.Run(bc.name, func(t *testing.T) {
			opener := bc.open(t)
			for _, w := range []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32, 1.17549435e-38} {
				first, err := Open("ns", WithOpener(opener), WithLogger(quietLogger()))
				require.NoError(t, err)
				first.SetStrokeWidth(w)
				require.NoError(t, first.Close())

				second := openStore(t, opener, "ns")
				assert.Equal(t, w, second.StrokeWidth())
			}
		})
	}
}

func TestSetTextRejectsNonFiniteFloat(t *testing.T) {
	s := openStore(t, NewMemoryRegistry().Open, "ns")
	for _, raw := range []string{"Inf", "-inf", "NaN", "1e39"} {
		err := s.SetText("stroke-width", raw)
		assert.Error(t, err, raw)
	}
	assert.Equal(t, float32(5), s.StrokeWidth())
}
