package prefs

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Store gives typed, default-aware access to the fixed set of settings.
// It adds no locking of its own; visibility across goroutines and
// processes is whatever the Backend provides.
type Store struct {
	backend Backend
	log     *slog.Logger
	onWrite func(key string, err error)
}

type options struct {
	logger  *slog.Logger
	onWrite func(key string, err error)
	opener  OpenFunc
}

// Option customizes a Store.
type Option func(*options)

// WithLogger sets the logger used to report backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWriteErrorHandler registers a callback for failed writes. Writes
// never return errors; the handler is the only way to observe them.
func WithWriteErrorHandler(fn func(key string, err error)) Option {
	return func(o *options) { o.onWrite = fn }
}

// WithOpener replaces the platform backend used by Open.
func WithOpener(fn OpenFunc) Option {
	return func(o *options) { o.opener = fn }
}

func buildOptions(opts []Option) options {
	o := options{opener: platformOpener}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Open binds a Store to the storage region named by namespace, creating it
// if absent. Only backend failures are returned.
func Open(namespace string, opts ...Option) (*Store, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace is empty", ErrInvalidNamespace)
	}
	if strings.ContainsAny(namespace, `/\`) || namespace == "." || namespace == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	o := buildOptions(opts)
	b, err := o.opener(namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: namespace %s: %w", ErrUnavailable, namespace, err)
	}
	return newStore(b, o), nil
}

// New returns a Store over an already bound backend.
func New(b Backend, opts ...Option) *Store {
	return newStore(b, buildOptions(opts))
}

func newStore(b Backend, o options) *Store {
	return &Store{backend: b, log: o.logger, onWrite: o.onWrite}
}

// Backend returns the backend the store delegates to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close releases backend resources, if the backend holds any.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) readFailed(key string, err error) {
	s.log.Warn("reading setting failed, using default", "key", key, "error", err)
}

func (s *Store) writeFailed(key string, err error) {
	if err == nil {
		return
	}
	s.log.Error("persisting setting failed", "key", key, "error", err)
	if s.onWrite != nil {
		s.onWrite(key, err)
	}
}

// --- generic accessors ---

func (s *Store) GetBool(k BoolKey) bool {
	v, ok, err := s.backend.GetBool(k.name)
	if err != nil {
		s.readFailed(k.name, err)
		return k.def
	}
	if !ok {
		return k.def
	}
	return v
}

func (s *Store) SetBool(k BoolKey, v bool) {
	s.writeFailed(k.name, s.backend.SetBool(k.name, v))
}

func (s *Store) GetColor(k ColorKey) Color {
	v, ok, err := s.backend.GetInt(k.name)
	if err != nil {
		s.readFailed(k.name, err)
		return k.def
	}
	if !ok {
		return k.def
	}
	return Color(v)
}

func (s *Store) SetColor(k ColorKey, c Color) {
	s.writeFailed(k.name, s.backend.SetInt(k.name, int32(c)))
}

func (s *Store) GetFloat(k FloatKey) float32 {
	v, ok, err := s.backend.GetFloat(k.name)
	if err != nil {
		s.readFailed(k.name, err)
		return k.def
	}
	if !ok {
		return k.def
	}
	return v
}

// SetFloat stores v. NaN and infinities are rejected through the write
// error path and leave the stored value unchanged.
func (s *Store) SetFloat(k FloatKey, v float32) {
	if err := checkFinite(k.name, v); err != nil {
		s.writeFailed(k.name, err)
		return
	}
	s.writeFailed(k.name, s.backend.SetFloat(k.name, v))
}

func (s *Store) GetString(k StringKey) string {
	v, ok, err := s.backend.GetString(k.name)
	if err != nil {
		s.readFailed(k.name, err)
		return k.def
	}
	if !ok {
		return k.def
	}
	return v
}

func (s *Store) SetString(k StringKey, v string) {
	s.writeFailed(k.name, s.backend.SetString(k.name, v))
}

// Reset removes the stored value so the default applies again.
func (s *Store) Reset(k Key) {
	s.writeFailed(k.Name(), s.backend.Delete(k.Name()))
}

// --- typed settings ---

func (s *Store) IsFirstRun() bool     { return s.GetBool(IsFirstRun) }
func (s *Store) SetIsFirstRun(v bool) { s.SetBool(IsFirstRun, v) }

func (s *Store) IsDarkTheme() bool     { return s.GetBool(IsDarkTheme) }
func (s *Store) SetIsDarkTheme(v bool) { s.SetBool(IsDarkTheme, v) }

func (s *Store) BrushColor() Color     { return s.GetColor(BrushColor) }
func (s *Store) SetBrushColor(c Color) { s.SetColor(BrushColor, c) }

func (s *Store) StrokeWidth() float32     { return s.GetFloat(StrokeWidth) }
func (s *Store) SetStrokeWidth(w float32) { s.SetFloat(StrokeWidth, w) }

func (s *Store) IsStrokeWidthBarEnabled() bool {
	return s.GetBool(IsStrokeWidthBarEnabled)
}

func (s *Store) SetIsStrokeWidthBarEnabled(v bool) {
	s.SetBool(IsStrokeWidthBarEnabled, v)
}

func (s *Store) BackgroundColor() Color {
	return s.GetColor(BackgroundColor)
}

func (s *Store) SetBackgroundColor(c Color) {
	s.SetColor(BackgroundColor, c)
}

func (s *Store) UseEnglish() bool     { return s.GetBool(UseEnglish) }
func (s *Store) SetUseEnglish(v bool) { s.SetBool(UseEnglish, v) }

func (s *Store) WasUseEnglishToggled() bool     { return s.GetBool(WasUseEnglishToggled) }
func (s *Store) SetWasUseEnglishToggled(v bool) { s.SetBool(WasUseEnglishToggled, v) }

func (s *Store) LastSaveFolder() string        { return s.GetString(LastSaveFolder) }
func (s *Store) SetLastSaveFolder(v string)    { s.SetString(LastSaveFolder, v) }
func (s *Store) LastSaveExtension() string     { return s.GetString(LastSaveExtension) }
func (s *Store) SetLastSaveExtension(v string) { s.SetString(LastSaveExtension, v) }
func (s *Store) LastSaveFilename() string      { return s.GetString(LastSaveFilename) }
func (s *Store) SetLastSaveFilename(v string)  { s.SetString(LastSaveFilename, v) }

// --- text surfaces ---

// Entry is one setting as rendered for display.
type Entry struct {
	Key     string `json:"key"`
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Default string `json:"default"`
}

// Get renders the current value of the named setting as text.
func (s *Store) Get(name string) (string, error) {
	k, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return s.text(k), nil
}

func (s *Store) text(k Key) string {
	switch k := k.(type) {
	case BoolKey:
		return strconv.FormatBool(s.GetBool(k))
	case ColorKey:
		return s.GetColor(k).String()
	case FloatKey:
		return formatFloat(s.GetFloat(k))
	case StringKey:
		return s.GetString(k)
	}
	return ""
}

// SetText parses raw for the named setting and writes it. Parse failures
// are returned; persistence failures follow the usual write policy.
func (s *Store) SetText(name, raw string) error {
	k, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	v, err := ParseValue(k, raw)
	if err != nil {
		return err
	}
	switch k := k.(type) {
	case BoolKey:
		s.SetBool(k, v.(bool))
	case ColorKey:
		s.SetColor(k, v.(Color))
	case FloatKey:
		s.SetFloat(k, v.(float32))
	case StringKey:
		s.SetString(k, v.(string))
	}
	return nil
}

// ResetText resets the named setting.
func (s *Store) ResetText(name string) error {
	k, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	s.Reset(k)
	return nil
}

func (s *Store) entry(k Key) Entry {
	return Entry{
		Key:     k.Name(),
		Kind:    k.Kind().String(),
		Value:   s.text(k),
		Default: k.defaultText(),
	}
}

// Describe returns the named setting with its current value.
func (s *Store) Describe(name string) (Entry, error) {
	k, ok := Lookup(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return s.entry(k), nil
}

// Snapshot returns every setting with its current value.
func (s *Store) Snapshot() []Entry {
	entries := make([]Entry, 0, len(registry))
	for _, k := range registry {
		entries = append(entries, s.entry(k))
	}
	return entries
}
