package prefs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the native storage type of a setting.
type Kind int

const (
	KindBool Kind = iota
	KindColor
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindColor:
		return "color"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Key identifies one setting. The concrete key types below are the only
// implementations, so a setting cannot be addressed by a free-form string
// outside of Lookup.
type Key interface {
	Name() string
	Kind() Kind
	defaultText() string
}

type BoolKey struct {
	name string
	def  bool
}

type ColorKey struct {
	name string
	def  Color
}

type FloatKey struct {
	name string
	def  float32
}

type StringKey struct {
	name string
	def  string
}

func (k BoolKey) Name() string   { return k.name }
func (k ColorKey) Name() string  { return k.name }
func (k FloatKey) Name() string  { return k.name }
func (k StringKey) Name() string { return k.name }

func (BoolKey) Kind() Kind   { return KindBool }
func (ColorKey) Kind() Kind  { return KindColor }
func (FloatKey) Kind() Kind  { return KindFloat }
func (StringKey) Kind() Kind { return KindString }

func (k BoolKey) Default() bool     { return k.def }
func (k ColorKey) Default() Color   { return k.def }
func (k FloatKey) Default() float32 { return k.def }
func (k StringKey) Default() string { return k.def }

func (k BoolKey) defaultText() string   { return strconv.FormatBool(k.def) }
func (k ColorKey) defaultText() string  { return k.def.String() }
func (k FloatKey) defaultText() string  { return formatFloat(k.def) }
func (k StringKey) defaultText() string { return k.def }

var (
	IsFirstRun              = BoolKey{name: "is-first-run", def: true}
	IsDarkTheme             = BoolKey{name: "is-dark-theme", def: false}
	IsStrokeWidthBarEnabled = BoolKey{name: "is-stroke-width-bar-enabled", def: false}
	BrushColor              = ColorKey{name: "brush-color", def: Black}
	StrokeWidth             = FloatKey{name: "stroke-width", def: 5.0}
	BackgroundColor         = ColorKey{name: "background-color", def: White}

	UseEnglish           = BoolKey{name: "use-english", def: false}
	WasUseEnglishToggled = BoolKey{name: "was-use-english-toggled", def: false}
	LastSaveFolder       = StringKey{name: "last-save-folder", def: ""}
	LastSaveExtension    = StringKey{name: "last-save-extension", def: "png"}
	LastSaveFilename     = StringKey{name: "last-save-filename", def: ""}
)

// registry is ordered as settings are shown to users.
var registry = []Key{
	IsFirstRun,
	IsDarkTheme,
	IsStrokeWidthBarEnabled,
	BrushColor,
	StrokeWidth,
	BackgroundColor,
	UseEnglish,
	WasUseEnglishToggled,
	LastSaveFolder,
	LastSaveExtension,
	LastSaveFilename,
}

// Keys returns every known setting in display order.
func Keys() []Key {
	out := make([]Key, len(registry))
	copy(out, registry)
	return out
}

// Lookup resolves a setting by its stable name.
func Lookup(name string) (Key, bool) {
	name = strings.TrimSpace(name)
	for _, k := range registry {
		if k.Name() == name {
			return k, true
		}
	}
	return nil, false
}

// Names returns the stable names of all settings.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, k := range registry {
		names = append(names, k.Name())
	}
	return names
}

// DefaultText renders a key's default the way Store.Get renders values.
func DefaultText(k Key) string {
	return k.defaultText()
}

func checkFinite(key string, f float32) error {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidValue, key, f)
	}
	return nil
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseValue converts text into the native Go value for k.
func ParseValue(k Key, raw string) (any, error) {
	if k.Kind() != KindString {
		raw = strings.TrimSpace(raw)
	}
	switch k.Kind() {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value for %s: %w", k.Name(), err)
		}
		return b, nil
	case KindColor:
		c, err := ParseColor(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid color value for %s: %w", k.Name(), err)
		}
		return c, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float value for %s: %w", k.Name(), err)
		}
		if err := checkFinite(k.Name(), float32(f)); err != nil {
			return nil, err
		}
		return float32(f), nil
	case KindString:
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, k.Name())
}
