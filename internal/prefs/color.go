package prefs

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 32-bit ARGB value stored as a signed integer, so opaque
// colors are negative (black is -16777216, white is -1).
type Color int32

const (
	Black Color = -0x1000000 // 0xFF000000
	White Color = -1         // 0xFFFFFFFF
)

// ARGB builds a color from its components.
func ARGB(a, r, g, b uint8) Color {
	return Color(int32(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)))
}

func (c Color) Alpha() uint8 { return uint8(uint32(c) >> 24) }
func (c Color) Red() uint8   { return uint8(uint32(c) >> 16) }
func (c Color) Green() uint8 { return uint8(uint32(c) >> 8) }
func (c Color) Blue() uint8  { return uint8(uint32(c)) }

// String renders the color as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseColor accepts #AARRGGBB, #RRGGBB (opaque) or a decimal integer.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty color")
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		switch len(hex) {
		case 6:
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return 0, err
			}
			return Color(int32(uint32(v) | 0xFF000000)), nil
		case 8:
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return 0, err
			}
			return Color(int32(uint32(v))), nil
		default:
			return 0, fmt.Errorf("color %q must have 6 or 8 hex digits", s)
		}
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Color(v), nil
}
