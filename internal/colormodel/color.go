package colormodel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is wrapped by every error this package returns.
var ErrInvalidColor = errors.New("invalid color")

const (
	hueMax        = 360
	percentMax    = 100
	channelMax    = 255
	hexDigitsLong = 6
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R int `json:"r"` // Red component (0-255)
	G int `json:"g"` // Green component (0-255)
	B int `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Color holds one color in all three representations.
//
// A Color is only produced by the From* constructors, so Hex, RGB and HSL
// always agree. Treat it as a value; nothing in this package mutates one.
type Color struct {
	Hex string   `json:"hex"` // "#RRGGBB", uppercase
	RGB RGBColor `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

// RGBString returns the CSS functional notation, e.g. "rgb(255, 87, 51)".
func (c Color) RGBString() string { return FormatRGB(c.RGB) }

// HSLString returns the CSS functional notation, e.g. "hsl(11, 100%, 60%)".
func (c Color) HSLString() string { return FormatHSL(c.HSL) }

// FromRGB builds a Color from RGB channels.
func FromRGB(rgb RGBColor) (Color, error) {
	hex, err := RGBToHex(rgb)
	if err != nil {
		return Color{}, err
	}
	hsl, err := RGBToHSL(rgb)
	if err != nil {
		return Color{}, err
	}
	return Color{Hex: hex, RGB: rgb, HSL: hsl}, nil
}

// FromHex builds a Color from a 3- or 6-digit hex string.
func FromHex(s string) (Color, error) {
	rgb, err := HexToRGB(s)
	if err != nil {
		return Color{}, err
	}
	return FromRGB(rgb)
}

// FromHSL builds a Color from HSL components.
//
// The stored HSL is re-derived from the resulting RGB, so it may differ from
// the input by rounding; the three fields of a Color must describe one color.
func FromHSL(hsl HSLColor) (Color, error) {
	rgb, err := HSLToRGB(hsl)
	if err != nil {
		return Color{}, err
	}
	return FromRGB(rgb)
}

// IsValidHex reports whether s is exactly 3 or 6 hexadecimal digits,
// optionally preceded by '#'.
func IsValidHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != hexDigitsLong {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// NormalizeHex expands "#RGB" to "#RRGGBB", uppercases, and ensures the
// leading '#'.
func NormalizeHex(s string) (string, error) {
	if !IsValidHex(s) {
		return "", fmt.Errorf("%w: %q is not a 3 or 6 digit hex color", ErrInvalidColor, s)
	}
	s = strings.ToUpper(strings.TrimPrefix(s, "#"))
	if len(s) == 3 {
		var b strings.Builder
		b.Grow(hexDigitsLong)
		for i := 0; i < 3; i++ {
			b.WriteByte(s[i])
			b.WriteByte(s[i])
		}
		s = b.String()
	}
	return "#" + s, nil
}

// HexToRGB parses a hex color into its RGB channels.
func HexToRGB(s string) (RGBColor, error) {
	norm, err := NormalizeHex(s)
	if err != nil {
		return RGBColor{}, err
	}
	c, err := colorful.Hex(norm)
	if err != nil {
		return RGBColor{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	return RGBColor{
		R: roundHalfUp(c.R * channelMax),
		G: roundHalfUp(c.G * channelMax),
		B: roundHalfUp(c.B * channelMax),
	}, nil
}

// RGBToHex formats RGB channels as "#RRGGBB".
//
// Channels are not clamped: anything outside 0-255 is an error.
func RGBToHex(rgb RGBColor) (string, error) {
	if err := validateRGB(rgb); err != nil {
		return "", err
	}
	return fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B), nil
}

// RoundRGB turns fractional channel values into an RGBColor, rounding each
// to the nearest integer. NaN, infinities and values that round outside
// 0-255 are rejected.
func RoundRGB(r, g, b float64) (RGBColor, error) {
	for _, v := range [...]float64{r, g, b} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return RGBColor{}, fmt.Errorf("%w: channel %v is not a number", ErrInvalidColor, v)
		}
	}
	rgb := RGBColor{R: roundHalfUp(r), G: roundHalfUp(g), B: roundHalfUp(b)}
	if err := validateRGB(rgb); err != nil {
		return RGBColor{}, err
	}
	return rgb, nil
}

// RoundHSL is the HSL counterpart of RoundRGB.
func RoundHSL(h, s, l float64) (HSLColor, error) {
	for _, v := range [...]float64{h, s, l} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return HSLColor{}, fmt.Errorf("%w: component %v is not a number", ErrInvalidColor, v)
		}
	}
	hsl := HSLColor{H: roundHalfUp(h), S: roundHalfUp(s), L: roundHalfUp(l)}
	if err := validateHSL(hsl); err != nil {
		return HSLColor{}, err
	}
	return hsl, nil
}

// RGBToHSL converts 8-bit RGB values to HSL color space.
//
// The conversion follows the standard algorithm:
//  1. Normalize RGB to 0-1 range
//  2. Lightness is (max + min) / 2
//  3. Saturation is 0 for grays, otherwise diff/(2-max-min) above half
//     lightness and diff/(max+min) at or below it
//  4. Hue comes from whichever channel is max, in 60 degree sectors
//
// Hue is normalized to [0,360); a hue that rounds up to 360 is reported as 0.
func RGBToHSL(rgb RGBColor) (HSLColor, error) {
	if err := validateRGB(rgb); err != nil {
		return HSLColor{}, err
	}
	c := colorful.Color{
		R: float64(rgb.R) / channelMax,
		G: float64(rgb.G) / channelMax,
		B: float64(rgb.B) / channelMax,
	}
	h, s, l := c.Hsl()

	hue := roundHalfUp(h)
	if hue >= hueMax {
		hue -= hueMax
	}
	return HSLColor{
		H: hue,
		S: roundHalfUp(s * percentMax),
		L: roundHalfUp(l * percentMax),
	}, nil
}

// HSLToRGB converts HSL components back to 8-bit RGB using the standard
// piecewise hue-to-channel helper.
func HSLToRGB(hsl HSLColor) (RGBColor, error) {
	if err := validateHSL(hsl); err != nil {
		return RGBColor{}, err
	}
	c := colorful.Hsl(
		float64(hsl.H%hueMax),
		float64(hsl.S)/percentMax,
		float64(hsl.L)/percentMax,
	)
	return RGBColor{
		R: roundHalfUp(c.R * channelMax),
		G: roundHalfUp(c.G * channelMax),
		B: roundHalfUp(c.B * channelMax),
	}, nil
}

// FormatRGB returns "rgb(r, g, b)".
func FormatRGB(rgb RGBColor) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// FormatHSL returns "hsl(h, s%, l%)".
func FormatHSL(hsl HSLColor) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hsl.H, hsl.S, hsl.L)
}

func validateRGB(rgb RGBColor) error {
	if !inRange(rgb.R, channelMax) || !inRange(rgb.G, channelMax) || !inRange(rgb.B, channelMax) {
		return fmt.Errorf("%w: rgb(%d, %d, %d) outside 0-255", ErrInvalidColor, rgb.R, rgb.G, rgb.B)
	}
	return nil
}

func validateHSL(hsl HSLColor) error {
	if !inRange(hsl.H, hueMax) {
		return fmt.Errorf("%w: hue %d outside 0-360", ErrInvalidColor, hsl.H)
	}
	if !inRange(hsl.S, percentMax) || !inRange(hsl.L, percentMax) {
		return fmt.Errorf("%w: saturation %d / lightness %d outside 0-100", ErrInvalidColor, hsl.S, hsl.L)
	}
	return nil
}

func inRange(v, max int) bool {
	return v >= 0 && v <= max
}

// roundHalfUp rounds half away from zero. Inputs here are nonnegative, so
// this is the same as rounding half up.
func roundHalfUp(v float64) int {
	return int(math.Round(v))
}
