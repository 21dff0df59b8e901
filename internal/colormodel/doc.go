// Package colormodel converts colors between hex, RGB and HSL notation.
//
// Every function in this package is pure: no configuration, no shared state,
// safe to call from any goroutine.
//
// # Representations
//
//   - Hex: "#RRGGBB", always uppercase once normalized. "#RGB" is accepted on
//     input and expanded by doubling each nibble.
//   - RGB: integer channels in 0-255.
//   - HSL: Hue 0-360 degrees, Saturation 0-100 percent, Lightness 0-100 percent.
//
// # Rounding
//
// All conversions round half-up to the nearest integer. Because of this,
// hex -> RGB -> hex is exact, but RGB -> HSL -> RGB can drift: HSL percentages
// only resolve 1/100 of the lightness range while RGB resolves 1/255.
//
// # Errors
//
// Malformed or out-of-range input returns an error wrapping ErrInvalidColor.
// Nothing is clamped silently.
package colormodel
