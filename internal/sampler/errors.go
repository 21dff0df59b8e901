package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds matches any *OutOfBoundsError.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrDecodeFailure is wrapped when an image cannot be decoded or drawn.
	ErrDecodeFailure = errors.New("image decode failed")

	// ErrInvalidArgument is wrapped when a loupe radius or zoom is out of range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OutOfBoundsError reports a coordinate that falls outside an image.
type OutOfBoundsError struct {
	// Index is the position of the offending point in a batch, or -1 for a
	// single extraction.
	Index int `json:"index"`

	// Axis is "x" or "y": the first coordinate found to be out of range.
	Axis string `json:"axis"`

	// X and Y are the requested coordinate.
	X int `json:"x"`
	Y int `json:"y"`

	// Width and Height are the image dimensions the coordinate was checked against.
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (e *OutOfBoundsError) Error() string {
	value := e.X
	limit := e.Width
	if e.Axis == "y" {
		value = e.Y
		limit = e.Height
	}
	msg := fmt.Sprintf("%s=%d outside image bounds 0..%d (image %dx%d)", e.Axis, value, limit-1, e.Width, e.Height)
	if e.Index >= 0 {
		msg = fmt.Sprintf("point %d (%d,%d): %s", e.Index, e.X, e.Y, msg)
	}
	return msg
}

// Is makes errors.Is(err, ErrOutOfBounds) hold.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// checkBounds returns an *OutOfBoundsError when (x, y) is not inside a
// width x height image. X is checked before Y.
func checkBounds(x, y, width, height int) error {
	switch {
	case x < 0 || x >= width:
		return &OutOfBoundsError{Index: -1, Axis: "x", X: x, Y: y, Width: width, Height: height}
	case y < 0 || y >= height:
		return &OutOfBoundsError{Index: -1, Axis: "y", X: x, Y: y, Width: width, Height: height}
	}
	return nil
}
