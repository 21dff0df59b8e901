package sampler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// Loupe limits.
const (
	DefaultLoupeRadius = 5
	DefaultLoupeZoom   = 8
	MaxLoupeRadius     = 32
	MaxLoupeZoom       = 32
)

// LoupeResult is a magnified view of the pixels around a sampled point.
type LoupeResult struct {
	Center      SampledPixel `json:"center"`
	Radius      int          `json:"radius"`
	Zoom        int          `json:"zoom"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ImageBase64 string       `json:"image_base64"`
	MimeType    string       `json:"mime_type"`
}

// Loupe crops the (2*radius+1)-pixel square centered on (x, y), scales it up
// by zoom with nearest-neighbor resampling so individual pixels stay crisp,
// and returns it as a base64 PNG together with the center pixel's color.
//
// The square is clipped at the image edges. A radius or zoom of 0 selects the
// default.
func (s *Sampler) Loupe(src Source, x, y, radius, zoom int) (*LoupeResult, error) {
	if radius == 0 {
		radius = DefaultLoupeRadius
	}
	if zoom == 0 {
		zoom = DefaultLoupeZoom
	}
	if radius < 0 || radius > MaxLoupeRadius {
		return nil, fmt.Errorf("%w: loupe radius %d outside 1..%d", ErrInvalidArgument, radius, MaxLoupeRadius)
	}
	if zoom < 0 || zoom > MaxLoupeZoom {
		return nil, fmt.Errorf("%w: loupe zoom %d outside 1..%d", ErrInvalidArgument, zoom, MaxLoupeZoom)
	}

	center, err := s.ExtractAt(src, x, y)
	if err != nil {
		return nil, err
	}
	surf, err := s.surfaces.Load(src)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1).Intersect(surf.Bounds())
	cropped := transform.Crop(surf, rect)
	w, h := rect.Dx()*zoom, rect.Dy()*zoom
	zoomed := transform.Resize(cropped, w, h, transform.NearestNeighbor)

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, zoomed); err != nil {
		return nil, fmt.Errorf("failed to encode loupe image: %w", err)
	}

	return &LoupeResult{
		Center:      *center,
		Radius:      radius,
		Zoom:        zoom,
		Width:       w,
		Height:      h,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
