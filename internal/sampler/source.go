package sampler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is an opaque handle to decodable pixel data.
//
// Key identifies the image: two sources with the same key are assumed to
// decode to the same pixels, and share cache entries.
type Source interface {
	Key() string
	Decode() (image.Image, error)
}

// IntrinsicSizer is implemented by sources that know their natural pixel
// dimensions without a full decode. ok is false when the size is not
// available yet.
type IntrinsicSizer interface {
	IntrinsicSize() (width, height int, ok bool)
}

// NominalSizer is implemented by sources that carry a display size. It is
// only consulted when no intrinsic size is available.
type NominalSizer interface {
	NominalSize() (width, height int)
}

// FileSource decodes an image file from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. EXIF orientation
// is applied, so the decoded surface matches what a browser would display.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for the image at path. The file is not
// touched until the first decode.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Key returns the path prefixed with "file:". Different paths to the same
// file (relative vs absolute) are different keys.
func (f *FileSource) Key() string { return "file:" + f.Path }

// Decode opens and decodes the file.
func (f *FileSource) Decode() (image.Image, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer fh.Close()

	img, err := imaging.Decode(fh, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// IntrinsicSize reads the image header. EXIF orientation is not applied, so
// a rotated JPEG reports its stored dimensions until it has been decoded.
func (f *FileSource) IntrinsicSize() (int, int, bool) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return 0, 0, false
	}
	defer fh.Close()
	return headerSize(fh)
}

// BytesSource decodes an encoded image held in memory.
type BytesSource struct {
	key  string
	data []byte
}

// NewBytesSource returns a source over data. The key is derived from the
// content hash, so identical buffers share cache entries.
func NewBytesSource(data []byte) *BytesSource {
	sum := sha256.Sum256(data)
	return &BytesSource{key: "bytes:" + hex.EncodeToString(sum[:8]), data: data}
}

func (b *BytesSource) Key() string { return b.key }

func (b *BytesSource) Decode() (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(b.data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (b *BytesSource) IntrinsicSize() (int, int, bool) {
	return headerSize(bytes.NewReader(b.data))
}

// headerSize returns the dimensions from an image header, or ok=false when
// the header cannot be parsed. The full decode then reports the error.
func headerSize(r io.Reader) (int, int, bool) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// ImageSource wraps an image that is already decoded, such as a canvas
// snapshot or a test fixture.
type ImageSource struct {
	key string
	img image.Image
}

// NewImageSource returns a source for img identified by key.
func NewImageSource(key string, img image.Image) *ImageSource {
	return &ImageSource{key: key, img: img}
}

func (s *ImageSource) Key() string { return s.key }

func (s *ImageSource) Decode() (image.Image, error) {
	if s.img == nil {
		return nil, fmt.Errorf("no image data for %q", s.key)
	}
	return s.img, nil
}

// IntrinsicSize reports the wrapped image's bounds.
func (s *ImageSource) IntrinsicSize() (int, int, bool) {
	if s.img == nil {
		return 0, 0, false
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy(), true
}

// sizedSource attaches a nominal display size to another source.
type sizedSource struct {
	Source
	width, height int
}

// WithNominalSize returns src annotated with a display size, used for bounds
// checks until the image has been decoded.
func WithNominalSize(src Source, width, height int) Source {
	return &sizedSource{Source: src, width: width, height: height}
}

func (s *sizedSource) NominalSize() (int, int) { return s.width, s.height }

// IntrinsicSize delegates to the wrapped source so intrinsic dimensions still
// take precedence over the nominal ones.
func (s *sizedSource) IntrinsicSize() (int, int, bool) {
	if is, ok := s.Source.(IntrinsicSizer); ok {
		return is.IntrinsicSize()
	}
	return 0, 0, false
}
