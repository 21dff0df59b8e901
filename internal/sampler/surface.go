package sampler

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// SurfaceCache provides thread-safe caching of decoded drawing surfaces so an
// image is decoded at most once.
//
// Surfaces are stored as *image.NRGBA keyed by Source.Key(). Once a surface is
// decoded, subsequent Load() calls for the same key return the cached copy
// without touching the source again.
//
// # Concurrency
//
// If several goroutines Load the same key while it is being decoded, only one
// decode runs and every caller receives its result. A failed decode is
// reported to all of those callers and then forgotten, so a later Load may
// try again.
//
// # Memory Management
//
// Cached surfaces remain in memory until explicitly removed via Evict() or
// Clear().
type SurfaceCache struct {
	mu       sync.Mutex
	surfaces map[string]*surfaceEntry
	decodes  int
}

type surfaceEntry struct {
	ready chan struct{}
	img   *image.NRGBA
	err   error
}

// NewSurfaceCache creates and initializes a new empty surface cache.
func NewSurfaceCache() *SurfaceCache {
	return &SurfaceCache{
		surfaces: make(map[string]*surfaceEntry),
	}
}

// Load retrieves the decoded surface for src, decoding it if necessary.
//
// Returns an error wrapping ErrDecodeFailure if the source fails to decode or
// decodes to an image with zero width or height.
func (c *SurfaceCache) Load(src Source) (*image.NRGBA, error) {
	key := src.Key()

	c.mu.Lock()
	if e, ok := c.surfaces[key]; ok {
		c.mu.Unlock()
		<-e.ready
		return e.img, e.err
	}
	e := &surfaceEntry{ready: make(chan struct{})}
	c.surfaces[key] = e
	c.decodes++
	c.mu.Unlock()

	e.img, e.err = decodeSurface(src)
	if e.err != nil {
		c.mu.Lock()
		if c.surfaces[key] == e {
			delete(c.surfaces, key)
		}
		c.mu.Unlock()
	}
	close(e.ready)

	return e.img, e.err
}

// Peek returns the surface for key if it has already been decoded. It never
// blocks and never decodes.
func (c *SurfaceCache) Peek(key string) (*image.NRGBA, bool) {
	c.mu.Lock()
	e, ok := c.surfaces[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.img, e.err == nil
	default:
		return nil, false
	}
}

// Evict removes the surface for key. If the key is not cached, this does nothing.
func (c *SurfaceCache) Evict(key string) {
	c.mu.Lock()
	delete(c.surfaces, key)
	c.mu.Unlock()
}

// Clear removes all surfaces from the cache.
func (c *SurfaceCache) Clear() {
	c.mu.Lock()
	c.surfaces = make(map[string]*surfaceEntry)
	c.mu.Unlock()
}

// Len returns the number of cached (or in-flight) surfaces.
func (c *SurfaceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.surfaces)
}

// Decodes returns how many decodes have been started over the cache's lifetime.
func (c *SurfaceCache) Decodes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decodes
}

func decodeSurface(src Source) (*image.NRGBA, error) {
	img, err := src.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, src.Key(), err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: %s: decoder returned no image", ErrDecodeFailure, src.Key())
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s: image has zero dimensions (%dx%d)", ErrDecodeFailure, src.Key(), b.Dx(), b.Dy())
	}
	// Clone normalizes every color model to NRGBA with bounds at (0,0).
	return imaging.Clone(img), nil
}
