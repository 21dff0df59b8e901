package sampler

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-inspector/internal/colormodel"
)

// DefaultCacheCapacity is the number of sampled pixels a Sampler keeps.
const DefaultCacheCapacity = 100

// SampledPixel is a color together with where it was read from.
type SampledPixel struct {
	Color  colormodel.Color `json:"color"`
	X      int              `json:"x"`
	Y      int              `json:"y"`
	Source string           `json:"source"`
}

// Stats counts sampler activity since construction or the last ClearCache.
type Stats struct {
	Hits      int `json:"hits"`      // lookups answered from the pixel cache
	Misses    int `json:"misses"`    // lookups that had to read the surface
	Samples   int `json:"samples"`   // pixels actually read from a surface
	Evictions int `json:"evictions"` // entries pushed out by FIFO eviction
}

// Sampler extracts pixel colors and memoizes them.
//
// Each Sampler has its own caches; independent samplers never share state.
type Sampler struct {
	mu       sync.Mutex
	cache    *fifoCache
	stats    Stats
	surfaces *SurfaceCache
	logger   *zap.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithCapacity sets the pixel cache capacity. Values below 1 are treated as 1.
func WithCapacity(n int) Option {
	return func(s *Sampler) { s.cache = newFIFOCache(n) }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSurfaceCache makes the sampler decode through c, allowing surfaces to
// be shared with other components.
func WithSurfaceCache(c *SurfaceCache) Option {
	return func(s *Sampler) {
		if c != nil {
			s.surfaces = c
		}
	}
}

// New creates a Sampler with a DefaultCacheCapacity pixel cache.
func New(opts ...Option) *Sampler {
	s := &Sampler{
		cache:    newFIFOCache(DefaultCacheCapacity),
		surfaces: NewSurfaceCache(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Surfaces returns the sampler's decoded-surface cache.
func (s *Sampler) Surfaces() *SurfaceCache { return s.surfaces }

// ExtractAt returns the color of the pixel at (x, y) in src.
//
// A cached result is returned unchanged without touching the image. Otherwise
// the coordinate is validated, the image decoded if needed, the pixel read
// with alpha ignored, and the result cached.
//
// # Errors
//
//   - *OutOfBoundsError (ErrOutOfBounds) if x or y is outside the image
//   - ErrDecodeFailure if the image cannot be decoded or has zero size
func (s *Sampler) ExtractAt(src Source, x, y int) (*SampledPixel, error) {
	key := pixelKey{source: src.Key(), x: x, y: y}
	if px, ok := s.lookup(key); ok {
		return &px, nil
	}

	width, height, err := s.dimensions(src)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(x, y, width, height); err != nil {
		return nil, err
	}

	surf, err := s.surfaces.Load(src)
	if err != nil {
		return nil, err
	}
	px, err := s.sample(key, surf)
	if err != nil {
		return nil, err
	}
	return &px, nil
}

// ExtractMany samples every point in order from a single decode of src.
//
// The call is all-or-nothing: if any point is out of bounds, it fails with an
// *OutOfBoundsError whose Index identifies the first offending point, and no
// results are returned. Points sampled before the failure stay cached.
func (s *Sampler) ExtractMany(src Source, points []image.Point) ([]SampledPixel, error) {
	surf, err := s.surfaces.Load(src)
	if err != nil {
		return nil, err
	}
	b := surf.Bounds()

	results := make([]SampledPixel, 0, len(points))
	for i, p := range points {
		key := pixelKey{source: src.Key(), x: p.X, y: p.Y}
		if px, ok := s.lookup(key); ok {
			results = append(results, px)
			continue
		}
		if err := checkBounds(p.X, p.Y, b.Dx(), b.Dy()); err != nil {
			oob := err.(*OutOfBoundsError)
			oob.Index = i
			return nil, oob
		}
		px, err := s.sample(key, surf)
		if err != nil {
			return nil, err
		}
		results = append(results, px)
	}
	return results, nil
}

// ClearCache empties the pixel cache and resets Stats. Decoded surfaces are
// kept; use Surfaces().Clear() to drop those.
func (s *Sampler) ClearCache() {
	s.mu.Lock()
	s.cache.clear()
	s.stats = Stats{}
	s.mu.Unlock()
}

// Forget drops every cached pixel sampled from src along with its decoded
// surface, so the next extraction reads the image again. It returns the
// number of pixels removed. Stats are left unchanged.
func (s *Sampler) Forget(src Source) int {
	key := src.Key()
	s.mu.Lock()
	removed := s.cache.removeSource(key)
	s.mu.Unlock()
	s.surfaces.Evict(key)

	s.logger.Debug("forgot source", zap.String("source", key), zap.Int("pixels", removed))
	return removed
}

// Capacity returns the maximum number of cached pixels.
func (s *Sampler) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache.ring)
}

// CacheSize returns the number of cached pixels.
func (s *Sampler) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.len()
}

// Stats returns a snapshot of the activity counters.
func (s *Sampler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Sampler) lookup(key pixelKey) (SampledPixel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	px, ok := s.cache.get(key)
	if ok {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	return px, ok
}

// dimensions returns the size a coordinate is validated against: the decoded
// surface if there is one, then the source's intrinsic size, then its nominal
// size, and only then a full decode.
func (s *Sampler) dimensions(src Source) (int, int, error) {
	if surf, ok := s.surfaces.Peek(src.Key()); ok {
		b := surf.Bounds()
		return b.Dx(), b.Dy(), nil
	}
	if is, ok := src.(IntrinsicSizer); ok {
		if w, h, ok := is.IntrinsicSize(); ok {
			if w <= 0 || h <= 0 {
				return 0, 0, fmt.Errorf("%w: %s: image has zero dimensions (%dx%d)", ErrDecodeFailure, src.Key(), w, h)
			}
			return w, h, nil
		}
	}
	if ns, ok := src.(NominalSizer); ok {
		if w, h := ns.NominalSize(); w > 0 && h > 0 {
			return w, h, nil
		}
	}

	surf, err := s.surfaces.Load(src)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Debug("decoded surface",
		zap.String("source", src.Key()),
		zap.Int("width", surf.Bounds().Dx()),
		zap.Int("height", surf.Bounds().Dy()))
	b := surf.Bounds()
	return b.Dx(), b.Dy(), nil
}

// sample reads one pixel from surf and caches it. The coordinate is checked
// again against the surface, since a nominal size may not match it.
func (s *Sampler) sample(key pixelKey, surf *image.NRGBA) (SampledPixel, error) {
	b := surf.Bounds()
	if err := checkBounds(key.x, key.y, b.Dx(), b.Dy()); err != nil {
		return SampledPixel{}, err
	}

	c := surf.NRGBAAt(b.Min.X+key.x, b.Min.Y+key.y)
	color, err := colormodel.FromRGB(colormodel.RGBColor{R: int(c.R), G: int(c.G), B: int(c.B)})
	if err != nil {
		return SampledPixel{}, err
	}
	px := SampledPixel{Color: color, X: key.x, Y: key.y, Source: key.source}

	s.mu.Lock()
	s.stats.Samples++
	evicted := s.cache.put(key, px)
	if evicted {
		s.stats.Evictions++
	}
	s.mu.Unlock()

	if evicted {
		s.logger.Debug("pixel cache full, evicted oldest entry", zap.String("source", key.source))
	}
	return px, nil
}
