package sampler

// pixelKey identifies one cached sample.
type pixelKey struct {
	source string
	x, y   int
}

// fifoCache is a fixed-capacity map that evicts in insertion order.
// Reads do not affect eviction order. It is not safe for concurrent use;
// Sampler serializes access.
type fifoCache struct {
	entries map[pixelKey]SampledPixel
	ring    []pixelKey // insertion order, oldest at head
	head    int
	size    int
}

func newFIFOCache(capacity int) *fifoCache {
	if capacity < 1 {
		capacity = 1
	}
	return &fifoCache{
		entries: make(map[pixelKey]SampledPixel, capacity),
		ring:    make([]pixelKey, capacity),
	}
}

func (c *fifoCache) get(k pixelKey) (SampledPixel, bool) {
	px, ok := c.entries[k]
	return px, ok
}

// put stores px under k and reports whether an older entry was evicted to
// make room. Overwriting an existing key keeps its original position.
func (c *fifoCache) put(k pixelKey, px SampledPixel) (evicted bool) {
	if _, ok := c.entries[k]; ok {
		c.entries[k] = px
		return false
	}
	if c.size == len(c.ring) {
		delete(c.entries, c.ring[c.head])
		c.ring[c.head] = pixelKey{}
		c.head = (c.head + 1) % len(c.ring)
		c.size--
		evicted = true
	}
	c.ring[(c.head+c.size)%len(c.ring)] = k
	c.size++
	c.entries[k] = px
	return evicted
}

// removeSource drops every entry sampled from source and returns how many
// were removed. The remaining entries keep their insertion order.
func (c *fifoCache) removeSource(source string) int {
	kept := make([]pixelKey, 0, c.size)
	for i := 0; i < c.size; i++ {
		k := c.ring[(c.head+i)%len(c.ring)]
		if k.source == source {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	removed := c.size - len(kept)

	for i := range c.ring {
		c.ring[i] = pixelKey{}
	}
	copy(c.ring, kept)
	c.head = 0
	c.size = len(kept)
	return removed
}

func (c *fifoCache) len() int { return c.size }

func (c *fifoCache) clear() {
	c.entries = make(map[pixelKey]SampledPixel, len(c.ring))
	for i := range c.ring {
		c.ring[i] = pixelKey{}
	}
	c.head = 0
	c.size = 0
}
