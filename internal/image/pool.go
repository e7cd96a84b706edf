package image

import "sync"

// Pool is a thread-safe pool for reusing Raster scratch buffers.
//
// Block extraction during tiled correction allocates many rasters of the
// same few sizes; Pool groups them by dimensions so later blocks reuse the
// memory of earlier ones.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Raster
	maxSize int // max rasters per bucket
}

// poolKey identifies a bucket of identically sized rasters.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a raster pool retaining at most maxPerBucket rasters of
// each size. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Raster),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a raster of the given size from the pool or allocates one.
// Reused rasters are not cleared; callers overwrite every pixel.
// Returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *Raster {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		r := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return r
	}
	p.mu.Unlock()

	r, err := NewRaster(width, height)
	if err != nil {
		return nil
	}
	return r
}

// Put returns a raster to the pool for reuse.
// If r is nil or the bucket is at capacity, r is discarded.
func (p *Pool) Put(r *Raster) {
	if r == nil || r.Validate() != nil {
		return
	}
	key := poolKey{width: r.Width, height: r.Height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, r)
}

// Len returns the number of pooled rasters across all buckets.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
