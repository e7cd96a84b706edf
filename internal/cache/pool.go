package cache

import (
	"fmt"
	"runtime"
	"sync"
	"weak"
)

// Key identifies interchangeable GPU objects.
type Key struct {
	Size  uint64
	Usage uint64
	Label string
}

func (k Key) String() string {
	return fmt.Sprintf("%s(size=%d usage=%#x)", k.Label, k.Size, k.Usage)
}

// Stats contains pool statistics.
type Stats struct {
	// Idle is the number of weak entries not yet reclaimed or reacquired.
	Idle int
	// Mapped is the number of objects currently marked mapped.
	Mapped int
	// Hits counts Acquire calls served from the pool.
	Hits uint64
	// Misses counts Acquire calls that allocated.
	Misses uint64
	// Purged counts entries removed by cleanup callbacks.
	Purged uint64
}

// Pool is a keyed cache of GPU objects held through weak pointers.
//
// Pool must not be copied after creation (has mutex).
type Pool[T any] struct {
	mu      sync.Mutex
	idle    map[Key][]weak.Pointer[T]
	mapped  map[weak.Pointer[T]]struct{}
	tracked map[weak.Pointer[T]]struct{}
	unmap   func(*T) error

	hits, misses, purged uint64
}

// NewPool creates an empty pool. unmap is called on a reacquired object
// that is still marked mapped; it may be nil for object types that are
// never mapped.
func NewPool[T any](unmap func(*T) error) *Pool[T] {
	return &Pool[T]{
		idle:    make(map[Key][]weak.Pointer[T]),
		mapped:  make(map[weak.Pointer[T]]struct{}),
		tracked: make(map[weak.Pointer[T]]struct{}),
		unmap:   unmap,
	}
}

// Acquire returns a live idle object for key, or calls alloc to create
// one. The caller has exclusive use of the object until it is returned
// with Put.
func (p *Pool[T]) Acquire(key Key, alloc func() (*T, error)) (*T, error) {
	if obj := p.takeIdle(key); obj != nil {
		if err := p.ensureUnmapped(obj); err != nil {
			return nil, err
		}
		return obj, nil
	}

	obj, err := alloc()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.misses++
	p.track(key, obj)
	p.mu.Unlock()
	return obj, nil
}

// takeIdle pops idle entries for key until one still resolves.
func (p *Pool[T]) takeIdle(key Key) *T {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.idle[key]
	for len(list) > 0 {
		wp := list[len(list)-1]
		list = list[:len(list)-1]
		if obj := wp.Value(); obj != nil {
			p.setIdle(key, list)
			p.hits++
			return obj
		}
	}
	p.setIdle(key, list)
	return nil
}

func (p *Pool[T]) setIdle(key Key, list []weak.Pointer[T]) {
	if len(list) == 0 {
		delete(p.idle, key)
		return
	}
	p.idle[key] = list
}

// track registers a cleanup that purges key's stale entries once obj is
// reclaimed. Caller must hold p.mu.
func (p *Pool[T]) track(key Key, obj *T) {
	wp := weak.Make(obj)
	if _, ok := p.tracked[wp]; ok {
		return
	}
	p.tracked[wp] = struct{}{}
	runtime.AddCleanup(obj, func(c cleanupArg[T]) {
		p.purge(c.key, c.ptr)
	}, cleanupArg[T]{key: key, ptr: wp})
}

type cleanupArg[T any] struct {
	key Key
	ptr weak.Pointer[T]
}

// purge drops every reclaimed entry for key along with the bookkeeping of
// the reclaimed object.
func (p *Pool[T]) purge(key Key, dead weak.Pointer[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.tracked, dead)
	delete(p.mapped, dead)

	list := p.idle[key]
	live := list[:0]
	for _, wp := range list {
		if wp.Value() != nil {
			live = append(live, wp)
		} else {
			p.purged++
		}
	}
	p.setIdle(key, live)
}

func (p *Pool[T]) ensureUnmapped(obj *T) error {
	wp := weak.Make(obj)

	p.mu.Lock()
	_, isMapped := p.mapped[wp]
	delete(p.mapped, wp)
	p.mu.Unlock()

	if !isMapped || p.unmap == nil {
		return nil
	}
	return p.unmap(obj)
}

// Put returns obj to the pool. The pool keeps only a weak reference, so an
// object that is not reacquired before the next collection is reclaimed.
func (p *Pool[T]) Put(key Key, obj *T) {
	if obj == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(key, obj)
	p.idle[key] = append(p.idle[key], weak.Make(obj))
}

// Forget removes every reference the pool holds to obj. Call it before
// destroying an object that came from the pool.
func (p *Pool[T]) Forget(key Key, obj *T) {
	if obj == nil {
		return
	}
	wp := weak.Make(obj)

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.mapped, wp)
	list := p.idle[key]
	kept := list[:0]
	for _, e := range list {
		if e != wp {
			kept = append(kept, e)
		}
	}
	p.setIdle(key, kept)
}

// MarkMapped records that obj is mapped for host access.
func (p *Pool[T]) MarkMapped(obj *T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mapped[weak.Make(obj)] = struct{}{}
}

// MarkUnmapped clears the mapped mark for obj.
func (p *Pool[T]) MarkUnmapped(obj *T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.mapped, weak.Make(obj))
}

// IsMapped reports whether obj is marked mapped.
func (p *Pool[T]) IsMapped(obj *T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.mapped[weak.Make(obj)]
	return ok
}

// Stats returns pool statistics.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := 0
	for _, list := range p.idle {
		idle += len(list)
	}
	return Stats{
		Idle:   idle,
		Mapped: len(p.mapped),
		Hits:   p.hits,
		Misses: p.misses,
		Purged: p.purged,
	}
}
