// Package cache provides the GPU resource pool.
//
// # Pool[T]
//
// Pool caches GPU objects (buffers, textures) keyed by size, usage and
// label so repeated dispatches of the same shape reuse allocations.
//
//	buffers := cache.NewPool[wgpu.Buffer](unmapBuffer)
//	buf, err := buffers.Acquire(key, allocate)
//	...
//	buffers.Put(key, buf)
//
// Idle objects are held through weak pointers: the garbage collector may
// reclaim any object nobody has acquired, at which point a cleanup callback
// removes the stale entry. The pool never destroys objects itself. Stages
// that release an object explicitly call Forget first.
//
// Buffers mapped for host reading are tracked separately. Acquiring a
// buffer that is still marked mapped runs the unmap hook before handing it
// out, so an earlier failure between Map and Unmap cannot cause a
// double-map error later.
//
// # Thread Safety
//
// Pool is safe for concurrent use and tolerates cleanup callbacks running
// between any two calls. Liveness of a weak entry is checked under the
// lock at the moment it is handed out.
package cache
