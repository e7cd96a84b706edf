// Package parallel runs CPU kernels over row bands of a raster on a
// work-stealing goroutine pool.
package parallel
