// Package pool provides typed object pooling for partition key encoding.
// Used by token.KeyBuilder to reuse key buffers across rows.
package pool

import (
	"sync"
)

// Pool is a generic, type-safe wrapper around sync.Pool
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // Optional reset function called before reuse
}

// NewPool creates a new generic pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	p.pool.Put(obj)
}

// BufferPool pools byte slices in capacity buckets. Partition keys are
// usually a few dozen bytes, so the buckets start small.
type BufferPool struct {
	pools   []*Pool[[]byte] // one per bucket, same order as buckets
	buckets []int
}

// NewBufferPool creates a new buffer pool with capacity-based buckets
func NewBufferPool() *BufferPool {
	buckets := []int{16, 32, 64, 128, 256, 512, 1024}

	bp := &BufferPool{
		pools:   make([]*Pool[[]byte], len(buckets)),
		buckets: buckets,
	}
	for i, capacity := range buckets {
		capacity := capacity
		bp.pools[i] = NewPoolWithReset(
			func() *[]byte {
				buf := make([]byte, 0, capacity)
				return &buf
			},
			func(buf *[]byte) {
				*buf = (*buf)[:0] // Reset length but keep capacity
			},
		)
	}
	return bp
}

// Get retrieves an empty buffer with at least the requested capacity
func (bp *BufferPool) Get(minCap int) *[]byte {
	i := bp.findBucket(minCap)
	if i < 0 {
		// Create buffer directly if outside bucket range
		buf := make([]byte, 0, minCap)
		return &buf
	}
	return bp.pools[i].Get()
}

// Put returns a buffer to the largest bucket its capacity can serve.
// Buffers smaller than every bucket, or far larger than the biggest, are dropped.
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	capacity := cap(*buf)
	if capacity > 2*bp.buckets[len(bp.buckets)-1] {
		return
	}
	for i := len(bp.buckets) - 1; i >= 0; i-- {
		if capacity >= bp.buckets[i] {
			bp.pools[i].Put(buf)
			return
		}
	}
}

// findBucket returns the index of the smallest bucket holding minCap bytes, or -1.
func (bp *BufferPool) findBucket(minCap int) int {
	for i, bucket := range bp.buckets {
		if bucket >= minCap {
			return i
		}
	}
	return -1
}

// GlobalBufferPool is shared by every key builder
var GlobalBufferPool = NewBufferPool()

// GetBuffer retrieves a buffer from the global pool
func GetBuffer(minCap int) *[]byte {
	return GlobalBufferPool.Get(minCap)
}

// PutBuffer returns a buffer to the global pool
func PutBuffer(buf *[]byte) {
	GlobalBufferPool.Put(buf)
}
