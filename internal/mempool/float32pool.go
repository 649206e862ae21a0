// Package mempool provides a size-classed pool for []float32 tensor buffers.
// Both preprocessors allocate one buffer per call on the hot path; pooling
// keeps steady-state inference allocation-free.
package mempool

import "sync"

var float32Pools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next 1 KiB multiple to reduce churn.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	r := (n + step - 1) / step
	return r * step
}

// GetFloat32 retrieves a []float32 buffer of at least n elements from the
// pool. The returned slice has length n but may have larger capacity. The
// caller must return it via PutFloat32 when done.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]float32, cls)[:n]
	}
	buf, ok := p.Get().([]float32)
	if !ok || cap(buf) < cls {
		buf = make([]float32, cls)
	}
	return buf[:cap(buf)][:n]
}

// PutFloat32 returns a buffer to the pool. It is safe to pass a nil slice.
// Contents are not zeroed; callers must overwrite every element they read.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	if p, ok := pAny.(*sync.Pool); ok {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}
