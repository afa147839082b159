package capture

import "sync"

// Ring retains the newest samples written by a producer goroutine
// Latest reports nothing until a write lands after the previous read
type Ring struct {
	mu     sync.Mutex
	buf    []float64
	head   int
	filled int
	fresh  bool
}

// NewRing creates a ring holding size samples
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{buf: make([]float64, size)}
}

// Write appends samples, overwriting the oldest
func (r *Ring) Write(samples []float64) {
	if len(samples) == 0 {
		return
	}
	r.mu.Lock()
	for _, s := range samples {
		r.put(s)
	}
	r.fresh = true
	r.mu.Unlock()
}

// WriteU8 appends unsigned 8-bit PCM without an intermediate buffer
func (r *Ring) WriteU8(data []byte) {
	if len(data) == 0 {
		return
	}
	r.mu.Lock()
	for _, b := range data {
		r.put((float64(b) - 128) / 128)
	}
	r.fresh = true
	r.mu.Unlock()
}

func (r *Ring) put(s float64) {
	r.buf[r.head] = s
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	if r.filled < len(r.buf) {
		r.filled++
	}
}

// Latest copies up to len(dst) newest samples, oldest first, and clears freshness
func (r *Ring) Latest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.fresh {
		return 0
	}
	r.fresh = false

	n := min(len(dst), r.filled)
	start := r.head - n
	if start < 0 {
		start += len(r.buf)
	}
	first := copy(dst[:n], r.buf[start:min(start+n, len(r.buf))])
	copy(dst[first:n], r.buf[:n-first])
	return n
}

// Len returns the number of retained samples
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filled
}

// Reset drops all samples
func (r *Ring) Reset() {
	r.mu.Lock()
	r.head = 0
	r.filled = 0
	r.fresh = false
	r.mu.Unlock()
}
