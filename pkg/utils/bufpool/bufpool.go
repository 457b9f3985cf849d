// Package bufpool recycles the scratch buffers used to marshal envelopes
// before they are written to a socket.
package bufpool

import "sync"

const defaultCap = 4096

var pool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, defaultCap)
		return &b
	},
}

// Get returns an empty buffer with some preallocated capacity.
func Get() (b []byte) {
	bp := pool.Get().(*[]byte)
	return (*bp)[:0]
}

// Put returns a buffer to the pool. Buffers that grew past four times the
// default capacity are dropped so the pool doesn't pin large allocations.
func Put(b []byte) {
	if cap(b) > defaultCap*4 {
		return
	}
	b = b[:0]
	pool.Put(&b)
}
