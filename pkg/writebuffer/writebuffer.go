// Package writebuffer implements the thread-local write buffer over a
// shared preallocated arena. Each worker claims batches of slots from a
// single atomic counter instead of contending on a shared append;
// unused slots at the tail of a worker's last claimed batch are
// pre-filled with a sentinel value so a reader scanning the whole arena
// can skip those gaps without needing a separate length per worker.
package writebuffer

import (
	"sync/atomic"
)

// Arena is the shared backing array every Buffer claims slots from. It
// grows only forward within a round; Reset rewinds the claim counter so
// the same backing array can be reused across BSP rounds without
// reallocating.
type Arena[T any] struct {
	data      []T
	sentinel  T
	batchSize int
	counter   uint64
}

// NewArena preallocates capacity slots, all pre-filled with sentinel.
func NewArena[T any](capacity, batchSize int, sentinel T) *Arena[T] {
	if batchSize <= 0 {
		batchSize = 64
	}
	data := make([]T, capacity)
	for i := range data {
		data[i] = sentinel
	}
	return &Arena[T]{
		data:      data,
		sentinel:  sentinel,
		batchSize: batchSize,
	}
}

// Data returns the arena's backing slice. Entries past whatever each
// worker actually wrote remain the sentinel value; callers skip those
// slots, which can sit between the batches of different workers.
func (a *Arena[T]) Data() []T { return a.data }

// Reset rewinds the arena for a fresh round and re-fills every slot with
// the sentinel, so values written in an earlier round never show up in
// Data as if written in this one.
func (a *Arena[T]) Reset() {
	atomic.StoreUint64(&a.counter, 0)
	a.fillSentinel(0, len(a.data))
}

// claimBatch atomically reserves batchSize contiguous slots via a plain
// fetch-and-add on the shared counter.
func (a *Arena[T]) claimBatch() (start int, ok bool) {
	u := atomic.AddUint64(&a.counter, uint64(a.batchSize))
	start = int(u) - a.batchSize
	if start+a.batchSize > len(a.data) {
		return 0, false
	}
	a.fillSentinel(start, a.batchSize)
	return start, true
}

func (a *Arena[T]) fillSentinel(start, n int) {
	for i := start; i < start+n && i < len(a.data); i++ {
		a.data[i] = a.sentinel
	}
}

// Buffer is a single worker's claim cursor into an Arena. It is not
// safe for concurrent use by multiple goroutines -- each worker owns
// exactly one Buffer.
type Buffer[T any] struct {
	arena   *Arena[T]
	current int
	end     int
}

// NewBuffer returns a buffer bound to arena.
func NewBuffer[T any](arena *Arena[T]) *Buffer[T] {
	return &Buffer[T]{arena: arena}
}

// Append writes v to the next slot, claiming a fresh batch from the
// arena when the buffer's current batch is exhausted.
func (b *Buffer[T]) Append(v T) bool {
	if b.current == b.end {
		start, ok := b.arena.claimBatch()
		if !ok {
			return false
		}
		b.current = start
		b.end = start + b.arena.batchSize
	}
	b.arena.data[b.current] = v
	b.current++
	return true
}

// Len returns the buffer's write cursor: the arena index of the next
// slot it will write (0 before its first claim and after Reset). It
// equals the number of values written only for a buffer that is the
// arena's sole writer.
func (b *Buffer[T]) Len() int { return b.current }

// Reset rewinds the buffer's local cursor to the start of a fresh
// round, returning the number of sentinel-filled slots left unwritten
// in its last claimed batch -- the "gap count", a measure of
// claim-granularity waste.
func (b *Buffer[T]) Reset() int {
	gap := b.end - b.current
	b.current, b.end = 0, 0
	return gap
}
