// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "code.hybscloud.com/lfq"

// Buffer is a fixed-capacity container used inside a [Chan]. Buffers are
// not internally synchronized: the enclosing channel's mutex serializes
// every call into Full, Remove, Add and Count.
type Buffer interface {
	// Full reports whether Add would require the fixed discipline's
	// caller to wait.
	Full() bool
	// Remove takes and returns the oldest element. Undefined if empty.
	Remove() any
	// Add inserts v. Behavior when Full differs per discipline: fixed
	// requires the caller to have already checked Full; dropping is a
	// no-op; sliding evicts the oldest element first.
	Add(v any)
	// Count returns the number of elements currently buffered.
	Count() int
}

// ring is the shared fixed-size circular storage used by fixedBuffer,
// droppingBuffer and slidingBuffer. It is a plain slice-backed ring, not
// lock-free: the channel's mutex already serializes every access, so a
// second synchronization layer underneath would be pure overhead.
type ring struct {
	data []any
	head int
	n    int
}

func newRing(capacity int) *ring {
	return &ring{data: make([]any, capacity)}
}

func (r *ring) len() int { return r.n }

func (r *ring) cap() int { return len(r.data) }

func (r *ring) push(v any) {
	idx := (r.head + r.n) % len(r.data)
	r.data[idx] = v
	r.n++
}

func (r *ring) pop() any {
	v := r.data[r.head]
	r.data[r.head] = nil
	r.head = (r.head + 1) % len(r.data)
	r.n--
	return v
}

// fixedBuffer implements the blocking-full discipline: Add must not be
// called when Full (the channel checks Full before ever appending a
// putter's value into a fixed buffer).
type fixedBuffer struct{ r *ring }

// NewBuffer creates a fixed-capacity buffer. A putter must wait (be
// enqueued as a pending putter) once the buffer reaches capacity n.
// n == 0 yields a buffer that is always full, matching chan(0)'s
// rendezvous-like behavior for any caller that insists on a Buffer value.
func NewBuffer(n int) (Buffer, error) {
	if n < 0 {
		return nil, wrapf("%w: fixed buffer size %d", ErrInvalidCapacity, n)
	}
	return &fixedBuffer{r: newRing(n)}, nil
}

func (b *fixedBuffer) Full() bool  { return b.r.n >= b.r.cap() }
func (b *fixedBuffer) Remove() any { return b.r.pop() }
func (b *fixedBuffer) Add(v any)   { b.r.push(v) }
func (b *fixedBuffer) Count() int  { return b.r.len() }

// droppingBuffer implements the dropping discipline: once full, Add is a
// no-op and the putter is treated by the channel as having completed
// immediately (the value is discarded).
type droppingBuffer struct{ r *ring }

// NewDroppingBuffer creates a buffer of capacity n ≥ 1 that silently
// discards new values once full.
func NewDroppingBuffer(n int) (Buffer, error) {
	if n < 1 {
		return nil, wrapf("%w: dropping buffer size %d", ErrInvalidCapacity, n)
	}
	return &droppingBuffer{r: newRing(n)}, nil
}

func (b *droppingBuffer) Full() bool  { return false } // never makes a putter wait
func (b *droppingBuffer) Remove() any { return b.r.pop() }
func (b *droppingBuffer) Add(v any) {
	if b.r.n >= b.r.cap() {
		return
	}
	b.r.push(v)
}
func (b *droppingBuffer) Count() int { return b.r.len() }

// slidingBuffer implements the sliding discipline: once full, the oldest
// element is evicted before the new one is appended, so Add always
// succeeds and the putter always completes immediately.
type slidingBuffer struct{ r *ring }

// NewSlidingBuffer creates a buffer of capacity n ≥ 1 that evicts the
// oldest element to make room for a new one once full.
func NewSlidingBuffer(n int) (Buffer, error) {
	if n < 1 {
		return nil, wrapf("%w: sliding buffer size %d", ErrInvalidCapacity, n)
	}
	return &slidingBuffer{r: newRing(n)}, nil
}

func (b *slidingBuffer) Full() bool  { return false } // never makes a putter wait
func (b *slidingBuffer) Remove() any { return b.r.pop() }
func (b *slidingBuffer) Add(v any) {
	if b.r.n >= b.r.cap() {
		b.r.pop()
	}
	b.r.push(v)
}
func (b *slidingBuffer) Count() int { return b.r.len() }

// lockFreeBuffer is an opt-in fixed-capacity buffer backed by
// code.hybscloud.com/lfq's bounded MPMC ring instead of the plain ring
// above. It trades exact Count() (lfq intentionally omits length; see its
// package doc) for a lock-free fast path, which only pays off when the
// channel is used as a pure fan-in/fan-out pipe rather than under heavy
// alt contention where the channel lock is held regardless.
type lockFreeBuffer struct {
	q        *lfq.MPMC[any]
	capacity int
	approx   int // best-effort count, maintained under the channel lock
}

// NewLockFreeBuffer creates a fixed-capacity buffer whose storage is a
// lock-free bounded queue. Capacity is rounded up to the next power of two
// by lfq; n must be ≥ 2.
func NewLockFreeBuffer(n int) (Buffer, error) {
	if n < 2 {
		return nil, wrapf("%w: lock-free buffer size %d", ErrInvalidCapacity, n)
	}
	return &lockFreeBuffer{q: lfq.NewMPMC[any](n), capacity: n}, nil
}

func (b *lockFreeBuffer) Full() bool { return b.approx >= b.capacity }
func (b *lockFreeBuffer) Remove() any {
	v, err := b.q.Dequeue()
	if err != nil {
		return nil
	}
	b.approx--
	return v
}
func (b *lockFreeBuffer) Add(v any) {
	if err := b.q.Enqueue(&v); err != nil {
		return
	}
	b.approx++
}
func (b *lockFreeBuffer) Count() int { return b.approx }
