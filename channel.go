// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// sweepThreshold bounds pending-queue growth under heavy alt use: once a
// queue grows past this many entries, a take!/put! that appends to it also
// scans and drops handlers whose Active() has gone false (committed
// elsewhere by a winning alt clause).
const sweepThreshold = 64

type pendingTaker struct{ h Handler }

type pendingPutter struct {
	h Handler
	v any
}

// Chan is the rendezvous/buffered queue described in spec.md §3: a mutex,
// an optional Buffer, ordered pending-taker and pending-putter queues, and
// a closed flag.
type Chan struct {
	mu      sync.Mutex
	buf     Buffer
	takers  []pendingTaker
	putters []pendingPutter
	closed  atomix.Uint32
	name    string
}

// ChanOption configures a Chan at construction.
type ChanOption func(*Chan)

// WithBuffer attaches an explicit Buffer (see buffer.go for the three
// disciplines). Without this option the channel is an unbuffered
// rendezvous.
func WithBuffer(b Buffer) ChanOption {
	return func(c *Chan) { c.buf = b }
}

// WithCapacity attaches a fixed buffer of capacity n. n == 0 leaves the
// channel unbuffered, matching chan(0).
func WithCapacity(n int) ChanOption {
	return func(c *Chan) {
		if n <= 0 {
			return
		}
		b, err := NewBuffer(n)
		if err != nil {
			panic(err) // n validated > 0 above; NewBuffer(n) only errors on n < 0
		}
		c.buf = b
	}
}

// WithName attaches a diagnostic name, surfaced only by String/tests.
func WithName(name string) ChanOption {
	return func(c *Chan) { c.name = name }
}

// NewChan creates a channel. With no options it is an unbuffered
// rendezvous; WithBuffer/WithCapacity attach one of the three buffering
// disciplines from buffer.go.
func NewChan(opts ...ChanOption) *Chan {
	c := &Chan{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chan) String() string {
	if c.name != "" {
		return c.name
	}
	return "csp.Chan"
}

// isClosed reads the closed flag. Every caller in this file holds c.mu
// while calling it and acting on the answer.
func (c *Chan) isClosed() bool { return c.closed.Load() != 0 }

// take attempts to satisfy h with a value. Returns a runnable to deliver
// the value to h's callback if the match (or close) happened synchronously
// under this call; returns nil if h was inactive, or h is now enqueued as
// a pending taker.
func (c *Chan) take(h Handler) func() {
	c.mu.Lock()

	if !h.Active() {
		c.mu.Unlock()
		return nil
	}

	if c.buf != nil && c.buf.Count() > 0 {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		if cb == nil {
			c.mu.Unlock()
			return nil
		}
		v := c.buf.Remove()
		refill := c.refillBufferFromPendingPutter()
		c.mu.Unlock()
		if refill != nil {
			defaultDispatch.Submit(refill)
		}
		return func() { cb(v) }
	}

	if run := c.matchPendingPutter(h); run != nil {
		return run
	}

	if c.isClosed() {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		c.mu.Unlock()
		if cb == nil {
			return nil
		}
		return func() { cb(nil) }
	}

	c.takers = append(c.takers, pendingTaker{h: h})
	c.sweepTakersLocked()
	c.mu.Unlock()
	return nil
}

// matchPendingPutter implements spec.md §4.2 take! step 3: find the first
// active, matchable pending putter, lock (h, putter.h) in ascending
// lock-id order, and commit both atomically. Must be called with c.mu
// held; always returns with c.mu unlocked when it returns non-nil, and
// still held when it returns nil.
//
// Once h itself is found inactive (committed elsewhere, e.g. a different
// clause of the same Alt won on another channel) the scan stops
// immediately without touching any further entry: every putter not yet
// inspected is still genuinely pending and must not be dropped just
// because the caller lost interest. A pending entry that shares h's own
// alt-flag (sameFlag) is never a valid counterpart — it is a clause of
// this very Alt call — so it is left in the queue and the scan moves past
// it to the next entry instead of matching or dropping it.
func (c *Chan) matchPendingPutter(h Handler) func() {
	for i := 0; i < len(c.putters); i++ {
		if !h.Active() {
			return nil
		}
		p := c.putters[i]
		if sameFlag(h, p.h) {
			continue
		}

		unlock := lockHandlerPair(h, p.h)
		if !h.Active() {
			unlock()
			return nil
		}
		if !p.h.Active() {
			unlock()
			c.putters = append(c.putters[:i], c.putters[i+1:]...)
			i--
			continue
		}
		takerCB := h.Commit()
		putterCB := p.h.Commit()
		unlock()

		if takerCB == nil || putterCB == nil {
			// Should not happen given the Active checks above under the
			// pair lock, but stay correct if a handler's own invariants
			// ever change: drop this match attempt and keep scanning.
			continue
		}

		c.putters = append(c.putters[:i], c.putters[i+1:]...)
		c.mu.Unlock()
		defaultDispatch.Submit(func() { putterCB(nil) })
		return func() { takerCB(p.v) }
	}
	return nil
}

// refillBufferFromPendingPutter implements the opportunistic refill in
// take! step 2: after removing one element from the buffer, if a putter is
// pending and the buffer now has room, move its value into the buffer and
// commit it. Must be called with c.mu held; does not unlock (the caller
// does, once, after this returns). Returns the putter's callback to
// schedule via dispatch, or nil.
func (c *Chan) refillBufferFromPendingPutter() func() {
	for len(c.putters) > 0 && !c.buf.Full() {
		p := c.putters[0]
		c.putters = c.putters[1:]

		p.h.Lock()
		active := p.h.Active()
		var cb func(any)
		if active {
			cb = p.h.Commit()
		}
		p.h.Unlock()
		if cb == nil {
			continue
		}
		c.buf.Add(p.v)
		return func() { cb(nil) }
	}
	return nil
}

// put attempts to deliver v to a pending taker or the buffer. Returns
// (runnable, err): err is ErrPutOnClosed if the channel was already
// closed — signaled synchronously per spec.md §4.2, not via h's callback.
func (c *Chan) put(v any, h Handler) (func(), error) {
	if v == nil {
		return nil, ErrNilValue
	}

	c.mu.Lock()

	if c.isClosed() {
		c.mu.Unlock()
		return nil, ErrPutOnClosed
	}

	if !h.Active() {
		c.mu.Unlock()
		return nil, nil
	}

	if run := c.matchPendingTaker(v, h); run != nil {
		return run, nil
	}

	if c.buf != nil && !c.buf.Full() {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		if cb == nil {
			c.mu.Unlock()
			return nil, nil
		}
		c.buf.Add(v)
		c.mu.Unlock()
		return func() { cb(nil) }, nil
	}

	c.putters = append(c.putters, pendingPutter{h: h, v: v})
	c.sweepPuttersLocked()
	c.mu.Unlock()
	return nil, nil
}

// matchPendingTaker is put!'s mirror of matchPendingPutter, with the same
// two rules: stop (without touching the queue further) the moment h itself
// goes inactive, and skip — never match or drop — a pending entry sharing
// h's own alt-flag. By the invariant in spec.md §3, pending takers are
// never nonempty while the buffer holds data, so this always runs before
// the buffer-fill path. Must be called with c.mu held; always returns with
// c.mu unlocked when it returns non-nil, and still held when it returns
// nil.
func (c *Chan) matchPendingTaker(v any, h Handler) func() {
	for i := 0; i < len(c.takers); i++ {
		if !h.Active() {
			return nil
		}
		t := c.takers[i]
		if sameFlag(h, t.h) {
			continue
		}

		unlock := lockHandlerPair(h, t.h)
		if !h.Active() {
			unlock()
			return nil
		}
		if !t.h.Active() {
			unlock()
			c.takers = append(c.takers[:i], c.takers[i+1:]...)
			i--
			continue
		}
		putterCB := h.Commit()
		takerCB := t.h.Commit()
		unlock()

		if putterCB == nil || takerCB == nil {
			continue
		}

		c.takers = append(c.takers[:i], c.takers[i+1:]...)
		c.mu.Unlock()
		defaultDispatch.Submit(func() { takerCB(v) })
		return func() { putterCB(nil) }
	}
	return nil
}

// close implements spec.md §4.2 close!: sets the closed flag, drains
// pending takers with the nil sentinel, and drains every pending putter
// (buffered or unbuffered channel alike) by completing it without
// transferring its value
// (see spec.md §9's explicit resolution of the put-on-closed ambiguity —
// only *new* puts on an already-closed channel raise).
func (c *Chan) close() {
	c.mu.Lock()
	if c.isClosed() {
		c.mu.Unlock()
		return
	}
	c.closed.Store(1)

	takers := c.takers
	c.takers = nil
	putters := c.putters
	c.putters = nil
	c.mu.Unlock()

	for _, t := range takers {
		t.h.Lock()
		cb := t.h.Commit()
		t.h.Unlock()
		if cb != nil {
			defaultDispatch.Submit(func() { cb(nil) })
		}
	}
	for _, p := range putters {
		p.h.Lock()
		cb := p.h.Commit()
		p.h.Unlock()
		if cb != nil {
			defaultDispatch.Submit(func() { cb(nil) })
		}
	}
}

func (c *Chan) sweepTakersLocked() {
	if len(c.takers) <= sweepThreshold {
		return
	}
	n := 0
	for _, t := range c.takers {
		if t.h.Active() {
			c.takers[n] = t
			n++
		}
	}
	c.takers = c.takers[:n]
}

func (c *Chan) sweepPuttersLocked() {
	if len(c.putters) <= sweepThreshold {
		return
	}
	n := 0
	for _, p := range c.putters {
		if p.h.Active() {
			c.putters[n] = p
			n++
		}
	}
	c.putters = c.putters[:n]
}

// TryTake probes the channel without parking: it runs exactly the
// synchronous half of take! and reports ErrWouldBlock instead of
// enqueueing a pending taker when neither the buffer nor a pending putter
// can satisfy the call immediately.
func (c *Chan) TryTake() (any, error) {
	done := make(chan struct{})
	var result any
	var hadValue bool
	h := H(func(v any) {
		result = v
		hadValue = true
		close(done)
	})

	c.mu.Lock()
	if c.buf != nil && c.buf.Count() > 0 {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		if cb == nil {
			c.mu.Unlock()
			return nil, ErrWouldBlock
		}
		v := c.buf.Remove()
		refill := c.refillBufferFromPendingPutter()
		c.mu.Unlock()
		if refill != nil {
			defaultDispatch.Submit(refill)
		}
		cb(v)
		<-done
		return result, nil
	}
	if run := c.matchPendingPutter(h); run != nil {
		run()
		<-done
		return result, nil
	}
	if c.isClosed() {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		c.mu.Unlock()
		if cb != nil {
			cb(nil)
		}
		return nil, nil
	}
	c.mu.Unlock()
	_ = hadValue
	return nil, ErrWouldBlock
}

// TryPut probes the channel without parking: the synchronous half of
// put!, reporting ErrWouldBlock instead of enqueueing a pending putter.
func (c *Chan) TryPut(v any) error {
	if v == nil {
		return ErrNilValue
	}
	done := make(chan struct{})
	h := H(func(any) { close(done) })

	c.mu.Lock()
	if c.isClosed() {
		c.mu.Unlock()
		return ErrPutOnClosed
	}
	if run := c.matchPendingTaker(v, h); run != nil {
		run()
		<-done
		return nil
	}
	if c.buf != nil && !c.buf.Full() {
		h.Lock()
		cb := h.Commit()
		h.Unlock()
		if cb == nil {
			c.mu.Unlock()
			return ErrWouldBlock
		}
		c.buf.Add(v)
		c.mu.Unlock()
		cb(nil)
		<-done
		return nil
	}
	c.mu.Unlock()
	return ErrWouldBlock
}

// Close closes the channel. Idempotent.
func (c *Chan) Close() { c.close() }
