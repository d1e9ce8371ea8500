// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Handler is a one-shot commit token. At most one call to Commit across
// all goroutines ever returns a non-nil callback for a given Handler.
//
// LockID gives handlers a total order so that code holding two Handler
// locks at once (channel code matching a pending handler against the
// handler presented by the current caller) can always acquire them
// ascending-id-first and never deadlock against a concurrent match
// acquiring the same pair in the opposite order.
type Handler interface {
	// Active reports whether the handler is still eligible to fire. A
	// Handler committed elsewhere (e.g. by a winning Alt clause on a
	// different channel) reports false forever after.
	Active() bool
	// Lock guards commit state across the multi-handler matching rule.
	Lock()
	// Unlock releases Lock.
	Unlock()
	// LockID is this handler's position in the ascending-acquisition
	// order. 0 means uncontended (fn-handler); a 0-id handler is always
	// locked before any handler with a nonzero id.
	LockID() uint64
	// Commit atomically transitions active→inactive. Returns the
	// callback to invoke, or nil if the handler was already committed.
	Commit() func(any)
}

// fnHandler is the non-alt Handler: always active until committed, never
// contended (LockID 0), and its own lock is a plain mutex since only one
// channel operation ever touches it.
type fnHandler struct {
	mu    sync.Mutex
	state atomix.Uint32 // 0 = active, 1 = committed
	f     func(any)
}

// H wraps f as a one-shot Handler for the non-alt public surface
// (Take/Put/AsyncTake/AsyncPut).
func H(f func(any)) Handler {
	return &fnHandler{f: f}
}

func (h *fnHandler) Active() bool { return h.state.Load() == 0 }
func (h *fnHandler) Lock()        { h.mu.Lock() }
func (h *fnHandler) Unlock()      { h.mu.Unlock() }
func (h *fnHandler) LockID() uint64 { return 0 }

func (h *fnHandler) Commit() func(any) {
	if !h.state.CompareAndSwap(0, 1) {
		return nil
	}
	return h.f
}

// sameFlag reports whether a and b are two per-clause handlers backed by
// the very same alt-flag (flag.go) — i.e. two clauses of one Alt call.
// Lock-ids are allocated from a single global, strictly-positive counter
// (serial.go's nextLockID), so two handlers can only ever report equal,
// nonzero LockIDs by sharing the same underlying flag; a 0 id is the
// uncontended fn-handler sentinel and is deliberately excluded, since many
// independent fn-handlers legitimately share it.
//
// Callers must never present such a pair to lockHandlerPair: both Lock
// calls would resolve to the very same mutex from the very same goroutine,
// deadlocking instantly. matchPendingPutter/matchPendingTaker in
// channel.go check sameFlag before ever calling lockHandlerPair, and skip
// — never match or drop — a pending entry that shares the scanning
// handler's flag, since a clause can never legitimately satisfy another
// clause of its own Alt call.
func sameFlag(a, b Handler) bool {
	id := a.LockID()
	return id != 0 && id == b.LockID()
}

// lockHandlerPair locks a and b in ascending LockID order, then returns an
// unlock function that releases them in the reverse order. Equal ids are
// only possible for two distinct fn-handlers (both id 0, each with its own
// independent mutex) — a and b never share a flag here; see sameFlag.
func lockHandlerPair(a, b Handler) func() {
	ida, idb := a.LockID(), b.LockID()
	switch {
	case ida == idb:
		a.Lock()
		if a != b {
			b.Lock()
		}
		return func() {
			if a != b {
				b.Unlock()
			}
			a.Unlock()
		}
	case ida < idb:
		a.Lock()
		b.Lock()
		return func() { b.Unlock(); a.Unlock() }
	default:
		b.Lock()
		a.Lock()
		return func() { a.Unlock(); b.Unlock() }
	}
}
