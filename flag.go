// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// altFlag is the shared commit token backing every per-clause handler of a
// single Alt call. Committing the flag commits the entire alt: whichever
// clause wins succeeds in commitFlag exactly once, and every other clause's
// handler (sharing the same flag) immediately observes Active() == false.
type altFlag struct {
	mu     sync.Mutex
	state  atomix.Uint32 // 0 = active, 1 = committed
	lockID uint64
}

func newAltFlag() *altFlag {
	return &altFlag{lockID: nextLockID()}
}

func (f *altFlag) Active() bool   { return f.state.Load() == 0 }
func (f *altFlag) Lock()          { f.mu.Lock() }
func (f *altFlag) Unlock()        { f.mu.Unlock() }
func (f *altFlag) LockID() uint64 { return f.lockID }

// commitFlag is the flag's own one-shot commit, shared by every
// altHandler wrapping it. Returns true iff this call is the one that
// transitioned active→inactive.
func (f *altFlag) commitFlag() bool {
	return f.state.CompareAndSwap(0, 1)
}

// altHandler is the per-clause Handler used by Alt. Active and Lock/Unlock
// delegate to the shared flag so that winning on any one clause disables
// every other clause of the same alt call. Commit returns a callback that
// first records which clause won (via markWinner) and then invokes f.
type altHandler struct {
	flag        *altFlag
	clauseIndex int
	f           func(any)
	markWinner  func(clauseIndex int)
}

func newAltHandler(flag *altFlag, clauseIndex int, f func(any), markWinner func(int)) *altHandler {
	return &altHandler{flag: flag, clauseIndex: clauseIndex, f: f, markWinner: markWinner}
}

func (h *altHandler) Active() bool   { return h.flag.Active() }
func (h *altHandler) Lock()          { h.flag.Lock() }
func (h *altHandler) Unlock()        { h.flag.Unlock() }
func (h *altHandler) LockID() uint64 { return h.flag.LockID() }

func (h *altHandler) Commit() func(any) {
	if !h.flag.commitFlag() {
		return nil
	}
	return func(v any) {
		h.markWinner(h.clauseIndex)
		h.f(v)
	}
}
