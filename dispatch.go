// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"runtime"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Dispatcher runs callbacks off the committing goroutine's stack. A channel
// never blocks its own mutex-holding goroutine waiting for a matched
// counterpart's callback to run: it hands the callback to a Dispatcher and
// moves on.
//
// Workers are fed by a bounded lock-free MPMC queue; submitting to a full
// queue does not block the committer — it falls back to go f(), an
// unbounded escape hatch, rather than ever stalling the goroutine that just
// completed a channel match.
type Dispatcher struct {
	q       *lfq.MPMC[func()]
	once    sync.Once
	workers int
}

// defaultDispatch is the package-level Dispatcher used by the channel core
// to schedule a matched counterpart's callback (spec.md §4.2 step 2/3) and
// by AsyncTake/AsyncPut when onCaller is false.
var defaultDispatch = NewDispatcher(0)

// NewDispatcher creates a Dispatcher with workers goroutines draining a
// bounded submission queue. workers ≤ 0 defaults to GOMAXPROCS.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Dispatcher{q: lfq.NewMPMC[func()](256), workers: workers}
}

// start spins up the worker pool on first use; the pool is never started
// on the hot synchronous path (operations that complete immediately run
// their callback inline instead of going through Dispatcher at all).
func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			go d.drain()
		}
	})
}

func (d *Dispatcher) drain() {
	var bo iox.Backoff
	for {
		f, err := d.q.Dequeue()
		if err != nil {
			bo.Wait()
			continue
		}
		bo.Reset()
		f()
	}
}

// Submit schedules f to run off the caller's stack. Never blocks: a full
// submission queue falls back to an ordinary goroutine.
func (d *Dispatcher) Submit(f func()) {
	d.start()
	if err := d.q.Enqueue(&f); err != nil {
		go f()
		return
	}
}

// RunOnCaller runs f synchronously on the calling goroutine's stack,
// bypassing the dispatcher entirely. Used by AsyncTake/AsyncPut when the
// caller explicitly asks for onCaller semantics.
func RunOnCaller(f func()) { f() }
