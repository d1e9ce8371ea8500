// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "sync"

// Task is the handle a running task body uses to park at channel
// operations. Within a single task, operations happen in program order
// (spec.md §4.6's ordering guarantee); across tasks, only channel-level
// ordering applies.
type Task struct {
	id uint64
}

// ID returns the task's diagnostic id, used by OnTaskPanic.
func (t *Task) ID() uint64 { return t.id }

// Take parks t until a value is available on ch, or ch closes.
func (t *Task) Take(ch *Chan) any { return Take(ch) }

// Put parks t until v is delivered on ch.
func (t *Task) Put(ch *Chan, v any) error { return Put(ch, v) }

// Alt parks t on a non-deterministic choice among clauses.
func (t *Task) Alt(clauses []Clause, opts ...AltOption) Result { return Alt(clauses, opts...) }

var (
	taskPanicMu sync.Mutex
	taskPanicFn = func(taskID uint64, recovered any) {}
)

// OnTaskPanic installs the out-of-band handler spec.md §7 calls for: a
// task whose body panics never propagates that panic to another task, it
// surfaces here. Only the most recently installed handler is active.
func OnTaskPanic(f func(taskID uint64, recovered any)) {
	taskPanicMu.Lock()
	taskPanicFn = f
	taskPanicMu.Unlock()
}

func invokeTaskPanicHook(id uint64, r any) {
	taskPanicMu.Lock()
	f := taskPanicFn
	taskPanicMu.Unlock()
	f(id, r)
}

// Go spawns a task running body and returns its capacity-1 result
// channel. body may park at Take/Put/Alt any number of times before
// returning its final value; once it returns, that value (if non-nil) is
// published on the result channel, which is then closed (spec.md §4.6
// steps 1-2). A nil final value is equivalent to publishing nothing: the
// closed channel already reads as nil, so there is nothing to Put — doing
// so would violate the no-nil-values rule shared by every channel.
//
// The task body runs on an ordinary goroutine: spec.md's design note 9(a)
// explicitly sanctions this strategy, since Go's own scheduler already
// parks a blocked goroutine without pinning an OS thread to it. Go is the
// right default for hand-written task bodies; [Drive] exists for bodies
// produced by an external state-machine rewrite (design note 9(b)/(c)).
func Go(body func(t *Task) any) *Chan {
	result := NewChan(WithCapacity(1), WithName("csp.task.result"))
	t := &Task{id: nextTaskID()}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				invokeTaskPanicHook(t.id, r)
			}
			result.Close()
		}()
		if v := body(t); v != nil {
			Put(result, v)
		}
	}()

	return result
}

// ParkKind identifies which channel operation a [Machine] parked on.
type ParkKind int

const (
	ParkTake ParkKind = iota
	ParkPut
	ParkAlt
)

// Park describes a state machine's suspension point: which operation to
// perform, and on what.
type Park struct {
	Kind    ParkKind
	Ch      *Chan // ParkTake, ParkPut
	Value   any   // ParkPut
	Clauses []Clause
	AltOpts []AltOption
}

// Machine is the state-machine contract spec.md §4.6 names: an external
// compiler (out of scope for this module) rewrites a task body's lexical
// scope into a type implementing Step. Step is called with the value that
// unblocked the previous park (nil on the first call) and returns either a
// final value with done=true, or the next Park with done=false.
type Machine interface {
	Step(v any) (result any, park Park, done bool)
}

// Drive runs m to completion following spec.md §4.6's driver loop and
// returns its capacity-1 result channel. Unlike Go, Drive never spawns a
// goroutine to run m.Step itself: a park that completes immediately runs
// the next step inline, and a park that was queued runs it on whichever
// goroutine executes the channel's callback (the package dispatcher, for a
// callback scheduled by a matching take/put or by close). The exception is
// ParkAlt, where a dedicated goroutine backs the (necessarily blocking)
// Alt call so Drive itself never blocks its caller.
func Drive(m Machine) *Chan {
	result := NewChan(WithCapacity(1), WithName("csp.task.result"))
	id := nextTaskID()

	var step func(v any)
	step = func(v any) {
		defer func() {
			if r := recover(); r != nil {
				invokeTaskPanicHook(id, r)
				result.Close()
			}
		}()

		res, park, done := m.Step(v)
		if done {
			if res != nil {
				Put(result, res)
			}
			result.Close()
			return
		}

		switch park.Kind {
		case ParkTake:
			run := park.Ch.take(H(func(got any) { step(got) }))
			if run != nil {
				run()
			}
		case ParkPut:
			run, err := park.Ch.put(park.Value, H(func(any) { step(nil) }))
			if err != nil {
				panic(err)
			}
			if run != nil {
				run()
			}
		case ParkAlt:
			go func() {
				r := Alt(park.Clauses, park.AltOpts...)
				step(r)
			}()
		}
	}

	step(nil)
	return result
}
