// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

// Take blocks the calling goroutine until a value is available on ch, or
// ch is closed (in which case it returns nil). Implements spec.md §4.5's
// sync-take: wraps a single-slot rendezvous in an fn-handler and either
// runs the returned runnable inline or waits for the async callback.
func Take(ch *Chan) any {
	done := make(chan any, 1)
	h := H(func(v any) { done <- v })
	if run := ch.take(h); run != nil {
		run()
	}
	return <-done
}

// Put blocks the calling goroutine until v is delivered on ch. Returns
// ErrPutOnClosed if ch was already closed when Put was called. v must be
// non-nil (nil is reserved as the closed sentinel returned from Take).
func Put(ch *Chan, v any) error {
	done := make(chan struct{}, 1)
	h := H(func(any) { done <- struct{}{} })
	run, err := ch.put(v, h)
	if err != nil {
		return err
	}
	if run != nil {
		run()
	}
	<-done
	return nil
}

// AsyncTake registers f to be called with the next value taken from ch (or
// nil on close), without blocking the calling goroutine. If the take can
// complete immediately and onCaller is true, f runs on the calling
// goroutine's stack before AsyncTake returns; otherwise it is handed to
// the package dispatcher.
func AsyncTake(ch *Chan, f func(v any), onCaller bool) {
	h := H(f)
	run := ch.take(h)
	if run == nil {
		return
	}
	if onCaller {
		RunOnCaller(run)
	} else {
		defaultDispatch.Submit(run)
	}
}

// AsyncPut registers f to be called once v has been delivered on ch,
// without blocking the calling goroutine. Returns ErrPutOnClosed
// synchronously if ch was already closed. If the put can complete
// immediately and onCaller is true, f runs on the calling goroutine's
// stack before AsyncPut returns; otherwise it is handed to the package
// dispatcher.
func AsyncPut(ch *Chan, v any, f func(any), onCaller bool) error {
	h := H(f)
	run, err := ch.put(v, h)
	if err != nil {
		return err
	}
	if run == nil {
		return nil
	}
	if onCaller {
		RunOnCaller(run)
	} else {
		defaultDispatch.Submit(run)
	}
	return nil
}

// Close closes ch. Idempotent.
func Close(ch *Chan) { ch.Close() }

// TryTake is the package-level form of [Chan.TryTake].
func TryTake(ch *Chan) (any, error) { return ch.TryTake() }

// TryPut is the package-level form of [Chan.TryPut].
func TryPut(ch *Chan, v any) error { return ch.TryPut(v) }
