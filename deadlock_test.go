// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"testing"
	"time"

	"code.hybscloud.com/csp"
)

// TestTakeOnNeverPutChannelParksWithoutDeadlockingTheProcess proves that a
// goroutine blocked in Take on a channel nobody ever puts to parks forever
// without wedging any other goroutine, including the test runner itself.
func TestTakeOnNeverPutChannelParksWithoutDeadlockingTheProcess(t *testing.T) {
	c := csp.NewChan()

	go func() {
		csp.Take(c) // leaked on purpose: nothing ever puts or closes c
	}()

	time.Sleep(50 * time.Millisecond) // give it time to hit the pending-taker path
}

// TestAltBetweenTwoGoroutinesNeverDeadlocks exercises the ascending-lock-id
// pairing rule directly: two goroutines alt against each other's channels in
// opposite clause order, which is exactly the interleaving that would
// deadlock a naive lock(a) then lock(b) scheme.
func TestAltBetweenTwoGoroutinesNeverDeadlocks(t *testing.T) {
	c1 := csp.NewChan()
	c2 := csp.NewChan()
	done := make(chan struct{}, 2)

	go func() {
		csp.Alt([]csp.Clause{
			csp.PutClause("p1", c1, 1),
			csp.PutClause("p2", c2, 2),
		})
		done <- struct{}{}
	}()
	go func() {
		csp.Alt([]csp.Clause{
			csp.TakeClause("t2", c2),
			csp.TakeClause("t1", c1),
		})
		done <- struct{}{}
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("two concurrent alts deadlocked")
		}
	}
}

// TestManyAltsOnSharedChannelsNeverDeadlock runs a larger swarm of
// concurrent alts against a small shared set of channels. Every clause is a
// take and every alt has a default, so each call enqueues its handlers on
// shared channels and then returns through its default clause.
func TestManyAltsOnSharedChannelsNeverDeadlock(t *testing.T) {
	chans := make([]*csp.Chan, 4)
	for i := range chans {
		chans[i] = csp.NewChan()
	}

	const n = 20
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			clauses := []csp.Clause{
				csp.TakeClause("a", chans[i%4]),
				csp.TakeClause("b", chans[(i+1)%4]),
				csp.TakeClause("c", chans[(i+2)%4]),
			}
			csp.Alt(clauses, csp.Default("none", nil))
			done <- struct{}{}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("alt swarm deadlocked")
		}
	}
}
