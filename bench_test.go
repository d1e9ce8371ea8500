// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"testing"

	"code.hybscloud.com/csp"
)

// BenchmarkRendezvous measures one take/put round-trip on an unbuffered
// channel between two goroutines.
func BenchmarkRendezvous(b *testing.B) {
	b.ReportAllocs()
	c := csp.NewChan()
	for b.Loop() {
		go csp.Put(c, 1)
		csp.Take(c)
	}
}

// BenchmarkBufferedPutTake measures a put/take pair on a channel with spare
// buffer capacity, the path that never parks either side.
func BenchmarkBufferedPutTake(b *testing.B) {
	b.ReportAllocs()
	c := csp.NewChan(csp.WithCapacity(1))
	for b.Loop() {
		csp.Put(c, 1)
		csp.Take(c)
	}
}

// BenchmarkTryTakeWouldBlock measures the non-blocking probe's fast-fail
// path, which never touches the dispatcher.
func BenchmarkTryTakeWouldBlock(b *testing.B) {
	b.ReportAllocs()
	c := csp.NewChan()
	for b.Loop() {
		csp.TryTake(c)
	}
}

// BenchmarkAltTwoReadyClauses measures Alt's synchronous-winner path across
// two already-ready take clauses.
func BenchmarkAltTwoReadyClauses(b *testing.B) {
	b.ReportAllocs()
	c1 := csp.NewChan(csp.WithCapacity(1))
	c2 := csp.NewChan(csp.WithCapacity(1))
	for b.Loop() {
		csp.Put(c1, 1)
		csp.Put(c2, 1)
		csp.Alt([]csp.Clause{
			csp.TakeClause("c1", c1),
			csp.TakeClause("c2", c2),
		})
	}
}

// BenchmarkLockFreeBufferPutTake measures a put/take pair on a channel
// backed by the lock-free ring buffer instead of the plain ring.
func BenchmarkLockFreeBufferPutTake(b *testing.B) {
	skipRace(b)
	b.ReportAllocs()
	buf, err := csp.NewLockFreeBuffer(2)
	if err != nil {
		b.Fatal(err)
	}
	c := csp.NewChan(csp.WithBuffer(buf))
	for b.Loop() {
		csp.Put(c, 1)
		csp.Take(c)
	}
}

// BenchmarkGoTaskRoundTrip measures spawning a task, delivering it one
// value, and observing its published result.
func BenchmarkGoTaskRoundTrip(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		in := csp.NewChan()
		out := csp.Go(func(t *csp.Task) any {
			return t.Take(in)
		})
		csp.Put(in, 1)
		csp.Take(out)
	}
}
