// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"sync"
	"time"
)

// Timeout returns a channel that closes after d. Combined with [Alt] on a
// channel being read, it is the cancellation/timeout idiom described in
// spec.md §5: the timer wins the alt and the task observes a nil take.
func Timeout(d time.Duration) *Chan {
	c := NewChan(WithName("csp.timeout"))
	timerWheel.schedule(d, c)
	return c
}

// coalesceWindow is how close two deadlines must be to share an
// underlying timer, per spec.md §3's optional coalescing note. A window of
// zero disables coalescing.
const coalesceWindow = time.Millisecond

// wheel buckets pending timeout channels by (roughly) shared deadline so
// concurrent Timeout(d) calls issued within coalesceWindow of each other
// close together off a single time.AfterFunc instead of one per call.
type wheel struct {
	mu      sync.Mutex
	buckets map[int64][]*Chan
}

var timerWheel = &wheel{buckets: make(map[int64][]*Chan)}

func (w *wheel) schedule(d time.Duration, c *Chan) {
	if d <= 0 {
		c.close()
		return
	}
	deadline := time.Now().Add(d).UnixNano()
	key := deadline
	if coalesceWindow > 0 {
		key = deadline / int64(coalesceWindow)
	}

	w.mu.Lock()
	bucket, exists := w.buckets[key]
	w.buckets[key] = append(bucket, c)
	w.mu.Unlock()

	if exists {
		return
	}
	time.AfterFunc(d, func() { w.fire(key) })
}

func (w *wheel) fire(key int64) {
	w.mu.Lock()
	chans := w.buckets[key]
	delete(w.buckets, key)
	w.mu.Unlock()

	for _, c := range chans {
		c.close()
	}
}
