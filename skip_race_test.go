// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package csp_test

import "testing"

// skipRace skips tests that exercise lfq's lock-free MPMC ring (the
// dispatcher's submission queue and NewLockFreeBuffer). lfq's ring uses
// cross-variable memory ordering the race detector's per-variable
// happens-before tracking cannot see, producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: lfq uses cross-variable memory ordering")
}
