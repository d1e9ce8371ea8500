// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "code.hybscloud.com/atomix"

// lockIDCounter is the global monotonic counter backing Handler and
// AltFlag lock-ids. 0 is reserved to mean "uncontended" (fn-handler), so
// the first issued id is 1.
var lockIDCounter atomix.Uint64

// nextLockID returns the next strictly increasing, strictly positive
// lock-id. Handlers and alt-flags created concurrently never collide,
// which is what lets the ascending-lock-id rule in handler.go total-order
// any two handlers.
func nextLockID() uint64 {
	return lockIDCounter.Add(1)
}

// taskIDCounter is the global monotonic counter backing Task.id, used only
// for diagnostics (OnTaskPanic, Task.ID).
var taskIDCounter atomix.Uint64

func nextTaskID() uint64 {
	return taskIDCounter.Add(1)
}
