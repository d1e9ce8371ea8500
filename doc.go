// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package csp provides CSP-style channels, a non-deterministic alt select,
// and a parking task runtime for cooperative concurrency in Go.
//
// # Architecture
//
//   - Channel: a rendezvous/buffered queue with matched pending takers and
//     putters, built on an internal mutex per [Chan]. [NewChan] creates it.
//   - Handler: a one-shot commit token shared by the synchronous surface and
//     by [Alt]; [Handler.Commit] transitions active→inactive exactly once.
//   - Alt: [Alt] commits exactly one of several pending channel operations,
//     chosen fairly, with an optional non-blocking default clause.
//   - Task: [Go] spawns a cooperative task whose body parks at channel
//     operations without consuming an OS thread; its result is published on
//     a capacity-1 result channel.
//
// # Non-blocking boundary
//
//   - [TryTake] and [TryPut] probe a channel without parking, returning
//     [code.hybscloud.com/iox.ErrWouldBlock] when neither the buffer nor a
//     matched peer can satisfy the call immediately.
//
// # Example
//
//	c := csp.NewChan()
//	result := csp.Go(func(t *csp.Task) any {
//		t.Put(c, 42)
//		return "sent"
//	})
//	v := csp.Take(c)      // 42
//	r := csp.Take(result) // "sent"
package csp
