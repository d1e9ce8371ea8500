// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrPutOnClosed is returned synchronously by Put/AsyncPut/TryPut when the
// channel is already closed at the time of the call.
var ErrPutOnClosed = errors.New("csp: put on closed channel")

// ErrInvalidCapacity is returned by buffer constructors when the requested
// capacity is out of range for the chosen discipline.
var ErrInvalidCapacity = errors.New("csp: invalid buffer capacity")

// ErrNilValue is returned when a caller attempts to put a nil value; nil is
// reserved as the closed sentinel returned from Take.
var ErrNilValue = errors.New("csp: nil is reserved for the closed sentinel")

// ErrClauseMismatch is wrapped by the error Alt panics with when a clause
// list is malformed: an empty clause list, a clause with a nil channel, or
// more than one default clause.
var ErrClauseMismatch = errors.New("csp: malformed alt clause list")

// ErrWouldBlock is iox's non-blocking sentinel, re-exported verbatim so
// callers of TryTake/TryPut do not need to import iox themselves just to
// classify the error.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err is (or wraps) ErrWouldBlock.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

func wrapf(format string, args ...any) error {
	return fmt.Errorf("csp: "+format, args...)
}
