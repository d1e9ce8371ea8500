// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"errors"
	"fmt"
	"testing"

	"code.hybscloud.com/csp"
)

func TestIsWouldBlockMatchesWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("probe failed: %w", csp.ErrWouldBlock)
	if !csp.IsWouldBlock(wrapped) {
		t.Fatal("IsWouldBlock() should see through fmt.Errorf wrapping")
	}
	if csp.IsWouldBlock(errors.New("unrelated")) {
		t.Fatal("IsWouldBlock() should not match an unrelated error")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{csp.ErrPutOnClosed, csp.ErrInvalidCapacity, csp.ErrNilValue, csp.ErrClauseMismatch, csp.ErrWouldBlock}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel %d and %d should not be equivalent: %v, %v", i, j, a, b)
			}
		}
	}
}
