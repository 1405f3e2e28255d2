// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !cgo

package rgbmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The cgo-backed Open in rgbmatrix.go links against librgbmatrix's C ABI
// and needs the native library and real hardware to exercise meaningfully;
// only the no-cgo fallback is testable in this environment.
func TestOpenWithoutCgoAlwaysFails(t *testing.T) {
	_, err := Open(Options{Width: 32, Height: 32, ChainLength: 1, Parallel: 1})
	assert.ErrorIs(t, err, ErrNoCgo)
}
