// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !cgo

package rgbmatrix

import (
	"errors"

	"github.com/ledcat-go/ledcat/device"
)

// ErrNoCgo is returned by Open when the binary was built without cgo, so
// librgbmatrix's C ABI could not be linked in.
var ErrNoCgo = errors.New("rgbmatrix: built without cgo support")

// Open always fails on a non-cgo build.
func Open(opts Options) (device.Output, error) {
	return nil, ErrNoCgo
}
