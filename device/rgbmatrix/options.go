// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgbmatrix

import "errors"

// Options mirrors the subset of RGBLedMatrixOptions this spec's CLI
// surfaces. Zero values fall back to the library's own defaults, except
// where Width/Height are used to derive Rows/Cols/Chain/Parallel. This type
// has no build tag: callers need it to build an Options value regardless of
// whether the binary was compiled with cgo.
type Options struct {
	Rows, Cols        int
	ChainLength       int
	Parallel          int
	PWMBits           int
	PWMLSBNanoseconds int
	PWMDitherBits     int
	ScanMode          int
	RowAddressType    int
	Multiplexing      int
	HardwareMapping   string
	LEDRGBSequence    string

	// Width/Height are the logical frame dimensions; used to derive any of
	// Rows/Cols/ChainLength/Parallel left at zero.
	Width, Height int
}

// ErrGeometryUnderspecified is returned when neither side of a dimension
// (rows/parallel, or cols/chain) can be derived from the requested frame
// size.
var ErrGeometryUnderspecified = errors.New("rgbmatrix: either rows or parallel, and either cols or chain, must be set")
