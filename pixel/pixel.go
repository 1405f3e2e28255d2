// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pixel defines the frame data model shared by the reader, the
// transform stage and every device codec: pixels and dimensions. The
// geometric permutation that maps a linear index to another lives in
// package transpose.
package pixel

import (
	"errors"
	"fmt"
	"io"
)

// Pixel is a single RGB triple. Each channel ranges over [0, 255].
type Pixel struct {
	R, G, B uint8
}

// ReadRGB24 reads one pixel encoded as three consecutive bytes: r, g, b.
func ReadRGB24(r io.Reader) (Pixel, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Pixel{}, err
	}
	return Pixel{R: buf[0], G: buf[1], B: buf[2]}, nil
}

// Dimensions describes the shape of a frame: either a 1D strip of length L,
// or a 2D matrix of W by H. Exactly one of the two forms is active.
type Dimensions struct {
	l       int
	w, h    int
	is2D    bool
}

// One builds a 1D strip of the given length.
func One(length int) Dimensions {
	return Dimensions{l: length}
}

// Two builds a 2D matrix of width by height.
func Two(width, height int) Dimensions {
	return Dimensions{w: width, h: height, is2D: true}
}

// Is2D reports whether these dimensions describe a 2D matrix.
func (d Dimensions) Is2D() bool {
	return d.is2D
}

// WidthHeight returns the width and height. It panics if Is2D is false.
func (d Dimensions) WidthHeight() (int, int) {
	if !d.is2D {
		panic("pixel: dimensions are not 2D")
	}
	return d.w, d.h
}

// Size returns the total number of pixels, L or W*H.
func (d Dimensions) Size() int {
	if d.is2D {
		return d.w * d.h
	}
	return d.l
}

func (d Dimensions) String() string {
	if d.is2D {
		return fmt.Sprintf("%dx%d", d.w, d.h)
	}
	return fmt.Sprintf("%d", d.l)
}

// ErrRequires2D is returned by transpositions that are only meaningful on a
// 2D matrix when applied to a 1D strip.
var ErrRequires2D = errors.New("pixel: this operation requires 2D geometry")
