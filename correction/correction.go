// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package correction implements per-channel 256-entry lookup tables used to
// compensate for the non-linear response of LED chipsets, typically the
// sRGB electro-optical transfer function scaled to a device's peak output.
package correction

import (
	"math"

	"github.com/ledcat-go/ledcat/pixel"
)

// Correction holds three independent 256-entry lookup tables, one per
// channel. It is immutable once constructed.
type Correction struct {
	r, g, b [256]uint8
}

// None returns the identity correction: every channel maps to itself.
func None() Correction {
	var c Correction
	for i := 0; i < 256; i++ {
		c.r[i] = uint8(i)
		c.g[i] = uint8(i)
		c.b[i] = uint8(i)
	}
	return c
}

// SRGB returns the standard sRGB EOTF scaled to the given per-channel peak
// output value.
func SRGB(maxR, maxG, maxB uint8) Correction {
	var c Correction
	for i := 0; i < 256; i++ {
		c.r[i] = srgbEntry(i, maxR)
		c.g[i] = srgbEntry(i, maxG)
		c.b[i] = srgbEntry(i, maxB)
	}
	return c
}

func srgbEntry(v int, max uint8) uint8 {
	x := float64(v) / 255
	var y float64
	if x <= 0.04045 {
		y = x / 12.92
	} else {
		y = math.Pow((x+0.055)/1.055, 2.4)
	}
	out := math.Round(y * float64(max))
	if out < 0 {
		out = 0
	}
	if out > 255 {
		out = 255
	}
	return uint8(out)
}

// Correct applies the lookup tables to a single pixel.
func (c Correction) Correct(p pixel.Pixel) pixel.Pixel {
	return pixel.Pixel{
		R: c.r[p.R],
		G: c.g[p.G],
		B: c.b[p.B],
	}
}
