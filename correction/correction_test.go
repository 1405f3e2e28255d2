// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/ledcat-go/ledcat/pixel"
)

func TestNoneIsIdentity(t *testing.T) {
	c := None()
	rapid.Check(t, func(rt *rapid.T) {
		p := pixel.Pixel{
			R: uint8(rapid.IntRange(0, 255).Draw(rt, "r")),
			G: uint8(rapid.IntRange(0, 255).Draw(rt, "g")),
			B: uint8(rapid.IntRange(0, 255).Draw(rt, "b")),
		}
		assert.Equal(rt, p, c.Correct(p))
	})
}

func TestSRGBClampsToMax(t *testing.T) {
	c := SRGB(100, 200, 255)
	full := c.Correct(pixel.Pixel{R: 255, G: 255, B: 255})
	assert.Equal(t, uint8(100), full.R)
	assert.Equal(t, uint8(200), full.G)
	assert.Equal(t, uint8(255), full.B)
}

func TestSRGBZeroMapsToZero(t *testing.T) {
	c := SRGB(255, 255, 255)
	zero := c.Correct(pixel.Pixel{R: 0, G: 0, B: 0})
	assert.Equal(t, pixel.Pixel{}, zero)
}

// The sRGB EOTF is monotonic, so the correction table must be too: a
// brighter input channel never maps to a dimmer output.
func TestSRGBIsMonotonic(t *testing.T) {
	c := SRGB(255, 255, 255)
	prevR, prevG, prevB := uint8(0), uint8(0), uint8(0)
	for v := 0; v <= 255; v++ {
		p := c.Correct(pixel.Pixel{R: uint8(v), G: uint8(v), B: uint8(v)})
		assert.GreaterOrEqual(t, p.R, prevR)
		assert.GreaterOrEqual(t, p.G, prevG)
		assert.GreaterOrEqual(t, p.B, prevB)
		prevR, prevG, prevB = p.R, p.G, p.B
	}
}
