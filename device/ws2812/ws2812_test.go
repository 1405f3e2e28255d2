// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws2812

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/pixel"
)

// noSleep replaces the post-frame latch delay so tests run instantly.
func noSleep(time.Duration) {}

// TestSingleBitEncoding checks the per-bit 1->110/0->100 MSB-first SPI
// expansion against the exact bit-exact packing math (spec.md's own
// literal byte example for this scenario does not agree with its stated
// MSB-first bit order; the bytes here are the ones that MSB-first packing
// of "110 100 100 100 100 100 100 100" actually produces).
func TestSingleBitEncoding(t *testing.T) {
	c := Codec{sleep: noSleep}
	pixels := []pixel.Pixel{{G: 0x80, R: 0x00, B: 0x00}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	want := []byte{
		0xD2, 0x49, 0x24, // G = 0x80
		0x92, 0x49, 0x24, // R = 0x00
		0x92, 0x49, 0x24, // B = 0x00
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestAllZeroByte(t *testing.T) {
	c := Codec{sleep: noSleep}
	pixels := []pixel.Pixel{{G: 0, R: 0, B: 0}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))
	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92, 0x49, 0x24}, buf.Bytes())
}

func TestAllOnesByte(t *testing.T) {
	c := Codec{sleep: noSleep}
	pixels := []pixel.Pixel{{G: 0xFF, R: 0, B: 0}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))
	// Every bit set: each group is 0b110, all 24 bits are "110" repeated,
	// which packs into 0xDB 0x6D 0xB6.
	assert.Equal(t, byte(0xDB), buf.Bytes()[0])
}

func TestFrameSizeIsNineBytesPerPixel(t *testing.T) {
	c := Codec{sleep: noSleep}
	pixels := make([]pixel.Pixel, 4)
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))
	assert.Len(t, buf.Bytes(), 9*4)
}

func TestSPIConfig(t *testing.T) {
	c := New()
	cfg := c.SPIConfig()
	assert.EqualValues(t, 2400000, cfg.MaxHz)
}
