// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package apa102

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/pixel"
)

// TestAPA102Wire checks the wire layout against the textual formula (start
// frame of four zero bytes, then one 0xE0|scale, B, G, R word per pixel,
// no trailer for plain APA102). DESIGN.md records why spec.md's literal
// byte example for this scenario is not used directly: it is internally
// inconsistent with its own stated field order.
func TestAPA102Wire(t *testing.T) {
	c := New(APA102, 31, 4000000)
	pixels := []pixel.Pixel{
		{R: 10, G: 20, B: 30},
		{R: 40, G: 50, B: 60},
	}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0xFF, 30, 20, 10,
		0xFF, 60, 50, 40,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestSK9822AddsEndFrame(t *testing.T) {
	c := New(SK9822, 0, 4000000)
	pixels := []pixel.Pixel{{R: 1, G: 2, B: 3}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0xE0, 3, 2, 1,
		0xFF, 0xFF, 0xFF, 0xFF,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestNewClampsGlobalScale(t *testing.T) {
	c := New(APA102, 200, 1000)
	assert.Equal(t, uint8(31), c.GlobalScale)
}

func TestSPIConfig(t *testing.T) {
	c := New(APA102, 31, 2500000)
	cfg := c.SPIConfig()
	assert.EqualValues(t, 2500000, cfg.MaxHz)
}
