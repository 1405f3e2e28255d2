// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hexws2811

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/pixel"
)

func TestWriteFrameWidensChannelsLittleEndian(t *testing.T) {
	c := Codec{MaxHz: 800000}
	pixels := []pixel.Pixel{{R: 0x10, G: 0x20, B: 0x30}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	word := buf.Bytes()[:6]
	assert.Equal(t, []byte{0x00, 0x20, 0x00, 0x10, 0x00, 0x30}, word)
}

func TestWriteFrameTrailer(t *testing.T) {
	c := Codec{MaxHz: 800000}
	pixels := []pixel.Pixel{{R: 1, G: 2, B: 3}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	assert.Len(t, buf.Bytes(), 6+4)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xF0}, buf.Bytes()[6:])
}

func TestWriteFrameReversesPixelOrder(t *testing.T) {
	c := Codec{MaxHz: 800000}
	pixels := []pixel.Pixel{
		{R: 1},
		{R: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	// Pixel 1 (R=2) first: its widened high byte lands at offset 3.
	// Pixel 0 (R=1) second: its widened high byte lands at offset 9.
	assert.Equal(t, byte(2), buf.Bytes()[3])
	assert.Equal(t, byte(1), buf.Bytes()[9])
}

func TestSPIConfigIsMode0(t *testing.T) {
	c := Codec{MaxHz: 800000}
	cfg := c.SPIConfig()
	assert.Equal(t, spi.Mode0, cfg.Mode)
	assert.EqualValues(t, 800000, cfg.MaxHz)
}
