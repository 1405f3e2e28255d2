// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lpd8806

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/pixel"
)

func TestWriteFrameHeaderAndTrailerLength(t *testing.T) {
	c := Codec{MaxHz: 2000000}
	pixels := []pixel.Pixel{{R: 1, G: 2, B: 3}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	// 10-byte header + 3 bytes/pixel + 50-byte trailer.
	assert.Len(t, buf.Bytes(), 10+3+50)
	assert.Equal(t, make([]byte, 10), buf.Bytes()[:10])
	assert.Equal(t, make([]byte, 50), buf.Bytes()[len(buf.Bytes())-50:])
}

func TestWriteFrameGRBOrderAndTopBitForced(t *testing.T) {
	c := Codec{MaxHz: 2000000}
	pixels := []pixel.Pixel{{R: 0x10, G: 0x20, B: 0x30}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	word := buf.Bytes()[10:13]
	assert.Equal(t, byte(0x20>>1)|0x80, word[0]) // G
	assert.Equal(t, byte(0x10>>1)|0x80, word[1]) // R
	assert.Equal(t, byte(0x30>>1)|0x80, word[2]) // B
}

func TestWriteFrameReversesPixelOrder(t *testing.T) {
	c := Codec{MaxHz: 2000000}
	pixels := []pixel.Pixel{
		{R: 1, G: 0, B: 0},
		{R: 2, G: 0, B: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, c.WriteFrame(&buf, pixels))

	// Pixel 1 (R=2) must be written first, pixel 0 (R=1) second.
	assert.Equal(t, byte(2>>1)|0x80, buf.Bytes()[11])
	assert.Equal(t, byte(1>>1)|0x80, buf.Bytes()[14])
}

func TestSPIConfigIsMode0(t *testing.T) {
	c := Codec{MaxHz: 3000000}
	cfg := c.SPIConfig()
	assert.Equal(t, spi.Mode0, cfg.Mode)
	assert.EqualValues(t, 3000000, cfg.MaxHz)
}
