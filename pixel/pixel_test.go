// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pixel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRGB24(t *testing.T) {
	r := bytes.NewReader([]byte{0x01, 0x02, 0x03, 0xFF, 0x00, 0x7F})

	p, err := ReadRGB24(r)
	require.NoError(t, err)
	assert.Equal(t, Pixel{R: 1, G: 2, B: 3}, p)

	p, err = ReadRGB24(r)
	require.NoError(t, err)
	assert.Equal(t, Pixel{R: 0xFF, G: 0x00, B: 0x7F}, p)
}

func TestReadRGB24_ShortRead(t *testing.T) {
	r := bytes.NewReader([]byte{0x01, 0x02})
	_, err := ReadRGB24(r)
	assert.Error(t, err)
}

func TestDimensionsOne(t *testing.T) {
	d := One(42)
	assert.False(t, d.Is2D())
	assert.Equal(t, 42, d.Size())
	assert.Equal(t, "42", d.String())
}

func TestDimensionsTwo(t *testing.T) {
	d := Two(4, 5)
	assert.True(t, d.Is2D())
	w, h := d.WidthHeight()
	assert.Equal(t, 4, w)
	assert.Equal(t, 5, h)
	assert.Equal(t, 20, d.Size())
	assert.Equal(t, "4x5", d.String())
}

func TestDimensionsWidthHeightPanicsOn1D(t *testing.T) {
	d := One(10)
	assert.Panics(t, func() { d.WidthHeight() })
}
