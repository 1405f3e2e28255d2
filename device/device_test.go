// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package device

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

func TestWrittenFrameSize(t *testing.T) {
	d := Generic{Format: RGB24}
	n, err := WrittenFrameSize(d, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestNewSinkComposesDeviceAndWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(Generic{Format: RGB24}, &buf)

	assert.Equal(t, correction.None(), s.ColorCorrection())

	require.NoError(t, s.OutputFrame([]pixel.Pixel{{R: 1, G: 2, B: 3}}))
	assert.Equal(t, []byte{1, 2, 3}, buf.Bytes())
}
