// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
	"github.com/ledcat-go/ledcat/transpose"
)

// recordingOutput captures every frame OutputFrame receives.
type recordingOutput struct {
	frames [][]pixel.Pixel
}

func (r *recordingOutput) ColorCorrection() correction.Correction { return correction.None() }

func (r *recordingOutput) OutputFrame(pixels []pixel.Pixel) error {
	cp := append([]pixel.Pixel(nil), pixels...)
	r.frames = append(r.frames, cp)
	return nil
}

func TestRunDimToHalf(t *testing.T) {
	// Spec scenario 3: dim = 128/255, channel output = floor(c*128/255).
	raw := bytes.NewReader([]byte{200, 100, 50})
	out := &recordingOutput{}

	cfg := Config{
		NumPixels:   1,
		Permutation: transpose.Identity(1),
		Dim:         128.0 / 255.0,
		Correction:  correction.None(),
		SingleFrame: true,
	}
	require.NoError(t, Run(raw, out, cfg))

	require.Len(t, out.frames, 1)
	require.Len(t, out.frames[0], 1)
	assert.Equal(t, pixel.Pixel{R: 100, G: 50, B: 25}, out.frames[0][0])
}

func TestRunAppliesPermutation(t *testing.T) {
	// Spec scenario 2: Reverse transposition over 3 pixels.
	raw := bytes.NewReader([]byte{
		0xAA, 0xBB, 0xCC,
		0x11, 0x22, 0x33,
		0x44, 0x55, 0x66,
	})
	out := &recordingOutput{}

	cfg := Config{
		NumPixels:   3,
		Permutation: transpose.Compile(3, []transpose.Func{transpose.Reverse(3)}),
		Dim:         1.0,
		Correction:  correction.None(),
		SingleFrame: true,
	}
	require.NoError(t, Run(raw, out, cfg))

	require.Len(t, out.frames, 1)
	want := []pixel.Pixel{
		{R: 0x44, G: 0x55, B: 0x66},
		{R: 0x11, G: 0x22, B: 0x33},
		{R: 0xAA, G: 0xBB, B: 0xCC},
	}
	assert.Equal(t, want, out.frames[0])
}

func TestRunStopsOnCleanEOF(t *testing.T) {
	raw := bytes.NewReader([]byte{1, 2, 3, 4, 5, 6})
	out := &recordingOutput{}
	cfg := Config{NumPixels: 2, Permutation: transpose.Identity(2), Dim: 1.0, Correction: correction.None()}
	require.NoError(t, Run(raw, out, cfg))
	assert.Len(t, out.frames, 1)
}

func TestRunDrainsAllFramesBeforeReturning(t *testing.T) {
	// Regression test: Run must not return as soon as the read stage hits
	// EOF while frames are still buffered in the transform/output stages.
	const numFrames = 50
	raw := make([]byte, numFrames*3)
	for i := range raw {
		raw[i] = byte(i)
	}
	out := &recordingOutput{}
	cfg := Config{NumPixels: 1, Permutation: transpose.Identity(1), Dim: 1.0, Correction: correction.None()}
	require.NoError(t, Run(bytes.NewReader(raw), out, cfg))
	assert.Len(t, out.frames, numFrames)
}

func TestRunReportsReadError(t *testing.T) {
	raw := &erroringReader{}
	out := &recordingOutput{}
	cfg := Config{NumPixels: 1, Permutation: transpose.Identity(1), Dim: 1.0, Correction: correction.None()}
	err := Run(raw, out, cfg)
	assert.Error(t, err)
}

type erroringReader struct{}

func (e *erroringReader) Read(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRunReportsOutputErrorWithoutDeadlocking(t *testing.T) {
	const numFrames = 50
	raw := make([]byte, numFrames*3)
	out := &erroringOutput{failAfter: 2}
	cfg := Config{NumPixels: 1, Permutation: transpose.Identity(1), Dim: 1.0, Correction: correction.None()}

	done := make(chan error, 1)
	go func() { done <- Run(bytes.NewReader(raw), out, cfg) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run deadlocked after the output stage started erroring")
	}
}

// erroringOutput fails every OutputFrame call once failAfter frames have
// been seen, used to verify the output stage keeps draining the upstream
// channel after the first failure instead of leaving read/transform stuck.
type erroringOutput struct {
	failAfter int
	seen      int
}

func (e *erroringOutput) ColorCorrection() correction.Correction { return correction.None() }

func (e *erroringOutput) OutputFrame(pixels []pixel.Pixel) error {
	e.seen++
	if e.seen > e.failAfter {
		return errors.New("erroringOutput: simulated write failure")
	}
	return nil
}
