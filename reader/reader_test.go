// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package reader

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllClosedProducesExactFrameCount exercises the invariant from spec
// §8: given k*(N*3) bytes with no partial tail, AllClosed yields exactly k
// frames and then EOFs.
func TestAllClosedProducesExactFrameCount(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	const frameSize = 6 // N=2 pixels * 3 bytes
	const k = 3
	data := make([]byte, frameSize*k)
	for i := range data {
		data[i] = byte(i)
	}
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rd := New([]*os.File{r}, frameSize, AllClosed, 0)

	var frames [][]byte
	for {
		frame, err := rd.ReadFrame()
		if err == ErrEOF {
			break
		}
		require.NoError(t, err)
		got := append([]byte(nil), frame...)
		frames = append(frames, got)
	}

	require.Len(t, frames, k)
	for i, f := range frames {
		assert.Equal(t, data[i*frameSize:(i+1)*frameSize], f)
	}
}

// TestNeverExitConditionNeverEOFs checks that, with OpenInput's
// keepWriterOpen pinning, a FIFO input under ExitCondition Never survives
// its external writer closing: the reader's own pinned write handle keeps
// the pipe's writer refcount above zero, so poll never reports "all
// writers closed" the way it would for a plain, unpinned pipe.
func TestNeverExitConditionNeverEOFs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.fifo")
	require.NoError(t, syscall.Mkfifo(path, 0600))

	f, err := OpenInput(path, true)
	require.NoError(t, err)

	extWriter, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	require.NoError(t, extWriter.Close())

	rd := New([]*os.File{f}, 3, Never, 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		rd.ReadFrame()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("ReadFrame returned despite ExitCondition Never and a pinned writer")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestOneClosedReportsEOFAssoonAsAnyInputCloses(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rd := New([]*os.File{r}, 3, OneClosed, 0)
	_, err = rd.ReadFrame()
	assert.ErrorIs(t, err, ErrEOF)
}

func TestOpenInputStdin(t *testing.T) {
	f, err := OpenInput("-", false)
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, f)
}

func TestAsReaderYieldsWholeFrames(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.Write([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rd := New([]*os.File{r}, 3, AllClosed, 0)
	fr := rd.AsReader()

	buf := make([]byte, 3)
	n, err := fr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{1, 2, 3}, buf)
}
