// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package reader multiplexes N concurrent byte streams into whole frames:
// it polls every input, lets whichever one fills its buffer first "win"
// the frame, and discards every input's partial buffer on a clear-timeout
// so a slow or stalled producer can never hand the pipeline a torn frame.
package reader

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// unixNonblock is syscall.O_NONBLOCK, used when opening a named pipe so
// the open call cannot block waiting for a writer.
const unixNonblock = syscall.O_NONBLOCK

// ExitCondition controls when the reader reports EOF.
type ExitCondition int

const (
	// Never means the reader never reports EOF; it is given a write handle
	// to its own named pipe inputs so it never observes "all writers
	// closed".
	Never ExitCondition = iota
	// OneClosed reports EOF as soon as any input closes, if no input won a
	// frame in that same pass.
	OneClosed
	// AllClosed reports EOF only once every input has closed.
	AllClosed
)

// retryDelay is how long the reader sleeps between poll passes when no
// clear timeout is configured and no input has won yet.
const retryDelay = 10 * time.Millisecond

// Input is a single pollable byte source.
type Input struct {
	File *os.File

	buf    []byte
	closed bool
}

// Reader multiplexes a set of Inputs into whole frames of exactly
// switchAfter bytes, in the order frames complete across all inputs.
type Reader struct {
	inputs       []*Input
	switchAfter  int
	exit         ExitCondition
	clearTimeout time.Duration // 0 means no timeout (infinite poll)

	pending []byte // not read or written by ReadFrame or AsReader's Read
}

// New returns a multiplexing Reader over files, producing frames of
// switchAfter bytes each. clearTimeout of 0 disables the partial-frame
// discard timeout (poll blocks indefinitely).
func New(files []*os.File, switchAfter int, exit ExitCondition, clearTimeout time.Duration) *Reader {
	inputs := make([]*Input, len(files))
	for i, f := range files {
		inputs[i] = &Input{File: f, buf: make([]byte, 0, switchAfter)}
	}
	return &Reader{
		inputs:       inputs,
		switchAfter:  switchAfter,
		exit:         exit,
		clearTimeout: clearTimeout,
	}
}

// OpenInput opens path as a frame source. If path names a named pipe it is
// opened O_NONBLOCK so the open call itself cannot deadlock waiting for a
// writer to show up (poll drives readiness afterwards; no further
// non-blocking I/O is needed). When keepWriterOpen is set (i.e. the
// reader's ExitCondition is Never) the pipe is additionally opened for
// writing by the reader itself, so the reader never observes every writer
// closing.
func OpenInput(path string, keepWriterOpen bool) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	fi, err := os.Stat(path)
	isFIFO := err == nil && fi.Mode()&os.ModeNamedPipe != 0

	flags := os.O_RDONLY
	if isFIFO {
		flags |= unixNonblock
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}
	if isFIFO && keepWriterOpen {
		wf, err := os.OpenFile(path, os.O_WRONLY|unixNonblock, 0)
		if err != nil {
			f.Close()
			return nil, err
		}
		// Pinned for the process lifetime: this handle exists only to
		// keep the pipe's writer-side refcount above zero, so the reader
		// never observes every writer closing under ExitCondition Never.
		pinnedWriters = append(pinnedWriters, wf)
	}
	return f, nil
}

// pinnedWriters keeps the write ends opened by OpenInput's keepWriterOpen
// path alive for the process lifetime; otherwise they would be finalized
// and closed as soon as they become unreachable.
var pinnedWriters []*os.File

// ErrEOF is returned by ReadFrame once the configured ExitCondition is met.
var ErrEOF = errors.New("reader: all inputs exhausted")

// ReadFrame blocks until a single whole frame of switchAfter bytes is
// available, or the exit condition is met (ErrEOF), or a hard I/O error
// occurs on one of the inputs.
func (r *Reader) ReadFrame() ([]byte, error) {
	for {
		pollFds := make([]unix.PollFd, 0, len(r.inputs))
		live := make([]*Input, 0, len(r.inputs))
		for _, in := range r.inputs {
			if in.closed {
				continue
			}
			pollFds = append(pollFds, unix.PollFd{Fd: int32(in.File.Fd()), Events: unix.POLLIN})
			live = append(live, in)
		}
		if len(live) == 0 {
			return nil, ErrEOF
		}

		timeoutMs := -1
		if r.clearTimeout > 0 {
			timeoutMs = int(r.clearTimeout.Milliseconds())
		}
		n, err := unix.Poll(pollFds, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			// Timed out: discard every partial buffer so no caller ever
			// observes a torn frame.
			for _, in := range r.inputs {
				in.buf = in.buf[:0]
			}
			continue
		}

		var winner *Input
		anyClosedThisPass := false
		for i, in := range live {
			ev := pollFds[i].Revents
			if ev&(unix.POLLHUP|unix.POLLNVAL|unix.POLLERR) != 0 && ev&unix.POLLIN == 0 {
				in.closed = true
				anyClosedThisPass = true
				continue
			}
			if ev&unix.POLLIN == 0 {
				continue
			}
			remaining := r.switchAfter - len(in.buf)
			if remaining <= 0 {
				continue
			}
			buf := make([]byte, remaining)
			nread, rerr := in.File.Read(buf)
			if nread == 0 {
				in.closed = true
				anyClosedThisPass = true
				if rerr != nil && rerr != io.EOF {
					return nil, rerr
				}
				continue
			}
			in.buf = append(in.buf, buf[:nread]...)
			if len(in.buf) >= r.switchAfter {
				winner = in
				break
			}
		}

		if winner == nil {
			if r.exitConditionMet(anyClosedThisPass) {
				return nil, ErrEOF
			}
			sleep := retryDelay
			if r.clearTimeout > 0 {
				sleep = r.clearTimeout
			}
			time.Sleep(sleep)
			continue
		}

		frame := winner.buf[:r.switchAfter:r.switchAfter]
		overflow := append([]byte(nil), winner.buf[r.switchAfter:]...)
		winner.buf = append(winner.buf[:0], overflow...)
		return frame, nil
	}
}

func (r *Reader) exitConditionMet(anyClosedThisPass bool) bool {
	switch r.exit {
	case Never:
		return false
	case OneClosed:
		return anyClosedThisPass
	case AllClosed:
		for _, in := range r.inputs {
			if !in.closed {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// frameReader adapts Reader to io.Reader, yielding exactly whole frames:
// a single Read call either returns a full switchAfter-byte frame or
// blocks/EOFs, never a partial one.
type frameReader struct {
	r *Reader
}

// AsReader returns an io.Reader over r that yields exactly whole frames
// per Read call (assuming the caller supplies a buffer of at least
// switchAfter bytes, as the pipeline's read stage does).
func (r *Reader) AsReader() io.Reader {
	return &frameReader{r: r}
}

func (fr *frameReader) Read(p []byte) (int, error) {
	frame, err := fr.r.ReadFrame()
	if err != nil {
		if err == ErrEOF {
			return 0, io.EOF
		}
		return 0, err
	}
	n := copy(p, frame)
	return n, nil
}
