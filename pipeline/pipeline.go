// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pipeline wires the frame reader, the transform stage and a
// device output together into three cooperating goroutines connected by
// single-slot bounded channels: a slow stage naturally backpressures a
// fast one instead of tearing or dropping frames.
package pipeline

import (
	"io"
	"time"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/pixel"
	"github.com/ledcat-go/ledcat/transpose"
)

// Config describes the pipeline's per-frame behavior.
type Config struct {
	// NumPixels is N, the number of pixels per frame.
	NumPixels int
	// Permutation maps raw pixel index i to its position in the output
	// frame. Pass transpose.Identity(NumPixels) for no remap.
	Permutation transpose.Permutation
	// Dim is the global dim factor in [0,1].
	Dim float64
	// Correction is applied after dimming, before the permutation write.
	Correction correction.Correction
	// FrameInterval paces the output stage if non-zero: after each write,
	// the stage sleeps for max(0, interval-elapsed).
	FrameInterval time.Duration
	// SingleFrame stops the read stage after exactly one frame.
	SingleFrame bool
}

// Run drives frames from raw through the transform stage to out until
// raw's frame reader returns io.EOF (success) or any stage errors. It
// blocks until every stage has finished, including the output stage
// draining whatever frames were already in flight, and returns the read
// stage's error if it had one, else the output stage's.
func Run(raw io.Reader, out device.Output, cfg Config) error {
	rawFrames := make(chan []byte, 1)
	pixelFrames := make(chan []pixel.Pixel, 1)
	readErrs := make(chan error, 1)
	outErrs := make(chan error, 1)

	go readStage(raw, cfg, rawFrames, readErrs)
	go transformStage(cfg, rawFrames, pixelFrames)
	go outputStage(out, cfg, pixelFrames, outErrs)

	outErr := <-outErrs
	if readErr := <-readErrs; readErr != nil {
		return readErr
	}
	return outErr
}

func readStage(raw io.Reader, cfg Config, out chan<- []byte, errs chan<- error) {
	defer close(out)
	frameBytes := cfg.NumPixels * 3
	for {
		buf := make([]byte, frameBytes)
		if _, err := io.ReadFull(raw, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				errs <- nil
			} else {
				errs <- err
			}
			return
		}
		out <- buf
		if cfg.SingleFrame {
			errs <- nil
			return
		}
	}
}

func transformStage(cfg Config, in <-chan []byte, out chan<- []pixel.Pixel) {
	defer close(out)
	dim16 := int(cfg.Dim*255 + 0.5)
	for raw := range in {
		frame := make([]pixel.Pixel, cfg.NumPixels)
		for i := 0; i < cfg.NumPixels; i++ {
			r := dimChannel(raw[3*i], dim16)
			g := dimChannel(raw[3*i+1], dim16)
			b := dimChannel(raw[3*i+2], dim16)
			p := cfg.Correction.Correct(pixel.Pixel{R: r, G: g, B: b})
			frame[cfg.Permutation[i]] = p
		}
		out <- frame
	}
}

func dimChannel(c uint8, dim16 int) uint8 {
	return uint8((int(c) * dim16) / 255)
}

func outputStage(out device.Output, cfg Config, in <-chan []pixel.Pixel, errs chan<- error) {
	var firstErr error
	for frame := range in {
		if firstErr != nil {
			// Keep draining so the upstream read/transform stages, which
			// block on a full single-slot channel, unwind instead of
			// leaking goroutines stuck writing to a dead receiver.
			continue
		}
		start := time.Now()
		if err := out.OutputFrame(frame); err != nil {
			firstErr = err
			continue
		}
		if cfg.FrameInterval > 0 {
			elapsed := time.Since(start)
			if sleep := cfg.FrameInterval - elapsed; sleep > 0 {
				time.Sleep(sleep)
			}
		}
	}
	errs <- firstErr
}
