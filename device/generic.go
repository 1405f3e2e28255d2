// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// Format selects the wire encoding a Generic codec uses.
type Format int

const (
	// RGB24 emits r, g, b as three bytes per pixel.
	RGB24 Format = iota
	// RGB16 packs each pixel into two bytes.
	RGB16
	// RGB12 packs two pixels into three bytes.
	RGB12
	// RGB8 packs each pixel into one byte.
	RGB8
	// GS1 emits one bit per pixel, luma-thresholded, LSB-first packed into
	// bytes. Requires the pixel count to be a multiple of 8.
	GS1
)

// ErrGS1Alignment is returned when a GS1 frame's pixel count is not a
// multiple of 8.
var ErrGS1Alignment = errors.New("device: GS1 format requires a pixel count that is a multiple of 8")

// Generic serializes pixels in one of the plain, correction-free formats
// used by simple microcontroller-driven strips that just want raw bytes.
type Generic struct {
	Format Format
}

// ColorCorrection implements Device. Generic applies no correction by
// default; the pipeline may still be configured to apply one upstream.
func (g Generic) ColorCorrection() correction.Correction {
	return correction.None()
}

// WriteFrame implements Device.
func (g Generic) WriteFrame(w io.Writer, pixels []pixel.Pixel) error {
	switch g.Format {
	case RGB24:
		return writeRGB24(w, pixels)
	case RGB16:
		return writeRGB16(w, pixels)
	case RGB12:
		return writeRGB12(w, pixels)
	case RGB8:
		return writeRGB8(w, pixels)
	case GS1:
		return writeGS1(w, pixels)
	default:
		return fmt.Errorf("device: unknown generic format %d", g.Format)
	}
}

func writeRGB24(w io.Writer, pixels []pixel.Pixel) error {
	buf := make([]byte, 3*len(pixels))
	for i, p := range pixels {
		buf[3*i], buf[3*i+1], buf[3*i+2] = p.R, p.G, p.B
	}
	_, err := w.Write(buf)
	return err
}

func writeRGB16(w io.Writer, pixels []pixel.Pixel) error {
	buf := make([]byte, 2*len(pixels))
	for i, p := range pixels {
		buf[2*i] = (p.R & 0xF8) | (p.G >> 5)
		buf[2*i+1] = ((p.G & 0x08) << 5) | (p.B >> 3)
	}
	_, err := w.Write(buf)
	return err
}

func writeRGB12(w io.Writer, pixels []pixel.Pixel) error {
	buf := make([]byte, 0, 3*(len(pixels)+1)/2)
	for i := 0; i < len(pixels); i += 2 {
		a := pixels[i]
		ah := (a.R & 0xF0) | (a.G >> 4)
		al := (a.B & 0xF0)
		if i+1 < len(pixels) {
			b := pixels[i+1]
			al |= b.R >> 4
			buf = append(buf, ah, al, (b.G&0xF0)|(b.B>>4))
		} else {
			buf = append(buf, ah, al)
		}
	}
	_, err := w.Write(buf)
	return err
}

func writeRGB8(w io.Writer, pixels []pixel.Pixel) error {
	buf := make([]byte, len(pixels))
	for i, p := range pixels {
		buf[i] = (p.B & 0xC0) | ((p.G >> 2) & 0x3C) | (p.R & 0x03)
	}
	_, err := w.Write(buf)
	return err
}

func writeGS1(w io.Writer, pixels []pixel.Pixel) error {
	if len(pixels)%8 != 0 {
		return ErrGS1Alignment
	}
	buf := make([]byte, len(pixels)/8)
	for i, p := range pixels {
		if luma(p) > 127 {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	_, err := w.Write(buf)
	return err
}

// luma computes round(0.2125 r + 0.7154 g + 0.0721 b).
func luma(p pixel.Pixel) int {
	v := 0.2125*float64(p.R) + 0.7154*float64(p.G) + 0.0721*float64(p.B)
	return int(v + 0.5)
}
