// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package term renders frames to the controlling terminal using ANSI
// 24-bit color, two vertically-adjacent pixels per character cell via the
// "Upper Half Block" glyph.
package term

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// upperHalfBlock is U+2580.
const upperHalfBlock = "▀"

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	resetAttr   = "\x1b[0m"
)

// Codec renders frames to a terminal. It requires 2D dimensions.
type Codec struct {
	Width, Height int

	first bool
}

// New returns a terminal renderer for a width by height frame. Height must
// be even; an odd row count leaves its last row's lower half undrawn.
func New(width, height int) *Codec {
	return &Codec{Width: width, Height: height, first: true}
}

// ColorCorrection implements device.Device.
func (c *Codec) ColorCorrection() correction.Correction {
	return correction.None()
}

// WriteFrame implements device.Device. pixels must be in row-major order,
// width*height long.
func (c *Codec) WriteFrame(w io.Writer, pixels []pixel.Pixel) error {
	bw := bufio.NewWriter(w)
	if c.first {
		bw.WriteString(clearScreen)
		c.first = false
	}
	bw.WriteString(cursorHome)
	for y := 0; y < c.Height; y += 2 {
		for x := 0; x < c.Width; x++ {
			upper := pixels[y*c.Width+x]
			var lower pixel.Pixel
			if y+1 < c.Height {
				lower = pixels[(y+1)*c.Width+x]
			}
			fmt.Fprintf(bw, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm%s",
				lower.R, lower.G, lower.B, upper.R, upper.G, upper.B, upperHalfBlock)
		}
		bw.WriteString(resetAttr)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
