// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hexws2811 implements the bit-exact wire codec for HexWS2811
// strips: for each pixel, in reverse pixel order, six bytes gl,gh,rl,rh,bl,bh
// where each channel is widened to 16 bits (channel*256, little endian) —
// the low byte is therefore always zero — followed by a fixed four-byte
// trailer.
package hexws2811

import (
	"io"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/pixel"
)

// Codec implements device.Device for HexWS2811 strips.
type Codec struct {
	MaxHz int64
}

// ColorCorrection implements device.Device.
func (c Codec) ColorCorrection() correction.Correction {
	return correction.SRGB(255, 255, 255)
}

// SPIConfig implements device.SPIConfigurer.
func (c Codec) SPIConfig() device.SPIConfig {
	return device.SPIConfig{Mode: spi.Mode0, MaxHz: c.MaxHz}
}

// WriteFrame implements device.Device.
func (c Codec) WriteFrame(w io.Writer, pixels []pixel.Pixel) error {
	n := len(pixels)
	buf := make([]byte, 6*n+4)
	for i, p := range pixels {
		o := 6 * (n - 1 - i)
		g := uint16(p.G) * 256
		r := uint16(p.R) * 256
		b := uint16(p.B) * 256
		buf[o] = byte(g)
		buf[o+1] = byte(g >> 8)
		buf[o+2] = byte(r)
		buf[o+3] = byte(r >> 8)
		buf[o+4] = byte(b)
		buf[o+5] = byte(b >> 8)
	}
	tail := buf[6*n:]
	tail[0], tail[1], tail[2], tail[3] = 0xFF, 0xFF, 0xFF, 0xF0
	_, err := w.Write(buf)
	return err
}

var (
	_ device.Device        = Codec{}
	_ device.SPIConfigurer = Codec{}
)
