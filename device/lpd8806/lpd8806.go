// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lpd8806 implements the bit-exact wire codec for LPD8806 strips: a
// 10-byte zero header, one G,R,B word per pixel in reverse pixel order with
// the top bit forced high, and a 50-byte zero trailer.
package lpd8806

import (
	"io"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/pixel"
)

// Codec implements device.Device for LPD8806 strips.
type Codec struct {
	// MaxHz is the SPI clock to request.
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
	buf := make([]byte, 10+3*n+50)
	for i, p := range pixels {
		o := 10 + 3*(n-1-i)
		buf[o] = (p.G >> 1) | 0x80
		buf[o+1] = (p.R >> 1) | 0x80
		buf[o+2] = (p.B >> 1) | 0x80
	}
	_, err := w.Write(buf)
	return err
}

var (
	_ device.Device        = Codec{}
	_ device.SPIConfigurer = Codec{}
)
