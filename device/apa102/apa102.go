// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package apa102 implements the bit-exact wire codec shared by the APA102
// and SK9822 LED strips: a four-byte start frame, one 32-bit word per
// pixel carrying a 5-bit global brightness plus B, G, R, and (SK9822 only)
// a four-byte end frame.
package apa102

import (
	"io"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/pixel"
)

// Variant distinguishes the two chipsets sharing this wire protocol.
type Variant int

const (
	// APA102 emits only the start frame and the per-pixel words.
	APA102 Variant = iota
	// SK9822 additionally emits a four-byte end frame.
	SK9822
)

// Codec implements device.Device for APA102/SK9822 strips.
type Codec struct {
	Variant Variant
	// GlobalScale is the 5-bit global brightness, 0..31, applied to every
	// pixel via the lower 5 bits of its header byte (the upper 3 bits are
	// always set).
	GlobalScale uint8
	// MaxHz is the SPI clock to request. APA102/SK9822 is typically driven
	// in the low megahertz range.
	MaxHz int64
}

// New returns a Codec with the given global scale (clamped to [0,31]) and
// SPI clock.
func New(variant Variant, globalScale uint8, maxHz int64) Codec {
	if globalScale > 31 {
		globalScale = 31
	}
	return Codec{Variant: variant, GlobalScale: globalScale, MaxHz: maxHz}
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
	trailer := 0
	if c.Variant == SK9822 {
		trailer = 4
	}
	buf := make([]byte, 4+4*n+trailer)
	// Start frame: four zero bytes.
	header := byte(0xE0) | (c.GlobalScale & 0x1F)
	for i, p := range pixels {
		o := 4 + 4*i
		buf[o], buf[o+1], buf[o+2], buf[o+3] = header, p.B, p.G, p.R
	}
	if trailer > 0 {
		tail := buf[4+4*n:]
		for i := range tail {
			tail[i] = 0xFF
		}
	}
	_, err := w.Write(buf)
	return err
}

var (
	_ device.Device        = Codec{}
	_ device.SPIConfigurer = Codec{}
)
