// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ws2812 implements the WS2812 wire codec: each bit of every G,R,B
// byte (MSB first) is expanded to three SPI bits (1 -> 110, 0 -> 100) so
// that the SPI clock can stand in for the chip's single-wire NRZ timing.
package ws2812

import (
	"io"
	"time"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/pixel"
)

// latchDelay is the idle period after a frame required to latch it in.
const latchDelay = 50 * time.Microsecond

// sleeper abstracts the post-frame latch delay so tests can run without it.
type sleeper func(time.Duration)

// Codec implements device.Device for WS2812/WS2812B strips driven over
// SPI with each data bit tripled.
type Codec struct {
	sleep sleeper
}

// New returns a WS2812 codec.
func New() Codec {
	return Codec{sleep: time.Sleep}
}

// ColorCorrection implements device.Device.
func (c Codec) ColorCorrection() correction.Correction {
	return correction.SRGB(255, 255, 255)
}

// SPIConfig implements device.SPIConfigurer. A single data bit is
// transmitted as three SPI bits, so the 2.4MHz clock yields the chip's
// required ~1.25µs bit period (3 / 2.4MHz).
func (c Codec) SPIConfig() device.SPIConfig {
	return device.SPIConfig{Mode: spi.Mode0, MaxHz: 2400000}
}

// WriteFrame implements device.Device.
func (c Codec) WriteFrame(w io.Writer, pixels []pixel.Pixel) error {
	buf := make([]byte, 9*len(pixels))
	o := 0
	for _, p := range pixels {
		o = encodeByte(buf, o, p.G)
		o = encodeByte(buf, o, p.R)
		o = encodeByte(buf, o, p.B)
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(latchDelay)
	return nil
}

// encodeByte expands b into three SPI bytes (MSB of b first) and writes
// them at buf[o:o+3], returning the next offset.
func encodeByte(buf []byte, o int, b byte) int {
	var obits uint32
	for i := 0; i < 8; i++ {
		if (b>>uint(i))&1 == 1 {
			obits |= 0b110 << uint(i*3)
		} else {
			obits |= 0b100 << uint(i*3)
		}
	}
	buf[o] = byte(obits >> 16)
	buf[o+1] = byte(obits >> 8)
	buf[o+2] = byte(obits)
	return o + 3
}

var (
	_ device.Device        = Codec{}
	_ device.SPIConfigurer = Codec{}
)
