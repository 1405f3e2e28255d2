// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package device defines the device codec and output sink abstractions that
// every concrete LED chipset/protocol implementation (apa102, ws2812,
// hub75, artnet, ...) satisfies, and hosts the Generic bit-exact codec.
package device

import (
	"errors"
	"io"

	"github.com/ledcat-go/ledcat/conn/spi"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// Device is the wire-format half of an output: it knows how to serialize a
// pixel buffer, and what color correction it prefers. The other half is a
// transport (an io.Writer) supplied by the driver layer.
type Device interface {
	// WriteFrame serializes pixels to w using this device's exact wire
	// format.
	WriteFrame(w io.Writer, pixels []pixel.Pixel) error
	// ColorCorrection returns the correction this device recommends be
	// applied before pixels reach WriteFrame.
	ColorCorrection() correction.Correction
}

// SPIConfigurer is implemented by devices that must be driven over SPI with
// specific bus parameters.
type SPIConfigurer interface {
	SPIConfig() SPIConfig
}

// SPIConfig carries the SPI bus parameters a device requires.
type SPIConfig struct {
	Mode  spi.Mode
	MaxHz int64
}

// WrittenFrameSize dry-runs WriteFrame against a counting sink to determine
// how many bytes a frame of numPixels would occupy on the wire.
func WrittenFrameSize(d Device, numPixels int) (int, error) {
	var c countingWriter
	dummy := make([]pixel.Pixel, numPixels)
	if err := d.WriteFrame(&c, dummy); err != nil {
		return 0, err
	}
	return c.n, nil
}

type countingWriter struct{ n int }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}

// Output is a fully self-contained sink: it accepts whole frames and takes
// care of delivering them to the transport it owns, whether that is a
// (Device, io.Writer) pair or a device that drives its own hardware (HUB75,
// Flux-LED, the external LED-matrix library).
type Output interface {
	ColorCorrection() correction.Correction
	OutputFrame(pixels []pixel.Pixel) error
}

// sink composes a Device with an io.Writer into an Output, the Go analogue
// of generically implementing Output for any (Device, io.Writer) pair.
type sink struct {
	dev Device
	w   io.Writer
}

// NewSink composes a device codec with a byte transport into an Output.
func NewSink(dev Device, w io.Writer) Output {
	return &sink{dev: dev, w: w}
}

func (s *sink) ColorCorrection() correction.Correction {
	return s.dev.ColorCorrection()
}

func (s *sink) OutputFrame(pixels []pixel.Pixel) error {
	return s.dev.WriteFrame(s.w, pixels)
}

// ErrDeviceNotSupported is returned when the SPI driver was selected but the
// chosen device codec did not request an SPI configuration.
var ErrDeviceNotSupported = errors.New("device: this device does not support the selected driver")
