// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spi defines the SPI protocol, the narrow interface every device
// codec that speaks SPI (apa102, sk9822, lpd8806, ws2812 and the software
// bit-bang driver) is written against. Concrete ports are provided by the
// host packages: a real spidev port in host/sysfs, or a bit-banged port over
// raw GPIO lines in device/bitbang.
package spi

import (
	"io"
	"strconv"

	"github.com/ledcat-go/ledcat/conn"
	"github.com/ledcat-go/ledcat/conn/gpio"
)

// Mode determines how communication is done. The bits can be OR'ed to
// change the parameters used for communication.
type Mode int

// CPOL means the clock polarity, idle is high when set. CPHA is the clock
// phase, sample on trailing edge when set.
const (
	Mode0 Mode = 0x0 // CPOL=0, CPHA=0
	Mode1 Mode = 0x1 // CPOL=0, CPHA=1
	Mode2 Mode = 0x2 // CPOL=1, CPHA=0
	Mode3 Mode = 0x3 // CPOL=1, CPHA=1

	// HalfDuplex specifies that MOSI and MISO use the same wire.
	HalfDuplex Mode = 0x4
	// NoCS requests the driver not use the CS line.
	NoCS Mode = 0x8
	// LSBFirst requests words be encoded little endian instead of big endian.
	LSBFirst Mode = 0x10
)

func (m Mode) String() string {
	s := ""
	switch m & Mode3 {
	case Mode0:
		s = "Mode0"
	case Mode1:
		s = "Mode1"
	case Mode2:
		s = "Mode2"
	case Mode3:
		s = "Mode3"
	}
	m &^= Mode3
	if m&HalfDuplex != 0 {
		s += "|HalfDuplex"
	}
	m &^= HalfDuplex
	if m&NoCS != 0 {
		s += "|NoCS"
	}
	m &^= NoCS
	if m&LSBFirst != 0 {
		s += "|LSBFirst"
	}
	m &^= LSBFirst
	if m != 0 {
		s += "|0x" + strconv.FormatUint(uint64(m), 16)
	}
	return s
}

// Conn defines the interface a concrete SPI driver must implement. It is
// also a plain io.Writer, so a Conn can be handed directly to a Device.
type Conn interface {
	conn.Conn
	io.Writer
}

// Port is the interface provided to device drivers. Connect() converts the
// uninitialized Port into a Conn configured with the parameters the device
// requires.
type Port interface {
	// Connect sets the communication parameters of the connection for use
	// by a device. The device driver must call this exactly once.
	//
	// maxHz must specify the maximum rated speed for the device. The lowest
	// speed between the port speed and the device speed is selected. Use 0
	// if there is no known maximum.
	Connect(maxHz int64, mode Mode, bits int) (Conn, error)
}

// PortCloser is a SPI port that can be closed. This interface is meant to
// be handled by the application, not the device driver.
type PortCloser interface {
	io.Closer
	Port
	// LimitSpeed sets the maximum port speed, letting an application run a
	// device below its rated maximum, for example over long wires.
	LimitSpeed(maxHz int64) error
}

// Pins defines the pins a SPI port uses on the host.
type Pins interface {
	CLK() gpio.PinOut
	MOSI() gpio.PinOut
	MISO() gpio.PinIn
	CS() gpio.PinOut
}
