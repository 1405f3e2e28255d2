// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements a software SPI master over three or four raw
// GPIO lines, for boards without a hardware SPI controller or spidev node.
package bitbang

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ledcat-go/ledcat/conn/gpio"
	"github.com/ledcat-go/ledcat/conn/spi"
)

// SPI is a SPI master implemented by toggling GPIO lines by hand.
type SPI struct {
	sck  gpio.PinOut // Clock
	sdi  gpio.PinIn  // MISO, may be nil
	sdo  gpio.PinOut // MOSI
	csn  gpio.PinOut // CS, may be nil

	mu        sync.Mutex
	halfCycle time.Duration
	lsbFirst  bool
}

// NewSPI returns a SPI master driving clk/mosi and optionally miso/cs by
// bit-banging. cs and miso may be nil. speedHz is the target clock rate;
// actual timing is bounded by how fast the host can toggle GPIO.
func NewSPI(clk, mosi gpio.PinOut, miso gpio.PinIn, cs gpio.PinOut, speedHz int64) (*SPI, error) {
	// Mode0 (CPOL=0) idles low; Connect rejects every other mode, so the
	// clock must start and end every bit low.
	if err := clk.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := mosi.Out(gpio.High); err != nil {
		return nil, err
	}
	if miso != nil {
		if err := miso.In(gpio.Up, gpio.NoEdge); err != nil {
			return nil, err
		}
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, err
		}
	}
	return &SPI{
		sck:       clk,
		sdi:       miso,
		sdo:       mosi,
		csn:       cs,
		halfCycle: time.Second / time.Duration(speedHz) / 2,
	}, nil
}

func (s *SPI) String() string {
	return fmt.Sprintf("bitbang/spi(%s, %s)", s.sck, s.sdo)
}

// Close implements spi.PortCloser. There is no handle to release.
func (s *SPI) Close() error { return nil }

// LimitSpeed implements spi.PortCloser.
func (s *SPI) LimitSpeed(maxHz int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halfCycle = time.Second / time.Duration(maxHz) / 2
	return nil
}

// Connect implements spi.Port. Only Mode0 (CPOL=0, CPHA=0) is supported.
func (s *SPI) Connect(maxHz int64, mode spi.Mode, bits int) (spi.Conn, error) {
	if mode&spi.Mode3 != spi.Mode0 {
		return nil, errors.New("bitbang: only SPI Mode0 is implemented")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lsbFirst = mode&spi.LSBFirst != 0
	if maxHz > 0 {
		if hc := time.Second / time.Duration(maxHz) / 2; hc > s.halfCycle {
			s.halfCycle = hc
		}
	}
	return s, nil
}

// Tx implements spi.Conn.
func (s *SPI) Tx(w, r []byte) error {
	if len(r) != 0 && len(w) != len(r) {
		return errors.New("bitbang: write and read buffers must be the same length")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.csn != nil {
		s.csn.Out(gpio.Low)
		s.sleepHalfCycle()
	}
	// CPOL=0/CPHA=0: data is set up while the clock is low, sampled on the
	// rising edge, and the clock returns low before the next bit.
	for i := uint(0); i < uint(len(w)*8); i++ {
		bit := i % 8
		if !s.lsbFirst {
			bit = 7 - bit
		}
		mask := byte(1) << bit
		s.sdo.Out(w[i/8]&mask != 0)
		s.sleepHalfCycle()
		s.sck.Out(gpio.High)
		if len(r) != 0 && s.sdi != nil {
			if s.sdi.Read() == gpio.High {
				r[i/8] |= mask
			}
		}
		s.sleepHalfCycle()
		s.sck.Out(gpio.Low)
	}
	if s.csn != nil {
		s.csn.Out(gpio.High)
	}
	return nil
}

// Write implements io.Writer by way of Tx.
func (s *SPI) Write(d []byte) (int, error) {
	if err := s.Tx(d, nil); err != nil {
		return 0, err
	}
	return len(d), nil
}

// CLK implements spi.Pins.
func (s *SPI) CLK() gpio.PinOut { return s.sck }

// MOSI implements spi.Pins.
func (s *SPI) MOSI() gpio.PinOut { return s.sdo }

// MISO implements spi.Pins.
func (s *SPI) MISO() gpio.PinIn { return s.sdi }

// CS implements spi.Pins.
func (s *SPI) CS() gpio.PinOut { return s.csn }

func (s *SPI) sleepHalfCycle() {
	time.Sleep(s.halfCycle)
}

var (
	_ spi.Conn       = &SPI{}
	_ spi.PortCloser = &SPI{}
	_ spi.Pins       = &SPI{}
)
