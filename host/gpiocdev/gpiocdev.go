// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiocdev implements conn/gpio.PinIO against a real Linux GPIO
// character device, via github.com/warthog618/go-gpiocdev. This is the
// backend the HUB75 driver and the software bitbang SPI master use when
// driving raw GPIO lines; it replaces the deprecated /sys/class/gpio sysfs
// interface the kernel is phasing out.
package gpiocdev

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/ledcat-go/ledcat/conn/gpio"
)

// Chip owns every line requested from a single GPIO character device
// (e.g. "gpiochip0") so they can all be released together.
type Chip struct {
	name  string
	lines []*gpiocdev.Line
}

// Open returns a Chip bound to the named character device. No lines are
// requested yet; call Out/In on the Chip for each pin.
func Open(name string) *Chip {
	return &Chip{name: name}
}

// Close releases every line this Chip has requested.
func (c *Chip) Close() error {
	var firstErr error
	for _, l := range c.lines {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.lines = nil
	return firstErr
}

// Out requests offset as an output pin, initially low.
func (c *Chip) Out(offset int) (gpio.PinOut, error) {
	line, err := gpiocdev.RequestLine(c.name, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("gpiocdev: requesting %s line %d as output: %w", c.name, offset, err)
	}
	c.lines = append(c.lines, line)
	return &pin{name: c.name, offset: offset, line: line}, nil
}

// In requests offset as an input pin.
func (c *Chip) In(offset int, pull gpio.Pull) (gpio.PinIn, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	switch pull {
	case gpio.Up:
		opts = append(opts, gpiocdev.WithPullUp)
	case gpio.Down:
		opts = append(opts, gpiocdev.WithPullDown)
	}
	line, err := gpiocdev.RequestLine(c.name, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("gpiocdev: requesting %s line %d as input: %w", c.name, offset, err)
	}
	c.lines = append(c.lines, line)
	return &pin{name: c.name, offset: offset, line: line}, nil
}

// pin adapts a single *gpiocdev.Line to conn/gpio.PinIO. Edge detection is
// not wired up: inputs are only read by level (as device/bitbang reads
// MISO), and nothing in this tree waits for a GPIO edge.
type pin struct {
	name   string
	offset int
	line   *gpiocdev.Line
}

func (p *pin) Number() int { return p.offset }

func (p *pin) String() string { return fmt.Sprintf("%s/%d", p.name, p.offset) }

func (p *pin) Out(l gpio.Level) error {
	v := 0
	if l == gpio.High {
		v = 1
	}
	return p.line.SetValue(v)
}

func (p *pin) PWM(duty int) error {
	return p.Out(duty > gpio.Half)
}

func (p *pin) In(gpio.Pull, gpio.Edge) error {
	return nil
}

func (p *pin) Read() gpio.Level {
	v, err := p.line.Value()
	if err != nil || v == 0 {
		return gpio.Low
	}
	return gpio.High
}

func (p *pin) WaitForEdge(timeout time.Duration) bool {
	return false
}

var (
	_ gpio.PinOut = (*pin)(nil)
	_ gpio.PinIn  = (*pin)(nil)
)
