// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio defines digital pins in terms of their logical functionality,
// not their physical position, for the host packages and device codecs that
// bit-bang a protocol (SPI, HUB75) over raw GPIO lines.
package gpio

import (
	"errors"
	"fmt"
	"time"
)

// Pin is the minimal interface shared by every GPIO pin, regardless of
// direction.
type Pin interface {
	fmt.Stringer
	// Number returns the logical pin number, or a negative number if the pin
	// is not a real GPIO.
	Number() int
}

// Level is the level of the pin: Low or High.
type Level bool

const (
	// Low represents 0v.
	Low Level = false
	// High represents Vin, generally 3.3v or 5v.
	High Level = true
)

func (l Level) String() string {
	if l == Low {
		return "Low"
	}
	return "High"
}

// Pull specifies the internal pull-up or pull-down for a pin set as input.
type Pull uint8

// Acceptable pull values.
const (
	Float        Pull = 0 // Let the input float
	Down         Pull = 1 // Apply pull-down
	Up           Pull = 2 // Apply pull-up
	PullNoChange Pull = 3 // Do not change the previous pull resistor setting
)

// Edge specifies if an input pin should have edge detection enabled.
//
// Only enable it when needed, since this causes system interrupts.
type Edge uint8

// Acceptable edge detection values.
const (
	NoEdge  Edge = 0
	Rising  Edge = 1
	Falling Edge = 2
	Both    Edge = 3
)

// PinIn is an input GPIO pin.
type PinIn interface {
	Pin
	// In sets up a pin as an input.
	In(pull Pull, edge Edge) error
	// Read returns the current pin level. Behavior is undefined if In()
	// wasn't called first.
	Read() Level
	// WaitForEdge waits for the next edge of the kind requested in In, or
	// returns immediately if one occurred since the last call. Returns false
	// on timeout. Specify -1 to disable the timeout.
	WaitForEdge(timeout time.Duration) bool
}

const (
	// Max is the PWM fully at high. Use Out(High) instead when duty is 100%.
	Max = 65536
	// Half is a 50% PWM duty cycle.
	Half = Max / 2
)

// PinOut is an output GPIO pin.
type PinOut interface {
	Pin
	// Out sets a pin as output if it wasn't already and sets the initial
	// value.
	Out(l Level) error
	// PWM sets a pin as output with a duty cycle between 0 and Max.
	PWM(duty int) error
}

// PinIO is a GPIO pin that supports both input and output.
type PinIO interface {
	Pin
	In(pull Pull, edge Edge) error
	Read() Level
	WaitForEdge(timeout time.Duration) bool
	Out(l Level) error
	PWM(duty int) error
}

// INVALID implements PinIO and fails on all access.
var INVALID PinIO = invalidPin{}

var errInvalidPin = errors.New("gpio: invalid pin")

type invalidPin struct{}

func (invalidPin) Number() int                          { return -1 }
func (invalidPin) String() string                       { return "INVALID" }
func (invalidPin) In(Pull, Edge) error                   { return errInvalidPin }
func (invalidPin) Read() Level                           { return Low }
func (invalidPin) WaitForEdge(timeout time.Duration) bool { return false }
func (invalidPin) Out(Level) error                       { return errInvalidPin }
func (invalidPin) PWM(duty int) error                    { return errInvalidPin }

var (
	_ PinIn  = INVALID
	_ PinOut = INVALID
	_ PinIO  = INVALID
)
