// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hub75 drives a shift-register-based RGB LED matrix by bit-banging
// a set of GPIO lines: level-select address pins, a clock, a latch, an
// output-enable, and k RGB data triples (one triple per parallel scan
// line). A dedicated worker goroutine refreshes the panel continuously,
// independent of when new frames arrive.
package hub75

import (
	"errors"
	"fmt"

	"github.com/ledcat-go/ledcat/conn/gpio"
	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// RGBPins is one parallel scan line's data triple.
type RGBPins struct {
	R, G, B gpio.PinOut
}

// Config describes the panel geometry and the GPIO lines driving it.
type Config struct {
	Width, Height int
	LevelSelect   []gpio.PinOut
	RGB           []RGBPins
	Clock         gpio.PinOut
	Latch         gpio.PinOut
	OutputEnable  gpio.PinOut
	// PWMCycles is the number of grayscale sub-passes per refresh. Defaults
	// to 3 when zero.
	PWMCycles int
}

// Matrix is a HUB75 output sink: it accepts whole frames and hands them to
// a worker goroutine that refreshes the display in a tight loop.
type Matrix struct {
	frames chan []pixel.Pixel
	errs   chan error
}

// Open validates the configuration and starts the refresh worker.
func Open(cfg Config) (*Matrix, error) {
	scanHeight := 1 << len(cfg.LevelSelect)
	if cfg.Height%scanHeight != 0 {
		return nil, fmt.Errorf("hub75: height %d is not a multiple of scan height %d (2^%d level-select pins)", cfg.Height, scanHeight, len(cfg.LevelSelect))
	}
	k := cfg.Height / scanHeight
	if len(cfg.RGB) != k {
		return nil, fmt.Errorf("hub75: expected %d RGB pin triples (height/scan_height), got %d", k, len(cfg.RGB))
	}
	pwmCycles := cfg.PWMCycles
	if pwmCycles == 0 {
		pwmCycles = 3
	}

	w := &worker{
		cfg:        cfg,
		scanHeight: scanHeight,
		pwmCycles:  pwmCycles,
		curFrame:   make([]pixel.Pixel, cfg.Width*cfg.Height),
		clock:      dedup(cfg.Clock),
		latch:      dedup(cfg.Latch),
		oe:         dedup(cfg.OutputEnable),
		levelSelect: dedupAll(cfg.LevelSelect),
		rgb:        dedupRGB(cfg.RGB),
	}
	m := &Matrix{
		frames: make(chan []pixel.Pixel, 1),
		errs:   make(chan error, 1),
	}
	go w.run(m.frames, m.errs)
	return m, nil
}

// ColorCorrection implements device.Output.
func (m *Matrix) ColorCorrection() correction.Correction {
	return correction.SRGB(255, 255, 255)
}

// OutputFrame implements device.Output. It is non-blocking: the frame is
// enqueued into a single-slot channel, replacing any frame the worker
// hasn't yet picked up.
func (m *Matrix) OutputFrame(pixels []pixel.Pixel) error {
	select {
	case err := <-m.errs:
		return err
	default:
	}
	select {
	case <-m.frames:
	default:
	}
	m.frames <- pixels
	return nil
}

// worker owns the display loop and the GPIO pins; it is never touched
// outside its own goroutine.
type worker struct {
	cfg         Config
	scanHeight  int
	pwmCycles   int
	curFrame    []pixel.Pixel
	clock       *dedupPin
	latch       *dedupPin
	oe          *dedupPin
	levelSelect []*dedupPin
	rgb         []rgbDedup
}

type rgbDedup struct {
	r, g, b *dedupPin
}

func (w *worker) run(frames <-chan []pixel.Pixel, errs chan<- error) {
	for {
		select {
		case f := <-frames:
			w.curFrame = f
		default:
		}
		for i := 0; i < w.pwmCycles; i++ {
			a := 255 / (w.pwmCycles + 1)
			minVal := 255 - (i+1)*a
			if err := w.refresh(byte(minVal)); err != nil {
				select {
				case errs <- err:
				default:
				}
			}
		}
	}
}

func (w *worker) refresh(minVal byte) error {
	numLS := len(w.levelSelect)
	for y := 0; y < w.scanHeight; y++ {
		sy := ((y << 1) | (y >> uint(numLS-1))) & (w.scanHeight - 1)
		for x := 0; x < w.cfg.Width; x++ {
			for line, rgb := range w.rgb {
				idx := (sy+line*w.scanHeight)*w.cfg.Width + x
				p := w.curFrame[idx]
				if err := rgb.r.Out(p.R >= minVal); err != nil {
					return err
				}
				if err := rgb.g.Out(p.G >= minVal); err != nil {
					return err
				}
				if err := rgb.b.Out(p.B >= minVal); err != nil {
					return err
				}
			}
			if err := w.clock.Out(true); err != nil {
				return err
			}
			if err := w.clock.Out(false); err != nil {
				return err
			}
		}
		if err := w.oe.Out(true); err != nil {
			return err
		}
		for i, ls := range w.levelSelect {
			if err := ls.Out((sy>>uint(i))&1 == 1); err != nil {
				return err
			}
		}
		if err := w.latch.Out(true); err != nil {
			return err
		}
		if err := w.latch.Out(false); err != nil {
			return err
		}
		if err := w.oe.Out(false); err != nil {
			return err
		}
	}
	return nil
}

// dedupPin wraps a gpio.PinOut and skips redundant writes, a measurable win
// at high refresh rates when most bits do not change between rows.
type dedupPin struct {
	pin  gpio.PinOut
	last gpio.Level
	set  bool
}

func dedup(p gpio.PinOut) *dedupPin { return &dedupPin{pin: p} }

func dedupAll(p []gpio.PinOut) []*dedupPin {
	out := make([]*dedupPin, len(p))
	for i, pin := range p {
		out[i] = dedup(pin)
	}
	return out
}

func dedupRGB(p []RGBPins) []rgbDedup {
	out := make([]rgbDedup, len(p))
	for i, t := range p {
		out[i] = rgbDedup{r: dedup(t.R), g: dedup(t.G), b: dedup(t.B)}
	}
	return out
}

func (d *dedupPin) Out(high bool) error {
	lvl := gpio.Low
	if high {
		lvl = gpio.High
	}
	if d.set && d.last == lvl {
		return nil
	}
	if err := d.pin.Out(lvl); err != nil {
		return err
	}
	d.last = lvl
	d.set = true
	return nil
}

// ErrPinCountMismatch is returned when the red, green and blue pin lists
// are not all of equal length.
var ErrPinCountMismatch = errors.New("hub75: red, green and blue pin lists must be the same length")

// BuildRGBPins zips three independently configured pin lists (one per
// color channel, one entry per parallel scan line) into the RGBPins
// triples Config expects.
func BuildRGBPins(r, g, b []gpio.PinOut) ([]RGBPins, error) {
	if len(r) != len(g) || len(g) != len(b) {
		return nil, ErrPinCountMismatch
	}
	out := make([]RGBPins, len(r))
	for i := range r {
		out[i] = RGBPins{R: r[i], G: g[i], B: b[i]}
	}
	return out, nil
}
