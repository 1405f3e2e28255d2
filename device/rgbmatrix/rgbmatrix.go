// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build cgo

// Package rgbmatrix wraps hzeller/rpi-rgb-led-matrix (librgbmatrix) through
// its C ABI: a back-buffer is filled per frame and swapped on vsync. It is
// only built when cgo is enabled; other device codecs remain usable
// without the native library installed.
package rgbmatrix

/*
#cgo LDFLAGS: -lrgbmatrix -lstdc++
#include <stdlib.h>
#include "led-matrix-c.h"
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// Matrix drives a panel (or chain of panels) through librgbmatrix.
type Matrix struct {
	m      *C.struct_RGBLedMatrix
	canvas *C.struct_LedCanvas
	width  int
	height int
}

// Open constructs the matrix options from opts, creates the native
// RGBLedMatrix and its offscreen canvas.
func Open(opts Options) (*Matrix, error) {
	rows, cols := opts.Rows, opts.Cols
	chain, parallel := opts.ChainLength, opts.Parallel
	if cols == 0 && chain == 0 {
		return nil, ErrGeometryUnderspecified
	}
	if cols == 0 {
		cols = opts.Width / chain
	}
	if chain == 0 {
		chain = opts.Width / cols
	}
	if rows == 0 && parallel == 0 {
		return nil, ErrGeometryUnderspecified
	}
	if parallel == 0 {
		parallel = opts.Height / rows
	}
	if rows == 0 {
		rows = opts.Height / parallel
	}

	var cOpts C.struct_RGBLedMatrixOptions
	cOpts.rows = C.int(rows)
	cOpts.cols = C.int(cols)
	cOpts.chain_length = C.int(chain)
	cOpts.parallel = C.int(parallel)
	cOpts.pwm_bits = C.int(opts.PWMBits)
	cOpts.pwm_lsb_nanoseconds = C.int(opts.PWMLSBNanoseconds)
	cOpts.pwm_dither_bits = C.int(opts.PWMDitherBits)
	cOpts.scan_mode = C.int(opts.ScanMode)
	cOpts.row_address_type = C.int(opts.RowAddressType)
	cOpts.multiplexing = C.int(opts.Multiplexing)

	var hwMapping, rgbSeq *C.char
	if opts.HardwareMapping != "" {
		hwMapping = C.CString(opts.HardwareMapping)
		defer C.free(unsafe.Pointer(hwMapping))
		cOpts.hardware_mapping = hwMapping
	}
	if opts.LEDRGBSequence != "" {
		rgbSeq = C.CString(opts.LEDRGBSequence)
		defer C.free(unsafe.Pointer(rgbSeq))
		cOpts.led_rgb_sequence = rgbSeq
	}

	m := C.led_matrix_create_from_options(&cOpts, nil, nil)
	if m == nil {
		return nil, errors.New("rgbmatrix: led_matrix_create_from_options failed")
	}
	canvas := C.led_matrix_create_offscreen_canvas(m)
	return &Matrix{
		m:      m,
		canvas: canvas,
		width:  cols * chain,
		height: rows * parallel,
	}, nil
}

// ColorCorrection implements device.Output. The hardware applies its own
// PWM gamma; no additional correction is requested here.
func (mx *Matrix) ColorCorrection() correction.Correction {
	return correction.None()
}

// OutputFrame implements device.Output: the back-buffer is filled pixel by
// pixel, then swapped in on the next vsync.
func (mx *Matrix) OutputFrame(pixels []pixel.Pixel) error {
	if len(pixels) != mx.width*mx.height {
		return errors.New("rgbmatrix: frame size does not match configured geometry")
	}
	for y := 0; y < mx.height; y++ {
		for x := 0; x < mx.width; x++ {
			p := pixels[y*mx.width+x]
			C.led_canvas_set_pixel(mx.canvas, C.int(x), C.int(y), C.uint8_t(p.R), C.uint8_t(p.G), C.uint8_t(p.B))
		}
	}
	mx.canvas = C.led_matrix_swap_on_vsync(mx.m, mx.canvas)
	return nil
}

// Close clears and releases the native matrix.
func (mx *Matrix) Close() error {
	canvas := C.led_matrix_get_canvas(mx.m)
	C.led_canvas_clear(canvas)
	C.led_matrix_delete(mx.m)
	return nil
}
