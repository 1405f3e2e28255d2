// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ledcat-go/ledcat/pixel"
	"github.com/ledcat-go/ledcat/transpose"
)

// geometryEnvVar is read when --geometry is "env".
const geometryEnvVar = "LEDCAT_GEOMETRY"

// parseGeometry parses the CLI grammar: a bare integer for a 1D strip, an
// "WxH" pair for a 2D matrix, or the literal "env" to defer to
// LEDCAT_GEOMETRY (itself parsed with the same grammar).
func parseGeometry(s string) (pixel.Dimensions, error) {
	if s == "env" {
		envVal := os.Getenv(geometryEnvVar)
		if envVal == "" {
			return pixel.Dimensions{}, fmt.Errorf("ledcat: %s is not set", geometryEnvVar)
		}
		return parseGeometry(envVal)
	}
	if w, h, ok := strings.Cut(s, "x"); ok {
		width, err := strconv.Atoi(w)
		if err != nil {
			return pixel.Dimensions{}, fmt.Errorf("ledcat: invalid geometry %q: %w", s, err)
		}
		height, err := strconv.Atoi(h)
		if err != nil {
			return pixel.Dimensions{}, fmt.Errorf("ledcat: invalid geometry %q: %w", s, err)
		}
		return pixel.Two(width, height), nil
	}
	length, err := strconv.Atoi(s)
	if err != nil {
		return pixel.Dimensions{}, fmt.Errorf("ledcat: invalid geometry %q: %w", s, err)
	}
	return pixel.One(length), nil
}

// buildTranspose resolves an ordered list of transposition names into the
// Func values transpose.Compile expects.
func buildTranspose(dims pixel.Dimensions, ops []string) ([]transpose.Func, error) {
	fns := make([]transpose.Func, 0, len(ops))
	for _, op := range ops {
		var f transpose.Func
		var err error
		switch op {
		case "reverse":
			f = transpose.Reverse(dims.Size())
		case "mirror_x":
			f, err = transpose.Mirror(dims, transpose.AxisX)
		case "mirror_y":
			f, err = transpose.Mirror(dims, transpose.AxisY)
		case "zigzag_x":
			f, err = transpose.Zigzag(dims, transpose.AxisX)
		case "zigzag_y":
			f, err = transpose.Zigzag(dims, transpose.AxisY)
		default:
			return nil, fmt.Errorf("ledcat: unknown transpose operation %q", op)
		}
		if err != nil {
			return nil, fmt.Errorf("ledcat: transpose %q: %w", op, err)
		}
		fns = append(fns, f)
	}
	return fns, nil
}
