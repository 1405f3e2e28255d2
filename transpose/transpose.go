// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transpose models geometric index remaps as composable, pure index
// functions, and compiles a configured list of them into a single
// precomputed permutation array for the transform stage to apply per pixel.
package transpose

import "github.com/ledcat-go/ledcat/pixel"

// Axis selects which axis a Mirror or Zigzag operates along.
type Axis int

const (
	// AxisX is the horizontal axis.
	AxisX Axis = iota
	// AxisY is the vertical axis.
	AxisY
)

// Func is a single index transposition: a bijection on [0, N).
//
// Implementations must be total on the whole of [0, N) for the dimensions
// they were built from, and must be deterministic.
type Func interface {
	// Apply maps i to its new index.
	Apply(i int) int
}

// funcFn adapts a plain function to Func.
type funcFn func(i int) int

func (f funcFn) Apply(i int) int { return f(i) }

// Reverse returns the transposition i -> L-1-i over a strip of length L.
func Reverse(length int) Func {
	return funcFn(func(i int) int {
		return length - 1 - i
	})
}

// Mirror returns the transposition that flips a W-by-H matrix along axis.
// It rejects non-2D dimensions at construction time with ErrRequires2D.
func Mirror(dims pixel.Dimensions, axis Axis) (Func, error) {
	if !dims.Is2D() {
		return nil, pixel.ErrRequires2D
	}
	w, h := dims.WidthHeight()
	switch axis {
	case AxisX:
		return funcFn(func(i int) int {
			x := i % w
			y := i / w
			return w*y + (w - 1 - x)
		}), nil
	default:
		return funcFn(func(i int) int {
			x := i % w
			y := i / w
			return w*(h-1-y) + x
		}), nil
	}
}

// Zigzag returns the boustrophedon transposition of a W-by-H matrix, serpentining
// along majorAxis.
func Zigzag(dims pixel.Dimensions, majorAxis Axis) (Func, error) {
	if !dims.Is2D() {
		return nil, pixel.ErrRequires2D
	}
	w, h := dims.WidthHeight()
	switch majorAxis {
	case AxisX:
		return funcFn(func(i int) int {
			x := i % w
			y := i / w
			if x%2 == 0 {
				return x*h + y
			}
			return x*h + (h - 1 - y)
		}), nil
	default:
		return funcFn(func(i int) int {
			y := i / w
			var x int
			if y%2 == 0 {
				x = i % w
			} else {
				x = w - 1 - (i % w)
			}
			return y*w + x
		}), nil
	}
}

// Permutation is a precomputed, total index mapping for a frame of N pixels.
// It is built once at configuration time and then applied per pixel without
// re-invoking the transposition functions that produced it.
type Permutation []int

// Identity returns the permutation that maps every index to itself.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Compile composes fns left to right (f = f_k ∘ ... ∘ f_1, evaluated in
// configuration order) into a single materialized permutation of length n.
func Compile(n int, fns []Func) Permutation {
	p := Identity(n)
	for _, f := range fns {
		next := make(Permutation, n)
		for i, v := range p {
			next[i] = f.Apply(v)
		}
		p = next
	}
	return p
}

// IsBijection reports whether p is a bijection on [0, len(p)).
func (p Permutation) IsBijection() bool {
	seen := make([]bool, len(p))
	for _, v := range p {
		if v < 0 || v >= len(p) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
