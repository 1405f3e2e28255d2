// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transpose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ledcat-go/ledcat/pixel"
)

func TestReverse(t *testing.T) {
	f := Reverse(3)
	assert.Equal(t, 2, f.Apply(0))
	assert.Equal(t, 1, f.Apply(1))
	assert.Equal(t, 0, f.Apply(2))
}

func TestReverseAppliedTwiceIsIdentity(t *testing.T) {
	f := Reverse(5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, f.Apply(f.Apply(i)))
	}
}

func TestMirrorRejects1D(t *testing.T) {
	_, err := Mirror(pixel.One(10), AxisX)
	assert.ErrorIs(t, err, pixel.ErrRequires2D)
}

func TestZigzagRejects1D(t *testing.T) {
	_, err := Zigzag(pixel.One(10), AxisY)
	assert.ErrorIs(t, err, pixel.ErrRequires2D)
}

func TestMirrorXAppliedTwiceIsIdentity(t *testing.T) {
	dims := pixel.Two(4, 3)
	f, err := Mirror(dims, AxisX)
	require.NoError(t, err)
	for i := 0; i < dims.Size(); i++ {
		assert.Equal(t, i, f.Apply(f.Apply(i)))
	}
}

func TestMirrorYAppliedTwiceIsIdentity(t *testing.T) {
	dims := pixel.Two(4, 3)
	f, err := Mirror(dims, AxisY)
	require.NoError(t, err)
	for i := 0; i < dims.Size(); i++ {
		assert.Equal(t, i, f.Apply(f.Apply(i)))
	}
}

func TestMirrorXSwapsColumns(t *testing.T) {
	// A 3x2 matrix: row-major index i -> (x,y).
	dims := pixel.Two(3, 2)
	f, err := Mirror(dims, AxisX)
	require.NoError(t, err)
	// Row 0: 0,1,2 -> 2,1,0
	assert.Equal(t, 2, f.Apply(0))
	assert.Equal(t, 1, f.Apply(1))
	assert.Equal(t, 0, f.Apply(2))
}

func TestZigzagYKeepsEvenRowsAndReversesOddRows(t *testing.T) {
	dims := pixel.Two(3, 2)
	f, err := Zigzag(dims, AxisY)
	require.NoError(t, err)
	// Row 0 is untouched (y even); row 1 is reversed in x.
	assert.Equal(t, 0, f.Apply(0))
	assert.Equal(t, 5, f.Apply(3)) // row 1, x=0 -> x=2
}

func TestCompileEmptyIsIdentity(t *testing.T) {
	p := Compile(5, nil)
	assert.Equal(t, Permutation{0, 1, 2, 3, 4}, p)
	assert.True(t, p.IsBijection())
}

func TestCompileReverseReverseIsIdentity(t *testing.T) {
	p := Compile(5, []Func{Reverse(5), Reverse(5)})
	assert.Equal(t, Permutation(Identity(5)), p)
}

func TestIsBijectionDetectsCollision(t *testing.T) {
	p := Permutation{0, 0, 2}
	assert.False(t, p.IsBijection())
}

func TestIsBijectionDetectsOutOfRange(t *testing.T) {
	p := Permutation{0, 1, 5}
	assert.False(t, p.IsBijection())
}

// Any composition of the validated transpositions over any 2D geometry
// must remain a bijection on [0, N).
func TestComposedTranspositionsAreAlwaysBijections(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.IntRange(1, 8).Draw(rt, "w")
		h := rapid.IntRange(1, 8).Draw(rt, "h")
		dims := pixel.Two(w, h)

		var fns []Func
		ops := rapid.SliceOfN(rapid.IntRange(0, 4), 0, 6).Draw(rt, "ops")
		for _, op := range ops {
			var f Func
			var err error
			switch op {
			case 0:
				f = Reverse(dims.Size())
			case 1:
				f, err = Mirror(dims, AxisX)
			case 2:
				f, err = Mirror(dims, AxisY)
			case 3:
				f, err = Zigzag(dims, AxisX)
			case 4:
				f, err = Zigzag(dims, AxisY)
			}
			require.NoError(rt, err)
			fns = append(fns, f)
		}

		p := Compile(dims.Size(), fns)
		assert.True(rt, p.IsBijection())
	})
}
