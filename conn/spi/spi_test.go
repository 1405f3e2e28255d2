// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeString(t *testing.T) {
	assert.Equal(t, "Mode0", Mode0.String())
	assert.Equal(t, "Mode3", Mode3.String())
	assert.Equal(t, "Mode0|NoCS", (Mode0 | NoCS).String())
	assert.Equal(t, "Mode0|HalfDuplex|NoCS|LSBFirst", (Mode0 | HalfDuplex | NoCS | LSBFirst).String())
}
