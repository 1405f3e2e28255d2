// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "Low", Low.String())
	assert.Equal(t, "High", High.String())
}

func TestInvalidPinFailsAllAccess(t *testing.T) {
	assert.Equal(t, -1, INVALID.Number())
	assert.Equal(t, "INVALID", INVALID.String())
	assert.Error(t, INVALID.In(Float, NoEdge))
	assert.Equal(t, Low, INVALID.Read())
	assert.False(t, INVALID.WaitForEdge(0))
	assert.Error(t, INVALID.Out(High))
	assert.Error(t, INVALID.PWM(Half))
}
