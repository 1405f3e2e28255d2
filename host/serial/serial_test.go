// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serial

import (
	"testing"

	goserial "github.com/daedaluz/goserial"
	"github.com/stretchr/testify/assert"
)

func TestIsSerial(t *testing.T) {
	assert.True(t, IsSerial("/dev/ttyUSB0"))
	assert.True(t, IsSerial("/dev/ttyAMA0"))
	assert.False(t, IsSerial("/dev/spidev0.0"))
	assert.False(t, IsSerial("-"))
	assert.False(t, IsSerial("/tmp/output.bin"))
}

func TestMapBaudrateExactMatch(t *testing.T) {
	assert.Equal(t, goserial.B115200, MapBaudrate(115200))
	assert.Equal(t, goserial.B9600, MapBaudrate(9600))
}

func TestMapBaudrateRoundsDownToNearestStandard(t *testing.T) {
	// Between 19200 and 38400: rounds down to 19200.
	assert.Equal(t, goserial.B19200, MapBaudrate(20000))
}

func TestMapBaudrateAboveMaxClampsToMax(t *testing.T) {
	assert.Equal(t, goserial.B4000000, MapBaudrate(10_000_000))
}

func TestMapBaudrateBelowMinFallsBackToB0(t *testing.T) {
	assert.Equal(t, goserial.B0, MapBaudrate(10))
}
