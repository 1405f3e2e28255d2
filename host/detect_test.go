// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDriver(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/dev/spidev0.0", DriverSPIdev},
		{"/dev/spidev1.3", DriverSPIdev},
		{"/dev/ttyUSB0", DriverSerial},
		{"/dev/ttyAMA0", DriverSerial},
		{"-", DriverNone},
		{"/tmp/output.bin", DriverNone},
		{"", DriverNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectDriver(c.path), "path=%q", c.path)
	}
}
