// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package host auto-detects which transport driver owns a given output
// path, the way original_source/src/driver/mod.rs's detect/is_spidev pair
// does: each driver contributes a detector, and the first match wins.
package host

import (
	"github.com/ledcat-go/ledcat/host/serial"
	"github.com/ledcat-go/ledcat/host/sysfs"
)

// Driver names recognized by the --driver flag and returned by DetectDriver.
const (
	DriverNone    = "none"
	DriverSPIdev  = "spidev"
	DriverSerial  = "serial"
	DriverBitbang = "bitbang"
)

// detectors is tried in order; the first match determines the driver.
var detectors = []struct {
	name  string
	match func(string) bool
}{
	{DriverSPIdev, sysfs.IsSpidev},
	{DriverSerial, serial.IsSerial},
}

// DetectDriver guesses the transport driver for path from its shape alone,
// falling back to DriverNone (a plain file/pipe/stdout) when nothing
// matches. DriverBitbang is never auto-detected: it has no device node to
// match against and always requires explicit GPIO pin flags, so callers
// must select it with --driver bitbang.
func DetectDriver(path string) string {
	for _, d := range detectors {
		if d.match(path) {
			return d.name
		}
	}
	return DriverNone
}
