// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serial

import serial "github.com/daedaluz/goserial"

// standardRates lists the termios standard baud rates in descending order,
// mirroring original_source/src/driver/serial.rs's map_baudrate.
var standardRates = []struct {
	min   uint32
	cflag serial.CFlag
}{
	{4000000, serial.B4000000},
	{3500000, serial.B3500000},
	{3000000, serial.B3000000},
	{2500000, serial.B2500000},
	{2000000, serial.B2000000},
	{1500000, serial.B1500000},
	{1152000, serial.B1152000},
	{1000000, serial.B1000000},
	{921600, serial.B921600},
	{576000, serial.B576000},
	{500000, serial.B500000},
	{460800, serial.B460800},
	{230400, serial.B230400},
	{115200, serial.B115200},
	{57600, serial.B57600},
	{38400, serial.B38400},
	{19200, serial.B19200},
	{9600, serial.B9600},
	{4800, serial.B4800},
	{2400, serial.B2400},
	{1800, serial.B1800},
	{1200, serial.B1200},
	{600, serial.B600},
	{300, serial.B300},
	{200, serial.B200},
	{150, serial.B150},
	{134, serial.B134},
	{110, serial.B110},
	{75, serial.B75},
	{50, serial.B50},
}

// MapBaudrate returns the platform's nearest standard baud rate that is
// less than or equal to the requested one (standardRates is sorted
// descending, so the first match is the largest rate not exceeding
// requested), falling back to B0 below 50.
func MapBaudrate(requested uint32) serial.CFlag {
	for _, r := range standardRates {
		if requested >= r.min {
			return r.cflag
		}
	}
	return serial.B0
}
