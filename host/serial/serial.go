// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serial opens a TTY device as a raw, plain-byte transport for
// devices driven over the serial driver (e.g. Generic over a
// microcontroller's UART), backed by github.com/daedaluz/goserial instead
// of hand-rolled termios ioctls.
package serial

import (
	"io"
	"regexp"

	goserial "github.com/daedaluz/goserial"
)

// devPattern matches the device paths the serial driver claims, mirroring
// original_source/src/driver/serial.rs's is_serial regex.
var devPattern = regexp.MustCompile(`^/dev/tty`)

// IsSerial reports whether path looks like a TTY device node.
func IsSerial(path string) bool {
	return devPattern.MatchString(path)
}

// Port is a raw serial transport: canonical mode, echo, and signal
// generation are all disabled so every byte written or read is passed
// through unmodified.
type Port struct {
	p *goserial.Port
}

// Open opens path in raw mode at the given baudrate, mapped down to the
// platform's nearest standard rate via MapBaudrate.
func Open(path string, baudrate uint32) (*Port, error) {
	p, err := goserial.Open(path, goserial.NewOptions())
	if err != nil {
		return nil, err
	}
	attrs, err := p.GetAttr()
	if err != nil {
		p.Close()
		return nil, err
	}
	attrs.Iflag &^= goserial.ICRNL | goserial.BRKINT
	attrs.Oflag &^= goserial.OPOST | goserial.ONLCR
	attrs.Lflag &^= goserial.ICANON | goserial.ISIG | goserial.ECHO
	attrs.SetSpeed(MapBaudrate(baudrate))
	if err := p.SetAttr(goserial.TCSANOW, attrs); err != nil {
		p.Close()
		return nil, err
	}
	return &Port{p: p}, nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) { return p.p.Write(b) }

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) { return p.p.Read(b) }

// Close implements io.Closer.
func (p *Port) Close() error { return p.p.Close() }

var (
	_ io.ReadWriteCloser = (*Port)(nil)
)
