// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sysfs opens the Linux device nodes that back the real transports:
// /dev/spidevB.C for SPI devices. It is the lowest layer a driver talks to
// when it is not bit-banging over raw GPIO.
package sysfs

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ledcat-go/ledcat/conn"
	"github.com/ledcat-go/ledcat/conn/spi"
)

// pathPattern matches a spidev device node, e.g. /dev/spidev0.1.
var pathPattern = regexp.MustCompile(`^/dev/spidev(\d+)\.(\d+)$`)

// IsSpidev reports whether path names a spidev device node.
func IsSpidev(path string) bool {
	return pathPattern.MatchString(path)
}

// ParsePath extracts the bus number and chip select from a spidev device
// node path such as /dev/spidev0.1.
func ParsePath(path string) (bus, chipSelect int, err error) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, 0, fmt.Errorf("sysfs-spi: %q is not a spidev path", path)
	}
	bus, _ = strconv.Atoi(m[1])
	chipSelect, _ = strconv.Atoi(m[2])
	return bus, chipSelect, nil
}

// NewSPI opens a SPI port via its devfs interface as described at
// https://www.kernel.org/doc/Documentation/spi/spidev.
//
// busNumber and chipSelect match the /dev/spidevB.C device node, for example
// /dev/spidev0.1 is bus 0, chip select 1.
func NewSPI(busNumber, chipSelect int) (*SPI, error) {
	if busNumber < 0 || busNumber >= 1<<16 {
		return nil, fmt.Errorf("sysfs-spi: invalid bus %d", busNumber)
	}
	if chipSelect < 0 || chipSelect > 255 {
		return nil, fmt.Errorf("sysfs-spi: invalid chip select %d", chipSelect)
	}
	path := fmt.Sprintf("/dev/spidev%d.%d", busNumber, chipSelect)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("sysfs-spi: %w", err)
	}
	return &SPI{
		conn: spiConn{
			name: fmt.Sprintf("SPI%d.%d", busNumber, chipSelect),
			f:    f,
		},
	}, nil
}

// SPI is an open SPI port backed by a spidev device node.
type SPI struct {
	conn spiConn
}

func (s *SPI) String() string { return s.conn.String() }

// Close closes the handle to the SPI device node.
func (s *SPI) Close() error {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	if err := s.conn.f.Close(); err != nil {
		return fmt.Errorf("sysfs-spi: %w", err)
	}
	return nil
}

// LimitSpeed implements spi.PortCloser.
func (s *SPI) LimitSpeed(maxHz int64) error {
	if maxHz < 100 {
		return fmt.Errorf("sysfs-spi: invalid speed %dHz", maxHz)
	}
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	s.conn.hz = maxHz
	return nil
}

// Connect implements spi.Port. It must be called exactly once.
func (s *SPI) Connect(maxHz int64, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits < 1 || bits >= 256 {
		return nil, fmt.Errorf("sysfs-spi: invalid bits %d", bits)
	}
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	if s.conn.connected {
		return nil, errors.New("sysfs-spi: Connect() can only be called once")
	}
	s.conn.connected = true
	if maxHz > 0 && (s.conn.hz == 0 || maxHz < s.conn.hz) {
		s.conn.hz = maxHz
	}
	s.conn.bitsPerWord = uint8(bits)
	m := mode & spi.Mode3
	if mode&spi.NoCS != 0 {
		m |= modeNoCS
	}
	if mode&spi.LSBFirst != 0 {
		m |= modeLSBFirst
	}
	if err := s.conn.ioctlByte(spiIOCWrMode, uint8(m)); err != nil {
		return nil, fmt.Errorf("sysfs-spi: setting mode %v: %w", mode, err)
	}
	if err := s.conn.ioctlByte(spiIOCWrBitsPerWord, s.conn.bitsPerWord); err != nil {
		return nil, fmt.Errorf("sysfs-spi: setting bits per word: %w", err)
	}
	if err := s.conn.ioctlU32(spiIOCWrMaxSpeedHz, uint32(s.conn.hz)); err != nil {
		return nil, fmt.Errorf("sysfs-spi: setting max speed: %w", err)
	}
	return &s.conn, nil
}

// spiConn implements spi.Conn, backed by SPI_IOC_MESSAGE(1) transfers.
type spiConn struct {
	name string
	f    *os.File

	mu          sync.Mutex
	hz          int64
	bitsPerWord uint8
	connected   bool
}

func (s *spiConn) String() string { return s.name }

// Tx sends and receives data simultaneously, as required by conn.Conn.
func (s *spiConn) Tx(w, r []byte) error {
	l := len(w)
	if l == 0 {
		l = len(r)
	}
	if l == 0 {
		return errors.New("sysfs-spi: Tx() with empty buffers")
	}
	if len(r) != 0 && len(w) != 0 && len(r) != len(w) {
		return errors.New("sysfs-spi: Tx() w and r must be the same length")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfer(w, r)
}

// Write implements io.Writer, the path every device codec actually uses:
// frames are written, never read back.
func (s *spiConn) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transfer(b, nil); err != nil {
		return 0, fmt.Errorf("sysfs-spi: Write(): %w", err)
	}
	return len(b), nil
}

func (s *spiConn) transfer(w, r []byte) error {
	var xfer spiIOCTransfer
	if len(w) != 0 {
		xfer.tx = uint64(uintptr(unsafe.Pointer(&w[0])))
		xfer.length = uint32(len(w))
	}
	if len(r) != 0 {
		xfer.rx = uint64(uintptr(unsafe.Pointer(&r[0])))
		xfer.length = uint32(len(r))
	}
	xfer.speedHz = uint32(s.hz)
	xfer.bitsPerWord = s.bitsPerWord
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), uintptr(spiIOCMessage(1)), uintptr(unsafe.Pointer(&xfer)))
	if errno != 0 {
		return errno
	}
	return nil
}

func (s *spiConn) ioctlByte(op uintptr, v uint8) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), op, uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return errno
	}
	return nil
}

func (s *spiConn) ioctlU32(op uintptr, v uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, s.f.Fd(), op, uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return errno
	}
	return nil
}

// spidev mode bits beyond the four clock modes, per linux/spi/spidev.h.
const (
	modeNoCS     spi.Mode = 0x40
	modeLSBFirst spi.Mode = 0x8
)

// spidev IOCTL control codes, from linux/spi/spidev.h. fs.IOW-equivalent
// values precomputed since this package talks to the kernel directly via
// golang.org/x/sys/unix rather than a custom ioctl helper.
const (
	spiIOCMagic         = 'k'
	spiIOCWrMode        = 0x40016b01
	spiIOCWrBitsPerWord = 0x40016b03
	spiIOCWrMaxSpeedHz  = 0x40046b04
)

// spiIOCMessage computes SPI_IOC_MESSAGE(n): _IOW(SPI_IOC_MAGIC, 0, char[32*n]).
func spiIOCMessage(n int) uintptr {
	const iocWrite = 1
	size := uintptr(32 * n)
	return (iocWrite << 30) | (uintptr(spiIOCMagic) << 8) | 0 | (size << 16)
}

// spiIOCTransfer mirrors struct spi_ioc_transfer in linux/spi/spidev.h.
type spiIOCTransfer struct {
	tx          uint64
	rx          uint64
	length      uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNBits     uint8
	rxNBits     uint8
	pad         uint16
}

var (
	_ conn.Conn    = &spiConn{}
	_ spi.Conn     = &spiConn{}
	_ spi.Port     = &SPI{}
	_ spi.PortCloser = &SPI{}
)
