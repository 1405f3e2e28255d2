// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package artnet implements an Art-Net DMX sender: it accumulates pixel
// bytes into ArtDmx packets and fans them out to a configurable set of
// destination sockets, plus an ArtPoll/ArtPollReply discovery helper.
package artnet

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Port is the well-known Art-Net UDP port.
const Port = 6454

var artNetHeader = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}

const (
	opCodeDMX       = 0x5000
	opCodePoll      = 0x2000
	opCodePollReply = 0x2100
)

// ErrPacketTooLarge is returned when a payload would exceed the maximum
// ArtDmx length.
var ErrPacketTooLarge = errors.New("artnet: data exceeds max dmx packet length")

// Target enumerates the destination sockets an ArtDmx packet is sent to
// for a single frame.
type Target interface {
	Addrs() []*net.UDPAddr
}

// ExplicitList is a fixed, caller-provided list of destinations.
type ExplicitList []*net.UDPAddr

// Addrs implements Target.
func (l ExplicitList) Addrs() []*net.UDPAddr { return l }

// Broadcast targets the IPv4 limited broadcast address.
type Broadcast struct{}

// Addrs implements Target.
func (Broadcast) Addrs() []*net.UDPAddr {
	return []*net.UDPAddr{{IP: net.IPv4bcast, Port: Port}}
}

// ListFile watches a file once per second and re-parses it on mtime
// change. Lines are either "host:port" or a bare IP address (defaulting to
// Port); duplicates are removed.
type ListFile struct {
	mu    sync.RWMutex
	addrs []*net.UDPAddr
	stop  chan struct{}
}

// WatchListFile starts watching path and returns a Target reading a fresh
// snapshot of it on every Addrs call. Call Close to stop the watcher; the
// watcher goroutine keeps running until Close is called, even after the
// ListFile is no longer referenced.
func WatchListFile(path string) (*ListFile, error) {
	l := &ListFile{stop: make(chan struct{})}
	if err := l.reload(path); err != nil {
		return nil, err
	}
	go l.watch(path)
	return l, nil
}

// Addrs implements Target.
func (l *ListFile) Addrs() []*net.UDPAddr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.addrs
}

// Close stops the background watcher.
func (l *ListFile) Close() {
	close(l.stop)
}

func (l *ListFile) watch(path string) {
	var lastMod time.Time
	if fi, err := os.Stat(path); err == nil {
		lastMod = fi.ModTime()
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			fi, err := os.Stat(path)
			if err != nil {
				continue
			}
			if fi.ModTime().Equal(lastMod) {
				continue
			}
			lastMod = fi.ModTime()
			// Transient re-parse failures are swallowed; the watcher
			// retries on the next tick.
			_ = l.reload(path)
		}
	}
}

func (l *ListFile) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	var addrs []*net.UDPAddr
	for _, line := range bytes.Split(data, []byte("\n")) {
		s := string(bytes.TrimSpace(line))
		if s == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(s)
		port := Port
		if err != nil {
			host = s
		} else {
			fmt.Sscanf(portStr, "%d", &port)
		}
		ip := net.ParseIP(host)
		if ip == nil {
			continue
		}
		key := fmt.Sprintf("%s:%d", ip.String(), port)
		if seen[key] {
			continue
		}
		seen[key] = true
		addrs = append(addrs, &net.UDPAddr{IP: ip, Port: port})
	}
	l.mu.Lock()
	l.addrs = addrs
	l.mu.Unlock()
	return nil
}

// Sender is an io.Writer that accumulates bytes into ArtDmx packets and
// sends one per Target address once frameSize bytes have accumulated.
type Sender struct {
	conn      *net.UDPConn
	universe  uint16
	target    Target
	frameSize int
	buf       []byte
}

// NewSender opens the Art-Net send socket (bound to 0.0.0.0:6454,
// broadcast enabled) and returns a Sender for the given universe, target
// set and frame size in bytes (N*3 pixel bytes).
func NewSender(universe uint16, target Target, frameSize int) (*Sender, error) {
	lc := net.ListenConfig{Control: func(_, _ string, raw syscall.RawConn) error {
		return setReuseAddrPortAndBroadcast(raw)
	}}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", Port))
	if err != nil {
		return nil, fmt.Errorf("artnet: %w", err)
	}
	return &Sender{conn: pc.(*net.UDPConn), universe: universe, target: target, frameSize: frameSize}, nil
}

// Close releases the send socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}

// Write implements io.Writer.
func (s *Sender) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	for len(s.buf) >= s.frameSize {
		payload := s.buf[:s.frameSize]
		s.buf = append([]byte(nil), s.buf[s.frameSize:]...)
		packet, err := dmxPacket(s.universe, payload)
		if err != nil {
			return 0, err
		}
		for _, addr := range s.target.Addrs() {
			if _, err := s.conn.WriteToUDP(packet, addr); err != nil {
				return 0, err
			}
		}
	}
	return len(p), nil
}

// setReuseAddrPortAndBroadcast enables SO_REUSEADDR and SO_REUSEPORT, so the
// fixed well-known port still binds when another Art-Net node or process on
// the host already holds it, and SO_BROADCAST, needed to send to the limited
// broadcast address; Go does not set any of these by default on a plain UDP
// socket. It runs on the raw socket before the bind.
func setReuseAddrPortAndBroadcast(raw syscall.RawConn) error {
	var sockErr error
	err := raw.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return fmt.Errorf("artnet: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("artnet: setting socket options: %w", sockErr)
	}
	return nil
}

func dmxPacket(universe uint16, data []byte) ([]byte, error) {
	if len(data) >= 0xFFFF {
		return nil, ErrPacketTooLarge
	}
	buf := make([]byte, 0, 18+len(data))
	buf = append(buf, artNetHeader[:]...)
	buf = appendU16LE(buf, opCodeDMX)
	buf = append(buf, 4, 14) // ProtVerHi, ProtVerLo
	buf = append(buf, 0, 0)  // Sequence, Physical
	buf = append(buf, byte(universe&0xFF), byte(universe>>8))
	buf = appendU16BE(buf, uint16(len(data)))
	buf = append(buf, data...)
	return buf, nil
}

// PollReply is a discovered Art-Net node.
type PollReply struct {
	Addr      *net.UDPAddr
	ShortName string
}

// Discover broadcasts an ArtPoll packet and streams ArtPollReply responses
// to the returned channel until ctx-equivalent timeout elapses; the
// channel is closed when discovery finishes. A 1s read timeout applies per
// the original protocol's polling cadence.
func Discover(timeout time.Duration) (<-chan PollReply, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("artnet: %w", err)
	}
	if err := conn.SetWriteDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}
	poll := buildPollPacket()
	if _, err := conn.WriteToUDP(poll, &net.UDPAddr{IP: net.IPv4bcast, Port: Port}); err != nil {
		conn.Close()
		return nil, err
	}

	out := make(chan PollReply)
	go func() {
		defer close(out)
		defer conn.Close()
		deadline := time.Now().Add(timeout)
		buf := make([]byte, 512)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return
			}
			readTimeout := time.Second
			if remaining < readTimeout {
				readTimeout = remaining
			}
			conn.SetReadDeadline(time.Now().Add(readTimeout))
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				if time.Now().After(deadline) {
					return
				}
				continue
			}
			reply, ok := parsePollReply(buf[:n], addr)
			if !ok {
				continue
			}
			out <- reply
		}
	}()
	return out, nil
}

func buildPollPacket() []byte {
	buf := make([]byte, 0, 14)
	buf = append(buf, artNetHeader[:]...)
	buf = appendU16LE(buf, opCodePoll)
	buf = append(buf, 4, 14, 0, 0x80)
	return buf
}

func parsePollReply(b []byte, addr *net.UDPAddr) (PollReply, bool) {
	if len(b) < 8 || !bytes.Equal(b[:8], artNetHeader[:]) {
		return PollReply{}, false
	}
	if len(b) < 10 {
		return PollReply{}, false
	}
	opcode := binary.LittleEndian.Uint16(b[8:10])
	if opcode != opCodePollReply {
		return PollReply{}, false
	}
	name := ""
	if len(b) >= 38 {
		name = strings.ToValidUTF8(string(b[19:38]), string(utf8.RuneError))
	}
	return PollReply{Addr: addr, ShortName: name}, true
}

func appendU16LE(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func appendU16BE(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}
