// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package fluxled drives a set of Flux-LED Wi-Fi bulbs over individual TCP
// connections, one per bulb, each fed a fixed 7-byte color command plus a
// checksum byte.
package fluxled

import (
	"fmt"
	"net"
	"time"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/pixel"
)

// Port is the TCP port every Flux-LED bulb listens on.
const Port = 5577

// readTimeout bounds the (unused) read side of the connection, matching
// the original implementation's 100ms read timeout.
const readTimeout = 100 * time.Millisecond

// Bulb is a single Flux-LED device reached lazily over TCP.
type Bulb struct {
	addr net.IP
	conn net.Conn
}

// NewBulb returns a Bulb for the given address. The TCP connection is
// established lazily on the first write.
func NewBulb(addr net.IP) *Bulb {
	return &Bulb{addr: addr}
}

// SetColor sends the fixed constant-color command: 0x31, r, g, b, 0x00,
// 0x00, 0x0F, followed by a one-byte checksum (the sum of the seven bytes
// modulo 256). A broken send drops the connection; the next call
// reconnects.
func (b *Bulb) SetColor(p pixel.Pixel) error {
	if b.conn == nil {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", b.addr, Port), 5*time.Second)
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		b.conn = conn
	}
	cmd := [7]byte{0x31, p.R, p.G, p.B, 0x00, 0x00, 0x0F}
	var checksum byte
	for _, v := range cmd {
		checksum += v
	}
	buf := append(cmd[:], checksum)
	if _, err := b.conn.Write(buf); err != nil {
		b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

// Display is an Output sink fronting a fixed set of bulbs: it buffers
// incoming bytes until 3*len(bulbs) accumulate, then splits the buffer
// into three-byte pixels and sends one SetColor command per bulb. A single
// bulb's send error is swallowed (its connection drops and is retried on
// the next frame) so one unreachable bulb does not stall the others.
type Display struct {
	bulbs []*Bulb
	buf   []byte
}

// NewDisplay returns a Display addressing the given bulb IPs.
func NewDisplay(addrs []net.IP) *Display {
	bulbs := make([]*Bulb, len(addrs))
	for i, a := range addrs {
		bulbs[i] = NewBulb(a)
	}
	return &Display{bulbs: bulbs}
}

// ColorCorrection implements device.Output. Flux-LED bulbs take raw
// 8-bit color; no correction is applied here.
func (d *Display) ColorCorrection() correction.Correction {
	return correction.None()
}

// OutputFrame implements device.Output.
func (d *Display) OutputFrame(pixels []pixel.Pixel) error {
	for i, bulb := range d.bulbs {
		if i >= len(pixels) {
			break
		}
		// Individual bulb errors are swallowed: the connection drops and
		// the next frame reconnects, matching the taxonomy's
		// "Flux-LED bulb writer swallows individual bulb errors" policy.
		_ = bulb.SetColor(pixels[i])
	}
	return nil
}

// Write implements io.Writer over the same buffering policy as the
// original implementation's Display: bytes accumulate until 3*len(bulbs)
// have arrived, then flush as one OutputFrame.
func (d *Display) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	need := 3 * len(d.bulbs)
	if need > 0 && len(d.buf) >= need {
		if err := d.flush(need); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (d *Display) flush(need int) error {
	chunk := d.buf[:need]
	d.buf = append([]byte(nil), d.buf[need:]...)
	pixels := make([]pixel.Pixel, len(d.bulbs))
	for i := range d.bulbs {
		o := 3 * i
		pixels[i] = pixel.Pixel{R: chunk[o], G: chunk[o+1], B: chunk[o+2]}
	}
	return d.OutputFrame(pixels)
}
