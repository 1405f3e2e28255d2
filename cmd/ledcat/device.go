// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ledcat-go/ledcat/conn/gpio"
	"github.com/ledcat-go/ledcat/device"
	"github.com/ledcat-go/ledcat/device/apa102"
	"github.com/ledcat-go/ledcat/device/artnet"
	"github.com/ledcat-go/ledcat/device/bitbang"
	"github.com/ledcat-go/ledcat/device/fluxled"
	"github.com/ledcat-go/ledcat/device/hexws2811"
	"github.com/ledcat-go/ledcat/device/hub75"
	"github.com/ledcat-go/ledcat/device/lpd8806"
	"github.com/ledcat-go/ledcat/device/rgbmatrix"
	"github.com/ledcat-go/ledcat/device/term"
	"github.com/ledcat-go/ledcat/device/ws2812"
	"github.com/ledcat-go/ledcat/host"
	"github.com/ledcat-go/ledcat/host/gpiocdev"
	"github.com/ledcat-go/ledcat/host/serial"
	"github.com/ledcat-go/ledcat/host/sysfs"
)

// deviceFlags holds every device-namespaced flag this build recognizes.
// Each device only looks at the flags relevant to it; the rest stay at
// their defaults, mirroring original_source/src/device/mod.rs's per-device
// clap subcommands flattened into one flag set.
type deviceFlags struct {
	genericFormat string

	apa102GlobalScale uint8
	spiHz             int64

	bitbangGPIOChip string
	bitbangClock    string
	bitbangMOSI     string
	bitbangMISO     string
	bitbangCS       string

	hub75GPIOChip      string
	hub75LevelSelect   string
	hub75Clock         string
	hub75Latch         string
	hub75OutputEnable  string
	hub75Red           string
	hub75Green         string
	hub75Blue          string
	hub75PWMCycles     int

	artnetUniverse  uint16
	artnetTarget    []string
	artnetBroadcast bool
	artnetListFile  string

	fluxledTarget []string

	rgbmatrixRows            int
	rgbmatrixCols            int
	rgbmatrixChain           int
	rgbmatrixParallel        int
	rgbmatrixHardwareMapping string
	rgbmatrixRGBSequence     string
	rgbmatrixPWMBits         int
	rgbmatrixPWMLSBNanosecs  int
	rgbmatrixPWMDitherBits   int
	rgbmatrixScanMode        int
	rgbmatrixRowAddrType     int
	rgbmatrixMultiplexing    int
}

func registerDeviceFlags(fs *pflag.FlagSet) *deviceFlags {
	df := &deviceFlags{}
	fs.StringVar(&df.genericFormat, "generic-format", "rgb24", "Generic wire format: rgb24, rgb16, rgb12, rgb8 or gs1")

	fs.Uint8Var(&df.apa102GlobalScale, "apa102-global-scale", 31, "APA102/SK9822 5-bit global brightness, 0-31")
	fs.Int64Var(&df.spiHz, "spi-hz", 4000000, "SPI clock speed in Hz for SPI-driven device codecs")

	fs.StringVar(&df.bitbangGPIOChip, "bitbang-gpiochip", "gpiochip0", "GPIO character device backing the bit-banged SPI pins")
	fs.StringVar(&df.bitbangClock, "bitbang-clock", "", "GPIO offset for the bit-banged SCK line")
	fs.StringVar(&df.bitbangMOSI, "bitbang-mosi", "", "GPIO offset for the bit-banged MOSI line")
	fs.StringVar(&df.bitbangMISO, "bitbang-miso", "", "GPIO offset for the bit-banged MISO line, omit if unused")
	fs.StringVar(&df.bitbangCS, "bitbang-cs", "", "GPIO offset for the bit-banged CS line, omit if unused")

	fs.StringVar(&df.hub75GPIOChip, "hub75-gpiochip", "gpiochip0", "GPIO character device backing the HUB75 pins")
	fs.StringVar(&df.hub75LevelSelect, "hub75-level-select", "", "Comma-separated GPIO offsets for the level-select pins (A,B,C,...)")
	fs.StringVar(&df.hub75Clock, "hub75-clock", "", "GPIO offset for the clock pin")
	fs.StringVar(&df.hub75Latch, "hub75-latch", "", "GPIO offset for the latch pin")
	fs.StringVar(&df.hub75OutputEnable, "hub75-output-enable", "", "GPIO offset for the output-enable pin")
	fs.StringVar(&df.hub75Red, "hub75-red", "", "Comma-separated GPIO offsets for the red data lines, one per parallel scan line")
	fs.StringVar(&df.hub75Green, "hub75-green", "", "Comma-separated GPIO offsets for the green data lines")
	fs.StringVar(&df.hub75Blue, "hub75-blue", "", "Comma-separated GPIO offsets for the blue data lines")
	fs.IntVar(&df.hub75PWMCycles, "hub75-pwm", 3, "Number of grayscale refresh sub-passes per frame")

	fs.Uint16VarP(&df.artnetUniverse, "artnet-universe", "u", 0, "Art-Net universe")
	fs.StringArrayVarP(&df.artnetTarget, "artnet-target", "t", nil, "One or more Art-Net node IP addresses")
	fs.BoolVarP(&df.artnetBroadcast, "artnet-broadcast", "b", false, "Broadcast to all Art-Net nodes on the network")
	fs.StringVar(&df.artnetListFile, "artnet-target-list", "", "File with one Art-Net node IP (or host:port) per line, reloaded on change")

	fs.StringArrayVarP(&df.fluxledTarget, "fluxled-target", "T", nil, "One or more Flux-LED bulb IP addresses")

	fs.IntVar(&df.rgbmatrixRows, "led-rows", 0, "Rows per rgbmatrix panel")
	fs.IntVar(&df.rgbmatrixCols, "led-cols", 0, "Columns per rgbmatrix panel")
	fs.IntVar(&df.rgbmatrixChain, "led-chain", 0, "Number of daisy-chained rgbmatrix panels")
	fs.IntVar(&df.rgbmatrixParallel, "led-parallel", 0, "Number of parallel rgbmatrix chains")
	fs.StringVar(&df.rgbmatrixHardwareMapping, "led-hardware-mapping", "", "rgbmatrix hardware wiring name, e.g. regular, adafruit-hat")
	fs.StringVar(&df.rgbmatrixRGBSequence, "led-rgb-sequence", "", "rgbmatrix LED color channel order, e.g. RGB, BGR")
	fs.IntVar(&df.rgbmatrixPWMBits, "led-pwm-bits", 0, "rgbmatrix PWM bit depth")
	fs.IntVar(&df.rgbmatrixPWMLSBNanosecs, "led-pwm-lsb-nanoseconds", 0, "rgbmatrix base time-slice for the lowest PWM bit, in ns")
	fs.IntVar(&df.rgbmatrixPWMDitherBits, "led-pwm-dither-bits", 0, "rgbmatrix number of bits to spatially dither")
	fs.IntVar(&df.rgbmatrixScanMode, "led-scan-mode", 0, "rgbmatrix scan mode: 0 progressive, 1 interlaced")
	fs.IntVar(&df.rgbmatrixRowAddrType, "led-row-addr-type", 0, "rgbmatrix row address type")
	fs.IntVar(&df.rgbmatrixMultiplexing, "led-multiplexing", 0, "rgbmatrix multiplexing type")
	return df
}

// transportConfig describes the --output/--driver/--serial-baudrate flags:
// everything needed to open the byte sink a plain device.Device writes its
// encoded frame to.
type transportConfig struct {
	path       string
	driver     string // host.DriverNone, host.DriverSPIdev, host.DriverSerial or host.DriverBitbang
	serialBaud uint32
	spiHz      int64

	// bitbang* configure the software SPI master used when driver is
	// host.DriverBitbang; path is ignored in that case.
	bitbangGPIOChip string
	bitbangClock    string
	bitbangMOSI     string
	bitbangMISO     string
	bitbangCS       string
}

// buildDeviceOutput constructs the Output for name. Devices that are a
// plain device.Device are composed with the transport via device.NewSink;
// devices that own their own transport (hub75, artnet, fluxled, rgbmatrix)
// ignore tr entirely and build their Output directly from df.
func buildDeviceOutput(name string, dims pixelDimensions, df *deviceFlags, tr *transportConfig, logger *log.Logger) (device.Output, error) {
	switch name {
	case "generic":
		format, err := parseGenericFormat(df.genericFormat)
		if err != nil {
			return nil, err
		}
		return attachTransport(device.Generic{Format: format}, tr)

	case "apa102":
		return attachTransport(apa102.New(apa102.APA102, df.apa102GlobalScale, df.spiHz), tr)

	case "sk9822":
		return attachTransport(apa102.New(apa102.SK9822, df.apa102GlobalScale, df.spiHz), tr)

	case "lpd8806":
		return attachTransport(lpd8806.Codec{MaxHz: df.spiHz}, tr)

	case "hexws2811":
		return attachTransport(hexws2811.Codec{MaxHz: df.spiHz}, tr)

	case "ws2812":
		return attachTransport(ws2812.New(), tr)

	case "term":
		if !dims.is2D {
			return nil, fmt.Errorf("ledcat: term requires 2D geometry")
		}
		return attachTransport(term.New(dims.width, dims.height), tr)

	case "hub75":
		return buildHub75(dims, df)

	case "artnet":
		return buildArtnet(dims, df, logger)

	case "fluxled":
		return buildFluxled(df)

	case "rgbmatrix":
		return rgbmatrix.Open(rgbmatrix.Options{
			Rows:              df.rgbmatrixRows,
			Cols:              df.rgbmatrixCols,
			ChainLength:       df.rgbmatrixChain,
			Parallel:          df.rgbmatrixParallel,
			HardwareMapping:   df.rgbmatrixHardwareMapping,
			LEDRGBSequence:    df.rgbmatrixRGBSequence,
			PWMBits:           df.rgbmatrixPWMBits,
			PWMLSBNanoseconds: df.rgbmatrixPWMLSBNanosecs,
			PWMDitherBits:     df.rgbmatrixPWMDitherBits,
			ScanMode:          df.rgbmatrixScanMode,
			RowAddressType:    df.rgbmatrixRowAddrType,
			Multiplexing:      df.rgbmatrixMultiplexing,
			Width:             dims.width,
			Height:            dims.height,
		})

	default:
		return nil, fmt.Errorf("ledcat: unknown device %q", name)
	}
}

// attachTransport opens the configured transport and composes it with dev
// into a self-contained Output.
func attachTransport(dev device.Device, tr *transportConfig) (device.Output, error) {
	w, err := openTransport(dev, tr)
	if err != nil {
		return nil, err
	}
	return device.NewSink(dev, w), nil
}

// openTransport opens tr's sink, consulting dev's SPIConfigurer when the
// spidev driver is selected. device.ErrDeviceNotSupported is returned when
// the spidev driver is selected but dev cannot speak SPI.
func openTransport(dev device.Device, tr *transportConfig) (io.Writer, error) {
	switch tr.driver {
	case host.DriverSPIdev:
		configurer, ok := dev.(device.SPIConfigurer)
		if !ok {
			return nil, device.ErrDeviceNotSupported
		}
		bus, chipSelect, err := sysfs.ParsePath(tr.path)
		if err != nil {
			return nil, err
		}
		port, err := sysfs.NewSPI(bus, chipSelect)
		if err != nil {
			return nil, err
		}
		cfg := configurer.SPIConfig()
		conn, err := port.Connect(cfg.MaxHz, cfg.Mode, 8)
		if err != nil {
			return nil, err
		}
		return conn, nil

	case host.DriverSerial:
		return serial.Open(tr.path, tr.serialBaud)

	case host.DriverBitbang:
		configurer, ok := dev.(device.SPIConfigurer)
		if !ok {
			return nil, device.ErrDeviceNotSupported
		}
		conn, err := openBitbangSPI(tr)
		if err != nil {
			return nil, err
		}
		cfg := configurer.SPIConfig()
		return conn.Connect(cfg.MaxHz, cfg.Mode, 8)

	default:
		return openPlainFile(tr.path)
	}
}

// openBitbangSPI requests the clock and MOSI pins (plus MISO and CS if
// configured) from tr.bitbangGPIOChip and wires up a software SPI master,
// for boards with no hardware SPI controller or spidev node.
func openBitbangSPI(tr *transportConfig) (*bitbang.SPI, error) {
	clockOff, err := parsePinList(tr.bitbangClock)
	if err != nil || len(clockOff) != 1 {
		return nil, fmt.Errorf("ledcat: bitbang-clock requires exactly one GPIO offset")
	}
	mosiOff, err := parsePinList(tr.bitbangMOSI)
	if err != nil || len(mosiOff) != 1 {
		return nil, fmt.Errorf("ledcat: bitbang-mosi requires exactly one GPIO offset")
	}

	chip := gpiocdev.Open(tr.bitbangGPIOChip)
	clk, err := chip.Out(clockOff[0])
	if err != nil {
		return nil, err
	}
	mosi, err := chip.Out(mosiOff[0])
	if err != nil {
		return nil, err
	}

	var miso gpio.PinIn
	if tr.bitbangMISO != "" {
		misoOff, err := parsePinList(tr.bitbangMISO)
		if err != nil || len(misoOff) != 1 {
			return nil, fmt.Errorf("ledcat: bitbang-miso requires exactly one GPIO offset")
		}
		if miso, err = chip.In(misoOff[0], gpio.Up); err != nil {
			return nil, err
		}
	}

	var cs gpio.PinOut
	if tr.bitbangCS != "" {
		csOff, err := parsePinList(tr.bitbangCS)
		if err != nil || len(csOff) != 1 {
			return nil, fmt.Errorf("ledcat: bitbang-cs requires exactly one GPIO offset")
		}
		if cs, err = chip.Out(csOff[0]); err != nil {
			return nil, err
		}
	}

	return bitbang.NewSPI(clk, mosi, miso, cs, tr.spiHz)
}

// openPlainFile opens path for writing, treating "-" and "" as stdout.
func openPlainFile(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
}

func parseGenericFormat(s string) (device.Format, error) {
	switch s {
	case "rgb24":
		return device.RGB24, nil
	case "rgb16":
		return device.RGB16, nil
	case "rgb12":
		return device.RGB12, nil
	case "rgb8":
		return device.RGB8, nil
	case "gs1":
		return device.GS1, nil
	default:
		return 0, fmt.Errorf("ledcat: unknown generic format %q", s)
	}
}

func parsePinList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("ledcat: invalid GPIO offset %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}

func buildHub75(dims pixelDimensions, df *deviceFlags) (device.Output, error) {
	if !dims.is2D {
		return nil, fmt.Errorf("ledcat: hub75 requires 2D geometry")
	}
	levelSelect, err := parsePinList(df.hub75LevelSelect)
	if err != nil {
		return nil, err
	}
	redOffs, err := parsePinList(df.hub75Red)
	if err != nil {
		return nil, err
	}
	greenOffs, err := parsePinList(df.hub75Green)
	if err != nil {
		return nil, err
	}
	blueOffs, err := parsePinList(df.hub75Blue)
	if err != nil {
		return nil, err
	}
	clockOff, err := parsePinList(df.hub75Clock)
	if err != nil || len(clockOff) != 1 {
		return nil, fmt.Errorf("ledcat: hub75-clock requires exactly one GPIO offset")
	}
	latchOff, err := parsePinList(df.hub75Latch)
	if err != nil || len(latchOff) != 1 {
		return nil, fmt.Errorf("ledcat: hub75-latch requires exactly one GPIO offset")
	}
	oeOff, err := parsePinList(df.hub75OutputEnable)
	if err != nil || len(oeOff) != 1 {
		return nil, fmt.Errorf("ledcat: hub75-output-enable requires exactly one GPIO offset")
	}

	chip := gpiocdev.Open(df.hub75GPIOChip)
	ls, err := openOutPins(chip, levelSelect)
	if err != nil {
		return nil, err
	}
	red, err := openOutPins(chip, redOffs)
	if err != nil {
		return nil, err
	}
	green, err := openOutPins(chip, greenOffs)
	if err != nil {
		return nil, err
	}
	blue, err := openOutPins(chip, blueOffs)
	if err != nil {
		return nil, err
	}
	rgb, err := hub75.BuildRGBPins(red, green, blue)
	if err != nil {
		return nil, err
	}
	clock, err := chip.Out(clockOff[0])
	if err != nil {
		return nil, err
	}
	latch, err := chip.Out(latchOff[0])
	if err != nil {
		return nil, err
	}
	oe, err := chip.Out(oeOff[0])
	if err != nil {
		return nil, err
	}
	return hub75.Open(hub75.Config{
		Width:        dims.width,
		Height:       dims.height,
		LevelSelect:  ls,
		RGB:          rgb,
		Clock:        clock,
		Latch:        latch,
		OutputEnable: oe,
		PWMCycles:    df.hub75PWMCycles,
	})
}

// openOutPins opens one output pin per offset in order.
func openOutPins(chip *gpiocdev.Chip, offsets []int) ([]gpio.PinOut, error) {
	pins := make([]gpio.PinOut, len(offsets))
	for i, off := range offsets {
		p, err := chip.Out(off)
		if err != nil {
			return nil, err
		}
		pins[i] = p
	}
	return pins, nil
}

func buildArtnet(dims pixelDimensions, df *deviceFlags, logger *log.Logger) (device.Output, error) {
	if dims.size == 0 {
		return nil, fmt.Errorf("ledcat: artnet requires a geometry")
	}
	var target artnet.Target
	switch {
	case df.artnetBroadcast:
		target = artnet.Broadcast{}
	case df.artnetListFile != "":
		lf, err := artnet.WatchListFile(df.artnetListFile)
		if err != nil {
			return nil, err
		}
		target = lf
	case len(df.artnetTarget) > 0:
		var addrs artnet.ExplicitList
		for _, ip := range df.artnetTarget {
			parsed := net.ParseIP(ip)
			if parsed == nil {
				return nil, fmt.Errorf("ledcat: invalid artnet target %q", ip)
			}
			addrs = append(addrs, &net.UDPAddr{IP: parsed, Port: artnet.Port})
		}
		target = addrs
	default:
		return nil, fmt.Errorf("ledcat: artnet requires --artnet-target, --artnet-broadcast or --artnet-target-list")
	}
	sender, err := artnet.NewSender(df.artnetUniverse, target, dims.size*3)
	if err != nil {
		return nil, err
	}
	return device.NewSink(device.Generic{Format: device.RGB24}, sender), nil
}

func buildFluxled(df *deviceFlags) (device.Output, error) {
	if len(df.fluxledTarget) == 0 {
		return nil, fmt.Errorf("ledcat: fluxled requires at least one --fluxled-target")
	}
	addrs := make([]net.IP, len(df.fluxledTarget))
	for i, ip := range df.fluxledTarget {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return nil, fmt.Errorf("ledcat: invalid fluxled target %q", ip)
		}
		addrs[i] = parsed
	}
	return fluxled.NewDisplay(addrs), nil
}
