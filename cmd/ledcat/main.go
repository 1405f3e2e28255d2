// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command ledcat is netcat for LED strips and matrices: it reads an
// unframed RGB24 pixel stream from one or more inputs, applies dimming,
// color correction and geometric transposition, and serializes the result
// to a device-specific wire format over a chosen transport.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ledcat-go/ledcat/correction"
	"github.com/ledcat-go/ledcat/host"
	"github.com/ledcat-go/ledcat/pipeline"
	"github.com/ledcat-go/ledcat/pixel"
	"github.com/ledcat-go/ledcat/reader"
	"github.com/ledcat-go/ledcat/transpose"
)

// pixelDimensions carries the parsed --geometry value alongside the flags
// that derive from it, so device constructors don't need to re-derive
// is2D/size from a pixel.Dimensions each time.
type pixelDimensions struct {
	pixel.Dimensions
	is2D          bool
	width, height int
	size          int
}

func newPixelDimensions(d pixel.Dimensions) pixelDimensions {
	pd := pixelDimensions{Dimensions: d, is2D: d.Is2D(), size: d.Size()}
	if pd.is2D {
		pd.width, pd.height = d.WidthHeight()
	} else {
		pd.width = pd.size
		pd.height = 1
	}
	return pd
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	configPath := peekConfigPath(argv)
	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("reading config", "path", configPath, "err", err)
		return 1
	}

	fs := pflag.NewFlagSet("ledcat", pflag.ContinueOnError)

	output := fs.StringP("output", "o", firstNonEmpty(cfg.Output, "-"), "Output path, or - for standard output")
	input := fs.StringArrayP("input", "i", cfg.Input, "One or more input paths, or - for standard input")
	exitFlag := fs.String("exit", firstNonEmpty(cfg.Exit, "one"), "Reader exit condition: never, one or all")
	clearTimeoutMs := fs.Int("clear-timeout", orDefault(cfg.ClearTimeout, 0), "Partial-frame discard timeout in milliseconds, 0 disables")
	geometryFlag := fs.StringP("geometry", "g", firstNonEmpty(cfg.Geometry, ""), "Dimensions: N, WxH, or env to read LEDCAT_GEOMETRY")
	transposeFlag := fs.StringArray("transpose", cfg.Transpose, "Ordered transposition: reverse, zigzag_x, zigzag_y, mirror_x, mirror_y")
	colorCorrectionFlag := fs.String("color-correction", firstNonEmpty(cfg.ColorCorrection, ""), "Override the device's default color correction: none or srgb")
	dimFlag := fs.Float64("dim", orDefaultF(cfg.Dim, 1.0), "Global dim factor in [0,1]; an explicit 0 in --config is honored, not treated as unset")
	driverFlag := fs.String("driver", firstNonEmpty(cfg.Driver, ""), "Transport: none, spidev, serial or bitbang; auto-detected from --output when omitted (bitbang is never auto-detected)")
	serialBaud := fs.Uint32("serial-baudrate", orDefaultU(cfg.SerialBaudrate, 115200), "Serial baudrate, mapped to the nearest lower standard rate")
	framerate := fs.IntP("framerate", "f", orDefault(cfg.Framerate, 0), "Target frames per second; 0 means unpaced")
	one := fs.BoolP("one", "1", false, "Send exactly one frame then exit")
	deviceFlag := fs.String("device", firstNonEmpty(cfg.Device, "generic"), "Device codec: generic, apa102, sk9822, lpd8806, hexws2811, ws2812, term, hub75, artnet, fluxled, rgbmatrix")
	verbose := fs.BoolP("verbose", "v", false, "Enable debug logging")
	fs.StringP("config", "c", "", "Path to a YAML config file supplying flag defaults")
	df := registerDeviceFlags(fs)

	if err := fs.Parse(argv); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		logger.Error("parsing flags", "err", err)
		return 1
	}

	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *geometryFlag == "" {
		logger.Error("missing required flag --geometry")
		return 1
	}
	dims, err := parseGeometry(*geometryFlag)
	if err != nil {
		logger.Error("parsing geometry", "err", err)
		return 1
	}
	pd := newPixelDimensions(dims)

	transposeFns, err := buildTranspose(pd.Dimensions, *transposeFlag)
	if err != nil {
		logger.Error("parsing transpose", "err", err)
		return 1
	}
	permutation := transpose.Compile(pd.size, transposeFns)
	if !permutation.IsBijection() {
		logger.Error("composed transpositions do not form a bijection")
		return 1
	}

	exitCond, err := parseExitCondition(*exitFlag)
	if err != nil {
		logger.Error("parsing exit condition", "err", err)
		return 1
	}

	driverName := *driverFlag
	if driverName == "" {
		driverName = host.DetectDriver(*output)
		logger.Debug("auto-detected driver", "driver", driverName, "output", *output)
	}

	tr := &transportConfig{
		path:            *output,
		driver:          driverName,
		serialBaud:      *serialBaud,
		spiHz:           df.spiHz,
		bitbangGPIOChip: df.bitbangGPIOChip,
		bitbangClock:    df.bitbangClock,
		bitbangMOSI:     df.bitbangMOSI,
		bitbangMISO:     df.bitbangMISO,
		bitbangCS:       df.bitbangCS,
	}

	out, err := buildDeviceOutput(*deviceFlag, pd, df, tr, logger)
	if err != nil {
		logger.Error("building device", "device", *deviceFlag, "err", err)
		return 1
	}

	corr := out.ColorCorrection()
	switch *colorCorrectionFlag {
	case "":
	case "none":
		corr = correction.None()
	case "srgb":
		corr = correction.SRGB(255, 255, 255)
	default:
		logger.Error("unknown color correction", "value", *colorCorrectionFlag)
		return 1
	}

	inputPaths := *input
	if len(inputPaths) == 0 {
		inputPaths = []string{"-"}
	}
	files := make([]*os.File, len(inputPaths))
	keepWriterOpen := exitCond == reader.Never
	for i, p := range inputPaths {
		f, err := reader.OpenInput(p, keepWriterOpen)
		if err != nil {
			logger.Error("opening input", "path", p, "err", err)
			return 1
		}
		files[i] = f
	}

	clearTimeout := time.Duration(*clearTimeoutMs) * time.Millisecond
	rd := reader.New(files, pd.size*3, exitCond, clearTimeout)

	var frameInterval time.Duration
	if *framerate > 0 {
		frameInterval = time.Second / time.Duration(*framerate)
	}

	pcfg := pipeline.Config{
		NumPixels:     pd.size,
		Permutation:   permutation,
		Dim:           *dimFlag,
		Correction:    corr,
		FrameInterval: frameInterval,
		SingleFrame:   *one,
	}

	if err := pipeline.Run(rd.AsReader(), out, pcfg); err != nil {
		logger.Error("pipeline", "err", err)
		return 1
	}
	return 0
}

func parseExitCondition(s string) (reader.ExitCondition, error) {
	switch s {
	case "never":
		return reader.Never, nil
	case "one":
		return reader.OneClosed, nil
	case "all":
		return reader.AllClosed, nil
	default:
		return 0, fmt.Errorf("ledcat: unknown exit condition %q", s)
	}
}

func firstNonEmpty(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func orDefault(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orDefaultU(v, def uint32) uint32 {
	if v != 0 {
		return v
	}
	return def
}

func orDefaultF(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
