// Copyright 2016 The ledcat Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the flag surface so a long-running deployment can be
// driven from a YAML file instead of a long argv. Flags parsed afterwards
// always win: loadConfig only supplies defaults.
type fileConfig struct {
	Output          string   `yaml:"output"`
	Input           []string `yaml:"input"`
	Exit            string   `yaml:"exit"`
	ClearTimeout    int      `yaml:"clear_timeout"`
	Geometry        string   `yaml:"geometry"`
	Transpose       []string `yaml:"transpose"`
	ColorCorrection string   `yaml:"color_correction"`
	// Dim is a pointer so an explicit `dim: 0` in the config file (a
	// deliberate blackout) is distinguishable from the field being absent;
	// orDefaultF only substitutes its default when this is nil.
	Dim            *float64 `yaml:"dim"`
	Driver         string   `yaml:"driver"`
	SerialBaudrate uint32   `yaml:"serial_baudrate"`
	Framerate      int      `yaml:"framerate"`
	Device         string   `yaml:"device"`
}

// loadConfig reads and parses path. A missing path is not an error when
// path is empty (no --config given).
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// peekConfigPath scans argv for --config/-c ahead of the real flag parse,
// since the config file's contents become some flags' defaults.
func peekConfigPath(argv []string) string {
	for i, a := range argv {
		switch {
		case a == "--config" || a == "-c":
			if i+1 < len(argv) {
				return argv[i+1]
			}
		case len(a) > len("--config=") && a[:len("--config=")] == "--config=":
			return a[len("--config="):]
		}
	}
	return ""
}
