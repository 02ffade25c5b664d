//  Copyright 2019 Marius Ackerman
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package config holds the run parameters of notetrack and their defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultAcceptRatio is the fraction of the whole-signal mean absolute
	// amplitude a segment must reach to be accepted.
	DefaultAcceptRatio = 0.10

	// DefaultHop is the onset analysis hop in samples
	DefaultHop = 512
	// DefaultFrameSize is the onset analysis frame length in samples
	DefaultFrameSize = 2048

	// DefaultPeakSepMs is the minimum onset separation for the dwt method
	DefaultPeakSepMs = 250

	MethodFlux = "flux"
	MethodDWT  = "dwt"
)

// Config is the full set of parameters for one run.
type Config struct {
	InFileName string

	// analysis
	Method      string // flux|dwt
	Hop         int
	FrameSize   int
	PeakSepMs   int
	AcceptRatio float64
	ExcludeDC   bool

	// presenters
	ReportFile string // JSON report, empty for <input>.notes.json
	MIDIFile   string // empty disables MIDI export
	Trim       bool
	Play       bool
	Plot       bool
	Progress   bool

	LogLevel string
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		Method:      MethodFlux,
		Hop:         DefaultHop,
		FrameSize:   DefaultFrameSize,
		PeakSepMs:   DefaultPeakSepMs,
		AcceptRatio: DefaultAcceptRatio,
		Trim:        true,
		Play:        true,
		Plot:        true,
		LogLevel:    "info",
	}
}

// Validate checks the analysis parameters.
func (c *Config) Validate() error {
	if !(c.AcceptRatio > 0 && c.AcceptRatio <= 1) {
		return fmt.Errorf("accept ratio must be in (0, 1], got %g", c.AcceptRatio)
	}
	switch c.Method {
	case MethodFlux, MethodDWT:
	default:
		return fmt.Errorf("unknown onset method %q", c.Method)
	}
	if c.Hop <= 0 {
		return fmt.Errorf("hop must be positive, got %d", c.Hop)
	}
	if c.FrameSize < c.Hop {
		return fmt.Errorf("frame size %d is smaller than hop %d", c.FrameSize, c.Hop)
	}
	if c.PeakSepMs <= 0 {
		return fmt.Errorf("sep must be positive, got %d", c.PeakSepMs)
	}
	return nil
}

// ReportPath returns the JSON report file name.
func (c *Config) ReportPath() string {
	if c.ReportFile != "" {
		return c.ReportFile
	}
	return SiblingPath(c.InFileName, ".notes", ".json")
}

// TrimmedPath returns the trimmed clip file name: song.wav -> song_trimmed.wav
func (c *Config) TrimmedPath() string {
	return SiblingPath(c.InFileName, "_trimmed", "")
}

// PlotPath returns the plot image file name.
func (c *Config) PlotPath() string {
	return SiblingPath(c.InFileName, "_plots", ".png")
}

// SiblingPath inserts suffix before the extension of name. If ext is not
// empty it replaces the original extension.
func SiblingPath(name, suffix, ext string) string {
	dir, fname := filepath.Split(name)
	orig := filepath.Ext(fname)
	base := strings.TrimSuffix(fname, orig)
	if ext == "" {
		ext = orig
	}
	return filepath.Join(dir, base+suffix+ext)
}
