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

package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.AcceptRatio != 0.10 {
		t.Errorf("AcceptRatio = %g, want 0.10", c.AcceptRatio)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"ratio one", func(c *Config) { c.AcceptRatio = 1 }, true},
		{"ratio zero", func(c *Config) { c.AcceptRatio = 0 }, false},
		{"ratio above one", func(c *Config) { c.AcceptRatio = 1.5 }, false},
		{"dwt method", func(c *Config) { c.Method = MethodDWT }, true},
		{"unknown method", func(c *Config) { c.Method = "hfc" }, false},
		{"zero hop", func(c *Config) { c.Hop = 0 }, false},
		{"frame smaller than hop", func(c *Config) { c.FrameSize = 256 }, false},
		{"zero sep", func(c *Config) { c.PeakSepMs = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	c := Default()
	c.InFileName = filepath.Join("audio", "song.wav")

	if got, want := c.TrimmedPath(), filepath.Join("audio", "song_trimmed.wav"); got != want {
		t.Errorf("TrimmedPath() = %q, want %q", got, want)
	}
	if got, want := c.ReportPath(), filepath.Join("audio", "song.notes.json"); got != want {
		t.Errorf("ReportPath() = %q, want %q", got, want)
	}
	if got, want := c.PlotPath(), filepath.Join("audio", "song_plots.png"); got != want {
		t.Errorf("PlotPath() = %q, want %q", got, want)
	}
	c.ReportFile = "out.json"
	if got := c.ReportPath(); got != "out.json" {
		t.Errorf("ReportPath() = %q, want out.json", got)
	}
}

func TestSiblingPathNoExt(t *testing.T) {
	if got := SiblingPath("take1", "_trimmed", ""); got != "take1_trimmed" {
		t.Errorf("SiblingPath() = %q, want take1_trimmed", got)
	}
}
