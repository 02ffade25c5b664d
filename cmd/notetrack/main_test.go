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

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/goccmack/notetrack/internal/apperr"
	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/testutil"
)

const rate = 22050

type recordingPlayer struct {
	played []int16
	err    error
}

func (p *recordingPlayer) Play(samples []int16, rate int, fullScale float64) error {
	p.played = samples
	return p.err
}

func writeTone(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tone.wav")
	samples := testutil.Concat(
		testutil.Silence(0.5, rate),
		testutil.Pluck(440, 0.6, 1.0, rate),
		testutil.Silence(0.5, rate),
		testutil.Pluck(523.25, 0.6, 1.0, rate),
	)
	if err := pcm.WriteFile(path, samples, rate); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InFileName = writeTone(t, dir)
	cfg.MIDIFile = filepath.Join(dir, "tone.mid")

	var out bytes.Buffer
	player := &recordingPlayer{err: apperr.ErrPlaybackUnavailable}
	if err := run(cfg, zap.NewNop(), &out, player); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasSuffix(out.String(), "\n") || strings.Count(out.String(), "\n") != 1 {
		t.Errorf("output = %q, want one line", out.String())
	}
	for _, p := range []string{cfg.ReportPath(), cfg.PlotPath(), cfg.MIDIFile} {
		if !exists(p) {
			t.Errorf("%s not written", p)
		}
	}
	if trimmed := exists(cfg.TrimmedPath()); trimmed != (player.played != nil) {
		t.Errorf("trimmed file written = %v, clip played = %v", trimmed, player.played != nil)
	}
}

func TestRunDisabledOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InFileName = writeTone(t, dir)
	cfg.Trim, cfg.Plot, cfg.Play = false, false, false

	player := &recordingPlayer{}
	if err := run(cfg, zap.NewNop(), &bytes.Buffer{}, player); err != nil {
		t.Fatal(err)
	}
	if exists(cfg.TrimmedPath()) || exists(cfg.PlotPath()) {
		t.Error("disabled output written")
	}
	if player.played != nil {
		t.Error("played with playback disabled")
	}
	if !exists(cfg.ReportPath()) {
		t.Error("report not written")
	}
}

func TestRunMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.InFileName = filepath.Join(t.TempDir(), "missing.wav")
	err := run(cfg, zap.NewNop(), &bytes.Buffer{}, nil)
	if !errors.Is(err, apperr.ErrUnreadableFile) || !apperr.IsFatal(err) {
		t.Errorf("run() error = %v, want ErrUnreadableFile", err)
	}
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeTone(t, dir)
	report := filepath.Join(dir, "report.json")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-play", "--no-plot", "--log-level", "error", "-o", report, path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !exists(report) {
		t.Error("report not written to -o path")
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("output = %q", out.String())
	}
}

func TestRootCommandRejectsBadFlags(t *testing.T) {
	tests := [][]string{
		{"--method", "fft", "x.wav"},
		{"--accept-ratio", "0", "x.wav"},
		{"--log-level", "loud", "--no-play", "x.wav"},
		{"a.wav", "b.wav"},
	}
	for _, args := range tests {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err == nil {
			t.Errorf("Execute(%v) succeeded", args)
		}
	}
}
