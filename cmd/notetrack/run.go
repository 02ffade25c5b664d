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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/onset"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pipeline"
	"github.com/goccmack/notetrack/internal/present"
)

// run analyses cfg.InFileName, prints the pitch classes to out and writes
// the enabled outputs. Only a failure to load the input is returned; the
// outputs are best effort. player is not used when nil.
func run(cfg *config.Config, log *zap.Logger, out io.Writer, player present.Player) error {
	start := time.Now()

	sig, err := pcm.Load(cfg.InFileName)
	if err != nil {
		return err
	}
	log.Info("loaded",
		zap.String("file", cfg.InFileName),
		zap.Int("sampleRate", sig.Rate),
		zap.Int("numChannels", sig.Channels),
		zap.Float64("seconds", sig.Duration()))

	opts := pipeline.FromConfig(cfg, log)
	var prog *progress
	if cfg.Progress {
		prog = &progress{}
		opts = append(opts, pipeline.WithObserver(prog.observe))
	}
	res := pipeline.Analyze(sig, onset.FromConfig(cfg, log), opts...)
	prog.wait()

	if err := present.WriteNotes(out, res); err != nil {
		log.Warn("write notes", zap.Error(err))
	}

	clip, ok := present.TrimmedClip(sig, res.Accepted)
	if ok && cfg.Trim {
		if _, err := present.WriteTrimmed(cfg.TrimmedPath(), sig, res.Accepted); err != nil {
			log.Warn("trimmed clip not written", zap.Error(err))
		}
	}
	if ok && cfg.Play && player != nil {
		if err := player.Play(clip, sig.Rate, sig.FullScale()); err != nil {
			log.Warn("playback skipped", zap.Error(err))
		}
	}
	if cfg.Plot {
		if err := present.Plot(cfg.PlotPath(), filepath.Base(cfg.InFileName), sig, res); err != nil {
			log.Warn("plots not written", zap.Error(err))
		}
	}
	if err := present.WriteReport(cfg.ReportPath(), present.NewOutRecord(cfg, sig, res)); err != nil {
		log.Warn("report not written", zap.Error(err))
	}
	if cfg.MIDIFile != "" {
		if err := present.WriteMIDI(cfg.MIDIFile, res); err != nil {
			log.Warn("midi file not written", zap.Error(err))
		}
	}

	log.Info("done",
		zap.Int("notes", len(res.Estimates)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// progress draws a bar over the onset pairs. The bar is created on the
// first call, when the number of pairs is known.
type progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func (g *progress) observe(index, total int, _ pipeline.State) {
	if g.bar == nil {
		g.p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		g.bar = g.p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("Segments: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}
	g.bar.Increment()
}

func (g *progress) wait() {
	if g == nil || g.p == nil {
		return
	}
	g.p.Wait()
}
