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

// Package pipeline drives onset detection, segment validation, pitch
// estimation and note mapping over one signal in a single sequential pass.
package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goccmack/notetrack/internal/apperr"
	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/logger"
	"github.com/goccmack/notetrack/internal/note"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pitch"
	"github.com/goccmack/notetrack/internal/segment"
)

// OnsetDetector produces candidate onset times in seconds.
type OnsetDetector interface {
	Detect(sig *pcm.Signal) []float64
}

// Estimate is the pitch of one accepted segment.
type Estimate struct {
	Index      int     // onset pair index
	Start      float64 // seconds
	End        float64
	Frequency  float64 // Hz
	PitchClass note.PitchClass
}

// Result is everything a run produces.
type Result struct {
	RawOnsets []float64
	Accepted  []float64
	Estimates []Estimate
	// Skipped holds the pair indices of accepted segments for which no
	// positive frequency could be found.
	Skipped   []int
	GlobalAbs float64
}

// Frequencies returns the estimated frequencies in segment order.
func (r *Result) Frequencies() []float64 {
	f := make([]float64, len(r.Estimates))
	for i, e := range r.Estimates {
		f[i] = e.Frequency
	}
	return f
}

// PitchClasses returns the pitch classes in segment order.
func (r *Result) PitchClasses() []note.PitchClass {
	p := make([]note.PitchClass, len(r.Estimates))
	for i, e := range r.Estimates {
		p[i] = e.PitchClass
	}
	return p
}

// Line returns the pitch classes separated by single spaces.
func (r *Result) Line() string {
	names := make([]string, len(r.Estimates))
	for i, e := range r.Estimates {
		names[i] = e.PitchClass.String()
	}
	return strings.Join(names, " ")
}

// Observer is called once per onset pair, in order, after the pair reached
// its final state.
type Observer func(index, total int, state State)

type options struct {
	ratio     float64
	excludeDC bool
	log       *zap.Logger
	observer  Observer
}

// Option configures a run.
type Option func(*options)

// WithAcceptRatio sets the segment gate ratio (default 0.10).
func WithAcceptRatio(r float64) Option { return func(o *options) { o.ratio = r } }

// WithExcludeDC keeps bin 0 out of the spectral peak search.
func WithExcludeDC(ex bool) Option { return func(o *options) { o.excludeDC = ex } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// WithObserver registers a per-pair callback.
func WithObserver(f Observer) Option { return func(o *options) { o.observer = f } }

// FromConfig returns the run options of c.
func FromConfig(c *config.Config, l *zap.Logger) []Option {
	return []Option{
		WithAcceptRatio(c.AcceptRatio),
		WithExcludeDC(c.ExcludeDC),
		WithLogger(l),
	}
}

// Analyze detects onsets in sig with det and runs the pipeline over them.
func Analyze(sig *pcm.Signal, det OnsetDetector, opts ...Option) *Result {
	o := newOptions(opts)
	if sig == nil || sig.Len() == 0 {
		o.log.Info("no samples, nothing to analyse", zap.Error(apperr.ErrEmptySignal))
		return &Result{}
	}
	return Run(sig, det.Detect(sig), opts...)
}

// Run validates every adjacent pair of onsets, estimates the pitch of each
// accepted segment and maps it to a pitch class. Segments whose estimate is
// not a positive frequency are skipped without affecting their neighbours.
func Run(sig *pcm.Signal, onsets []float64, opts ...Option) *Result {
	o := newOptions(opts)
	if sig == nil {
		return &Result{RawOnsets: onsets}
	}
	v := segment.Validate(sig, onsets, o.ratio)
	res := &Result{
		RawOnsets: onsets,
		Accepted:  v.Accepted,
		GlobalAbs: v.GlobalAbs,
	}

	byIndex := make(map[int]segment.Segment, len(v.Segments))
	for _, s := range v.Segments {
		byIndex[s.Index] = s
	}

	total := len(onsets) - 1
	for i := 1; i < len(onsets); i++ {
		rec := &segmentRecord{index: i, start: onsets[i-1], end: onsets[i], state: Pending}
		if s, ok := byIndex[i]; ok {
			rec.meanAbs = s.MeanAbs
			rec.state = Estimating
			rec.freq = pitch.Estimate(s.Samples, sig.Rate, sig.FullScale(), o.excludeDC)
			rec.pc, rec.err = note.FromFrequency(rec.freq)
			if rec.err != nil {
				rec.state = Skipped
				res.Skipped = append(res.Skipped, i)
			} else {
				rec.state = Mapped
				res.Estimates = append(res.Estimates, rec.estimate())
			}
		} else {
			rec.state = Discarded
		}
		if rec.state != Skipped {
			o.log.Debug("segment",
				zap.Int("index", rec.index),
				zap.Float64("start", rec.start),
				zap.Float64("end", rec.end),
				zap.Float64("meanAbs", rec.meanAbs),
				zap.Stringer("state", rec.state),
				zap.Float64("frequency", rec.freq))
		}
		if o.observer != nil {
			o.observer(i, total, rec.state)
		}
	}
	return res
}

func newOptions(opts []Option) *options {
	o := &options{ratio: config.DefaultAcceptRatio}
	for _, opt := range opts {
		opt(o)
	}
	o.log = logger.OrNop(o.log)
	return o
}
