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

// Package onset finds candidate note onsets in a PCM signal.
//
// The default method computes a spectral-flux novelty function over
// Hann-windowed frames and picks its local peaks. The dwt method sums the
// Daubechies-4 detail energies of the signal into an envelope and takes its
// peaks at a minimum separation.
package onset

import (
	"sort"

	"go.uber.org/zap"

	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/logger"
	"github.com/goccmack/notetrack/internal/pcm"
)

// Detector turns a signal into a strictly increasing list of onset times
// in seconds.
type Detector struct {
	method    string
	hop       int // samples
	frameSize int // samples
	peakSepMs int // minimum peak separation for the dwt method

	// peak picking windows in seconds
	preMax, postMax float64
	preAvg, postAvg float64
	wait            float64
	delta           float64

	log *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithMethod selects "flux" or "dwt".
func WithMethod(m string) Option { return func(d *Detector) { d.method = m } }

// WithHop sets the analysis hop in samples.
func WithHop(hop int) Option { return func(d *Detector) { d.hop = hop } }

// WithFrameSize sets the analysis frame length in samples.
func WithFrameSize(n int) Option { return func(d *Detector) { d.frameSize = n } }

// WithPeakSeparation sets the minimum distance between dwt peaks in ms.
func WithPeakSeparation(ms int) Option { return func(d *Detector) { d.peakSepMs = ms } }

// WithDelta sets the threshold above the local mean a flux peak must reach.
func WithDelta(delta float64) Option { return func(d *Detector) { d.delta = delta } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(d *Detector) { d.log = l } }

// New returns a flux Detector with 30 ms peak windows and 100 ms mean windows.
func New(opts ...Option) *Detector {
	d := &Detector{
		method:    config.MethodFlux,
		hop:       config.DefaultHop,
		frameSize: config.DefaultFrameSize,
		peakSepMs: config.DefaultPeakSepMs,
		preMax:    0.03,
		postMax:   0,
		preAvg:    0.10,
		postAvg:   0.10,
		wait:      0.03,
		delta:     0.07,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = logger.OrNop(d.log)
	return d
}

// FromConfig builds a Detector from the run configuration.
func FromConfig(c *config.Config, l *zap.Logger) *Detector {
	return New(
		WithMethod(c.Method),
		WithHop(c.Hop),
		WithFrameSize(c.FrameSize),
		WithPeakSeparation(c.PeakSepMs),
		WithLogger(l),
	)
}

// Detect returns onset times in seconds, strictly increasing and within
// [0, duration]. No energy gating is applied.
func (d *Detector) Detect(sig *pcm.Signal) []float64 {
	if sig == nil || sig.Len() == 0 || sig.Rate <= 0 {
		return nil
	}
	var times []float64
	switch d.method {
	case config.MethodDWT:
		times = d.detectDWT(sig)
	default:
		times = d.detectFlux(sig)
	}
	times = clean(times, sig.Duration())
	d.log.Debug("onsets detected",
		zap.String("method", d.method),
		zap.Int("count", len(times)),
		zap.Float64("duration", sig.Duration()))
	return times
}

// clean sorts times, drops duplicates and anything outside [0, dur].
func clean(times []float64, dur float64) []float64 {
	sort.Float64s(times)
	out := times[:0]
	for _, t := range times {
		if t < 0 || t > dur {
			continue
		}
		if len(out) > 0 && t <= out[len(out)-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// frames converts seconds to a whole number of hops at rate.
func frames(sec float64, rate, hop int) int {
	return int(sec * float64(rate) / float64(hop))
}
