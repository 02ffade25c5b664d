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

// Package pcm loads and writes signed 16-bit PCM WAVE files and holds the
// decoded signal.
package pcm

import "math"

// Signal is a mono PCM signal. Multi-channel sources are collapsed to their
// first channel at load time.
type Signal struct {
	Samples  []int16
	Rate     int // Hz
	Channels int // channel count of the source file
	BitDepth int
}

// New returns a mono 16-bit signal over samples.
func New(samples []int16, rate int) *Signal {
	return &Signal{Samples: samples, Rate: rate, Channels: 1, BitDepth: 16}
}

func (s *Signal) Len() int { return len(s.Samples) }

// Duration in seconds
func (s *Signal) Duration() float64 {
	if s.Rate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.Rate)
}

// FullScale is the largest representable sample magnitude plus one,
// 2^15 for 16-bit audio.
func (s *Signal) FullScale() float64 {
	bd := s.BitDepth
	if bd <= 0 {
		bd = 16
	}
	return math.Ldexp(1, bd-1)
}

// Index returns the sample index of time t, floor(t*rate), clamped to
// [0, Len()].
func (s *Signal) Index(t float64) int {
	i := int(math.Floor(t * float64(s.Rate)))
	if i < 0 {
		return 0
	}
	if i > len(s.Samples) {
		return len(s.Samples)
	}
	return i
}

// Slice returns the samples in [floor(t0*rate), floor(t1*rate)). The result
// shares memory with the signal.
func (s *Signal) Slice(t0, t1 float64) []int16 {
	i, j := s.Index(t0), s.Index(t1)
	if j < i {
		j = i
	}
	return s.Samples[i:j]
}

// Abs returns |x| of each sample as float64.
func Abs(x []int16) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(float64(v))
	}
	return out
}

// Normalize divides each sample by fullScale.
func Normalize(x []int16, fullScale float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v) / fullScale
	}
	return out
}
