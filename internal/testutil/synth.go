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

// Package testutil generates synthetic piano-like fixtures for tests.
package testutil

import (
	"math"
	"math/rand"
)

// FullScale is 2^15, the 16-bit normalisation constant.
const FullScale = 1 << 15

// Sine returns dur seconds of a sine at freq Hz with peak amplitude amp
// (fraction of full scale) sampled at rate.
func Sine(freq, amp, dur float64, rate int) []int16 {
	n := int(dur * float64(rate))
	out := make([]int16, n)
	for i := range out {
		v := amp * FullScale * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		out[i] = clip(v)
	}
	return out
}

// Pluck returns a piano-like note: 5 ms linear attack, exponential decay
// with a 0.5 s time constant and a 10 ms linear fade-out.
func Pluck(freq, amp, dur float64, rate int) []int16 {
	n := int(dur * float64(rate))
	attack := int(0.005 * float64(rate))
	release := int(0.010 * float64(rate))
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / float64(rate)
		g := math.Exp(-t / 0.5)
		if i < attack {
			g *= float64(i) / float64(attack)
		}
		if r := n - i; r < release {
			g *= float64(r) / float64(release)
		}
		out[i] = clip(g * amp * FullScale * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// Silence returns dur seconds of zero samples.
func Silence(dur float64, rate int) []int16 {
	return make([]int16, int(dur*float64(rate)))
}

// Noise returns dur seconds of uniform noise with peak amplitude amp.
func Noise(amp, dur float64, rate int, seed int64) []int16 {
	r := rand.New(rand.NewSource(seed))
	out := make([]int16, int(dur*float64(rate)))
	for i := range out {
		out[i] = clip(amp * FullScale * (2*r.Float64() - 1))
	}
	return out
}

// Concat joins sample runs.
func Concat(parts ...[]int16) []int16 {
	var out []int16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Interleave builds interleaved frames from equal-length channels.
func Interleave(chans ...[]int16) []int {
	if len(chans) == 0 {
		return nil
	}
	n := len(chans[0])
	out := make([]int, 0, n*len(chans))
	for i := 0; i < n; i++ {
		for _, c := range chans {
			out = append(out, int(c[i]))
		}
	}
	return out
}

func clip(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
