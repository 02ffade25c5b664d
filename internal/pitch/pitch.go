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

// Package pitch estimates the dominant frequency of a PCM segment from the
// peak of its magnitude spectrum.
package pitch

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/goccmack/notetrack/internal/pcm"
)

// Spectrum is the one-sided DFT of a real segment.
type Spectrum struct {
	N      int          // segment length
	Rate   int          // Hz
	Coeffs []complex128 // bins [0, ceil((N+1)/2))
}

// Transform normalises x by fullScale and returns its one-sided spectrum.
// Segments shorter than 2 samples return nil. Lengths that are not a power
// of 2 keep the exact length-N DFT through Bluestein's algorithm, so the cost
// stays O(N log N) for any N.
func Transform(x []int16, rate int, fullScale float64) *Spectrum {
	n := len(x)
	if n < 2 {
		return nil
	}
	coeffs := fft.FFTReal(pcm.Normalize(x, fullScale))
	return &Spectrum{N: n, Rate: rate, Coeffs: coeffs[:UniquePoints(n)]}
}

// UniquePoints is the number of non-redundant bins of a real DFT of length n,
// ceil((n+1)/2).
func UniquePoints(n int) int {
	return (n + 2) / 2
}

// Freq returns the centre frequency of bin k.
func (s *Spectrum) Freq(k int) float64 {
	return float64(k) * float64(s.Rate) / float64(s.N)
}

// Frequencies returns the frequency axis of the retained bins.
func (s *Spectrum) Frequencies() []float64 {
	f := make([]float64, len(s.Coeffs))
	for k := range f {
		f[k] = s.Freq(k)
	}
	return f
}

// Magnitudes returns |X_k| of the retained bins.
func (s *Spectrum) Magnitudes() []float64 {
	m := make([]float64, len(s.Coeffs))
	for k, c := range s.Coeffs {
		m[k] = cmplx.Abs(c)
	}
	return m
}

// PeakBin returns the bin with the largest magnitude. The first of equal
// maxima wins. With excludeDC, bin 0 is not a candidate.
func (s *Spectrum) PeakBin(excludeDC bool) int {
	mag := s.Magnitudes()
	if excludeDC {
		if len(mag) < 2 {
			return 0
		}
		return 1 + floats.MaxIdx(mag[1:])
	}
	return floats.MaxIdx(mag)
}

// Estimate returns the dominant frequency of x in Hz, or 0 when x has fewer
// than 2 samples.
func Estimate(x []int16, rate int, fullScale float64, excludeDC bool) float64 {
	s := Transform(x, rate, fullScale)
	if s == nil {
		return 0
	}
	return s.Freq(s.PeakBin(excludeDC))
}

// PowerDB returns the one-sided power spectrum of x in dB: (|X_k|/N)^2 with
// every bin except DC and (for even N) Nyquist doubled to account for the
// discarded negative frequencies.
func PowerDB(x []int16, rate int, fullScale float64) (freqs, db []float64) {
	s := Transform(x, rate, fullScale)
	if s == nil {
		return nil, nil
	}
	u := len(s.Coeffs)
	db = make([]float64, u)
	last := u
	if s.N%2 == 0 {
		last = u - 1
	}
	for k, c := range s.Coeffs {
		p := cmplx.Abs(c) / float64(s.N)
		p *= p
		if k >= 1 && k < last {
			p *= 2
		}
		db[k] = 10 * math.Log10(p)
	}
	return s.Frequencies(), db
}
