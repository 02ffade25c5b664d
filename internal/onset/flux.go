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

package onset

import (
	"math"
	"math/cmplx"

	"github.com/goccmack/godsp"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/goccmack/notetrack/internal/pcm"
)

func (d *Detector) detectFlux(sig *pcm.Signal) []float64 {
	env := d.FluxEnvelope(sig)
	if env == nil {
		return nil
	}
	pks := pickPeaks(env,
		frames(d.preMax, sig.Rate, d.hop),
		frames(d.postMax, sig.Rate, d.hop)+1,
		frames(d.preAvg, sig.Rate, d.hop),
		frames(d.postAvg, sig.Rate, d.hop)+1,
		frames(d.wait, sig.Rate, d.hop),
		d.delta)
	times := make([]float64, len(pks))
	for i, pk := range pks {
		times[i] = float64(pk*d.hop) / float64(sig.Rate)
	}
	return times
}

// FluxEnvelope returns the spectral-flux novelty of sig, one value per hop,
// scaled to [0, 1]. Frame i is centred on sample i*hop. It returns nil when
// the signal carries no spectral change at all.
func (d *Detector) FluxEnvelope(sig *pcm.Signal) []float64 {
	x := pcm.Normalize(sig.Samples, sig.FullScale())
	n := len(x)
	numFrames := 1 + n/d.hop
	half := d.frameSize / 2
	win := window.Hann(d.frameSize)
	frame := make([]float64, d.frameSize)
	bins := d.frameSize/2 + 1

	env := make([]float64, numFrames)
	prev := make([]float64, bins)
	mag := make([]float64, bins)
	for i := 0; i < numFrames; i++ {
		start := i*d.hop - half
		for j := range frame {
			k := start + j
			if k >= 0 && k < n {
				frame[j] = x[k] * win[j]
			} else {
				frame[j] = 0
			}
		}
		spec := fft.FFTReal(frame)
		for k := range mag {
			mag[k] = math.Log1p(cmplx.Abs(spec[k]))
		}
		if i > 0 {
			var flux float64
			for k := range mag {
				if diff := mag[k] - prev[k]; diff > 0 {
					flux += diff
				}
			}
			env[i] = flux
		}
		prev, mag = mag, prev
	}

	lo := env[0]
	for _, v := range env {
		lo = math.Min(lo, v)
	}
	for i := range env {
		env[i] -= lo
	}
	hi := godsp.Max(env)
	if hi <= 0 {
		return nil
	}
	return godsp.DivS(env, hi)
}

// pickPeaks returns the indices n where
//
//	x[n] == max(x[n-preMax : n+postMax])
//	x[n] >= mean(x[n-preAvg : n+postAvg]) + delta
//	n - previous > wait
//
// with windows clipped to the bounds of x.
func pickPeaks(x []float64, preMax, postMax, preAvg, postAvg, wait int, delta float64) []int {
	var pks []int
	prev := -wait - 1
	for n := range x {
		lo, hi := bounds(n, preMax, postMax, len(x))
		isMax := true
		for _, v := range x[lo:hi] {
			if v > x[n] {
				isMax = false
				break
			}
		}
		if !isMax {
			continue
		}
		lo, hi = bounds(n, preAvg, postAvg, len(x))
		var sum float64
		for _, v := range x[lo:hi] {
			sum += v
		}
		if x[n] < sum/float64(hi-lo)+delta {
			continue
		}
		if n-prev <= wait {
			continue
		}
		pks = append(pks, n)
		prev = n
	}
	return pks
}

func bounds(n, pre, post, size int) (int, int) {
	lo, hi := n-pre, n+post
	if lo < 0 {
		lo = 0
	}
	if hi > size {
		hi = size
	}
	if hi <= n {
		hi = n + 1
	}
	return lo, hi
}
