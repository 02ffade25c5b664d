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
	"github.com/goccmack/godsp"
	"github.com/goccmack/godsp/dwt"
	"github.com/goccmack/godsp/peaks"

	"github.com/goccmack/notetrack/internal/pcm"
)

const (
	// DWTLevel is the number of scales over which the DWT will be computed
	DWTLevel = 4
	// Scale is the number of times the energy envelope divides the length
	// of the signal
	Scale = 1 << DWTLevel
)

func (d *Detector) detectDWT(sig *pcm.Signal) []float64 {
	env := DWTEnvelope(sig)
	if env == nil {
		return nil
	}
	sep := d.peakSepMs * sig.Rate / (Scale * 1000)
	if sep <= 0 {
		sep = 1
	}
	pks := peaks.Get(env, sep)
	times := make([]float64, 0, len(pks))
	for _, pk := range pks {
		// quantise to the onset hop like the flux method
		offs := (pk * Scale / d.hop) * d.hop
		times = append(times, float64(offs)/float64(sig.Rate))
	}
	return times
}

// DWTEnvelope returns the sum of the absolute Daubechies-4 coefficients of
// every scale, down sampled to 1/Scale of the signal rate and divided by its
// average. It returns nil for an all-zero signal.
func DWTEnvelope(sig *pcm.Signal) []float64 {
	x := pcm.Normalize(sig.Samples, sig.FullScale())
	n := Scale
	for n < len(x) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, x)

	db4 := dwt.Daubechies4(padded, DWTLevel)
	coefs := db4.GetCoefficients()
	absX := godsp.AbsAll(coefs)
	dsX := godsp.DownSampleAll(absX)
	sumX := godsp.SumVectors(dsX)

	avg := godsp.Average(sumX)
	if avg == 0 {
		return nil
	}
	return godsp.DivS(sumX, avg)
}
