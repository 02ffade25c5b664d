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

// Package segment gates the spans between adjacent onsets by their energy
// relative to the whole recording.
package segment

import (
	"gonum.org/v1/gonum/stat"

	"github.com/goccmack/notetrack/internal/pcm"
)

// Segment is the half-open span [Start, End) between onsets Index-1 and
// Index. Samples shares memory with the signal.
type Segment struct {
	Index      int
	Start, End float64 // seconds
	Samples    []int16
	MeanAbs    float64
}

// Validation is the outcome of gating every adjacent onset pair.
type Validation struct {
	// Accepted is the ordered subsequence of onsets bounding the accepted
	// segments. It is empty or has at least two elements.
	Accepted []float64
	// Segments are the accepted segments in time order;
	// len(Segments) == len(Accepted)-1 when Accepted is not empty.
	Segments []Segment
	// Rejected holds the indices of the discarded pairs.
	Rejected  []int
	GlobalAbs float64 // mean absolute amplitude of the whole signal
}

// MeanAbs returns the mean absolute amplitude of x, 0 for an empty x.
func MeanAbs(x []int16) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(pcm.Abs(x), nil)
}

// Accept reports whether a segment with mean absolute amplitude seg passes
// the gate against the whole-signal mean global.
func Accept(seg, global, ratio float64) bool {
	if global <= 0 || seg <= 0 {
		return false
	}
	return seg >= ratio*global
}

// Validate walks the adjacent onset pairs (t[i-1], t[i]) in order and keeps
// those whose mean absolute amplitude is at least ratio times that of the
// whole signal. The first accepted pair appends both onsets, later ones
// append only t[i], so the accepted list may span rejected segments.
func Validate(sig *pcm.Signal, onsets []float64, ratio float64) Validation {
	v := Validation{GlobalAbs: MeanAbs(sig.Samples)}
	for i := 1; i < len(onsets); i++ {
		x := sig.Slice(onsets[i-1], onsets[i])
		m := MeanAbs(x)
		if !Accept(m, v.GlobalAbs, ratio) {
			v.Rejected = append(v.Rejected, i)
			continue
		}
		if len(v.Accepted) == 0 {
			v.Accepted = append(v.Accepted, onsets[i-1])
		}
		v.Accepted = append(v.Accepted, onsets[i])
		v.Segments = append(v.Segments, Segment{
			Index:   i,
			Start:   onsets[i-1],
			End:     onsets[i],
			Samples: x,
			MeanAbs: m,
		})
	}
	return v
}

// Bounds returns the first and last accepted onsets. ok is false when
// nothing was accepted.
func (v *Validation) Bounds() (first, last float64, ok bool) {
	if len(v.Accepted) < 2 {
		return 0, 0, false
	}
	return v.Accepted[0], v.Accepted[len(v.Accepted)-1], true
}
