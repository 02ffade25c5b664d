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

package segment

import (
	"testing"

	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/testutil"
)

const rate = 8000

func TestAccept(t *testing.T) {
	tests := []struct {
		name        string
		seg, global float64
		want        bool
	}{
		{"at threshold", 10, 100, true},
		{"below threshold", 9.99, 100, false},
		{"above", 500, 100, true},
		{"silent signal", 0, 0, false},
		{"empty segment", 0, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accept(tt.seg, tt.global, 0.10); got != tt.want {
				t.Errorf("Accept(%g, %g) = %v, want %v", tt.seg, tt.global, got, tt.want)
			}
		})
	}
}

func TestMeanAbs(t *testing.T) {
	if got := MeanAbs([]int16{-4, 4, 0, 8}); got != 4 {
		t.Errorf("MeanAbs() = %g, want 4", got)
	}
	if got := MeanAbs(nil); got != 0 {
		t.Errorf("MeanAbs(nil) = %g, want 0", got)
	}
}

func TestValidateMixedAmplitude(t *testing.T) {
	sig := pcm.New(testutil.Concat(
		testutil.Sine(880, 1.0, 0.5, rate),
		testutil.Sine(880, 0.02, 0.5, rate),
	), rate)
	v := Validate(sig, []float64{0, 0.5, 1.0}, 0.10)

	if len(v.Accepted) != 2 || v.Accepted[0] != 0 || v.Accepted[1] != 0.5 {
		t.Errorf("Accepted = %v, want [0 0.5]", v.Accepted)
	}
	if len(v.Segments) != 1 || v.Segments[0].Index != 1 {
		t.Fatalf("Segments = %+v, want the first pair only", v.Segments)
	}
	if len(v.Rejected) != 1 || v.Rejected[0] != 2 {
		t.Errorf("Rejected = %v, want [2]", v.Rejected)
	}
}

func TestValidateNonAdjacent(t *testing.T) {
	loud := testutil.Sine(440, 0.8, 1, rate)
	quiet := testutil.Sine(440, 0.001, 1, rate)
	sig := pcm.New(testutil.Concat(loud, quiet, loud, quiet), rate)
	onsets := []float64{0, 1, 2, 3, 4}
	v := Validate(sig, onsets, 0.10)

	want := []float64{0, 1, 3}
	if len(v.Accepted) != len(want) {
		t.Fatalf("Accepted = %v, want %v", v.Accepted, want)
	}
	for i := range want {
		if v.Accepted[i] != want[i] {
			t.Errorf("Accepted[%d] = %g, want %g", i, v.Accepted[i], want[i])
		}
	}
	if len(v.Segments) != len(v.Accepted)-1 {
		t.Errorf("len(Segments) = %d, want %d", len(v.Segments), len(v.Accepted)-1)
	}
	if v.Segments[1].Start != 2 || v.Segments[1].End != 3 {
		t.Errorf("second segment = [%g, %g), want [2, 3)", v.Segments[1].Start, v.Segments[1].End)
	}
	first, last, ok := v.Bounds()
	if !ok || first != 0 || last != 3 {
		t.Errorf("Bounds() = %g, %g, %v", first, last, ok)
	}
}

func TestValidateAcceptedSegmentsPassGate(t *testing.T) {
	sig := pcm.New(testutil.Concat(
		testutil.Sine(440, 0.5, 0.3, rate),
		testutil.Sine(440, 0.03, 0.3, rate),
		testutil.Noise(0.2, 0.3, rate, 1),
		testutil.Silence(0.3, rate),
		testutil.Sine(660, 0.4, 0.3, rate),
	), rate)
	onsets := []float64{0, 0.3, 0.6, 0.9, 1.2, 1.5}
	v := Validate(sig, onsets, 0.10)
	for _, s := range v.Segments {
		if s.MeanAbs < 0.10*v.GlobalAbs {
			t.Errorf("segment %d mean %g below %g", s.Index, s.MeanAbs, 0.10*v.GlobalAbs)
		}
	}
	// subsequence of onsets
	j := 0
	for _, a := range v.Accepted {
		for j < len(onsets) && onsets[j] != a {
			j++
		}
		if j == len(onsets) {
			t.Fatalf("Accepted %v is not a subsequence of %v", v.Accepted, onsets)
		}
	}
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		sig    *pcm.Signal
		onsets []float64
	}{
		{"empty signal", pcm.New(nil, rate), []float64{0}},
		{"single onset", pcm.New(testutil.Sine(440, 0.5, 1, rate), rate), []float64{0.2}},
		{"no onsets", pcm.New(testutil.Sine(440, 0.5, 1, rate), rate), nil},
		{"silence", pcm.New(testutil.Silence(1, rate), rate), []float64{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.sig, tt.onsets, 0.10)
			if len(v.Accepted) != 0 || len(v.Segments) != 0 {
				t.Errorf("Validate() = %+v, want nothing accepted", v)
			}
			if _, _, ok := v.Bounds(); ok {
				t.Error("Bounds() ok for empty validation")
			}
		})
	}
}
