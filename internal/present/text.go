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

// Package present delivers pipeline results: the pitch-class line, the
// trimmed clip and its playback, plots, a JSON report and a MIDI file.
// Failures here never invalidate the analysis itself.
package present

import (
	"fmt"
	"io"

	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pipeline"
)

// WriteNotes writes the pitch classes space separated on one line.
func WriteNotes(w io.Writer, res *pipeline.Result) error {
	_, err := fmt.Fprintln(w, res.Line())
	return err
}

// TrimmedClip returns the samples between the first and last accepted
// onsets, [floor(first*rate), floor(last*rate)). ok is false when nothing
// was accepted.
func TrimmedClip(sig *pcm.Signal, accepted []float64) (clip []int16, ok bool) {
	if len(accepted) < 2 {
		return nil, false
	}
	return sig.Slice(accepted[0], accepted[len(accepted)-1]), true
}

// WriteTrimmed writes the trimmed clip to path and returns it. Nothing is
// written when no onset was accepted.
func WriteTrimmed(path string, sig *pcm.Signal, accepted []float64) ([]int16, error) {
	clip, ok := TrimmedClip(sig, accepted)
	if !ok {
		return nil, nil
	}
	if err := pcm.WriteFile(path, clip, sig.Rate); err != nil {
		return nil, fmt.Errorf("write trimmed clip: %w", err)
	}
	return clip, nil
}
