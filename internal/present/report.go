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

package present

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pipeline"
)

type OutRecord struct {
	FileName    string // Input file
	SampleRate  int    // Hz
	NumChannels int    // Number of channels in the wav file
	Method      string // Onset detection method
	AcceptRatio float64
	RawOnsets   []float64 // Candidate onsets in seconds
	Onsets      []float64 // Accepted onsets in seconds
	Notes       []OutNote
	Line        string
}

type OutNote struct {
	Index      int
	StartMs    int // position of the segment from the start in ms
	EndMs      int
	Frequency  float64 // Hz
	PitchClass string
}

// NewOutRecord collects the reportable parts of a run.
func NewOutRecord(c *config.Config, sig *pcm.Signal, res *pipeline.Result) *OutRecord {
	or := &OutRecord{
		FileName:    c.InFileName,
		SampleRate:  sig.Rate,
		NumChannels: sig.Channels,
		Method:      c.Method,
		AcceptRatio: c.AcceptRatio,
		RawOnsets:   nonNil(res.RawOnsets),
		Onsets:      nonNil(res.Accepted),
		Notes:       make([]OutNote, len(res.Estimates)),
		Line:        res.Line(),
	}
	for i, e := range res.Estimates {
		or.Notes[i] = OutNote{
			Index:      e.Index,
			StartMs:    int(1000 * e.Start),
			EndMs:      int(1000 * e.End),
			Frequency:  e.Frequency,
			PitchClass: e.PitchClass.String(),
		}
	}
	return or
}

// WriteReport writes the JSON report of a run to path.
func WriteReport(path string, or *OutRecord) error {
	buf, err := json.Marshal(or)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func nonNil(x []float64) []float64 {
	if x == nil {
		return []float64{}
	}
	return x
}
