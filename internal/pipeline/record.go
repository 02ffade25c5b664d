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

package pipeline

import "github.com/goccmack/notetrack/internal/note"

// State is the processing state of one onset pair.
type State int

const (
	Pending State = iota
	Discarded
	Estimating
	Mapped
	Skipped
)

var stateNames = [...]string{"pending", "discarded", "estimating", "mapped", "skipped"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// segmentRecord tracks one onset pair through the driver.
type segmentRecord struct {
	index      int // pair (onsets[index-1], onsets[index])
	start, end float64
	meanAbs    float64
	state      State
	freq       float64
	pc         note.PitchClass
	err        error
}

func (r *segmentRecord) estimate() Estimate {
	return Estimate{
		Index:      r.index,
		Start:      r.start,
		End:        r.end,
		Frequency:  r.freq,
		PitchClass: r.pc,
	}
}
