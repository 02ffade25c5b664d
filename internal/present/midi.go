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
	"bytes"
	"fmt"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/goccmack/notetrack/internal/note"
	"github.com/goccmack/notetrack/internal/pipeline"
)

const (
	// TicksPerQuarter is the resolution of exported files
	TicksPerQuarter = 480
	// Tempo of exported files in beats per minute
	Tempo = 120
	// TicksPerSecond at Tempo
	TicksPerSecond = TicksPerQuarter * Tempo / 60

	velocity = 100
)

// EncodeMIDI returns a single track SMF with one note per estimate,
// placed at its segment's start and end times.
func EncodeMIDI(res *pipeline.Result) ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(Tempo))

	var tick uint32
	for _, e := range res.Estimates {
		n, err := note.MIDINumber(e.Frequency)
		if err != nil {
			return nil, err
		}
		key := uint8(min(max(n, 0), 127))
		on, off := toTicks(e.Start), toTicks(e.End)
		if on < tick {
			on = tick
		}
		if off <= on {
			off = on + 1
		}
		track.Add(on-tick, midi.NoteOn(0, key, velocity))
		track.Add(off-on, midi.NoteOff(0, key))
		tick = off
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode midi: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDI writes the estimates of res as a standard MIDI file.
func WriteMIDI(path string, res *pipeline.Result) error {
	buf, err := EncodeMIDI(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

func toTicks(sec float64) uint32 {
	return uint32(math.Round(sec * TicksPerSecond))
}
