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

// Package note maps frequencies to equal-tempered pitch classes referenced
// to A4 = 440 Hz.
package note

import (
	"fmt"
	"math"

	"github.com/goccmack/notetrack/internal/apperr"
)

// A4 is the reference frequency in Hz
const A4 = 440.0

// PitchClass is a semitone offset from A, in [0, 11].
type PitchClass int

const (
	A PitchClass = iota
	ASharp
	B
	C
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
)

var names = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

func (p PitchClass) String() string {
	if p < 0 || int(p) >= len(names) {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return names[p]
}

// MarshalText encodes the pitch class by name.
func (p PitchClass) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Semitones returns the rounded number of equal-tempered semitones from A4
// to freq. Ties round away from zero.
func Semitones(freq float64) (int, error) {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return 0, fmt.Errorf("%w: %g Hz", apperr.ErrInvalidFrequency, freq)
	}
	return int(math.Round(12 * math.Log2(freq/A4))), nil
}

// FromFrequency returns the pitch class of freq.
func FromFrequency(freq float64) (PitchClass, error) {
	steps, err := Semitones(freq)
	if err != nil {
		return 0, err
	}
	return PitchClass(mod12(steps)), nil
}

// MIDINumber returns the nearest MIDI note number of freq (A4 = 69).
func MIDINumber(freq float64) (int, error) {
	steps, err := Semitones(freq)
	if err != nil {
		return 0, err
	}
	return 69 + steps, nil
}

// Octave returns the scientific pitch octave of freq (A4 and C4 are in
// octave 4, B3 in octave 3).
func Octave(freq float64) (int, error) {
	steps, err := Semitones(freq)
	if err != nil {
		return 0, err
	}
	return 4 + floorDiv(steps+9, 12), nil
}

// Name returns pitch class and octave, e.g. "C#5".
func Name(freq float64) (string, error) {
	pc, err := FromFrequency(freq)
	if err != nil {
		return "", err
	}
	oct, _ := Octave(freq)
	return fmt.Sprintf("%s%d", pc, oct), nil
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
