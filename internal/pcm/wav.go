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

package pcm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/goccmack/notetrack/internal/apperr"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	bitDepth     = 16
)

// Load reads a signed 16-bit PCM WAVE file. Multi-channel files keep only
// channel 0.
func Load(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnreadableFile, err)
	}
	defer f.Close()

	sig, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}

// Decode reads a signed 16-bit PCM WAVE stream.
func Decode(r io.ReadSeeker) (*Signal, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrUnreadableFile, err)
		}
		return nil, fmt.Errorf("%w: not a WAVE file", apperr.ErrUnreadableFile)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAVE format tag %d, want PCM", apperr.ErrUnsupportedFormat, d.WavAudioFormat)
	}
	if d.BitDepth != bitDepth {
		return nil, fmt.Errorf("%w: %d-bit samples, want %d-bit", apperr.ErrUnsupportedFormat, d.BitDepth, bitDepth)
	}
	if d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", apperr.ErrUnreadableFile)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnreadableFile, err)
	}

	numChannels := int(d.NumChans)
	frames := len(buf.Data) / numChannels
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = clip16(buf.Data[i*numChannels])
	}

	return &Signal{
		Samples:  samples,
		Rate:     int(d.SampleRate),
		Channels: numChannels,
		BitDepth: int(d.BitDepth),
	}, nil
}

// WriteFile writes samples as a 16-bit mono PCM WAVE file.
func WriteFile(path string, samples []int16, rate int) error {
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	return WriteInterleaved(path, data, rate, 1)
}

// WriteInterleaved writes interleaved 16-bit frames of numChannels channels.
func WriteInterleaved(path string, data []int, rate, numChannels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, data, rate, numChannels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes interleaved 16-bit frames to w as a PCM WAVE stream.
func Encode(w io.WriteSeeker, data []int, rate, numChannels int) error {
	enc := wav.NewEncoder(w, rate, bitDepth, numChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: rate, NumChannels: numChannels},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	return enc.Close()
}

func clip16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
