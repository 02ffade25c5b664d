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
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/goccmack/notetrack/internal/apperr"
)

// Player plays mono PCM once and returns when playback has finished.
type Player interface {
	Play(samples []int16, rate int, fullScale float64) error
}

// SpeakerPlayer plays through the default audio output.
type SpeakerPlayer struct {
	Buffer time.Duration // speaker buffer length
}

// NewSpeakerPlayer returns a SpeakerPlayer with a 100 ms buffer.
func NewSpeakerPlayer() *SpeakerPlayer {
	return &SpeakerPlayer{Buffer: 100 * time.Millisecond}
}

func (p *SpeakerPlayer) Play(samples []int16, rate int, fullScale float64) error {
	if len(samples) == 0 {
		return nil
	}
	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(p.Buffer)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPlaybackUnavailable, err)
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(NewClipStreamer(samples, fullScale), beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// ClipStreamer streams mono PCM to both output channels.
type ClipStreamer struct {
	samples []int16
	scale   float64
	pos     int
}

// NewClipStreamer returns a streamer over samples scaled by 1/fullScale.
func NewClipStreamer(samples []int16, fullScale float64) *ClipStreamer {
	return &ClipStreamer{samples: samples, scale: fullScale}
}

// Stream implements beep.Streamer.
func (c *ClipStreamer) Stream(buf [][2]float64) (n int, ok bool) {
	if c.pos >= len(c.samples) {
		return 0, false
	}
	for n < len(buf) && c.pos < len(c.samples) {
		v := float64(c.samples[c.pos]) / c.scale
		buf[n][0], buf[n][1] = v, v
		n++
		c.pos++
	}
	return n, true
}

// Err implements beep.Streamer.
func (c *ClipStreamer) Err() error { return nil }
