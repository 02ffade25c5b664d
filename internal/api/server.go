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

// Package api serves note transcription over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goccmack/notetrack/internal/apperr"
	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/logger"
	"github.com/goccmack/notetrack/internal/onset"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pipeline"
)

// MaxUploadBytes bounds the size of an uploaded WAVE file
const MaxUploadBytes = 256 << 20

// Note is one transcribed segment.
type Note struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Frequency  float64 `json:"frequency"`
	PitchClass string  `json:"pitchClass"`
}

// Transcription is the response body of POST /api/v1/transcribe.
type Transcription struct {
	FileName    string    `json:"fileName"`
	SampleRate  int       `json:"sampleRate"`
	NumChannels int       `json:"numChannels"`
	Method      string    `json:"method"`
	AcceptRatio float64   `json:"acceptRatio"`
	RawOnsets   []float64 `json:"rawOnsets"`
	Onsets      []float64 `json:"onsets"`
	Notes       []Note    `json:"notes"`
	Line        string    `json:"line"`
}

type server struct {
	cfg *config.Config
	log *zap.Logger
}

// NewRouter returns the API routes. cfg supplies the analysis defaults;
// the method and accept_ratio query parameters override them per request.
func NewRouter(cfg *config.Config, l *zap.Logger) *gin.Engine {
	s := &server{cfg: cfg, log: logger.OrNop(l)}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/health", healthCheck)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/transcribe", s.transcribe)
	}
	return r
}

// StartServer serves the API on port until the listener fails.
func StartServer(port int, cfg *config.Config, l *zap.Logger) error {
	l = logger.OrNop(l)
	l.Info("starting api server", zap.Int("port", port))
	return NewRouter(cfg, l).Run(fmt.Sprintf(":%d", port))
}

func (s *server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "notetrack",
	})
}

func (s *server) transcribe(c *gin.Context) {
	cfg, err := s.requestConfig(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	sig, err := pcm.Decode(bytes.NewReader(data))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, apperr.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		s.log.Warn("rejected upload", zap.String("file", header.Filename), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	cfg.InFileName = header.Filename
	det := onset.FromConfig(cfg, s.log)
	res := pipeline.Analyze(sig, det, pipeline.FromConfig(cfg, s.log)...)
	c.JSON(http.StatusOK, newTranscription(cfg, sig, res))
}

// requestConfig copies the server configuration and applies the query
// overrides.
func (s *server) requestConfig(c *gin.Context) (*config.Config, error) {
	cfg := *s.cfg
	cfg.Method = c.DefaultQuery("method", cfg.Method)
	if v, ok := c.GetQuery("accept_ratio"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("accept_ratio: %w", err)
		}
		cfg.AcceptRatio = r
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newTranscription(cfg *config.Config, sig *pcm.Signal, res *pipeline.Result) *Transcription {
	t := &Transcription{
		FileName:    cfg.InFileName,
		SampleRate:  sig.Rate,
		NumChannels: sig.Channels,
		Method:      cfg.Method,
		AcceptRatio: cfg.AcceptRatio,
		RawOnsets:   append([]float64{}, res.RawOnsets...),
		Onsets:      append([]float64{}, res.Accepted...),
		Notes:       make([]Note, len(res.Estimates)),
		Line:        res.Line(),
	}
	for i, e := range res.Estimates {
		t.Notes[i] = Note{
			Index:      e.Index,
			Start:      e.Start,
			End:        e.End,
			Frequency:  e.Frequency,
			PitchClass: e.PitchClass.String(),
		}
	}
	return t
}
