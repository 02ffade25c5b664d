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

package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/testutil"
)

const rate = 22050

func init() {
	gin.SetMode(gin.TestMode)
}

func wavBytes(t *testing.T, samples []int16) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := pcm.WriteFile(path, samples, rate); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func upload(t *testing.T, target, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "song.wav")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	NewRouter(config.Default(), nil).ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := httptest.NewRecorder()
		NewRouter(config.Default(), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "healthy" {
			t.Errorf("GET %s body = %s", path, w.Body.String())
		}
	}
}

func TestTranscribe(t *testing.T) {
	samples := testutil.Concat(
		testutil.Silence(0.5, rate),
		testutil.Pluck(440, 0.6, 1.0, rate),
		testutil.Silence(0.5, rate),
		testutil.Pluck(523.25, 0.6, 1.0, rate),
	)
	w := upload(t, "/api/v1/transcribe", "file", wavBytes(t, samples))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var tr Transcription
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.FileName != "song.wav" || tr.SampleRate != rate || tr.NumChannels != 1 {
		t.Errorf("header = %+v", tr)
	}
	if tr.Method != config.MethodFlux || tr.AcceptRatio != config.DefaultAcceptRatio {
		t.Errorf("parameters = %s, %g", tr.Method, tr.AcceptRatio)
	}
	if len(tr.RawOnsets) == 0 {
		t.Error("no onsets detected")
	}
	if len(tr.Onsets) == 1 {
		t.Errorf("single accepted onset: %v", tr.Onsets)
	}
}

func TestTranscribeErrors(t *testing.T) {
	tone := wavBytes(t, testutil.Sine(440, 0.5, 0.5, rate))
	tests := []struct {
		name   string
		target string
		field  string
		data   []byte
		want   int
	}{
		{"no file", "/api/v1/transcribe", "", nil, http.StatusBadRequest},
		{"wrong field", "/api/v1/transcribe", "audio", tone, http.StatusBadRequest},
		{"not a wave file", "/api/v1/transcribe", "file", []byte("hello, world"), http.StatusBadRequest},
		{"unknown method", "/api/v1/transcribe?method=fft", "file", tone, http.StatusBadRequest},
		{"bad ratio", "/api/v1/transcribe?accept_ratio=x", "file", tone, http.StatusBadRequest},
		{"ratio out of range", "/api/v1/transcribe?accept_ratio=2", "file", tone, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := upload(t, tt.target, tt.field, tt.data); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTranscribeQueryOverrides(t *testing.T) {
	w := upload(t, "/api/v1/transcribe?method=dwt&accept_ratio=0.5", "file",
		wavBytes(t, testutil.Sine(440, 0.5, 1, rate)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var tr Transcription
	if err := json.Unmarshal(w.Body.Bytes(), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.Method != config.MethodDWT || tr.AcceptRatio != 0.5 {
		t.Errorf("parameters = %s, %g", tr.Method, tr.AcceptRatio)
	}
}
