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

// Package apperr holds the sentinel errors shared by the notetrack packages.
package apperr

import "errors"

// Fatal at load time.
var (
	ErrUnreadableFile    = errors.New("unreadable file")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Recoverable: the pipeline or presenters carry on without the failing part.
var (
	ErrEmptySignal            = errors.New("empty signal")
	ErrInvalidFrequency       = errors.New("invalid frequency")
	ErrPlaybackUnavailable    = errors.New("playback unavailable")
	ErrPlotBackendUnavailable = errors.New("plot backend unavailable")
)

// IsFatal reports whether err must stop a run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnreadableFile) || errors.Is(err, ErrUnsupportedFormat)
}
