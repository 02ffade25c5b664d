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

// notetrack transcribes a monophonic WAVE recording into a line of pitch
// classes, one per detected note.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goccmack/notetrack/internal/api"
	"github.com/goccmack/notetrack/internal/config"
	"github.com/goccmack/notetrack/internal/logger"
	"github.com/goccmack/notetrack/internal/present"
	"github.com/goccmack/notetrack/internal/prompt"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var noPlay, noPlot, noTrim bool

	root := &cobra.Command{
		Use:   "notetrack [flags] [<WAV file>]",
		Short: "Transcribe the notes of a WAVE recording to pitch classes",
		Long: `notetrack finds the note onsets of a 16-bit PCM WAVE file, keeps the
segments loud enough to hold a note, estimates the pitch of each and prints
the pitch classes on one line, e.g. "A C# E".

Without <WAV file> the file name is asked for interactively.

Outputs next to the input file:
    <name>_trimmed.wav   audio between the first and last accepted onset
    <name>_plots.png     amplitude and power spectrum plots
    <name>.notes.json    JSON report (-o to change)`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Play, cfg.Plot, cfg.Trim = !noPlay, !noPlot, !noTrim
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.InFileName = args[0]
			} else if cfg.InFileName, err = prompt.Run(); err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var player present.Player
			if cfg.Play {
				player = present.NewSpeakerPlayer()
			}
			return run(cfg, log, cmd.OutOrStdout(), player)
		},
	}

	f := root.Flags()
	f.Float64Var(&cfg.AcceptRatio, "accept-ratio", cfg.AcceptRatio,
		"Minimum segment loudness as a fraction of the whole file's mean absolute amplitude")
	f.StringVar(&cfg.Method, "method", cfg.Method, "Onset detection method: flux or dwt")
	f.IntVar(&cfg.Hop, "hop", cfg.Hop, "Onset analysis hop in samples")
	f.IntVar(&cfg.FrameSize, "frame", cfg.FrameSize, "Onset analysis frame length in samples")
	f.IntVar(&cfg.PeakSepMs, "sep", cfg.PeakSepMs, "Minimum number of ms between adjacent onsets (dwt)")
	f.BoolVar(&cfg.ExcludeDC, "exclude-dc", false, "Ignore the 0 Hz bin when picking the spectral peak")
	f.BoolVar(&noPlay, "no-play", false, "Do not play the trimmed clip")
	f.BoolVar(&noPlot, "no-plot", false, "Do not write the plot image")
	f.BoolVar(&noTrim, "no-trim", false, "Do not write the trimmed clip")
	f.StringVarP(&cfg.ReportFile, "output", "o", "", "JSON report file. Default <WAV file>.notes.json")
	f.StringVar(&cfg.MIDIFile, "midi", "", "Also write the notes as a standard MIDI file")
	f.BoolVar(&cfg.Progress, "progress", false, "Show a progress bar over the segments")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	root.AddCommand(newServeCmd(cfg))
	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	port := 8080
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the transcription API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return api.StartServer(port, cfg, log)
		},
	}
	cmd.Flags().IntVar(&port, "port", port, "Server port")
	return cmd
}
