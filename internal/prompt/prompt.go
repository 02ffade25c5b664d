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

// Package prompt asks for the input file when none is given on the command
// line.
package prompt

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the prompt is left without an answer.
var ErrCancelled = errors.New("no file name given")

const Question = "File name (with path): "

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#39FF14"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Model is a single line file name prompt.
type Model struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

// New returns a focused prompt.
func New() Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(Question)
	ti.Placeholder = "song.wav"
	ti.CharLimit = 4096
	ti.Focus()
	return Model{input: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			if m.Value() == "" {
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.input.View() + "\n" + helpStyle.Render("enter: analyse • esc: quit") + "\n"
}

// Value is the trimmed file name typed so far.
func (m Model) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Done reports whether a file name was submitted.
func (m Model) Done() bool { return m.done }

// Cancelled reports whether the prompt was abandoned.
func (m Model) Cancelled() bool { return m.cancelled }

// Run shows the prompt on the terminal and returns the submitted file name.
func Run() (string, error) {
	final, err := tea.NewProgram(New()).Run()
	if err != nil {
		return "", err
	}
	m := final.(Model)
	if !m.Done() {
		return "", ErrCancelled
	}
	return m.Value(), nil
}
