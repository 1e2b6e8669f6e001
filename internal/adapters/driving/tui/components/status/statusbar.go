// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/styles"
)

// State represents the batch state for display.
type State string

const (
	StateUploading State = "uploading"
	StateFinished  State = "finished"
	StateError     State = "error"
)

// Counts summarises the files of a batch.
type Counts struct {
	Total     int
	Done      int
	Failed    int
	Cancelled int
}

// Finished returns the number of files in a terminal state.
func (c Counts) Finished() int {
	return c.Done + c.Failed + c.Cancelled
}

// Bar displays batch status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	counts  Counts
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateUploading,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateFinished:
		summary := fmt.Sprintf("Finished: %d done", s.counts.Done)
		if s.counts.Failed > 0 {
			summary += fmt.Sprintf(", %d failed", s.counts.Failed)
		}
		if s.counts.Cancelled > 0 {
			summary += fmt.Sprintf(", %d cancelled", s.counts.Cancelled)
		}
		return s.styles.Normal.Render(summary)
	default:
		return s.styles.Muted.Render(fmt.Sprintf("Uploading %d/%d", s.counts.Finished(), s.counts.Total))
	}
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateFinished {
		bindings = s.keymap.FinishedHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCounts sets the file counts.
func (s *Bar) SetCounts(c Counts) {
	s.counts = c
}

// Counts returns the file counts.
func (s *Bar) Counts() Counts {
	return s.counts
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
