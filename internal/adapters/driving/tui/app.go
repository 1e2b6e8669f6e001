// Package tui provides the interactive upload progress view for citedock.
// It is a driving adapter that renders the events of one upload batch.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/views/uploads"
	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

// UploadApp shows the progress of one upload batch following the Elm
// architecture. It implements tea.Model for use with Bubbletea.
type UploadApp struct {
	batch driving.UploadBatch

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	list *uploads.View
	bar  *status.Bar

	// closed is set once the batch's event stream has ended.
	closed   bool
	showHelp bool
}

// Ensure UploadApp implements tea.Model.
var _ tea.Model = (*UploadApp)(nil)

// NewUploadApp creates the view for batch. files are the batch's files in
// index order.
func NewUploadApp(batch driving.UploadBatch, files []domain.FileRef) (*UploadApp, error) {
	if batch == nil {
		return nil, ErrMissingBatch
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	app := &UploadApp{
		batch:  batch,
		styles: s,
		keymap: km,
		help:   help.New(),
		list:   uploads.NewView(s, files),
		bar:    status.NewBar(s, km),
	}
	app.bar.SetCounts(app.list.Counts())
	return app, nil
}

// Init starts listening for batch events.
func (a *UploadApp) Init() tea.Cmd {
	return waitForEvent(a.batch.Events())
}

// Update handles messages.
func (a *UploadApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.list.SetWidth(msg.Width)
		a.bar.SetWidth(msg.Width)
		a.help.Width = msg.Width
		return a, nil

	case messages.BatchEvent:
		a.list.Apply(msg.Event)
		a.bar.SetCounts(a.list.Counts())
		return a, waitForEvent(a.batch.Events())

	case messages.BatchClosed:
		a.closed = true
		a.bar.SetState(status.StateFinished)
		a.bar.SetCounts(a.list.Counts())
		return a, nil

	case messages.ErrorOccurred:
		a.bar.SetState(status.StateError)
		a.bar.SetMessage(msg.Err.Error())
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *UploadApp) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		if !a.closed {
			a.batch.CancelAll()
		}
		return a, tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
	case key.Matches(msg, a.keymap.Up):
		a.list.MoveUp()
	case key.Matches(msg, a.keymap.Down):
		a.list.MoveDown()
	case key.Matches(msg, a.keymap.Cancel):
		return a, a.cancel(a.list.Selected())
	case key.Matches(msg, a.keymap.CancelAll):
		if !a.closed {
			a.batch.CancelAll()
		}
	}
	return a, nil
}

// cancel aborts one file; finished files are left alone.
func (a *UploadApp) cancel(index int) tea.Cmd {
	if a.list.State(index).IsTerminal() {
		return nil
	}
	batch := a.batch
	return func() tea.Msg {
		if err := batch.Cancel(index); err != nil {
			return messages.ErrorOccurred{Err: fmt.Errorf("cancel file %d: %w", index+1, err)}
		}
		return nil
	}
}

// View renders the application.
func (a *UploadApp) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("citedock upload"))
	b.WriteString(a.styles.Muted.Render("  batch " + a.batch.ID()))
	b.WriteString("\n\n")
	b.WriteString(a.list.View())
	b.WriteString("\n")

	if a.showHelp {
		b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
		b.WriteString("\n\n")
	}

	b.WriteString(a.bar.View())
	return b.String()
}

// Closed returns true once every file has finished.
func (a *UploadApp) Closed() bool {
	return a.closed
}

// waitForEvent reads the next event; a closed channel ends the batch.
func waitForEvent(events <-chan domain.BatchEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.BatchClosed{}
		}
		return messages.BatchEvent{Event: ev}
	}
}
