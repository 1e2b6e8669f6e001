// Package uploads provides the upload progress list for the TUI.
package uploads

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/citedock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citedock/internal/core/domain"
)

const (
	nameWidth     = 28
	minBarWidth   = 10
	maxBarWidth   = 40
	rowDecoration = nameWidth + 24
)

// row is the display state of one file.
type row struct {
	name       string
	percent    int
	state      domain.UploadState
	documentID string
	err        error
}

// View is the list of files in a batch with a progress bar per file.
type View struct {
	styles   *styles.Styles
	rows     []row
	bar      progress.Model
	selected int
	width    int
}

// NewView creates a list with one pending row per file.
func NewView(s *styles.Styles, files []domain.FileRef) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	rows := make([]row, len(files))
	for i, f := range files {
		rows[i] = row{name: f.Name, state: domain.UploadPending}
	}
	v := &View{
		styles: s,
		rows:   rows,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	v.SetWidth(80)
	return v
}

// Apply updates the row of ev's file. Events for unknown indices are ignored.
func (v *View) Apply(ev domain.BatchEvent) {
	if ev.Index < 0 || ev.Index >= len(v.rows) {
		return
	}
	r := &v.rows[ev.Index]
	switch ev.Kind {
	case domain.EventProgress:
		r.state = domain.UploadInProgress
		r.percent = ev.Percent
	case domain.EventCompleted:
		r.state = domain.UploadDone
		r.percent = 100
		if ev.Document != nil {
			r.documentID = ev.Document.ID
		}
	case domain.EventFailed:
		r.state = domain.UploadFailed
		r.err = ev.Err
	case domain.EventCancelled:
		r.state = domain.UploadCancelled
		r.err = ev.Err
	}
}

// Counts summarises the rows.
func (v *View) Counts() status.Counts {
	c := status.Counts{Total: len(v.rows)}
	for i := range v.rows {
		switch v.rows[i].state {
		case domain.UploadDone:
			c.Done++
		case domain.UploadFailed:
			c.Failed++
		case domain.UploadCancelled:
			c.Cancelled++
		}
	}
	return c
}

// State returns the displayed state of the file at index.
func (v *View) State(index int) domain.UploadState {
	if index < 0 || index >= len(v.rows) {
		return ""
	}
	return v.rows[index].state
}

// Selected returns the index of the highlighted file.
func (v *View) Selected() int {
	return v.selected
}

// MoveUp moves the selection up.
func (v *View) MoveUp() {
	if v.selected > 0 {
		v.selected--
	}
}

// MoveDown moves the selection down.
func (v *View) MoveDown() {
	if v.selected < len(v.rows)-1 {
		v.selected++
	}
}

// SetWidth fits the progress bars to width.
func (v *View) SetWidth(width int) {
	v.width = width
	w := width - rowDecoration
	if w < minBarWidth {
		w = minBarWidth
	}
	if w > maxBarWidth {
		w = maxBarWidth
	}
	v.bar.Width = w
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	for i := range v.rows {
		r := &v.rows[i]

		cursor := "  "
		name := v.styles.Normal.Render(fmt.Sprintf("%-*s", nameWidth, truncate(r.name, nameWidth)))
		if i == v.selected {
			cursor = v.styles.Selected.Render("> ")
			name = v.styles.Selected.Render(fmt.Sprintf("%-*s", nameWidth, truncate(r.name, nameWidth)))
		}

		b.WriteString(cursor)
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(v.bar.ViewAs(float64(r.percent) / 100))
		b.WriteString(fmt.Sprintf(" %3d%% ", r.percent))
		b.WriteString(v.styles.ForState(r.state).Render(stateLabel(r.state)))
		b.WriteString("\n")

		if detail := v.detail(r); detail != "" {
			b.WriteString("    ")
			b.WriteString(detail)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *View) detail(r *row) string {
	switch {
	case r.state == domain.UploadDone && r.documentID != "":
		return v.styles.Muted.Render("document " + r.documentID)
	case r.state == domain.UploadFailed && r.err != nil:
		return v.styles.Error.Render(r.err.Error())
	default:
		return ""
	}
}

func stateLabel(state domain.UploadState) string {
	switch state {
	case domain.UploadInProgress:
		return "uploading"
	case domain.UploadDone:
		return "done"
	case domain.UploadFailed:
		return "failed"
	case domain.UploadCancelled:
		return "cancelled"
	default:
		return "waiting"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
