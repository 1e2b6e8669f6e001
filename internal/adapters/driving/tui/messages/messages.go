// Package messages defines Bubbletea message types for the TUI.
// Messages carry upload batch events into the Elm architecture loop.
package messages

import (
	"github.com/custodia-labs/citedock/internal/core/domain"
)

// BatchEvent carries one progress or terminal event of a file.
type BatchEvent struct {
	Event domain.BatchEvent
}

// BatchClosed is sent once every file of the batch has finished.
type BatchClosed struct{}

// ErrorOccurred is sent when an action on the batch fails.
type ErrorOccurred struct {
	Err error
}
