package tui

import "errors"

// ErrMissingBatch is returned when no upload batch is provided.
var ErrMissingBatch = errors.New("tui: upload batch is required")

// ErrNoFiles is returned when the batch has no files to show.
var ErrNoFiles = errors.New("tui: at least one file is required")
