package driven

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// MediaIssuer hands out pre-authorised upload destinations.
// It must be safe to call once per file, concurrently.
type MediaIssuer interface {
	// RequestUploadTarget reserves a media id and returns where to write it.
	RequestUploadTarget(ctx context.Context, file domain.FileRef) (*domain.UploadTarget, error)
}

// UploadTransport streams a file to a pre-authorised destination.
type UploadTransport interface {
	// Transfer starts streaming file to target and returns immediately.
	//
	// The progress channel carries at most one notification per percentage
	// step and is closed when the transfer ends. The error channel then
	// receives exactly one value (nil on success) and is closed. Failures
	// wrap domain.ErrNetwork; aborts via ctx wrap domain.ErrCancelled. No
	// progress is sent once ctx is done.
	Transfer(ctx context.Context, file domain.FileRef, target *domain.UploadTarget) (<-chan domain.TransferProgress, <-chan error)
}

// FileInspector checks a file before any network call is made.
type FileInspector interface {
	// Inspect returns a domain.ValidationError if the file must not be uploaded.
	Inspect(ctx context.Context, file domain.FileRef) error
}
