package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// ExtractionTracker requests citation extraction and reads its state.
// It never pushes; state is observed by refetching documents.
type ExtractionTracker interface {
	// RequestExtraction queues extraction for target. Returns
	// domain.ErrAlreadyInProgress while the target is QUEUED or RUNNING.
	// On success the target's status becomes QUEUED.
	RequestExtraction(ctx context.Context, target domain.ExtractionTarget) error

	// Status returns the current extraction status of target. Case targets
	// report the aggregate of their main documents.
	Status(ctx context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error)

	// WaitForCompletion polls until target reaches DONE or FAILED, ctx is
	// done or the poll timeout elapses.
	WaitForCompletion(ctx context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error)
}

// StatusPoller refreshes the registry in the background while any
// extraction is in progress.
type StatusPoller interface {
	// Start runs the poll loop. Blocks until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for an in-flight refresh to finish.
	Stop() error
}
