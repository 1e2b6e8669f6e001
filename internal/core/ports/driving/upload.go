package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// UploadCoordinator fans a batch of files out to the media issuer, the
// transport and the document service.
type UploadCoordinator interface {
	// StartBatch validates req and starts uploading every file concurrently.
	// It returns as soon as the batch is running.
	StartBatch(ctx context.Context, req domain.BatchRequest) (UploadBatch, error)
}

// UploadBatch is a running batch. Files are independent: a failure or
// cancellation of one never affects the others.
type UploadBatch interface {
	// ID returns the journal id of the batch.
	ID() string

	// Events streams progress and terminal events for every file. The
	// channel is closed once every file has reached a terminal state.
	Events() <-chan domain.BatchEvent

	// Cancel aborts one file. Cancelling a finished file is a no-op.
	Cancel(index int) error

	// CancelAll aborts every file that has not finished.
	CancelAll()

	// Wait blocks until every file has reached a terminal state and
	// returns the final tasks in index order.
	Wait() []domain.UploadTask

	// Tasks returns a snapshot of the tasks in index order.
	Tasks() []domain.UploadTask
}
