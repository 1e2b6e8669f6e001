package driven

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// UploadJournal persists per-file batch progress so an interrupted batch
// can be resumed without registering a file twice.
type UploadJournal interface {
	// Record creates or replaces the entry for (BatchID, Index).
	Record(ctx context.Context, entry *domain.JournalEntry) error

	// Get returns the entry for a file of a batch.
	// Returns nil and no error if the entry does not exist.
	Get(ctx context.Context, batchID string, index int) (*domain.JournalEntry, error)

	// List returns every entry of a batch ordered by index.
	List(ctx context.Context, batchID string) ([]domain.JournalEntry, error)

	// Delete removes every entry of a batch.
	Delete(ctx context.Context, batchID string) error
}

// SnapshotStore keeps the last known document list of each case for
// offline reads.
type SnapshotStore interface {
	// SaveDocuments replaces the stored list for a case.
	SaveDocuments(ctx context.Context, caseID string, docs []domain.Document) error

	// LoadDocuments returns the stored list for a case.
	// Returns an empty list and no error if nothing was saved.
	LoadDocuments(ctx context.Context, caseID string) ([]domain.Document, error)
}
