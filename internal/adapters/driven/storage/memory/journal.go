package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Ensure UploadJournal implements the interface.
var _ driven.UploadJournal = (*UploadJournal)(nil)

// UploadJournal is an in-memory implementation of driven.UploadJournal.
type UploadJournal struct {
	mu      sync.RWMutex
	batches map[string]map[int]domain.JournalEntry
}

// NewUploadJournal creates a new in-memory upload journal.
func NewUploadJournal() *UploadJournal {
	return &UploadJournal{
		batches: make(map[string]map[int]domain.JournalEntry),
	}
}

// Record creates or replaces the entry for (BatchID, Index).
func (j *UploadJournal) Record(_ context.Context, entry *domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	batch, ok := j.batches[entry.BatchID]
	if !ok {
		batch = make(map[int]domain.JournalEntry)
		j.batches[entry.BatchID] = batch
	}
	batch[entry.Index] = *entry
	return nil
}

// Get returns the entry for a file of a batch, or nil.
func (j *UploadJournal) Get(_ context.Context, batchID string, index int) (*domain.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	entry, ok := j.batches[batchID][index]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// List returns every entry of a batch ordered by index.
func (j *UploadJournal) List(_ context.Context, batchID string) ([]domain.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	batch := j.batches[batchID]
	out := make([]domain.JournalEntry, 0, len(batch))
	for _, e := range batch {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out, nil
}

// Delete removes every entry of a batch.
func (j *UploadJournal) Delete(_ context.Context, batchID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.batches, batchID)
	return nil
}
