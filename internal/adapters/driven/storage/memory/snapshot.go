package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu    sync.RWMutex
	cases map[string][]domain.Document
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		cases: make(map[string][]domain.Document),
	}
}

// SaveDocuments replaces the stored list for a case.
func (s *SnapshotStore) SaveDocuments(_ context.Context, caseID string, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.Document, len(docs))
	copy(stored, docs)
	s.cases[caseID] = stored
	return nil
}

// LoadDocuments returns the stored list for a case.
func (s *SnapshotStore) LoadDocuments(_ context.Context, caseID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.cases[caseID]
	out := make([]domain.Document, len(stored))
	copy(out, stored)
	return out, nil
}
