package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	s := NewSnapshotStore()
	ctx := context.Background()

	docs := []domain.Document{{ID: "d1", Title: "one"}, {ID: "d2", Title: "two"}}
	require.NoError(t, s.SaveDocuments(ctx, "case-1", docs))

	// Mutating the input must not change what was stored.
	docs[0].Title = "changed"

	got, err := s.LoadDocuments(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Title)
}

func TestSnapshotStore_LoadUnknownCase(t *testing.T) {
	s := NewSnapshotStore()

	got, err := s.LoadDocuments(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
