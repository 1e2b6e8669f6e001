package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// CitationService reads and deletes citations of a source document.
type CitationService interface {
	// Citations returns the citations whose source is documentID.
	Citations(ctx context.Context, documentID string) ([]domain.Citation, error)

	// Graph returns the exhibit grouping of documentID's citations.
	Graph(ctx context.Context, documentID string) (*domain.CitationGraph, error)

	// DeleteCitation removes one citation and drops it from the cached list.
	DeleteCitation(ctx context.Context, documentID, citationID string) error

	// Invalidate drops the cached citations of documentID.
	Invalidate(documentID string)
}
