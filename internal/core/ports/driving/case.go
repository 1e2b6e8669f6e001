package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// CaseService manages the cases documents are uploaded into.
type CaseService interface {
	// List returns every case.
	List(ctx context.Context) ([]domain.Case, error)

	// Create creates a case.
	Create(ctx context.Context, req domain.NewCase) (*domain.Case, error)

	// Update changes the fields set in update.
	Update(ctx context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error)

	// Delete removes a case. When it is the open case its documents are
	// dropped from the registry.
	Delete(ctx context.Context, caseID string) error
}
