package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure CaseService implements the interface.
var _ driving.CaseService = (*CaseService)(nil)

// CaseService manages cases through the case API.
type CaseService struct {
	caseAPI  driven.CaseAPI
	registry driving.DocumentRegistry
}

// NewCaseService creates a case service. registry may be nil.
func NewCaseService(caseAPI driven.CaseAPI, registry driving.DocumentRegistry) *CaseService {
	return &CaseService{
		caseAPI:  caseAPI,
		registry: registry,
	}
}

// List returns every case in the order the service returns them.
func (s *CaseService) List(ctx context.Context) ([]domain.Case, error) {
	if s.caseAPI == nil {
		return nil, fmt.Errorf("case service: %w", domain.ErrNotConfigured)
	}
	cases, err := s.caseAPI.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}

// Create creates a case.
func (s *CaseService) Create(ctx context.Context, req domain.NewCase) (*domain.Case, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.caseAPI == nil {
		return nil, fmt.Errorf("case service: %w", domain.ErrNotConfigured)
	}
	cs, err := s.caseAPI.CreateCase(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	logger.Info("cases: created %s", cs.ID)
	return cs, nil
}

// Update changes the fields set in update.
func (s *CaseService) Update(ctx context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error) {
	if caseID == "" {
		return nil, domain.NewValidationError("caseId", "is required")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if s.caseAPI == nil {
		return nil, fmt.Errorf("case service: %w", domain.ErrNotConfigured)
	}
	cs, err := s.caseAPI.UpdateCase(ctx, caseID, update)
	if err != nil {
		return nil, fmt.Errorf("update case %s: %w", caseID, err)
	}
	return cs, nil
}

// Delete removes a case, then drops its documents from the registry when
// it is the open case.
func (s *CaseService) Delete(ctx context.Context, caseID string) error {
	if caseID == "" {
		return domain.NewValidationError("caseId", "is required")
	}
	if s.caseAPI == nil {
		return fmt.Errorf("case service: %w", domain.ErrNotConfigured)
	}
	if err := s.caseAPI.DeleteCase(ctx, caseID); err != nil {
		return fmt.Errorf("delete case %s: %w", caseID, err)
	}
	logger.Info("cases: deleted %s", caseID)

	if s.registry != nil && s.registry.CaseID() == caseID {
		for _, doc := range s.registry.Documents() {
			s.registry.Remove(doc.ID)
		}
	}
	return nil
}
