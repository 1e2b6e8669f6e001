package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CaseAPI = (*Client)(nil)

// ListCases returns every case visible to the token.
func (c *Client) ListCases(ctx context.Context) ([]domain.Case, error) {
	var page listEnvelope[caseDTO]
	if err := c.do(ctx, "list cases", http.MethodGet, "/cases", nil, &page); err != nil {
		return nil, err
	}

	cases := make([]domain.Case, 0, len(page.Items))
	for i := range page.Items {
		cs, err := page.Items[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("list cases: item %d: %w", i, err)
		}
		cases = append(cases, *cs)
	}
	return cases, nil
}

// CreateCase creates a case.
func (c *Client) CreateCase(ctx context.Context, req domain.NewCase) (*domain.Case, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := caseInputDTO{Title: &req.Title, Description: &req.Description}
	var dto caseDTO
	if err := c.do(ctx, "create case", http.MethodPost, "/cases", body, &dto); err != nil {
		return nil, err
	}
	cs, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return cs, nil
}

// UpdateCase sends only the fields set in update.
func (c *Client) UpdateCase(ctx context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error) {
	if caseID == "" {
		return nil, domain.NewValidationError("caseId", "is required")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	body := caseInputDTO{Title: update.Title, Description: update.Description}
	var dto caseDTO
	if err := c.do(ctx, "update case", http.MethodPatch, "/cases/"+escape(caseID), body, &dto); err != nil {
		return nil, err
	}
	cs, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("update case %s: %w", caseID, err)
	}
	return cs, nil
}

// DeleteCase removes a case.
func (c *Client) DeleteCase(ctx context.Context, caseID string) error {
	if caseID == "" {
		return domain.NewValidationError("caseId", "is required")
	}
	return c.do(ctx, "delete case", http.MethodDelete, "/cases/"+escape(caseID), nil, nil)
}
