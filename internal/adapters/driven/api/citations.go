package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CitationAPI = (*Client)(nil)

// ListCitations returns the citations sourced from documentID.
func (c *Client) ListCitations(ctx context.Context, documentID string) ([]domain.Citation, error) {
	if documentID == "" {
		return nil, domain.NewValidationError("documentId", "is required")
	}

	var page listEnvelope[citationDTO]
	path := fmt.Sprintf("/documents/%s/citations", escape(documentID))
	if err := c.do(ctx, "list citations", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}

	citations := make([]domain.Citation, 0, len(page.Items))
	for i := range page.Items {
		citation, err := page.Items[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("list citations: item %d: %w", i, err)
		}
		citations = append(citations, *citation)
	}
	return citations, nil
}

// DeleteCitation removes one citation of a document.
func (c *Client) DeleteCitation(ctx context.Context, documentID, citationID string) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "is required")
	}
	if citationID == "" {
		return domain.NewValidationError("citationId", "is required")
	}
	path := fmt.Sprintf("/documents/%s/citations/%s", escape(documentID), escape(citationID))
	return c.do(ctx, "delete citation", http.MethodDelete, path, nil, nil)
}
