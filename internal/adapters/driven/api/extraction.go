package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ExtractionAPI = (*Client)(nil)

// RequestDocumentExtraction queues citation extraction for one document.
func (c *Client) RequestDocumentExtraction(ctx context.Context, documentID string) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "is required")
	}
	path := fmt.Sprintf("/documents/%s/extract-citations", escape(documentID))
	return c.do(ctx, "extract document citations", http.MethodPost, path, nil, nil)
}

// RequestCaseExtraction queues citation extraction for a whole case.
func (c *Client) RequestCaseExtraction(ctx context.Context, caseID string) error {
	if caseID == "" {
		return domain.NewValidationError("caseId", "is required")
	}
	path := fmt.Sprintf("/cases/%s/extract-citations", escape(caseID))
	return c.do(ctx, "extract case citations", http.MethodPost, path, nil, nil)
}
