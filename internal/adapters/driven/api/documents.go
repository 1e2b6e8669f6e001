package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.DocumentAPI = (*Client)(nil)

// CreateDocument registers an uploaded binary as a document of a case.
func (c *Client) CreateDocument(ctx context.Context, req domain.NewDocument) (*domain.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := createDocumentDTO{
		Title:          req.Title,
		MediaID:        req.MediaID,
		Type:           string(req.Type),
		MainDocumentID: req.MainDocumentID,
	}
	var dto documentDTO
	path := fmt.Sprintf("/cases/%s/documents", escape(req.CaseID))
	if err := c.do(ctx, "create document", http.MethodPost, path, body, &dto); err != nil {
		return nil, err
	}

	doc, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if doc.CaseID == "" {
		doc.CaseID = req.CaseID
	}
	return doc, nil
}

// GetDocument fetches a single document.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, domain.NewValidationError("documentId", "is required")
	}

	var dto documentDTO
	if err := c.do(ctx, "get document", http.MethodGet, "/documents/"+escape(documentID), nil, &dto); err != nil {
		return nil, err
	}
	doc, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return doc, nil
}

// ListDocuments returns every document of a case.
func (c *Client) ListDocuments(ctx context.Context, caseID string) ([]domain.Document, error) {
	if caseID == "" {
		return nil, domain.NewValidationError("caseId", "is required")
	}

	var page listEnvelope[documentDTO]
	path := fmt.Sprintf("/cases/%s/documents", escape(caseID))
	if err := c.do(ctx, "list documents", http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(page.Items))
	for i := range page.Items {
		doc, err := page.Items[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("list documents: item %d: %w", i, err)
		}
		if doc.CaseID == "" {
			doc.CaseID = caseID
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "is required")
	}
	return c.do(ctx, "delete document", http.MethodDelete, "/documents/"+escape(documentID), nil, nil)
}
