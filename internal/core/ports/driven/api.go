package driven

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// DocumentAPI is the remote document record service.
// Every failure wraps domain.ErrNetwork, domain.ErrNotFound or
// domain.ErrValidation.
type DocumentAPI interface {
	// CreateDocument registers an uploaded binary as a document of a case.
	CreateDocument(ctx context.Context, req domain.NewDocument) (*domain.Document, error)

	// GetDocument fetches a single document.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments returns every document of a case.
	ListDocuments(ctx context.Context, caseID string) ([]domain.Document, error)

	// DeleteDocument removes a document. Cascading to exhibits and
	// citations is decided by the service.
	DeleteDocument(ctx context.Context, documentID string) error
}

// CitationAPI is the remote citation record service.
type CitationAPI interface {
	// ListCitations returns the citations whose source is documentID,
	// in the order the service returns them.
	ListCitations(ctx context.Context, documentID string) ([]domain.Citation, error)

	// DeleteCitation removes one citation of a document.
	DeleteCitation(ctx context.Context, documentID, citationID string) error
}

// ExtractionAPI requests citation extraction. Progress is observed through
// DocumentAPI, never pushed.
type ExtractionAPI interface {
	// RequestDocumentExtraction queues extraction for one document.
	RequestDocumentExtraction(ctx context.Context, documentID string) error

	// RequestCaseExtraction queues extraction for every main document of a case.
	RequestCaseExtraction(ctx context.Context, caseID string) error
}

// CaseAPI is the remote case record service.
type CaseAPI interface {
	// ListCases returns every case visible to the token.
	ListCases(ctx context.Context) ([]domain.Case, error)

	// CreateCase creates a case.
	CreateCase(ctx context.Context, req domain.NewCase) (*domain.Case, error)

	// UpdateCase changes the title or description of a case.
	UpdateCase(ctx context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error)

	// DeleteCase removes a case.
	DeleteCase(ctx context.Context, caseID string) error
}
