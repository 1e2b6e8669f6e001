package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// DocumentRegistry owns the document list of the case being viewed.
// Its methods are the only write path to that list and each is atomic.
type DocumentRegistry interface {
	// Load fetches the documents of caseID and replaces the list wholesale.
	Load(ctx context.Context, caseID string) error

	// LoadCached replaces the list from the offline snapshot of caseID.
	LoadCached(ctx context.Context, caseID string) error

	// Refresh refetches the current case and returns the extraction
	// status changes it observed.
	Refresh(ctx context.Context) ([]domain.ExtractionChange, error)

	// Add appends a document. Adding an id already present is a no-op.
	Add(doc domain.Document)

	// Remove deletes a document. Removing an absent id is a no-op.
	Remove(documentID string)

	// UpdateStatus applies the supplied fields. Returns domain.ErrNotFound
	// if the document is not in the list.
	UpdateStatus(documentID string, update domain.StatusUpdate) error

	// Get returns a copy of one document.
	Get(documentID string) (*domain.Document, error)

	// Documents returns a copy of the list in insertion order.
	Documents() []domain.Document

	// MainDocuments returns the main documents in insertion order.
	MainDocuments() []domain.Document

	// ExhibitsOf returns the exhibits whose main document is mainDocumentID.
	ExhibitsOf(mainDocumentID string) []domain.Document

	// CaseID returns the case currently loaded, or "".
	CaseID() string
}
