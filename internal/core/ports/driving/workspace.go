package driving

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// CaseWorkspace is the command set surfaced to front ends for one case.
type CaseWorkspace interface {
	// Open loads caseID into the registry.
	Open(ctx context.Context, caseID string) error

	// CaseID returns the open case, or "".
	CaseID() string

	// Documents returns the current document list.
	Documents() []domain.Document

	// UploadTasks returns the active upload tasks in submission order.
	UploadTasks() []domain.UploadTask

	// RequestBatchUpload starts uploading files into the open case.
	RequestBatchUpload(ctx context.Context, req domain.BatchRequest) (UploadBatch, error)

	// CancelUpload aborts the active task at index.
	CancelUpload(index int) error

	// AcknowledgeUpload removes a CANCELLED or FAILED task from the active set.
	AcknowledgeUpload(index int) error

	// RequestExtraction queues extraction for a document or the open case.
	RequestExtraction(ctx context.Context, target domain.ExtractionTarget) error

	// DeleteDocument deletes remotely and then removes the document locally.
	DeleteDocument(ctx context.Context, documentID string) error

	// DeleteCitation deletes one citation of a document.
	DeleteCitation(ctx context.Context, documentID, citationID string) error

	// CitationsByExhibit returns the exhibit grouping of documentID's citations.
	CitationsByExhibit(ctx context.Context, documentID string) (*domain.CitationGraph, error)
}
