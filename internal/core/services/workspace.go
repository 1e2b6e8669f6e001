package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure CaseWorkspace implements the interface.
var _ driving.CaseWorkspace = (*CaseWorkspace)(nil)

// CaseWorkspace ties the registry, uploads, extraction and citations of
// one open case together for front ends.
type CaseWorkspace struct {
	registry   driving.DocumentRegistry
	uploads    driving.UploadCoordinator
	extraction driving.ExtractionTracker
	citations  driving.CitationService
	docsAPI    driven.DocumentAPI
	doneGrace  time.Duration
	now        func() time.Time

	mu     sync.Mutex
	active []activeUpload
	next   int
}

// activeUpload maps a workspace task index to a file of a batch.
type activeUpload struct {
	index int
	batch driving.UploadBatch
	local int
}

// NewCaseWorkspace creates a workspace. Finished uploads stay visible for
// doneGrace before they leave the active set.
func NewCaseWorkspace(
	registry driving.DocumentRegistry,
	uploads driving.UploadCoordinator,
	extraction driving.ExtractionTracker,
	citations driving.CitationService,
	docsAPI driven.DocumentAPI,
	doneGrace time.Duration,
) *CaseWorkspace {
	return &CaseWorkspace{
		registry:   registry,
		uploads:    uploads,
		extraction: extraction,
		citations:  citations,
		docsAPI:    docsAPI,
		doneGrace:  doneGrace,
		now:        time.Now,
	}
}

// Open loads caseID into the registry.
func (w *CaseWorkspace) Open(ctx context.Context, caseID string) error {
	return w.registry.Load(ctx, caseID)
}

// CaseID returns the open case, or "".
func (w *CaseWorkspace) CaseID() string {
	return w.registry.CaseID()
}

// Documents returns the current document list.
func (w *CaseWorkspace) Documents() []domain.Document {
	return w.registry.Documents()
}

// UploadTasks returns the active upload tasks. DONE tasks are dropped once
// their grace period has passed.
func (w *CaseWorkspace) UploadTasks() []domain.UploadTask {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	kept := w.active[:0]
	var out []domain.UploadTask
	for _, a := range w.active {
		task := a.batch.Tasks()[a.local]
		if task.State == domain.UploadDone && now.Sub(task.FinishedAt) >= w.doneGrace {
			continue
		}
		kept = append(kept, a)
		task.Index = a.index
		out = append(out, task)
	}
	w.active = kept
	return out
}

// RequestBatchUpload starts uploading files into the open case.
func (w *CaseWorkspace) RequestBatchUpload(ctx context.Context, req domain.BatchRequest) (driving.UploadBatch, error) {
	caseID := w.registry.CaseID()
	if caseID == "" {
		return nil, fmt.Errorf("no case open: %w", domain.ErrNotFound)
	}
	if req.CaseID == "" {
		req.CaseID = caseID
	}
	if req.CaseID != caseID {
		return nil, domain.NewValidationError("caseId", "does not match the open case")
	}
	if req.Type == domain.DocumentTypeExhibit {
		main, err := w.registry.Get(req.MainDocumentID)
		if err != nil {
			return nil, fmt.Errorf("main document: %w", err)
		}
		if !main.IsMain() {
			return nil, domain.NewValidationError("mainDocumentId", "is not a main document")
		}
	}

	batch, err := w.uploads.StartBatch(ctx, req)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	for i := range req.Files {
		w.active = append(w.active, activeUpload{index: w.next, batch: batch, local: i})
		w.next++
	}
	w.mu.Unlock()
	return batch, nil
}

// CancelUpload aborts the active task at index.
func (w *CaseWorkspace) CancelUpload(index int) error {
	a, ok := w.find(index)
	if !ok {
		return fmt.Errorf("upload task %d: %w", index, domain.ErrNotFound)
	}
	return a.batch.Cancel(a.local)
}

// AcknowledgeUpload removes a finished task from the active set.
func (w *CaseWorkspace) AcknowledgeUpload(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, a := range w.active {
		if a.index != index {
			continue
		}
		if !a.batch.Tasks()[a.local].State.IsTerminal() {
			return domain.NewValidationError("index", "task is still running")
		}
		w.active = append(w.active[:i], w.active[i+1:]...)
		return nil
	}
	return fmt.Errorf("upload task %d: %w", index, domain.ErrNotFound)
}

// RequestExtraction queues extraction. A case target without an id uses
// the open case.
func (w *CaseWorkspace) RequestExtraction(ctx context.Context, target domain.ExtractionTarget) error {
	if target.Kind == domain.TargetCase && target.ID == "" {
		target.ID = w.registry.CaseID()
	}
	return w.extraction.RequestExtraction(ctx, target)
}

// DeleteDocument deletes remotely first and removes locally only once the
// service confirms. Exhibits of a deleted main document are not touched.
func (w *CaseWorkspace) DeleteDocument(ctx context.Context, documentID string) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "is required")
	}
	if w.docsAPI == nil {
		return fmt.Errorf("document service: %w", domain.ErrNotConfigured)
	}
	if err := w.docsAPI.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	w.registry.Remove(documentID)
	if w.citations != nil {
		w.citations.Invalidate(documentID)
	}
	logger.Info("workspace: deleted document %s", documentID)
	return nil
}

// DeleteCitation deletes one citation of a document.
func (w *CaseWorkspace) DeleteCitation(ctx context.Context, documentID, citationID string) error {
	return w.citations.DeleteCitation(ctx, documentID, citationID)
}

// CitationsByExhibit returns the exhibit grouping of documentID's citations.
func (w *CaseWorkspace) CitationsByExhibit(ctx context.Context, documentID string) (*domain.CitationGraph, error) {
	return w.citations.Graph(ctx, documentID)
}

func (w *CaseWorkspace) find(index int) (activeUpload, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.active {
		if a.index == index {
			return a, true
		}
	}
	return activeUpload{}, false
}
