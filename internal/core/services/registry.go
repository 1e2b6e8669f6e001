package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure DocumentRegistry implements the interface.
var _ driving.DocumentRegistry = (*DocumentRegistry)(nil)

// DocumentRegistry holds the document list of one case.
// All mutations take the write lock so concurrent upload completions
// are never lost.
type DocumentRegistry struct {
	docsAPI   driven.DocumentAPI
	snapshots driven.SnapshotStore

	mu     sync.RWMutex
	caseID string
	docs   []domain.Document

	// seq increments on every Add; addedAt records the seq of each added
	// document so a refresh that raced an upload does not drop it.
	seq     uint64
	addedAt map[string]uint64
}

// NewDocumentRegistry creates a registry. snapshots may be nil.
func NewDocumentRegistry(docsAPI driven.DocumentAPI, snapshots driven.SnapshotStore) *DocumentRegistry {
	return &DocumentRegistry{
		docsAPI:   docsAPI,
		snapshots: snapshots,
		addedAt:   make(map[string]uint64),
	}
}

// Load fetches the documents of caseID and replaces the list wholesale.
func (r *DocumentRegistry) Load(ctx context.Context, caseID string) error {
	if caseID == "" {
		return domain.NewValidationError("caseId", "is required")
	}
	if r.docsAPI == nil {
		return fmt.Errorf("document service: %w", domain.ErrNotConfigured)
	}

	docs, err := r.docsAPI.ListDocuments(ctx, caseID)
	if err != nil {
		return fmt.Errorf("load case %s: %w", caseID, err)
	}

	r.mu.Lock()
	r.replaceLocked(caseID, docs)
	snapshot := r.copyLocked()
	r.mu.Unlock()

	logger.Debug("registry: loaded %d documents for case %s", len(snapshot), caseID)
	r.saveSnapshot(ctx, caseID, snapshot)
	return nil
}

// LoadCached replaces the list from the offline snapshot of caseID.
func (r *DocumentRegistry) LoadCached(ctx context.Context, caseID string) error {
	if r.snapshots == nil {
		return fmt.Errorf("snapshot store: %w", domain.ErrNotConfigured)
	}
	docs, err := r.snapshots.LoadDocuments(ctx, caseID)
	if err != nil {
		return fmt.Errorf("load snapshot for case %s: %w", caseID, err)
	}

	r.mu.Lock()
	r.replaceLocked(caseID, docs)
	r.mu.Unlock()

	logger.Debug("registry: loaded %d cached documents for case %s", len(docs), caseID)
	return nil
}

// Refresh refetches the current case and merges it into the list.
// Documents added while the fetch was in flight are kept.
func (r *DocumentRegistry) Refresh(ctx context.Context) ([]domain.ExtractionChange, error) {
	r.mu.RLock()
	caseID := r.caseID
	startSeq := r.seq
	r.mu.RUnlock()

	if caseID == "" {
		return nil, fmt.Errorf("no case loaded: %w", domain.ErrNotFound)
	}
	if r.docsAPI == nil {
		return nil, fmt.Errorf("document service: %w", domain.ErrNotConfigured)
	}

	remote, err := r.docsAPI.ListDocuments(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("refresh case %s: %w", caseID, err)
	}

	r.mu.Lock()
	if r.caseID != caseID {
		// Another case was loaded meanwhile.
		r.mu.Unlock()
		return nil, nil
	}
	before := r.copyLocked()
	r.mergeLocked(remote, startSeq)
	after := r.copyLocked()
	r.mu.Unlock()

	r.saveSnapshot(ctx, caseID, after)
	return domain.DiffExtraction(before, after), nil
}

// Add appends a document. Adding an id already present is a no-op.
func (r *DocumentRegistry) Add(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(doc.ID) >= 0 {
		return
	}
	if doc.CaseID == "" {
		doc.CaseID = r.caseID
	}
	r.seq++
	r.addedAt[doc.ID] = r.seq
	r.docs = append(r.docs, doc)
}

// Remove deletes a document. Removing an absent id is a no-op.
// Exhibits of a removed main document are left in place.
func (r *DocumentRegistry) Remove(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(documentID)
	if i < 0 {
		return
	}
	r.docs = append(r.docs[:i], r.docs[i+1:]...)
	delete(r.addedAt, documentID)
}

// UpdateStatus applies the supplied fields, last write wins.
func (r *DocumentRegistry) UpdateStatus(documentID string, update domain.StatusUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(documentID)
	if i < 0 {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	update.Apply(&r.docs[i])
	return nil
}

// Get returns a copy of one document.
func (r *DocumentRegistry) Get(documentID string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(documentID)
	if i < 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	doc := r.docs[i]
	return &doc, nil
}

// Documents returns a copy of the list in insertion order.
func (r *DocumentRegistry) Documents() []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLocked()
}

// MainDocuments returns the main documents in insertion order.
func (r *DocumentRegistry) MainDocuments() []domain.Document {
	return r.filter(func(d *domain.Document) bool {
		return d.IsMain()
	})
}

// ExhibitsOf returns the exhibits whose main document is mainDocumentID.
func (r *DocumentRegistry) ExhibitsOf(mainDocumentID string) []domain.Document {
	return r.filter(func(d *domain.Document) bool {
		return d.IsExhibit() && d.MainDocumentID == mainDocumentID
	})
}

// CaseID returns the case currently loaded, or "".
func (r *DocumentRegistry) CaseID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caseID
}

func (r *DocumentRegistry) filter(keep func(d *domain.Document) bool) []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Document, 0, len(r.docs))
	for i := range r.docs {
		if keep(&r.docs[i]) {
			out = append(out, r.docs[i])
		}
	}
	return out
}

func (r *DocumentRegistry) replaceLocked(caseID string, docs []domain.Document) {
	r.caseID = caseID
	r.docs = make([]domain.Document, 0, len(docs))
	r.addedAt = make(map[string]uint64)
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		if d.CaseID == "" {
			d.CaseID = caseID
		}
		r.docs = append(r.docs, d)
	}
}

// mergeLocked replaces the list with remote, keeping local documents that
// were added after startSeq and are not yet visible remotely.
func (r *DocumentRegistry) mergeLocked(remote []domain.Document, startSeq uint64) {
	inRemote := make(map[string]bool, len(remote))
	for i := range remote {
		inRemote[remote[i].ID] = true
	}

	var pending []domain.Document
	for _, d := range r.docs {
		if !inRemote[d.ID] && r.addedAt[d.ID] > startSeq {
			pending = append(pending, d)
		}
	}

	addedAt := r.addedAt
	r.replaceLocked(r.caseID, remote)
	for _, d := range pending {
		r.docs = append(r.docs, d)
		r.addedAt[d.ID] = addedAt[d.ID]
	}
}

func (r *DocumentRegistry) indexLocked(documentID string) int {
	for i := range r.docs {
		if r.docs[i].ID == documentID {
			return i
		}
	}
	return -1
}

func (r *DocumentRegistry) copyLocked() []domain.Document {
	out := make([]domain.Document, len(r.docs))
	copy(out, r.docs)
	return out
}

func (r *DocumentRegistry) saveSnapshot(ctx context.Context, caseID string, docs []domain.Document) {
	if r.snapshots == nil {
		return
	}
	if err := r.snapshots.SaveDocuments(ctx, caseID, docs); err != nil {
		logger.Warn("registry: failed to save snapshot for case %s: %v", caseID, err)
	}
}
