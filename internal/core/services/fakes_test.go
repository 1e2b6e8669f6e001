package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// fakeBackend implements the document, citation, extraction and media
// ports over in-memory maps.
type fakeBackend struct {
	mu        sync.Mutex
	docs      map[string][]domain.Document
	citations map[string][]domain.Citation
	nextID    int
	nextMedia int

	createErr     error
	deleteErr     error
	listErr       error
	extractErr    error
	mediaErr      error
	getErr        error
	createCalls   int
	extractCalls  []domain.ExtractionTarget
	deletedCites  []string
	deletedDocs   []string
	failCreateFor map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		docs:          make(map[string][]domain.Document),
		citations:     make(map[string][]domain.Citation),
		failCreateFor: make(map[string]error),
	}
}

func (f *fakeBackend) seed(caseID string, docs ...domain.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		d.CaseID = caseID
		f.docs[caseID] = append(f.docs[caseID], d)
	}
}

func (f *fakeBackend) setExtraction(documentID string, status domain.ExtractionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for caseID, docs := range f.docs {
		for i := range docs {
			if docs[i].ID == documentID {
				f.docs[caseID][i].CitationsExtractionStatus = status
			}
		}
	}
}

func (f *fakeBackend) RequestUploadTarget(_ context.Context, file domain.FileRef) (*domain.UploadTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	f.nextMedia++
	id := fmt.Sprintf("media-%d", f.nextMedia)
	return &domain.UploadTarget{
		MediaID:   id,
		UploadURL: "https://upload.test/" + id,
		MediaURL:  "https://media.test/" + file.Name,
	}, nil
}

func (f *fakeBackend) CreateDocument(_ context.Context, req domain.NewDocument) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if err := f.failCreateFor[req.Title]; err != nil {
		return nil, err
	}
	f.nextID++
	doc := domain.Document{
		ID:               fmt.Sprintf("doc-%d", f.nextID),
		CaseID:           req.CaseID,
		Title:            req.Title,
		MediaID:          req.MediaID,
		Type:             req.Type,
		MainDocumentID:   req.MainDocumentID,
		ProcessingStatus: domain.ProcessingPending,
	}
	f.docs[req.CaseID] = append(f.docs[req.CaseID], doc)
	return &doc, nil
}

func (f *fakeBackend) GetDocument(_ context.Context, documentID string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, docs := range f.docs {
		for _, d := range docs {
			if d.ID == documentID {
				return &d, nil
			}
		}
	}
	return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
}

func (f *fakeBackend) ListDocuments(_ context.Context, caseID string) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Document, len(f.docs[caseID]))
	copy(out, f.docs[caseID])
	return out, nil
}

func (f *fakeBackend) DeleteDocument(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedDocs = append(f.deletedDocs, documentID)
	for caseID, docs := range f.docs {
		for i := range docs {
			if docs[i].ID == documentID {
				f.docs[caseID] = append(docs[:i], docs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeBackend) ListCitations(_ context.Context, documentID string) ([]domain.Citation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Citation, len(f.citations[documentID]))
	copy(out, f.citations[documentID])
	return out, nil
}

func (f *fakeBackend) DeleteCitation(_ context.Context, documentID, citationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedCites = append(f.deletedCites, citationID)
	list := f.citations[documentID]
	for i := range list {
		if list[i].ID == citationID {
			f.citations[documentID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) RequestDocumentExtraction(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	f.extractCalls = append(f.extractCalls, domain.DocumentTarget(documentID))
	return nil
}

func (f *fakeBackend) RequestCaseExtraction(_ context.Context, caseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractErr != nil {
		return f.extractErr
	}
	f.extractCalls = append(f.extractCalls, domain.CaseTarget(caseID))
	return nil
}

// transferScript describes how fakeTransport handles one file.
type transferScript struct {
	// failAt sends progress up to this percentage and then fails.
	failAt int

	// block waits for cancellation after sending progress up to blockAt.
	block   bool
	blockAt int

	// started is closed once the transfer has reached blockAt.
	started chan struct{}
}

// fakeTransport reports progress in 10% steps per file name.
type fakeTransport struct {
	mu      sync.Mutex
	scripts map[string]*transferScript
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{scripts: make(map[string]*transferScript)}
}

func (t *fakeTransport) script(name string, s *transferScript) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripts[name] = s
}

func (t *fakeTransport) Transfer(
	ctx context.Context,
	file domain.FileRef,
	_ *domain.UploadTarget,
) (<-chan domain.TransferProgress, <-chan error) {
	progressCh := make(chan domain.TransferProgress)
	errCh := make(chan error, 1)

	t.mu.Lock()
	s := t.scripts[file.Name]
	t.mu.Unlock()

	go func() {
		defer close(errCh)
		total := int64(100)
		send := func(pct int) bool {
			select {
			case <-ctx.Done():
				return false
			case progressCh <- domain.TransferProgress{BytesSent: int64(pct), BytesTotal: total}:
				return true
			}
		}

		for pct := 10; pct <= 100; pct += 10 {
			if s != nil && s.failAt > 0 && pct > s.failAt {
				close(progressCh)
				errCh <- fmt.Errorf("connection reset: %w", domain.ErrNetwork)
				return
			}
			if s != nil && s.block && pct > s.blockAt {
				if s.started != nil {
					close(s.started)
				}
				<-ctx.Done()
				close(progressCh)
				errCh <- fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
				return
			}
			if !send(pct) {
				close(progressCh)
				errCh <- fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
				return
			}
		}
		close(progressCh)
		errCh <- nil
	}()

	return progressCh, errCh
}

// fakeMetrics counts calls.
type fakeMetrics struct {
	mu          sync.Mutex
	uploads     map[domain.UploadState]int
	extractions map[string]int
	requests    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		uploads:     make(map[domain.UploadState]int),
		extractions: make(map[string]int),
	}
}

func (m *fakeMetrics) UploadFinished(state domain.UploadState, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[state]++
}

func (m *fakeMetrics) ExtractionRequested(_ domain.TargetKind, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions[result]++
}

func (m *fakeMetrics) APIRequest(string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
}

// rejectingInspector fails every file whose name is listed.
type rejectingInspector struct {
	names map[string]bool
}

func (r rejectingInspector) Inspect(_ context.Context, file domain.FileRef) error {
	if r.names[file.Name] {
		return domain.NewValidationError("file", "is not a PDF")
	}
	return nil
}

var errBoom = errors.New("boom")

// fakeCaseAPI implements driven.CaseAPI over a slice.
type fakeCaseAPI struct {
	cases   []domain.Case
	nextID  int
	err     error
	deleted []string
	updates []domain.CaseUpdate
}

func (f *fakeCaseAPI) ListCases(context.Context) ([]domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Case, len(f.cases))
	copy(out, f.cases)
	return out, nil
}

func (f *fakeCaseAPI) CreateCase(_ context.Context, req domain.NewCase) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	cs := domain.Case{ID: fmt.Sprintf("case-%d", f.nextID), Title: req.Title, Description: req.Description}
	f.cases = append(f.cases, cs)
	return &cs, nil
}

func (f *fakeCaseAPI) UpdateCase(_ context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, update)
	for i := range f.cases {
		if f.cases[i].ID != caseID {
			continue
		}
		if update.Title != nil {
			f.cases[i].Title = *update.Title
		}
		if update.Description != nil {
			f.cases[i].Description = *update.Description
		}
		cs := f.cases[i]
		return &cs, nil
	}
	return nil, fmt.Errorf("case %s: %w", caseID, domain.ErrNotFound)
}

func (f *fakeCaseAPI) DeleteCase(_ context.Context, caseID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, caseID)
	return nil
}
