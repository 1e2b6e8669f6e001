package mcp

import (
	"context"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

// mockWorkspace is a mock implementation of driving.CaseWorkspace.
type mockWorkspace struct {
	caseID    string
	opens     []string
	openErr   error
	documents []domain.Document
	graph     *domain.CitationGraph
	graphErr  error
	extractErr error
	targets   []domain.ExtractionTarget
}

var _ driving.CaseWorkspace = (*mockWorkspace)(nil)

func (m *mockWorkspace) Open(_ context.Context, caseID string) error {
	m.opens = append(m.opens, caseID)
	if m.openErr != nil {
		return m.openErr
	}
	m.caseID = caseID
	return nil
}

func (m *mockWorkspace) CaseID() string { return m.caseID }

func (m *mockWorkspace) Documents() []domain.Document { return m.documents }

func (m *mockWorkspace) UploadTasks() []domain.UploadTask { return nil }

func (m *mockWorkspace) RequestBatchUpload(context.Context, domain.BatchRequest) (driving.UploadBatch, error) {
	return nil, domain.ErrNotConfigured
}

func (m *mockWorkspace) CancelUpload(int) error { return nil }

func (m *mockWorkspace) AcknowledgeUpload(int) error { return nil }

func (m *mockWorkspace) RequestExtraction(_ context.Context, target domain.ExtractionTarget) error {
	m.targets = append(m.targets, target)
	return m.extractErr
}

func (m *mockWorkspace) DeleteDocument(context.Context, string) error { return nil }

func (m *mockWorkspace) DeleteCitation(context.Context, string, string) error { return nil }

func (m *mockWorkspace) CitationsByExhibit(context.Context, string) (*domain.CitationGraph, error) {
	return m.graph, m.graphErr
}

// mockTracker is a mock implementation of driving.ExtractionTracker.
type mockTracker struct {
	status domain.ExtractionStatus
	err    error
}

func (m *mockTracker) RequestExtraction(context.Context, domain.ExtractionTarget) error { return nil }

func (m *mockTracker) Status(context.Context, domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	return m.status, m.err
}

func (m *mockTracker) WaitForCompletion(context.Context, domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	return m.status, m.err
}

func intPtr(v int) *int { return &v }
