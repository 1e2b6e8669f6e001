package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/citedock/internal/adapters/driving/watch"
	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

func intPtr(v int) *int { return &v }

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			ID: "main-1", CaseID: "case-1", Title: "complaint.pdf", Type: domain.DocumentTypeMain,
			ProcessingStatus: domain.ProcessingReady, CitationsExtractionStatus: domain.ExtractionDone,
			CitationsCount: 2, CreatedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		},
		{ID: "ex-a", CaseID: "case-1", Title: "exhibit-a.pdf", Type: domain.DocumentTypeExhibit, MainDocumentID: "main-1"},
		{ID: "ex-z", CaseID: "case-1", Title: "stray.pdf", Type: domain.DocumentTypeExhibit, MainDocumentID: "gone"},
	}
}

// mockRegistry is a mock implementation of driving.DocumentRegistry.
type mockRegistry struct {
	caseID  string
	docs    []domain.Document
	loadErr error
	cached  bool
}

var _ driving.DocumentRegistry = (*mockRegistry)(nil)

func (m *mockRegistry) Load(_ context.Context, caseID string) error {
	if m.loadErr != nil {
		return m.loadErr
	}
	m.caseID = caseID
	m.cached = false
	return nil
}

func (m *mockRegistry) LoadCached(_ context.Context, caseID string) error {
	m.caseID = caseID
	m.cached = true
	return nil
}

func (m *mockRegistry) Refresh(context.Context) ([]domain.ExtractionChange, error) { return nil, nil }

func (m *mockRegistry) Add(doc domain.Document) { m.docs = append(m.docs, doc) }

func (m *mockRegistry) Remove(documentID string) {
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return
		}
	}
}

func (m *mockRegistry) UpdateStatus(string, domain.StatusUpdate) error { return nil }

func (m *mockRegistry) Get(documentID string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistry) Documents() []domain.Document { return m.docs }

func (m *mockRegistry) MainDocuments() []domain.Document {
	var out []domain.Document
	for _, d := range m.docs {
		if d.IsMain() {
			out = append(out, d)
		}
	}
	return out
}

func (m *mockRegistry) ExhibitsOf(mainDocumentID string) []domain.Document {
	var out []domain.Document
	for _, d := range m.docs {
		if d.IsExhibit() && d.MainDocumentID == mainDocumentID {
			out = append(out, d)
		}
	}
	return out
}

func (m *mockRegistry) CaseID() string { return m.caseID }

// mockBatch finishes with the tasks it was given.
type mockBatch struct {
	events chan domain.BatchEvent
	tasks  []domain.UploadTask
}

func (m *mockBatch) ID() string { return "batch-1" }

func (m *mockBatch) Events() <-chan domain.BatchEvent { return m.events }

func (m *mockBatch) Cancel(int) error { return nil }

func (m *mockBatch) CancelAll() {}

func (m *mockBatch) Wait() []domain.UploadTask { return m.tasks }

func (m *mockBatch) Tasks() []domain.UploadTask { return m.tasks }

// mockWorkspace is a mock implementation of driving.CaseWorkspace backed
// by a mockRegistry.
type mockWorkspace struct {
	registry *mockRegistry

	graph       *domain.CitationGraph
	extractErr  error
	deleteErr   error
	uploadErr   error
	failUpload  map[string]error
	targets     []domain.ExtractionTarget
	deletedDocs []string
	deletedCits [][2]string
	requests    []domain.BatchRequest
}

var _ driving.CaseWorkspace = (*mockWorkspace)(nil)

func (m *mockWorkspace) Open(ctx context.Context, caseID string) error {
	return m.registry.Load(ctx, caseID)
}

func (m *mockWorkspace) CaseID() string { return m.registry.CaseID() }

func (m *mockWorkspace) Documents() []domain.Document { return m.registry.Documents() }

func (m *mockWorkspace) UploadTasks() []domain.UploadTask { return nil }

func (m *mockWorkspace) RequestBatchUpload(_ context.Context, req domain.BatchRequest) (driving.UploadBatch, error) {
	m.requests = append(m.requests, req)
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}

	events := make(chan domain.BatchEvent, len(req.Files)*2)
	tasks := make([]domain.UploadTask, len(req.Files))
	for i, f := range req.Files {
		tasks[i] = domain.UploadTask{Index: i, File: f}
		events <- domain.BatchEvent{Index: i, Kind: domain.EventProgress, Percent: 50}
		if err := m.failUpload[f.Name]; err != nil {
			tasks[i].State = domain.UploadFailed
			tasks[i].Err = err
			events <- domain.BatchEvent{Index: i, Kind: domain.EventFailed, Err: err}
			continue
		}
		doc := &domain.Document{ID: "doc-" + f.Name, Title: f.Name, Type: req.Type}
		tasks[i].State = domain.UploadDone
		tasks[i].ProgressPercent = 100
		tasks[i].Document = doc
		events <- domain.BatchEvent{Index: i, Kind: domain.EventCompleted, Percent: 100, Document: doc}
	}
	close(events)
	return &mockBatch{events: events, tasks: tasks}, nil
}

func (m *mockWorkspace) CancelUpload(int) error { return nil }

func (m *mockWorkspace) AcknowledgeUpload(int) error { return nil }

func (m *mockWorkspace) RequestExtraction(_ context.Context, target domain.ExtractionTarget) error {
	m.targets = append(m.targets, target)
	return m.extractErr
}

func (m *mockWorkspace) DeleteDocument(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedDocs = append(m.deletedDocs, documentID)
	m.registry.Remove(documentID)
	return nil
}

func (m *mockWorkspace) DeleteCitation(_ context.Context, documentID, citationID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedCits = append(m.deletedCits, [2]string{documentID, citationID})
	return nil
}

func (m *mockWorkspace) CitationsByExhibit(context.Context, string) (*domain.CitationGraph, error) {
	if m.graph == nil {
		return domain.BuildCitationGraph(nil), nil
	}
	return m.graph, nil
}

// mockTracker is a mock implementation of driving.ExtractionTracker.
type mockTracker struct {
	status  domain.ExtractionStatus
	err     error
	waited  []domain.ExtractionTarget
	queried []domain.ExtractionTarget
}

var _ driving.ExtractionTracker = (*mockTracker)(nil)

func (m *mockTracker) RequestExtraction(context.Context, domain.ExtractionTarget) error { return nil }

func (m *mockTracker) Status(_ context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	m.queried = append(m.queried, target)
	return m.status, m.err
}

func (m *mockTracker) WaitForCompletion(_ context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	m.waited = append(m.waited, target)
	return m.status, m.err
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	settings domain.AppSettings
	values   map[string]string
	setErr   error
}

var _ driving.SettingsService = (*mockSettings)(nil)

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	if key == "api.token" {
		m.settings.API.Token = value
	}
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"api.base_url", "api.token", "upload.concurrency"}
}

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettings) Validate() error {
	if m.settings.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout_seconds: must be positive")
	}
	return nil
}

// mockCases is a mock implementation of driving.CaseService.
type mockCases struct {
	cases   []domain.Case
	err     error
	created []domain.NewCase
	updates []domain.CaseUpdate
	deleted []string
}

var _ driving.CaseService = (*mockCases)(nil)

func (m *mockCases) List(context.Context) ([]domain.Case, error) {
	return m.cases, m.err
}

func (m *mockCases) Create(_ context.Context, req domain.NewCase) (*domain.Case, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.created = append(m.created, req)
	return &domain.Case{ID: "case-new", Title: req.Title, Description: req.Description}, nil
}

func (m *mockCases) Update(_ context.Context, caseID string, update domain.CaseUpdate) (*domain.Case, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updates = append(m.updates, update)
	cs := &domain.Case{ID: caseID, Title: "Unchanged"}
	if update.Title != nil {
		cs.Title = *update.Title
	}
	return cs, nil
}

func (m *mockCases) Delete(_ context.Context, caseID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, caseID)
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	registry  *mockRegistry
	workspace *mockWorkspace
	tracker   *mockTracker
	settings  *mockSettings
	cases     *mockCases
}

// setupTestServices installs mock services and case-1 as the current case.
// The returned cleanup restores the previous services and flags.
func setupTestServices() (*testServices, func()) {
	prev := &Services{
		Workspace:  workspace,
		Cases:      caseService,
		Registry:   registry,
		Extraction: extractionTracker,
		Poller:     statusPoller,
		Settings:   settingsService,
		Metrics:    metricsHandler,
	}
	prevCase := caseFlag

	reg := &mockRegistry{docs: testDocuments()}
	ts := &testServices{
		registry:  reg,
		workspace: &mockWorkspace{registry: reg},
		tracker:   &mockTracker{status: domain.ExtractionDone},
		settings:  &mockSettings{settings: domain.DefaultAppSettings()},
		cases:     &mockCases{},
	}
	SetServices(&Services{
		Workspace:  ts.workspace,
		Cases:      ts.cases,
		Registry:   ts.registry,
		Extraction: ts.tracker,
		Settings:   ts.settings,
	})
	caseFlag = "case-1"

	return ts, func() {
		SetServices(prev)
		caseFlag = prevCase
	}
}

// executeCommand runs the root command with args and returns its output.
// Command flags are reset afterwards because cobra keeps them between runs.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	offlineList = false
	extractWait = false
	citationsJSON = false
	uploadType = "main"
	uploadMainDoc = ""
	uploadBatchID = ""
	uploadShowTUI = false
	loginToken = ""
	serveAddr = ""
	watchType = "main"
	watchMainDoc = ""
	watchSettle = watch.DefaultSettle
	caseTitle = ""
	caseDescription = ""
	for _, cmd := range []*cobra.Command{casesCreateCmd, casesUpdateCmd} {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	verboseFlag = false
}
