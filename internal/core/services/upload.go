package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure UploadCoordinator implements the interface.
var _ driving.UploadCoordinator = (*UploadCoordinator)(nil)

// eventsPerFile bounds the events one file can emit: percent steps 0-100
// plus one terminal event.
const eventsPerFile = 102

// UploadCoordinator uploads batches of files. Each file runs issue,
// transfer, create and register independently of its siblings.
type UploadCoordinator struct {
	media     driven.MediaIssuer
	transport driven.UploadTransport
	docsAPI   driven.DocumentAPI
	registry  driving.DocumentRegistry
	journal   driven.UploadJournal
	inspector driven.FileInspector
	metrics   driven.MetricsRecorder

	concurrency int
}

// NewUploadCoordinator creates a coordinator.
// journal, inspector and metrics are optional and may be nil.
func NewUploadCoordinator(
	media driven.MediaIssuer,
	transport driven.UploadTransport,
	docsAPI driven.DocumentAPI,
	registry driving.DocumentRegistry,
	journal driven.UploadJournal,
	inspector driven.FileInspector,
	metrics driven.MetricsRecorder,
	concurrency int,
) *UploadCoordinator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &UploadCoordinator{
		media:       media,
		transport:   transport,
		docsAPI:     docsAPI,
		registry:    registry,
		journal:     journal,
		inspector:   inspector,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// StartBatch validates req and starts the batch in the background.
func (c *UploadCoordinator) StartBatch(ctx context.Context, req domain.BatchRequest) (driving.UploadBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.media == nil || c.transport == nil || c.docsAPI == nil {
		return nil, fmt.Errorf("upload pipeline: %w", domain.ErrNotConfigured)
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	batchCtx, cancelAll := context.WithCancel(ctx)
	b := &uploadBatch{
		id:        req.BatchID,
		events:    make(chan domain.BatchEvent, len(req.Files)*eventsPerFile),
		done:      make(chan struct{}),
		cancelAll: cancelAll,
		tasks:     make([]domain.UploadTask, len(req.Files)),
		cancels:   make([]context.CancelFunc, len(req.Files)),
		contexts:  make([]context.Context, len(req.Files)),
	}
	for i, f := range req.Files {
		b.tasks[i] = domain.UploadTask{Index: i, File: f, State: domain.UploadPending}
		b.contexts[i], b.cancels[i] = context.WithCancel(batchCtx)
	}

	logger.Info("upload: starting batch %s with %d files for case %s", b.id, len(req.Files), req.CaseID)

	go c.run(b, req)
	return b, nil
}

func (c *UploadCoordinator) run(b *uploadBatch, req domain.BatchRequest) {
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i := range req.Files {
		g.Go(func() error {
			// Per-file failures are reported as events, never returned,
			// so one file cannot stop its siblings.
			c.uploadOne(b.contexts[i], b, req, i)
			return nil
		})
	}
	_ = g.Wait()

	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancelAll()
	c.finishJournal(b)

	close(b.events)
	close(b.done)
	logger.Info("upload: batch %s finished", b.id)
}

func (c *UploadCoordinator) uploadOne(ctx context.Context, b *uploadBatch, req domain.BatchRequest, i int) {
	file := req.Files[i]

	if ctx.Err() != nil {
		b.finish(c.metrics, i, domain.UploadCancelled, nil, cancelledErr(file))
		return
	}

	entry := c.journalEntry(ctx, b.id, i, file)
	if entry != nil && entry.Stage == domain.StageRegistered && entry.DocumentID != "" {
		doc, err := c.docsAPI.GetDocument(ctx, entry.DocumentID)
		switch {
		case err == nil:
			logger.Debug("upload: %s already registered as %s", file.Name, doc.ID)
			c.complete(ctx, b, req, i, doc, entry)
			return
		case errors.Is(err, domain.ErrNotFound):
			// Deleted server-side since the last run; upload it again.
			logger.Debug("upload: %s was registered as %s but is gone", file.Name, entry.DocumentID)
			entry = nil
		default:
			// The entry stays journaled so a later resume can retry the lookup.
			c.fail(ctx, b, i, file, fmt.Errorf("look up registered document: %w", err))
			return
		}
	}

	if c.inspector != nil {
		if err := c.inspector.Inspect(ctx, file); err != nil {
			b.finish(c.metrics, i, domain.UploadFailed, nil, fmt.Errorf("upload %s: %w", file.Name, err))
			return
		}
	}

	b.start(i)

	var target *domain.UploadTarget
	if entry != nil && entry.Stage == domain.StageTransferred && entry.MediaID != "" {
		logger.Debug("upload: %s already transferred as media %s", file.Name, entry.MediaID)
		target = &domain.UploadTarget{MediaID: entry.MediaID, MediaURL: entry.MediaURL}
		b.progress(i, 99, file.Size, file.Size)
	} else {
		var err error
		target, err = c.media.RequestUploadTarget(ctx, file)
		if err != nil {
			c.fail(ctx, b, i, file, fmt.Errorf("request upload target: %w", err))
			return
		}
		entry = c.record(ctx, &domain.JournalEntry{
			BatchID:  b.id,
			Index:    i,
			FileName: file.Name,
			Size:     file.Size,
			MediaID:  target.MediaID,
			MediaURL: target.MediaURL,
			Stage:    domain.StageMediaIssued,
		})

		if err := c.transfer(ctx, b, i, file, target); err != nil {
			c.fail(ctx, b, i, file, err)
			return
		}
		if entry != nil {
			entry.Stage = domain.StageTransferred
			c.record(ctx, entry)
		}
	}

	if ctx.Err() != nil {
		b.finish(c.metrics, i, domain.UploadCancelled, nil, cancelledErr(file))
		return
	}

	doc, err := c.docsAPI.CreateDocument(ctx, domain.NewDocument{
		CaseID:         req.CaseID,
		MediaID:        target.MediaID,
		Title:          file.Name,
		Type:           req.Type,
		MainDocumentID: req.MainDocumentID,
	})
	if err != nil {
		c.fail(ctx, b, i, file, fmt.Errorf("create document: %w", err))
		return
	}

	c.complete(ctx, b, req, i, doc, entry)
}

func (c *UploadCoordinator) transfer(
	ctx context.Context,
	b *uploadBatch,
	i int,
	file domain.FileRef,
	target *domain.UploadTarget,
) error {
	progressCh, errCh := c.transport.Transfer(ctx, file, target)
	for p := range progressCh {
		if ctx.Err() != nil {
			// Drain without emitting once cancelled.
			continue
		}
		b.progress(i, p.Percent(), p.BytesSent, p.BytesTotal)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

func (c *UploadCoordinator) complete(
	ctx context.Context,
	b *uploadBatch,
	req domain.BatchRequest,
	i int,
	doc *domain.Document,
	entry *domain.JournalEntry,
) {
	if doc.CaseID == "" {
		doc.CaseID = req.CaseID
	}
	if c.registry != nil && (c.registry.CaseID() == "" || c.registry.CaseID() == doc.CaseID) {
		c.registry.Add(*doc)
	}
	if entry != nil {
		entry.DocumentID = doc.ID
		entry.Stage = domain.StageRegistered
		c.record(ctx, entry)
	}
	b.progress(i, 100, req.Files[i].Size, req.Files[i].Size)
	b.finish(c.metrics, i, domain.UploadDone, doc, nil)
	logger.Debug("upload: %s registered as %s", req.Files[i].Name, doc.ID)
}

func (c *UploadCoordinator) fail(ctx context.Context, b *uploadBatch, i int, file domain.FileRef, err error) {
	if ctx.Err() != nil || errors.Is(err, domain.ErrCancelled) {
		b.finish(c.metrics, i, domain.UploadCancelled, nil, cancelledErr(file))
		return
	}
	logger.Warn("upload: %s failed: %v", file.Name, err)
	b.finish(c.metrics, i, domain.UploadFailed, nil, fmt.Errorf("upload %s: %w", file.Name, err))
}

func (c *UploadCoordinator) journalEntry(ctx context.Context, batchID string, i int, file domain.FileRef) *domain.JournalEntry {
	if c.journal == nil {
		return nil
	}
	entry, err := c.journal.Get(ctx, batchID, i)
	if err != nil {
		logger.Warn("upload: failed to read journal for %s/%d: %v", batchID, i, err)
		return nil
	}
	if entry == nil || !entry.Matches(file) {
		return nil
	}
	return entry
}

// record writes entry to the journal and returns it, or nil without a journal.
func (c *UploadCoordinator) record(ctx context.Context, entry *domain.JournalEntry) *domain.JournalEntry {
	if c.journal == nil {
		return nil
	}
	entry.UpdatedAt = time.Now()
	// A cancelled file context must not lose the journal write.
	if err := c.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("upload: failed to journal %s/%d: %v", entry.BatchID, entry.Index, err)
	}
	return entry
}

// finishJournal drops the journal of a batch where every file is done.
func (c *UploadCoordinator) finishJournal(b *uploadBatch) {
	if c.journal == nil {
		return
	}
	for _, t := range b.Tasks() {
		if t.State != domain.UploadDone {
			logger.Info("upload: batch %s kept for resume", b.id)
			return
		}
	}
	if err := c.journal.Delete(context.Background(), b.id); err != nil {
		logger.Warn("upload: failed to clear journal for batch %s: %v", b.id, err)
	}
}

func cancelledErr(file domain.FileRef) error {
	return fmt.Errorf("upload %s: %w", file.Name, domain.ErrCancelled)
}

// uploadBatch is the running state of one batch.
type uploadBatch struct {
	id        string
	events    chan domain.BatchEvent
	done      chan struct{}
	cancelAll context.CancelFunc

	mu       sync.Mutex
	tasks    []domain.UploadTask
	cancels  []context.CancelFunc
	contexts []context.Context
}

func (b *uploadBatch) ID() string {
	return b.id
}

func (b *uploadBatch) Events() <-chan domain.BatchEvent {
	return b.events
}

func (b *uploadBatch) Cancel(index int) error {
	if index < 0 || index >= len(b.cancels) {
		return fmt.Errorf("upload task %d: %w", index, domain.ErrNotFound)
	}
	b.cancels[index]()
	return nil
}

func (b *uploadBatch) CancelAll() {
	b.cancelAll()
}

func (b *uploadBatch) Wait() []domain.UploadTask {
	<-b.done
	return b.Tasks()
}

func (b *uploadBatch) Tasks() []domain.UploadTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.UploadTask, len(b.tasks))
	copy(out, b.tasks)
	return out
}

func (b *uploadBatch) start(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := &b.tasks[i]
	if t.State != domain.UploadPending {
		return
	}
	t.State = domain.UploadInProgress
	b.events <- domain.BatchEvent{Index: i, Kind: domain.EventProgress, Percent: 0, BytesTotal: t.File.Size}
}

// progress records a new percentage. Non-increasing values are dropped so
// events stay monotonic.
func (b *uploadBatch) progress(i, percent int, sent, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := &b.tasks[i]
	if t.State.IsTerminal() || percent <= t.ProgressPercent || b.contexts[i].Err() != nil {
		return
	}
	t.State = domain.UploadInProgress
	t.ProgressPercent = percent
	b.events <- domain.BatchEvent{
		Index:      i,
		Kind:       domain.EventProgress,
		Percent:    percent,
		BytesSent:  sent,
		BytesTotal: total,
	}
}

// finish moves task i to a terminal state and emits its terminal event.
// Only the first call for an index has any effect.
func (b *uploadBatch) finish(metrics driven.MetricsRecorder, i int, state domain.UploadState, doc *domain.Document, err error) {
	b.mu.Lock()
	t := &b.tasks[i]
	if t.State.IsTerminal() {
		b.mu.Unlock()
		return
	}
	t.State = state
	t.Err = err
	t.Document = doc
	t.FinishedAt = time.Now()

	ev := domain.BatchEvent{Index: i, Percent: t.ProgressPercent, BytesTotal: t.File.Size, Document: doc, Err: err}
	switch state {
	case domain.UploadDone:
		ev.Kind = domain.EventCompleted
		ev.BytesSent = t.File.Size
	case domain.UploadCancelled:
		ev.Kind = domain.EventCancelled
	default:
		ev.Kind = domain.EventFailed
	}
	b.events <- ev
	size := t.File.Size
	b.mu.Unlock()

	if metrics != nil {
		metrics.UploadFinished(state, size)
	}
}
