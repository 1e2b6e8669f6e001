package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure ExtractionTracker implements the interface.
var _ driving.ExtractionTracker = (*ExtractionTracker)(nil)

// Extraction request results reported to metrics.
const (
	extractionAccepted = "accepted"
	extractionRejected = "rejected"
	extractionFailed   = "failed"
)

// ExtractionTracker guards extraction requests and reads extraction state
// from the registry, falling back to the document service for documents
// outside the loaded case.
type ExtractionTracker struct {
	extractionAPI driven.ExtractionAPI
	docsAPI       driven.DocumentAPI
	registry      driving.DocumentRegistry
	metrics       driven.MetricsRecorder

	pollInterval time.Duration
	pollTimeout  time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewExtractionTracker creates a tracker. metrics may be nil.
func NewExtractionTracker(
	extractionAPI driven.ExtractionAPI,
	docsAPI driven.DocumentAPI,
	registry driving.DocumentRegistry,
	metrics driven.MetricsRecorder,
	settings domain.ExtractionSettings,
) *ExtractionTracker {
	return &ExtractionTracker{
		extractionAPI: extractionAPI,
		docsAPI:       docsAPI,
		registry:      registry,
		metrics:       metrics,
		pollInterval:  settings.PollInterval(),
		pollTimeout:   settings.PollTimeout(),
		inFlight:      make(map[string]bool),
	}
}

// RequestExtraction queues extraction for target unless one is already
// queued or running. Local state changes only after the service accepts.
func (t *ExtractionTracker) RequestExtraction(ctx context.Context, target domain.ExtractionTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if t.extractionAPI == nil {
		return fmt.Errorf("extraction service: %w", domain.ErrNotConfigured)
	}

	key := target.String()
	t.mu.Lock()
	if t.inFlight[key] {
		t.mu.Unlock()
		t.record(target, extractionRejected)
		return fmt.Errorf("%s: %w", target, domain.ErrAlreadyInProgress)
	}
	t.inFlight[key] = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.inFlight, key)
		t.mu.Unlock()
	}()

	status, err := t.Status(ctx, target)
	if err != nil {
		return err
	}
	if status.InProgress() {
		t.record(target, extractionRejected)
		return fmt.Errorf("%s is %s: %w", target, status, domain.ErrAlreadyInProgress)
	}

	switch target.Kind {
	case domain.TargetCase:
		err = t.extractionAPI.RequestCaseExtraction(ctx, target.ID)
	default:
		err = t.extractionAPI.RequestDocumentExtraction(ctx, target.ID)
	}
	if err != nil {
		t.record(target, extractionFailed)
		return fmt.Errorf("request extraction for %s: %w", target, err)
	}

	t.markQueued(target)
	t.record(target, extractionAccepted)
	logger.Info("extraction: queued %s", target)
	return nil
}

// Status returns the current extraction status of target.
func (t *ExtractionTracker) Status(ctx context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	if err := target.Validate(); err != nil {
		return domain.ExtractionNone, err
	}

	if target.Kind == domain.TargetCase {
		if t.registry != nil && t.registry.CaseID() == target.ID {
			return aggregateMain(t.registry.MainDocuments()), nil
		}
		if t.docsAPI == nil {
			return domain.ExtractionNone, fmt.Errorf("document service: %w", domain.ErrNotConfigured)
		}
		docs, err := t.docsAPI.ListDocuments(ctx, target.ID)
		if err != nil {
			return domain.ExtractionNone, fmt.Errorf("status of %s: %w", target, err)
		}
		return aggregateMain(docs), nil
	}

	if t.registry != nil {
		doc, err := t.registry.Get(target.ID)
		if err == nil {
			return doc.CitationsExtractionStatus, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.ExtractionNone, err
		}
	}
	if t.docsAPI == nil {
		return domain.ExtractionNone, fmt.Errorf("document %s: %w", target.ID, domain.ErrNotFound)
	}
	doc, err := t.docsAPI.GetDocument(ctx, target.ID)
	if err != nil {
		return domain.ExtractionNone, fmt.Errorf("status of %s: %w", target, err)
	}
	return doc.CitationsExtractionStatus, nil
}

// WaitForCompletion refetches target every poll interval until it reaches
// a terminal state.
func (t *ExtractionTracker) WaitForCompletion(ctx context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	if err := target.Validate(); err != nil {
		return domain.ExtractionNone, err
	}

	if t.pollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.pollTimeout)
		defer cancel()
	}
	interval := t.pollInterval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := t.refreshStatus(ctx, target)
		if err != nil {
			return status, err
		}
		if status.IsTerminal() {
			return status, nil
		}
		logger.Debug("extraction: %s is %s", target, status)

		select {
		case <-ctx.Done():
			return status, fmt.Errorf("wait for %s: %w", target, ctx.Err())
		case <-ticker.C:
		}
	}
}

// refreshStatus refetches the registry when it holds target, then reads
// the status.
func (t *ExtractionTracker) refreshStatus(ctx context.Context, target domain.ExtractionTarget) (domain.ExtractionStatus, error) {
	if t.registry != nil && t.holds(target) {
		if _, err := t.registry.Refresh(ctx); err != nil {
			return domain.ExtractionNone, err
		}
	}
	return t.Status(ctx, target)
}

func (t *ExtractionTracker) holds(target domain.ExtractionTarget) bool {
	if target.Kind == domain.TargetCase {
		return t.registry.CaseID() == target.ID
	}
	_, err := t.registry.Get(target.ID)
	return err == nil
}

func (t *ExtractionTracker) markQueued(target domain.ExtractionTarget) {
	if t.registry == nil {
		return
	}
	queued := domain.ExtractionQueued
	update := domain.StatusUpdate{ExtractionStatus: &queued}

	if target.Kind == domain.TargetCase {
		if t.registry.CaseID() != target.ID {
			return
		}
		for _, doc := range t.registry.MainDocuments() {
			_ = t.registry.UpdateStatus(doc.ID, update)
		}
		return
	}
	// Documents outside the loaded case are not tracked locally.
	_ = t.registry.UpdateStatus(target.ID, update)
}

func (t *ExtractionTracker) record(target domain.ExtractionTarget, result string) {
	if t.metrics != nil {
		t.metrics.ExtractionRequested(target.Kind, result)
	}
}

func aggregateMain(docs []domain.Document) domain.ExtractionStatus {
	statuses := make([]domain.ExtractionStatus, 0, len(docs))
	for i := range docs {
		if docs[i].IsMain() {
			statuses = append(statuses, docs[i].CitationsExtractionStatus)
		}
	}
	return domain.AggregateExtractionStatus(statuses)
}
