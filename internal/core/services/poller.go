package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure StatusPoller implements the interface.
var _ driving.StatusPoller = (*StatusPoller)(nil)

// ChangeHook is called for every extraction status change a poll observes.
type ChangeHook func(change domain.ExtractionChange)

// StatusPoller refreshes the registry on an interval while any document
// has an extraction queued or running. Idle ticks make no API calls.
type StatusPoller struct {
	registry driving.DocumentRegistry
	interval time.Duration
	hooks    []ChangeHook

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewStatusPoller creates a poller.
func NewStatusPoller(registry driving.DocumentRegistry, interval time.Duration, hooks ...ChangeHook) *StatusPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StatusPoller{
		registry: registry,
		interval: interval,
		hooks:    hooks,
	}
}

// Start runs the poll loop. Blocks until Stop is called or ctx is done.
func (p *StatusPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil // Already running
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.markStopped(stopCh)
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			// A tick can win the select after Stop; it must not poll.
			if !p.track(stopCh) {
				return nil
			}
			p.Poll(ctx)
			p.wg.Done()
		}
	}
}

// Stop ends the loop and waits for an in-flight poll to finish. No poll
// starts after Stop returns.
func (p *StatusPoller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Poll performs one refresh if anything is in progress and reports
// every observed change to the hooks.
func (p *StatusPoller) Poll(ctx context.Context) {
	if !p.anyInProgress() {
		return
	}

	changes, err := p.registry.Refresh(ctx)
	if err != nil {
		logger.Warn("poller: refresh failed: %v", err)
		return
	}
	for _, change := range changes {
		logger.Debug("poller: %s %s -> %s", change.DocumentID, change.Previous, change.Current)
		for _, hook := range p.hooks {
			hook(change)
		}
	}
}

func (p *StatusPoller) anyInProgress() bool {
	for _, doc := range p.registry.Documents() {
		if doc.CitationsExtractionStatus.InProgress() {
			return true
		}
	}
	return false
}

// track registers a loop poll with Stop's wait group while the loop that
// owns stopCh is still running.
func (p *StatusPoller) track(stopCh chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.stopCh != stopCh {
		return false
	}
	p.wg.Add(1)
	return true
}

func (p *StatusPoller) markStopped(stopCh chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running && p.stopCh == stopCh {
		p.running = false
		close(p.stopCh)
	}
}
