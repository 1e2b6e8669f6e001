package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

// countingBackend counts ListDocuments calls.
type countingBackend struct {
	*fakeBackend
	mu    sync.Mutex
	lists int
}

func (c *countingBackend) ListDocuments(ctx context.Context, caseID string) ([]domain.Document, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.fakeBackend.ListDocuments(ctx, caseID)
}

func (c *countingBackend) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists
}

func TestStatusPoller_PollSkipsWhenIdle(t *testing.T) {
	backend := &countingBackend{fakeBackend: newFakeBackend()}
	backend.seed("case-1", withStatus(mainDoc("m1"), domain.ExtractionDone))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	poller := NewStatusPoller(registry, time.Second)
	poller.Poll(context.Background())

	assert.Equal(t, 1, backend.count())
}

func TestStatusPoller_PollReportsChanges(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("case-1", withStatus(mainDoc("m1"), domain.ExtractionRunning), mainDoc("m2"))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	var got []domain.ExtractionChange
	poller := NewStatusPoller(registry, time.Second, func(c domain.ExtractionChange) {
		got = append(got, c)
	})

	backend.setExtraction("m1", domain.ExtractionDone)
	poller.Poll(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].DocumentID)
	assert.True(t, got[0].Finished())
}

func TestStatusPoller_StartStop(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("case-1", withStatus(mainDoc("m1"), domain.ExtractionQueued))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	finished := make(chan domain.ExtractionChange, 1)
	poller := NewStatusPoller(registry, 5*time.Millisecond, func(c domain.ExtractionChange) {
		if c.Finished() {
			finished <- c
		}
	})

	errCh := make(chan error, 1)
	go func() { errCh <- poller.Start(context.Background()) }()

	backend.setExtraction("m1", domain.ExtractionFailed)

	select {
	case c := <-finished:
		assert.Equal(t, domain.ExtractionFailed, c.Current)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not observe the change")
	}

	require.NoError(t, poller.Stop())
	assert.NoError(t, <-errCh)
	assert.NoError(t, poller.Stop())
}

func TestStatusPoller_StartReturnsOnContextCancel(t *testing.T) {
	registry := NewDocumentRegistry(newFakeBackend(), nil)
	poller := NewStatusPoller(registry, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- poller.Start(ctx) }()
	cancel()

	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.NoError(t, poller.Stop())
}

func TestStatusPoller_NoPollAfterStop(t *testing.T) {
	backend := &countingBackend{fakeBackend: newFakeBackend()}
	backend.seed("case-1", withStatus(mainDoc("m1"), domain.ExtractionRunning))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	poller := NewStatusPoller(registry, time.Millisecond)
	errCh := make(chan error, 1)
	go func() { errCh <- poller.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return backend.count() >= 3 }, 2*time.Second, time.Millisecond)

	require.NoError(t, poller.Stop())
	stoppedAt := backend.count()
	require.NoError(t, <-errCh)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stoppedAt, backend.count())
}

func TestStatusPoller_TrackRequiresRunningLoop(t *testing.T) {
	poller := NewStatusPoller(NewDocumentRegistry(newFakeBackend(), nil), time.Second)

	assert.False(t, poller.track(nil))

	stale := make(chan struct{})
	poller.mu.Lock()
	poller.running = true
	poller.stopCh = make(chan struct{})
	poller.mu.Unlock()

	assert.False(t, poller.track(stale), "a loop from an earlier Start must not poll")
	assert.True(t, poller.track(poller.stopCh))
	poller.wg.Done()
}
