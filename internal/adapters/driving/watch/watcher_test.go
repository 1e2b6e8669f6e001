package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

// fakeBatch finishes every file immediately with the given state.
type fakeBatch struct {
	tasks []domain.UploadTask
}

var _ driving.UploadBatch = (*fakeBatch)(nil)

func (b *fakeBatch) ID() string { return "batch-1" }

func (b *fakeBatch) Events() <-chan domain.BatchEvent {
	ch := make(chan domain.BatchEvent)
	close(ch)
	return ch
}

func (b *fakeBatch) Cancel(int) error { return nil }

func (b *fakeBatch) CancelAll() {}

func (b *fakeBatch) Wait() []domain.UploadTask { return b.tasks }

func (b *fakeBatch) Tasks() []domain.UploadTask { return b.tasks }

// fakeUploader records requests and completes them.
type fakeUploader struct {
	mu       sync.Mutex
	requests []domain.BatchRequest
	state    domain.UploadState
	err      error
}

func (u *fakeUploader) RequestBatchUpload(_ context.Context, req domain.BatchRequest) (driving.UploadBatch, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, req)
	if u.err != nil {
		return nil, u.err
	}
	state := u.state
	if state == "" {
		state = domain.UploadDone
	}
	tasks := make([]domain.UploadTask, len(req.Files))
	for i, f := range req.Files {
		tasks[i] = domain.UploadTask{Index: i, File: f, State: state}
		if state == domain.UploadDone {
			tasks[i].ProgressPercent = 100
			tasks[i].Document = &domain.Document{ID: "doc-" + f.Name, Title: f.Name}
		}
	}
	return &fakeBatch{tasks: tasks}, nil
}

func (u *fakeUploader) calls() []domain.BatchRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.BatchRequest(nil), u.requests...)
}

func TestNew(t *testing.T) {
	t.Run("requires uploader", func(t *testing.T) {
		_, err := New(nil, Config{Dir: t.TempDir()})
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("requires existing directory", func(t *testing.T) {
		_, err := New(&fakeUploader{}, Config{Dir: filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	})

	t.Run("rejects a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.pdf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := New(&fakeUploader{}, Config{Dir: path})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("applies defaults", func(t *testing.T) {
		w, err := New(&fakeUploader{}, Config{Dir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, DefaultSettle, w.cfg.Settle)
		assert.Equal(t, []string{".pdf"}, w.cfg.Extensions)
	})
}

func TestWatcher_handleFsEvent(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "brief.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))
	upper := filepath.Join(dir, "SCAN.PDF")
	require.NoError(t, os.WriteFile(upper, []byte("%PDF-1.4"), 0o644))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("notes"), 0o644))
	hidden := filepath.Join(dir, ".brief.pdf")
	require.NoError(t, os.WriteFile(hidden, []byte("%PDF-1.4"), 0o644))
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name    string
		path    string
		op      fsnotify.Op
		pending bool
	}{
		{name: "create pdf", path: pdf, op: fsnotify.Create, pending: true},
		{name: "write pdf", path: pdf, op: fsnotify.Write, pending: true},
		{name: "combined write and chmod", path: pdf, op: fsnotify.Write | fsnotify.Chmod, pending: true},
		{name: "extension is case insensitive", path: upper, op: fsnotify.Create, pending: true},
		{name: "chmod only", path: pdf, op: fsnotify.Chmod},
		{name: "other extension", path: txt, op: fsnotify.Create},
		{name: "hidden file", path: hidden, op: fsnotify.Create},
		{name: "directory", path: sub, op: fsnotify.Create},
		{name: "missing file", path: filepath.Join(dir, "gone.pdf"), op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(&fakeUploader{}, Config{Dir: dir})
			require.NoError(t, err)

			got := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})

			assert.Equal(t, tt.pending, got)
			_, ok := w.pending[tt.path]
			assert.Equal(t, tt.pending, ok)
		})
	}

	t.Run("remove forgets the file", func(t *testing.T) {
		w, err := New(&fakeUploader{}, Config{Dir: dir})
		require.NoError(t, err)

		w.handleFsEvent(fsnotify.Event{Name: pdf, Op: fsnotify.Create})
		w.submitted[pdf] = true
		w.handleFsEvent(fsnotify.Event{Name: pdf, Op: fsnotify.Remove})

		assert.NotContains(t, w.pending, pdf)
		assert.NotContains(t, w.submitted, pdf)
	})

	t.Run("submitted file is not picked up again", func(t *testing.T) {
		w, err := New(&fakeUploader{}, Config{Dir: dir})
		require.NoError(t, err)
		w.submitted[pdf] = true

		assert.False(t, w.handleFsEvent(fsnotify.Event{Name: pdf, Op: fsnotify.Write}))
	})
}

func TestWatcher_settled(t *testing.T) {
	w, err := New(&fakeUploader{}, Config{Dir: t.TempDir(), Settle: time.Second})
	require.NoError(t, err)

	now := time.Now()
	w.pending["/b.pdf"] = now.Add(-2 * time.Second)
	w.pending["/a.pdf"] = now.Add(-time.Second)
	w.pending["/c.pdf"] = now.Add(-100 * time.Millisecond)

	ready := w.settled(now)

	assert.Equal(t, []string{"/a.pdf", "/b.pdf"}, ready)
	assert.Contains(t, w.pending, "/c.pdf")
	assert.True(t, w.submitted["/a.pdf"])
	assert.True(t, w.submitted["/b.pdf"])
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("uploads dropped files", func(t *testing.T) {
		dir := t.TempDir()
		uploader := &fakeUploader{}
		w, err := New(uploader, Config{
			Dir:            dir,
			Type:           domain.DocumentTypeExhibit,
			MainDocumentID: "main-1",
			Settle:         30 * time.Millisecond,
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		results, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "exhibit-a.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

		select {
		case r := <-results:
			require.NoError(t, r.Err)
			assert.Equal(t, path, r.Path)
			assert.Equal(t, "batch-1", r.BatchID)
			assert.Equal(t, domain.UploadDone, r.Task.State)
			assert.Equal(t, "doc-exhibit-a.pdf", r.Task.Document.ID)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for upload result")
		}

		calls := uploader.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, domain.DocumentTypeExhibit, calls[0].Type)
		assert.Equal(t, "main-1", calls[0].MainDocumentID)
		require.Len(t, calls[0].Files, 1)
		assert.Equal(t, "exhibit-a.pdf", calls[0].Files[0].Name)

		cancel()
		for range results {
		}
		require.NoError(t, w.Close())
	})

	t.Run("reports failed uploads", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New(&fakeUploader{state: domain.UploadFailed}, Config{Dir: dir, Settle: 30 * time.Millisecond})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		results, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.pdf"), []byte("%PDF-1.4"), 0o644))

		select {
		case r := <-results:
			require.Error(t, r.Err)
			assert.Equal(t, domain.UploadFailed, r.Task.State)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for upload result")
		}
	})

	t.Run("reports submission errors", func(t *testing.T) {
		dir := t.TempDir()
		submitErr := errors.New("no case open")
		w, err := New(&fakeUploader{err: submitErr}, Config{Dir: dir, Settle: 30 * time.Millisecond})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		results, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.pdf"), []byte("%PDF-1.4"), 0o644))

		select {
		case r := <-results:
			assert.ErrorIs(t, r.Err, submitErr)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for upload result")
		}
	})

	t.Run("results close when context is cancelled", func(t *testing.T) {
		w, err := New(&fakeUploader{}, Config{Dir: t.TempDir()})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		results, err := w.Watch(ctx)
		require.NoError(t, err)

		cancel()
		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-results:
				return !ok
			default:
				return false
			}
		}, 2*time.Second, 10*time.Millisecond)
	})
}
