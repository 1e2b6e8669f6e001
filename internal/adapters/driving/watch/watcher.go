// Package watch submits files dropped into a folder as upload batches.
//
// Only files that appear after the watch starts are uploaded. A file is
// submitted once it has gone Settle without further writes, so copies that
// are still in progress are not picked up half written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// DefaultSettle is used when Config.Settle is zero.
const DefaultSettle = time.Second

// Uploader starts upload batches. driving.CaseWorkspace satisfies it.
type Uploader interface {
	RequestBatchUpload(ctx context.Context, req domain.BatchRequest) (driving.UploadBatch, error)
}

// Config describes what to watch and how dropped files are uploaded.
type Config struct {
	Dir            string
	Type           domain.DocumentType
	MainDocumentID string

	// Settle is the quiet period after the last write before a file is submitted.
	Settle time.Duration

	// Extensions lists accepted file extensions. Defaults to ".pdf".
	Extensions []string
}

// Result is the outcome of one dropped file.
type Result struct {
	Path    string
	BatchID string

	// Task is the final task. Zero when Err is a submission error.
	Task domain.UploadTask

	// Err is set when the file could not be submitted or did not upload.
	Err error
}

// Watcher watches one directory.
type Watcher struct {
	uploader Uploader
	cfg      Config

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	pending   map[string]time.Time
	submitted map[string]bool
	wg        sync.WaitGroup
}

// New creates a watcher for cfg.Dir.
func New(uploader Uploader, cfg Config) (*Watcher, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader: %w", domain.ErrNotConfigured)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, domain.NewValidationError("dir", cfg.Dir+" is not a directory")
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pdf"}
	}
	return &Watcher{
		uploader:  uploader,
		cfg:       cfg,
		pending:   make(map[string]time.Time),
		submitted: make(map[string]bool),
	}, nil
}

// Watch starts watching and returns the results of dropped files. The
// channel is closed after ctx is done and every submitted batch has finished.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	results := make(chan Result, 16)
	go func() {
		defer close(results)
		defer w.wg.Wait()
		defer fsw.Close()
		w.loop(ctx, fsw, results)
	}()

	logger.Info("watch: watching %s", w.cfg.Dir)
	return results, nil
}

// Close stops watching. Batches already submitted keep running until ctx
// passed to Watch is done.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, results chan<- Result) {
	tick := w.cfg.Settle / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		case now := <-ticker.C:
			if ready := w.settled(now); len(ready) > 0 {
				w.submit(ctx, ready, results)
			}
		}
	}
}

// handleFsEvent records writes to accepted files and forgets removed ones.
// It returns true when the event marked a file as pending.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !w.accepts(name) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, event.Name)
		delete(w.submitted, event.Name)
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if w.submitted[event.Name] {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	w.pending[event.Name] = time.Now()
	return true
}

func (w *Watcher) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.cfg.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// settled removes and returns the pending files quiet since Settle, sorted.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.cfg.Settle {
			ready = append(ready, path)
			delete(w.pending, path)
			w.submitted[path] = true
		}
	}
	sort.Strings(ready)
	return ready
}

// submit uploads ready files as one batch and reports each file once the
// batch has finished.
func (w *Watcher) submit(ctx context.Context, paths []string, results chan<- Result) {
	files := make([]domain.FileRef, 0, len(paths))
	kept := make([]string, 0, len(paths))
	for _, path := range paths {
		f, err := domain.FileFromPath(path)
		if err != nil {
			send(ctx, results, Result{Path: path, Err: err})
			continue
		}
		files = append(files, f)
		kept = append(kept, path)
	}
	if len(files) == 0 {
		return
	}

	batch, err := w.uploader.RequestBatchUpload(ctx, domain.BatchRequest{
		Type:           w.cfg.Type,
		MainDocumentID: w.cfg.MainDocumentID,
		Files:          files,
	})
	if err != nil {
		for _, path := range kept {
			send(ctx, results, Result{Path: path, Err: err})
		}
		return
	}
	logger.Info("watch: submitted %d file(s) as batch %s", len(files), batch.ID())

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		stop := context.AfterFunc(ctx, batch.CancelAll)
		defer stop()

		for i, task := range batch.Wait() {
			r := Result{Path: kept[i], BatchID: batch.ID(), Task: task}
			if task.State != domain.UploadDone {
				r.Err = task.Err
				if r.Err == nil {
					r.Err = errors.New(strings.ToLower(string(task.State)))
				}
			}
			send(ctx, results, r)
		}
	}()
}

func send(ctx context.Context, results chan<- Result, r Result) {
	select {
	case results <- r:
	case <-ctx.Done():
	}
}
