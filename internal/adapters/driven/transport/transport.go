// Package transport streams files to pre-authorised upload URLs over HTTP.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Verify interface compliance.
var _ driven.UploadTransport = (*Transport)(nil)

// DefaultTimeout bounds one transfer. Large files on slow links need room.
const DefaultTimeout = 30 * time.Minute

// progressBuffer lets the reader run ahead of a slow consumer by a few steps.
const progressBuffer = 8

// Transport writes a file body to a presigned URL with a single request.
type Transport struct {
	client *http.Client
}

// NewTransport creates a transport. A nil client uses one with DefaultTimeout.
// The client must not add credentials; presigned URLs carry their own.
func NewTransport(client *http.Client) *Transport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Transport{client: client}
}

// Transfer starts streaming file to target.
func (t *Transport) Transfer(
	ctx context.Context,
	file domain.FileRef,
	target *domain.UploadTarget,
) (<-chan domain.TransferProgress, <-chan error) {
	progressCh := make(chan domain.TransferProgress, progressBuffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		err := t.transfer(ctx, file, target, progressCh)
		close(progressCh)
		errCh <- err
	}()

	return progressCh, errCh
}

func (t *Transport) transfer(
	ctx context.Context,
	file domain.FileRef,
	target *domain.UploadTarget,
	progressCh chan<- domain.TransferProgress,
) error {
	if target == nil {
		return domain.NewValidationError("target", "is required")
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}

	body, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer body.Close()

	reader := &progressReader{
		ctx:   ctx,
		r:     body,
		total: file.Size,
		ch:    progressCh,
		last:  0,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.UploadURL, reader)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = file.Size
	if file.Size == 0 {
		req.Body = http.NoBody
	}
	if file.ContentType != "" {
		req.Header.Set("Content-Type", file.ContentType)
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	logger.Debug("transfer: PUT %s (%d bytes)", file.Name, file.Size)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("transfer %s: %w: %w", file.Name, domain.ErrCancelled, ctx.Err())
		}
		return fmt.Errorf("transfer %s: %w: %w", file.Name, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.APIError{
			Operation:  "transfer " + file.Name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	if ctx.Err() != nil {
		return fmt.Errorf("transfer %s: %w: %w", file.Name, domain.ErrCancelled, ctx.Err())
	}
	reader.finish()
	return nil
}

// progressReader counts bytes read by the HTTP client and emits one
// notification per whole percentage step.
type progressReader struct {
	ctx   context.Context
	r     io.Reader
	total int64
	ch    chan<- domain.TransferProgress

	mu   sync.Mutex
	sent int64
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		sent := p.sent
		p.mu.Unlock()
		p.emit(sent)
	}
	return n, err
}

// finish reports the full size once the destination has accepted the body.
func (p *progressReader) finish() {
	p.emit(p.total)
}

func (p *progressReader) emit(sent int64) {
	if p.total <= 0 {
		return
	}
	if sent > p.total {
		sent = p.total
	}
	step := int(sent * 100 / p.total)

	p.mu.Lock()
	if step <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = step
	p.mu.Unlock()

	if p.ctx.Err() != nil {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.ch <- domain.TransferProgress{BytesSent: sent, BytesTotal: p.total}:
	}
}
