// Package pdf checks files before upload: size limits and, for PDFs,
// that the document parses and has at least one page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.FileInspector = (*Inspector)(nil)

const pdfContentType = "application/pdf"

// Inspector validates files with pdfcpu.
type Inspector struct {
	maxSize    int64
	requirePDF bool
	conf       *model.Configuration
}

// NewInspector creates an inspector. A maxSize of zero disables the size
// check. When requirePDF is set, non-PDF files are rejected.
func NewInspector(maxSize int64, requirePDF bool) *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{
		maxSize:    maxSize,
		requirePDF: requirePDF,
		conf:       conf,
	}
}

// Inspect rejects oversize, empty or unreadable files.
func (i *Inspector) Inspect(ctx context.Context, file domain.FileRef) error {
	if err := file.Validate(); err != nil {
		return err
	}
	if i.maxSize > 0 && file.Size > i.maxSize {
		return domain.NewValidationError("file.size",
			fmt.Sprintf("of %s exceeds the %s limit", humanSize(file.Size), humanSize(i.maxSize)))
	}

	if !isPDF(file) {
		if i.requirePDF {
			return domain.NewValidationError("file", file.Name+" is not a PDF")
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	data, err := i.read(file)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return domain.NewValidationError("file", file.Name+" is empty")
	}

	pages, err := api.PageCount(bytes.NewReader(data), i.conf)
	if err != nil {
		return domain.NewValidationError("file", file.Name+" is not a readable PDF: "+err.Error())
	}
	if pages < 1 {
		return domain.NewValidationError("file", file.Name+" has no pages")
	}
	return nil
}

func (i *Inspector) read(file domain.FileRef) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if i.maxSize > 0 {
		r = io.LimitReader(rc, i.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}
	if i.maxSize > 0 && int64(len(data)) > i.maxSize {
		return nil, domain.NewValidationError("file.size", "exceeds the "+humanSize(i.maxSize)+" limit")
	}
	return data, nil
}

func isPDF(file domain.FileRef) bool {
	if strings.EqualFold(filepath.Ext(file.Name), ".pdf") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(file.ContentType), pdfContentType)
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
