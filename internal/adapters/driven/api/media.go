package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.MediaIssuer = (*Client)(nil)

// mediaUseDocument tags the presigned upload as a case document.
const mediaUseDocument = "DOCUMENT"

// RequestUploadTarget reserves a media id for file and returns the presigned
// destination the transport writes to.
func (c *Client) RequestUploadTarget(ctx context.Context, file domain.FileRef) (*domain.UploadTarget, error) {
	body := map[string]string{"use": mediaUseDocument}

	var dto mediaDTO
	if err := c.do(ctx, "request upload target", http.MethodPost, "/media-presigned-url", body, &dto); err != nil {
		return nil, err
	}
	target, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("request upload target for %s: %w", file.Name, err)
	}
	return target, nil
}
