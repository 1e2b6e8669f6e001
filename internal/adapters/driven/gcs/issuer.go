// Package gcs issues upload targets as V4 signed URLs on a Cloud Storage bucket.
//
// It replaces the API's presigned-URL endpoint when documents are stored in
// a bucket the operator controls. The media id is the object name.
package gcs

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.MediaIssuer = (*Issuer)(nil)

// DefaultExpiry is how long a signed URL stays valid.
const DefaultExpiry = 15 * time.Minute

// objectPrefix groups uploaded documents in the bucket.
const objectPrefix = "documents"

// urlSigner is satisfied by *storage.BucketHandle.
type urlSigner interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

// Config holds configuration for the issuer.
type Config struct {
	// Bucket is the destination bucket (required).
	Bucket string

	// CredentialsFile is a service account key. Empty uses application
	// default credentials.
	CredentialsFile string

	// Expiry is the signed URL lifetime (default: 15m).
	Expiry time.Duration
}

// Issuer signs per-file upload URLs.
type Issuer struct {
	client *storage.Client
	bucket string
	signer urlSigner
	expiry time.Duration
	now    func() time.Time
	newID  func() string
}

// NewIssuer connects to Cloud Storage.
func NewIssuer(ctx context.Context, cfg Config) (*Issuer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket %w", domain.ErrNotConfigured)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}

	issuer := newIssuer(cfg, client.Bucket(cfg.Bucket))
	issuer.client = client
	return issuer, nil
}

func newIssuer(cfg Config, signer urlSigner) *Issuer {
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Issuer{
		bucket: cfg.Bucket,
		signer: signer,
		expiry: expiry,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RequestUploadTarget signs a PUT URL for a fresh object and a GET URL
// for reading it back.
func (i *Issuer) RequestUploadTarget(ctx context.Context, file domain.FileRef) (*domain.UploadTarget, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	object := path.Join(objectPrefix, i.newID(), objectName(file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	expires := i.now().Add(i.expiry)

	uploadURL, err := i.signer.SignedURL(object, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     expires,
	})
	if err != nil {
		return nil, fmt.Errorf("gcs: sign upload URL: %w: %w", domain.ErrNetwork, err)
	}

	mediaURL, err := i.signer.SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return nil, fmt.Errorf("gcs: sign media URL: %w: %w", domain.ErrNetwork, err)
	}

	return &domain.UploadTarget{
		MediaID:   object,
		UploadURL: uploadURL,
		MediaURL:  mediaURL,
		// The V4 signature covers the content type.
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}

// Close releases the storage client.
func (i *Issuer) Close() error {
	if i.client == nil {
		return nil
	}
	return i.client.Close()
}

// objectName keeps the base name readable and free of path separators.
func objectName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "document"
	}
	return base
}
