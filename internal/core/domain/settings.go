package domain

import "time"

const unknownDescription = "Unknown"

// MediaProvider selects where upload destinations come from.
type MediaProvider string

// Available media providers.
const (
	// MediaProviderAPI asks the citedock API for a presigned destination.
	MediaProviderAPI MediaProvider = "api"

	// MediaProviderGCS signs destinations directly against a GCS bucket.
	MediaProviderGCS MediaProvider = "gcs"
)

// IsValid returns true if the media provider is recognised.
func (p MediaProvider) IsValid() bool {
	return p == MediaProviderAPI || p == MediaProviderGCS
}

// String returns the string representation.
func (p MediaProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p MediaProvider) Description() string {
	switch p {
	case MediaProviderAPI:
		return "Citedock API (presigned URL)"
	case MediaProviderGCS:
		return "Google Cloud Storage (signed URL)"
	default:
		return unknownDescription
	}
}

// AllMediaProviders returns all available media providers.
func AllMediaProviders() []MediaProvider {
	return []MediaProvider{MediaProviderAPI, MediaProviderGCS}
}

// APISettings holds the backend connection settings.
type APISettings struct {
	// BaseURL is the root of the citedock API.
	BaseURL string

	// Token is the bearer token sent with every request.
	Token string

	// TimeoutSeconds bounds each API request.
	TimeoutSeconds int

	// RequestsPerSecond throttles outgoing API calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if a base URL is set.
func (a APISettings) IsConfigured() bool {
	return a.BaseURL != ""
}

// Timeout returns TimeoutSeconds as a duration.
func (a APISettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// UploadSettings holds batch upload behaviour.
type UploadSettings struct {
	// Concurrency is the number of files transferred at once.
	Concurrency int

	// MaxFileSizeMB rejects larger files before any network call. Zero disables the check.
	MaxFileSizeMB int

	// RequirePDF rejects files that do not parse as PDF.
	RequirePDF bool

	// DoneGraceMillis is how long a finished task stays visible.
	DoneGraceMillis int
}

// MaxFileSize returns the limit in bytes, or 0 when unlimited.
func (u UploadSettings) MaxFileSize() int64 {
	return int64(u.MaxFileSizeMB) << 20
}

// DoneGrace returns DoneGraceMillis as a duration.
func (u UploadSettings) DoneGrace() time.Duration {
	return time.Duration(u.DoneGraceMillis) * time.Millisecond
}

// ExtractionSettings holds status polling behaviour.
type ExtractionSettings struct {
	PollIntervalSeconds int
	PollTimeoutSeconds  int
}

// PollInterval returns PollIntervalSeconds as a duration.
func (e ExtractionSettings) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalSeconds) * time.Second
}

// PollTimeout returns PollTimeoutSeconds as a duration.
func (e ExtractionSettings) PollTimeout() time.Duration {
	return time.Duration(e.PollTimeoutSeconds) * time.Second
}

// MediaSettings holds upload destination settings.
type MediaSettings struct {
	Provider MediaProvider

	// GCSBucket is the bucket used by the gcs provider.
	GCSBucket string

	// GCSCredentialsFile is a service account key used to sign URLs.
	GCSCredentialsFile string

	// URLExpiryMinutes is the lifetime of signed URLs.
	URLExpiryMinutes int
}

// IsConfigured returns true if the selected provider has what it needs.
func (m MediaSettings) IsConfigured() bool {
	switch m.Provider {
	case MediaProviderAPI:
		return true
	case MediaProviderGCS:
		return m.GCSBucket != ""
	default:
		return false
	}
}

// URLExpiry returns URLExpiryMinutes as a duration.
func (m MediaSettings) URLExpiry() time.Duration {
	return time.Duration(m.URLExpiryMinutes) * time.Minute
}

// StorageSettings holds local persistence settings.
type StorageSettings struct {
	// DataDir holds the upload journal and the offline snapshot.
	// Empty means ~/.citedock.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	API        APISettings
	Upload     UploadSettings
	Extraction ExtractionSettings
	Media      MediaSettings
	Storage    StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The API base URL is left empty and must be configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		API: APISettings{
			TimeoutSeconds:    30,
			RequestsPerSecond: 10,
		},
		Upload: UploadSettings{
			Concurrency:     4,
			MaxFileSizeMB:   30,
			RequirePDF:      true,
			DoneGraceMillis: 1000,
		},
		Extraction: ExtractionSettings{
			PollIntervalSeconds: 5,
			PollTimeoutSeconds:  900,
		},
		Media: MediaSettings{
			Provider:         MediaProviderAPI,
			URLExpiryMinutes: 15,
		},
	}
}

// Validate checks ranges and enum values.
func (s AppSettings) Validate() error {
	if s.API.TimeoutSeconds <= 0 {
		return invalid("api.timeout_seconds", "must be positive")
	}
	if s.API.RequestsPerSecond < 0 {
		return invalid("api.requests_per_second", "must not be negative")
	}
	if s.Upload.Concurrency < 1 {
		return invalid("upload.concurrency", "must be at least 1")
	}
	if s.Upload.MaxFileSizeMB < 0 {
		return invalid("upload.max_file_size_mb", "must not be negative")
	}
	if s.Upload.DoneGraceMillis < 0 {
		return invalid("upload.done_grace_ms", "must not be negative")
	}
	if s.Extraction.PollIntervalSeconds <= 0 {
		return invalid("extraction.poll_interval_seconds", "must be positive")
	}
	if s.Extraction.PollTimeoutSeconds < s.Extraction.PollIntervalSeconds {
		return invalid("extraction.poll_timeout_seconds", "must not be shorter than the poll interval")
	}
	if !s.Media.Provider.IsValid() {
		return invalid("media.provider", "must be api or gcs, got "+quote(string(s.Media.Provider)))
	}
	if s.Media.Provider == MediaProviderGCS && s.Media.GCSBucket == "" {
		return invalid("media.gcs_bucket", "is required for the gcs provider")
	}
	if s.Media.URLExpiryMinutes <= 0 {
		return invalid("media.url_expiry_minutes", "must be positive")
	}
	return nil
}
