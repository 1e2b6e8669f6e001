package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 30*time.Second, s.API.Timeout())
	assert.Equal(t, int64(30<<20), s.Upload.MaxFileSize())
	assert.Equal(t, time.Second, s.Upload.DoneGrace())
	assert.Equal(t, 5*time.Second, s.Extraction.PollInterval())
	assert.Equal(t, MediaProviderAPI, s.Media.Provider)
	assert.False(t, s.API.IsConfigured())
}

func TestMediaProvider_IsValid(t *testing.T) {
	for _, p := range AllMediaProviders() {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, MediaProvider("s3").IsValid())
	assert.Equal(t, unknownDescription, MediaProvider("s3").Description())
}

func TestMediaSettings_IsConfigured(t *testing.T) {
	assert.True(t, MediaSettings{Provider: MediaProviderAPI}.IsConfigured())
	assert.False(t, MediaSettings{Provider: MediaProviderGCS}.IsConfigured())
	assert.True(t, MediaSettings{Provider: MediaProviderGCS, GCSBucket: "b"}.IsConfigured())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *AppSettings)
		field  string
	}{
		{"zero concurrency", func(s *AppSettings) { s.Upload.Concurrency = 0 }, "upload.concurrency"},
		{"zero timeout", func(s *AppSettings) { s.API.TimeoutSeconds = 0 }, "api.timeout_seconds"},
		{"bad provider", func(s *AppSettings) { s.Media.Provider = "ftp" }, "media.provider"},
		{"gcs without bucket", func(s *AppSettings) { s.Media.Provider = MediaProviderGCS }, "media.gcs_bucket"},
		{
			"timeout shorter than interval",
			func(s *AppSettings) { s.Extraction.PollTimeoutSeconds = 1 },
			"extraction.poll_timeout_seconds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
