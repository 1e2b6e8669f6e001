package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIBaseURL        = "api.base_url"
	keyAPIToken          = "api.token"
	keyAPITimeout        = "api.timeout_seconds"
	keyAPIRate           = "api.requests_per_second"
	keyUploadConcurrency = "upload.concurrency"
	keyUploadMaxSize     = "upload.max_file_size_mb"
	keyUploadRequirePDF  = "upload.require_pdf"
	keyUploadDoneGrace   = "upload.done_grace_ms"
	keyPollInterval      = "extraction.poll_interval_seconds"
	keyPollTimeout       = "extraction.poll_timeout_seconds"
	keyMediaProvider     = "media.provider"
	keyMediaBucket       = "media.gcs_bucket"
	keyMediaCredentials  = "media.gcs_credentials_file"
	keyMediaExpiry       = "media.url_expiry_minutes"
	keyDataDir           = "storage.data_dir"
)

// EnvAPIToken overrides api.token when set.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvAPIToken = "CITEDOCK_API_TOKEN"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{keyAPIBaseURL, kindString},
	{keyAPIToken, kindString},
	{keyAPITimeout, kindInt},
	{keyAPIRate, kindFloat},
	{keyUploadConcurrency, kindInt},
	{keyUploadMaxSize, kindInt},
	{keyUploadRequirePDF, kindBool},
	{keyUploadDoneGrace, kindInt},
	{keyPollInterval, kindInt},
	{keyPollTimeout, kindInt},
	{keyMediaProvider, kindString},
	{keyMediaBucket, kindString},
	{keyMediaCredentials, kindString},
	{keyMediaExpiry, kindInt},
	{keyDataDir, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		API: domain.APISettings{
			BaseURL:           s.configStore.GetString(keyAPIBaseURL),
			Token:             s.configStore.GetString(keyAPIToken),
			TimeoutSeconds:    s.getInt(keyAPITimeout, defaults.API.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyAPIRate, defaults.API.RequestsPerSecond),
		},
		Upload: domain.UploadSettings{
			Concurrency:     s.getInt(keyUploadConcurrency, defaults.Upload.Concurrency),
			MaxFileSizeMB:   s.getInt(keyUploadMaxSize, defaults.Upload.MaxFileSizeMB),
			RequirePDF:      s.getBool(keyUploadRequirePDF, defaults.Upload.RequirePDF),
			DoneGraceMillis: s.getInt(keyUploadDoneGrace, defaults.Upload.DoneGraceMillis),
		},
		Extraction: domain.ExtractionSettings{
			PollIntervalSeconds: s.getInt(keyPollInterval, defaults.Extraction.PollIntervalSeconds),
			PollTimeoutSeconds:  s.getInt(keyPollTimeout, defaults.Extraction.PollTimeoutSeconds),
		},
		Media: domain.MediaSettings{
			Provider:           s.getMediaProvider(defaults.Media.Provider),
			GCSBucket:          s.configStore.GetString(keyMediaBucket),
			GCSCredentialsFile: s.configStore.GetString(keyMediaCredentials),
			URLExpiryMinutes:   s.getInt(keyMediaExpiry, defaults.Media.URLExpiryMinutes),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	if token := s.getenv(EnvAPIToken); token != "" {
		settings.API.Token = token
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyAPIBaseURL, settings.API.BaseURL},
		{keyAPITimeout, settings.API.TimeoutSeconds},
		{keyAPIRate, settings.API.RequestsPerSecond},
		{keyUploadConcurrency, settings.Upload.Concurrency},
		{keyUploadMaxSize, settings.Upload.MaxFileSizeMB},
		{keyUploadRequirePDF, settings.Upload.RequirePDF},
		{keyUploadDoneGrace, settings.Upload.DoneGraceMillis},
		{keyPollInterval, settings.Extraction.PollIntervalSeconds},
		{keyPollTimeout, settings.Extraction.PollTimeoutSeconds},
		{keyMediaProvider, settings.Media.Provider.String()},
		{keyMediaBucket, settings.Media.GCSBucket},
		{keyMediaCredentials, settings.Media.GCSCredentialsFile},
		{keyMediaExpiry, settings.Media.URLExpiryMinutes},
		{keyDataDir, settings.Storage.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Tokens from the environment are never written to disk.
	if settings.API.Token != "" && settings.API.Token != s.getenv(EnvAPIToken) {
		if err := s.configStore.Set(keyAPIToken, settings.API.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyAPIToken, err)
		}
	}

	return nil
}

// Set updates one setting by its dotted key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKindOf(key)
	if !ok {
		return domain.NewValidationError(key, "is not a known setting")
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return domain.NewValidationError(key, "must be an integer")
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return domain.NewValidationError(key, "must be a number")
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return domain.NewValidationError(key, "must be true or false")
		}
		parsed = b
	default:
		parsed = value
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if err := s.Validate(); err != nil {
		// Roll back so an invalid value never sticks.
		if existed {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Set(key, defaultValueOf(key))
		}
		return err
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

func keyKindOf(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

func defaultValueOf(key string) any {
	d := domain.DefaultAppSettings()
	switch key {
	case keyAPITimeout:
		return d.API.TimeoutSeconds
	case keyAPIRate:
		return d.API.RequestsPerSecond
	case keyUploadConcurrency:
		return d.Upload.Concurrency
	case keyUploadMaxSize:
		return d.Upload.MaxFileSizeMB
	case keyUploadRequirePDF:
		return d.Upload.RequirePDF
	case keyUploadDoneGrace:
		return d.Upload.DoneGraceMillis
	case keyPollInterval:
		return d.Extraction.PollIntervalSeconds
	case keyPollTimeout:
		return d.Extraction.PollTimeoutSeconds
	case keyMediaProvider:
		return d.Media.Provider.String()
	case keyMediaExpiry:
		return d.Media.URLExpiryMinutes
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return defaultVal
		}
		return f
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMediaProvider(defaultVal domain.MediaProvider) domain.MediaProvider {
	val := s.configStore.GetString(keyMediaProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.MediaProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
