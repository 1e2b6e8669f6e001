package memory

import (
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/citedock/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvPrefix marks environment variables that carry settings.
const EnvPrefix = "CITEDOCK_"

// envSections are the settings sections an environment variable may name.
// CITEDOCK_API_BASE_URL maps to api.base_url.
var envSections = []string{"api", "upload", "extraction", "media", "storage"}

// ConfigStore keeps settings in memory. It backs the settings service when
// the config directory cannot be used, seeded from CITEDOCK_* variables.
// Changes last for the process only.
//
// Values taken from the environment are strings; the typed getters parse them.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	source string
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
		source: ":memory:",
	}
}

// NewConfigStoreFromEnv creates a store seeded from environ entries
// ("KEY=value") such as os.Environ returns. Variables outside the known
// sections, like CITEDOCK_CONFIG_DIR, are ignored.
func NewConfigStoreFromEnv(environ []string) *ConfigStore {
	s := NewConfigStore()
	s.source = "environment"
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key, ok := envKey(name); ok {
			s.values[key] = value
		}
	}
	return s
}

// envKey maps CITEDOCK_UPLOAD_MAX_FILE_SIZE_MB to upload.max_file_size_mb.
func envKey(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, EnvPrefix)
	if !ok {
		return "", false
	}
	rest = strings.ToLower(rest)
	for _, section := range envSections {
		if field, ok := strings.CutPrefix(rest, section+"_"); ok && field != "" {
			return section + "." + field, true
		}
	}
	return "", false
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string value. Numbers and booleans are formatted.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// GetInt retrieves an integer value, parsing strings.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// GetBool retrieves a boolean value, parsing strings.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// GetStringSlice retrieves a list. A string value is split on commas.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return v
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// Set stores a value for the lifetime of the process.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op; nothing outlives the process.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op; the store is seeded on construction.
func (s *ConfigStore) Load() error {
	return nil
}

// Path names where the values came from.
func (s *ConfigStore) Path() string {
	return s.source
}
