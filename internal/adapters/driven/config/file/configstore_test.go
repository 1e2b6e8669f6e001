package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_EnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".citedock", "config.toml"), store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("api.base_url", "https://api.example.com"))
	require.NoError(t, store.Set("upload.concurrency", 4))
	require.NoError(t, store.Set("api.requests_per_second", 2.5))
	require.NoError(t, store.Set("upload.require_pdf", true))
	require.NoError(t, store.Set("watch.patterns", []string{"*.pdf"}))

	assert.Equal(t, "https://api.example.com", store.GetString("api.base_url"))
	assert.Equal(t, 4, store.GetInt("upload.concurrency"))
	assert.Equal(t, 2.5, store.GetFloat("api.requests_per_second"))
	assert.Equal(t, 4.0, store.GetFloat("upload.concurrency"))
	assert.True(t, store.GetBool("upload.require_pdf"))
	assert.Equal(t, []string{"*.pdf"}, store.GetStringSlice("watch.patterns"))

	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("api.base_url"))
	assert.False(t, store.GetBool("api.base_url"))
	assert.Nil(t, store.GetStringSlice("upload.concurrency"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("api.base_url", "https://api.example.com"))
	require.NoError(t, store.Set("upload.concurrency", 4))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[api]")
	assert.Contains(t, string(raw), "[upload]")
	assert.NotContains(t, string(raw), `"api.base_url"`)
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("api.base_url", "https://api.example.com"))
	require.NoError(t, store.Set("extraction.poll_interval_seconds", 5))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", reopened.GetString("api.base_url"))
	assert.Equal(t, 5, reopened.GetInt("extraction.poll_interval_seconds"))
	assert.Equal(t, []string{"api.base_url", "extraction.poll_interval_seconds"}, reopened.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "[api]\nbase_url = \"https://x\"\ntimeout_seconds = 10\n\n[media]\nprovider = \"gcs\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://x", store.GetString("api.base_url"))
	assert.Equal(t, 10, store.GetInt("api.timeout_seconds"))
	assert.Equal(t, "gcs", store.GetString("media.provider"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("api.token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_ConflictingKeysRollBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("api.base_url", "https://x"))

	err = store.Set("api", "flat")
	require.Error(t, err)

	_, ok := store.Get("api")
	assert.False(t, ok)
	assert.Equal(t, "https://x", store.GetString("api.base_url"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("upload.concurrency", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("upload.concurrency")
		}()
	}
	wg.Wait()
}

func TestNestKeys(t *testing.T) {
	nested, err := nestKeys(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
