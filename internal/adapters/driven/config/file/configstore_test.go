package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupConfigStore writes a config file and opens a store over it.
func setupConfigStore(t *testing.T, content string) *ConfigStore {
	t.Helper()

	tempDir := t.TempDir()
	if content != "" {
		err := os.WriteFile(filepath.Join(tempDir, "config.toml"), []byte(content), 0600)
		require.NoError(t, err)
	}

	store, err := NewConfigStore(tempDir)
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store := setupConfigStore(t, "")

	_, ok := store.Get("provider.api_key")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("provider.api_key"))
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "config.toml"), []byte("not = [valid"), 0600)
	require.NoError(t, err)

	_, err = NewConfigStore(tempDir)
	assert.Error(t, err)
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	store := setupConfigStore(t, `
[provider]
api_key = "secret"
max_attempts = 5
rate = 2.5

[cache]
max_age = "24h"

[search]
default_count = 10

[normaliser]
boilerplate_markers = ["cookie notice", "subscribe now"]
`)

	assert.Equal(t, "secret", store.GetString("provider.api_key"))
	assert.Equal(t, 5, store.GetInt("provider.max_attempts"))
	assert.Equal(t, 2.5, store.GetFloat("provider.rate"))
	assert.Equal(t, "24h", store.GetString("cache.max_age"))
	assert.Equal(t, 10, store.GetInt("search.default_count"))
	assert.Equal(t, []string{"cookie notice", "subscribe now"},
		store.GetStringSlice("normaliser.boilerplate_markers"))
}

func TestConfigStore_TypeMismatchesReturnZeroValues(t *testing.T) {
	store := setupConfigStore(t, `
key = "string value"
num = 42
flag = true
`)

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, "", store.GetString("num"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("num"))
}

func TestConfigStore_GetFloatWidensIntegers(t *testing.T) {
	store := setupConfigStore(t, "rate = 3")

	assert.Equal(t, 3.0, store.GetFloat("rate"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := setupConfigStore(t, "verbose = true")

	assert.True(t, store.GetBool("verbose"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_Path(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewConfigStore(tempDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, "config.toml"), store.Path())
}
