package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

func TestCacheListCmd_ShowsEntries(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cache", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Cached queries:")
	assert.Contains(t, buf.String(), `"example query"`)
	assert.Contains(t, buf.String(), "provider exa")
}

func TestCacheListCmd_EmptyCache(t *testing.T) {
	oldService := researchService
	researchService = &mockResearchService{}
	defer func() {
		researchService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cache", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Cache is empty")
}

func TestCacheShowCmd_PrintsDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cache", "show", "fp-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Example Result")
	assert.Contains(t, buf.String(), "example body")
}

func TestCacheShowCmd_NotFound(t *testing.T) {
	oldService := researchService
	researchService = &mockResearchService{err: domain.ErrNotFound}
	defer func() {
		researchService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"cache", "show", "nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no cached document")
}

func TestDisplayQueryKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"plain query", "golang\x00\x00false", `"golang"`},
		{"with category", "golang\x00news\x00false", `"golang" category=news`},
		{"with livecrawl", "golang\x00\x00true", `"golang" livecrawl`},
		{"unrecognised shape", "just a key", "just a key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayQueryKey(tt.key))
		})
	}
}
