package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockResearch := &mockResearchService{
			response: &domain.SearchResponse{
				Documents: []domain.Document{{
					Fingerprint:   domain.Fingerprint("fp-1"),
					URL:           "https://example.com/a",
					Title:         "Test Doc",
					Author:        "Ada",
					PublishedDate: "2024-01-01",
					Score:         0.95,
					Text:          "This is the content",
				}},
				CacheStatus: domain.CacheStatusHit,
			},
		}

		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		input := SearchInput{Query: "test", Count: 5}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "hit", output.CacheStatus)
		assert.False(t, output.Partial)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "fp-1", output.Results[0].Fingerprint)
		assert.Equal(t, "https://example.com/a", output.Results[0].URL)
		assert.Equal(t, "Test Doc", output.Results[0].Title)
		assert.Equal(t, 0.95, output.Results[0].Score)
		assert.Equal(t, "This is the content", output.Results[0].Snippet)
	})

	t.Run("applies default count", func(t *testing.T) {
		mockResearch := &mockResearchService{
			response: &domain.SearchResponse{CacheStatus: domain.CacheStatusMiss},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.Equal(t, defaultSearchCount, mockResearch.lastQuery.Count)
	})

	t.Run("passes query options through", func(t *testing.T) {
		mockResearch := &mockResearchService{
			response: &domain.SearchResponse{CacheStatus: domain.CacheStatusMiss},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		input := SearchInput{Query: "test", Count: 3, Category: "news", Livecrawl: true}
		_, _, err = server.handleSearch(ctx, nil, input)
		require.NoError(t, err)
		assert.Equal(t, "news", mockResearch.lastQuery.Category)
		assert.True(t, mockResearch.lastQuery.Livecrawl)
		assert.Equal(t, 3, mockResearch.lastQuery.Count)
	})

	t.Run("surfaces partial responses with warning", func(t *testing.T) {
		mockResearch := &mockResearchService{
			response: &domain.SearchResponse{
				Documents:   []domain.Document{{URL: "https://example.com/a"}},
				Partial:     true,
				CacheStatus: domain.CacheStatusStale,
				Warning:     "provider unavailable, serving cached results",
			},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.True(t, output.Partial)
		assert.Equal(t, "stale", output.CacheStatus)
		assert.NotEmpty(t, output.Warning)
	})

	t.Run("truncates long text to a snippet", func(t *testing.T) {
		long := strings.Repeat("x", snippetLimit*2)
		mockResearch := &mockResearchService{
			response: &domain.SearchResponse{
				Documents:   []domain.Document{{Text: long}},
				CacheStatus: domain.CacheStatusHit,
			},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.Len(t, output.Results[0].Snippet, snippetLimit+3)
		assert.True(t, strings.HasSuffix(output.Results[0].Snippet, "..."))
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockResearch := &mockResearchService{
			err: &domain.ProviderError{Transient: true, Attempts: 3},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temporarily unavailable")
	})

	t.Run("invalid query error passes through unchanged", func(t *testing.T) {
		mockResearch := &mockResearchService{
			err: domain.ErrInvalidQuery,
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: ""})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})
}

func TestServer_handleGetContents(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document text", func(t *testing.T) {
		mockResearch := &mockResearchService{
			document: &domain.Document{
				Fingerprint: domain.Fingerprint("fp-1"),
				URL:         "https://example.com/a",
				Title:       "Test Doc",
				Text:        "full document body",
			},
		}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, output, err := server.handleGetContents(ctx, nil, GetContentsInput{Fingerprint: "fp-1"})
		require.NoError(t, err)
		assert.Equal(t, "fp-1", output.Fingerprint)
		assert.Equal(t, "full document body", output.Text)
	})

	t.Run("returns error for unknown fingerprint", func(t *testing.T) {
		mockResearch := &mockResearchService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Research: mockResearch})
		require.NoError(t, err)

		_, _, err = server.handleGetContents(ctx, nil, GetContentsInput{Fingerprint: "nope"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
