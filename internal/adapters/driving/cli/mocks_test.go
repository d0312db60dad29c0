package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// mockResearchService is a mock implementation of driving.ResearchService.
type mockResearchService struct {
	response *domain.SearchResponse
	entries  []domain.CacheEntry
	document *domain.Document
	err      error
}

func (m *mockResearchService) Search(
	_ context.Context,
	_ domain.Query,
) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockResearchService) ListCached(_ context.Context, _ int) ([]domain.CacheEntry, error) {
	return m.entries, m.err
}

func (m *mockResearchService) GetDocument(
	_ context.Context,
	_ domain.Fingerprint,
) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, m.err
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() func() {
	oldService := researchService

	researchService = &mockResearchService{
		response: &domain.SearchResponse{
			Documents: []domain.Document{{
				Fingerprint: domain.Fingerprint("fp-1"),
				URL:         "https://example.com/a",
				Title:       "Example Result",
				Score:       0.92,
				Text:        "example body",
			}},
			CacheStatus: domain.CacheStatusMiss,
		},
		entries: []domain.CacheEntry{{
			QueryKey:  "example query\x00\x00false",
			Provider:  "exa",
			Documents: []domain.Document{{URL: "https://example.com/a"}},
			FetchedAt: time.Now().UTC(),
		}},
		document: &domain.Document{
			Fingerprint: domain.Fingerprint("fp-1"),
			URL:         "https://example.com/a",
			Title:       "Example Result",
			Text:        "example body",
		},
	}

	return func() {
		researchService = oldService
	}
}
