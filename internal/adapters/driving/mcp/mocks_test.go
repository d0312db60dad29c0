package mcp

import (
	"context"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// mockResearchService is a mock implementation of driving.ResearchService.
type mockResearchService struct {
	response  *domain.SearchResponse
	entries   []domain.CacheEntry
	document  *domain.Document
	err       error
	lastQuery domain.Query
}

func (m *mockResearchService) Search(
	_ context.Context,
	query domain.Query,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
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
	return m.document, m.err
}
