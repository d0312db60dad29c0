package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Quarry resources.
	uriScheme = "quarry://"

	// queriesResourceLimit caps the number of entries the queries
	// resource lists.
	queriesResourceLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing recent cached queries.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queries",
		Name:        "queries",
		Description: "Recently cached search queries, newest first",
		MIMEType:    "application/json",
	}, s.handleQueriesResource)

	// Template for document content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{fingerprint}",
		Name:        "document-content",
		Description: "Full text of a cached document",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)
}

// handleQueriesResource returns the recent cache entries.
func (s *Server) handleQueriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.Research.ListCached(ctx, queriesResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("listing cached queries: %w", err)
	}

	// Build simplified entry list.
	type entryInfo struct {
		QueryKey  string    `json:"query_key"`
		Provider  string    `json:"provider"`
		Documents int       `json:"documents"`
		FetchedAt time.Time `json:"fetched_at"`
	}

	infos := make([]entryInfo, len(entries))
	for i := range entries {
		infos[i] = entryInfo{
			QueryKey:  entries[i].QueryKey,
			Provider:  entries[i].Provider,
			Documents: len(entries[i].Documents),
			FetchedAt: entries[i].FetchedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling queries: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentResource returns the content of a cached document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract fingerprint from URI: quarry://documents/{fingerprint}
	fp := extractFingerprint(req.Params.URI)
	if fp == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Research.GetDocument(ctx, domain.Fingerprint(fp))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text,
		}},
	}, nil
}

// extractFingerprint extracts the fingerprint from a URI like
// quarry://documents/{fingerprint}.
func extractFingerprint(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
