package mcp

import (
	"context"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// snippetLimit caps the amount of document text returned inline with
// search results. Full text is available through get_contents.
const snippetLimit = 400

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"the search query text"`
	Count     int    `json:"count,omitempty" jsonschema:"number of results to return (default 5)"`
	Category  string `json:"category,omitempty" jsonschema:"optional result category such as 'research paper' or 'news'"`
	Livecrawl bool   `json:"livecrawl,omitempty" jsonschema:"ask the provider for freshly crawled page content"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results     []SearchResultOutput `json:"results"`
	Count       int                  `json:"count"`
	Partial     bool                 `json:"partial"`
	CacheStatus string               `json:"cache_status"`
	Warning     string               `json:"warning,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Fingerprint   string  `json:"fingerprint"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Author        string  `json:"author,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
	Score         float64 `json:"score"`
	Snippet       string  `json:"snippet"`
}

// GetContentsInput is the input schema for the get_contents tool.
type GetContentsInput struct {
	Fingerprint string `json:"fingerprint" jsonschema:"the document fingerprint from a previous search result"`
}

// GetContentsOutput is the output schema for the get_contents tool.
type GetContentsOutput struct {
	Fingerprint string `json:"fingerprint"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Text        string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the web with result caching; repeated queries are served from the local cache",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_contents",
		Description: "Retrieve the full text of a previously fetched document by fingerprint",
	}, s.handleGetContents)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.Query{
		Text:      input.Query,
		Count:     input.Count,
		Category:  input.Category,
		Livecrawl: input.Livecrawl,
	}
	if query.Count <= 0 {
		query.Count = s.defaultCount
	}

	resp, err := s.ports.Research.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, describeError(err)
	}

	output := SearchOutput{
		Results:     make([]SearchResultOutput, len(resp.Documents)),
		Count:       len(resp.Documents),
		Partial:     resp.Partial,
		CacheStatus: string(resp.CacheStatus),
		Warning:     resp.Warning,
	}

	for i := range resp.Documents {
		doc := &resp.Documents[i]
		output.Results[i] = SearchResultOutput{
			Fingerprint:   string(doc.Fingerprint),
			URL:           doc.URL,
			Title:         doc.Title,
			Author:        doc.Author,
			PublishedDate: doc.PublishedDate,
			Score:         doc.Score,
			Snippet:       snippet(doc.Text),
		}
	}

	return nil, output, nil
}

// handleGetContents handles the get_contents tool invocation.
func (s *Server) handleGetContents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetContentsInput,
) (*mcp.CallToolResult, GetContentsOutput, error) {
	doc, err := s.ports.Research.GetDocument(ctx, domain.Fingerprint(input.Fingerprint))
	if err != nil {
		return nil, GetContentsOutput{}, describeError(err)
	}

	return nil, GetContentsOutput{
		Fingerprint: string(doc.Fingerprint),
		URL:         doc.URL,
		Title:       doc.Title,
		Text:        doc.Text,
	}, nil
}

// snippet truncates document text on a rune boundary.
func snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetLimit]) + "..."
}
