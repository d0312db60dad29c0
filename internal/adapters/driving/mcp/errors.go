// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Quarry. It lets AI assistants run cached web research queries and read
// previously fetched documents.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// ErrMissingResearchService is returned when the research service is not provided.
var ErrMissingResearchService = errors.New("mcp: research service is required")

// describeError rewords domain errors for MCP clients. Invalid input
// stays as-is; infrastructure failures get a hint about retryability.
func describeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return err
	case domain.IsTransientProviderError(err):
		return fmt.Errorf("search provider temporarily unavailable, retry later: %w", err)
	case errors.Is(err, domain.ErrProviderUnavailable):
		return fmt.Errorf("search provider unavailable: %w", err)
	case domain.IsStorageError(err):
		return fmt.Errorf("result cache unavailable: %w", err)
	default:
		return err
	}
}
