package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresResearchService(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResearchService)
}

func TestNewServer_Success(t *testing.T) {
	server, err := NewServer(&Ports{Research: &mockResearchService{}})
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, defaultSearchCount, server.defaultCount)
}

func TestServer_SetDefaultCount(t *testing.T) {
	server, err := NewServer(&Ports{Research: &mockResearchService{}})
	require.NoError(t, err)

	server.SetDefaultCount(10)
	assert.Equal(t, 10, server.defaultCount)

	// Non-positive values are ignored
	server.SetDefaultCount(0)
	assert.Equal(t, 10, server.defaultCount)
}
