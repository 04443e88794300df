package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/internal/contract"
	mcp_internal "github.com/vintlab/vint/internal/mcp"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		Kind:         "both",
		Threshold:    contract.DefaultThreshold,
		Window:       contract.DefaultWindow,
		MinRevisions: contract.DefaultMinRevisions,
		ResultLimit:  contract.DefaultResultLimit,
	}

	// A dummy manager is enough, validation errors surface before storage
	var mgr contract.SnapshotManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	t.Run("get_series_asof missing vintage", func(t *testing.T) {
		tool := s.GetTool("get_series_asof")
		require.NotNil(t, tool, "Tool get_series_asof should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_series_asof",
				Arguments: map[string]any{
					"series_id": "UNRATE",
					"vintage":   "", // Missing required
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid vintage")
	})

	t.Run("get_series_asof malformed start", func(t *testing.T) {
		tool := s.GetTool("get_series_asof")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_series_asof",
				Arguments: map[string]any{
					"series_id": "UNRATE",
					"vintage":   "2023-06-15",
					"start":     "June 2023", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid range")
	})

	t.Run("get_revisions missing observation_date", func(t *testing.T) {
		tool := s.GetTool("get_revisions")
		require.NotNil(t, tool, "Tool get_revisions should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_revisions",
				Arguments: map[string]any{
					"series_id": "GDPC1",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid observation_date")
	})

	t.Run("compare_vintages malformed vintage_b", func(t *testing.T) {
		tool := s.GetTool("compare_vintages")
		require.NotNil(t, tool, "Tool compare_vintages should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "compare_vintages",
				Arguments: map[string]any{
					"series_id": "GDPC1",
					"vintage_a": "2023-04-30",
					"vintage_b": "30/04/2023", // Invalid
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid vintage_b")
	})
}

func TestMCPServerTools_Registered(t *testing.T) {
	s := mcp_internal.NewMCPServer(&contract.Config{}, nil)
	for _, name := range []string{"get_series_asof", "get_revisions", "compare_vintages", "get_outliers", "top_series"} {
		assert.NotNil(t, s.GetTool(name), "Tool %s should exist", name)
	}
}
