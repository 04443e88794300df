// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vintlab/vint/internal/contract"
)

// NewMCPServer initializes and configures the Vint MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.SnapshotManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Vint Vintage Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_series_asof ---
	s.AddTool(mcp.NewTool("get_series_asof",
		mcp.WithDescription("Reconstruct a time series exactly as it was known on a given vintage date."),
		mcp.WithString("series_id", mcp.Description("Series identifier (e.g. UNRATE)."), mcp.Required()),
		mcp.WithString("vintage", mcp.Description("Vintage date in YYYY-MM-DD form."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start of the observation date range (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("End of the observation date range (YYYY-MM-DD).")),
	), h.handleGetSeriesAsOf)

	// --- 2. Tool: get_revisions ---
	s.AddTool(mcp.NewTool("get_revisions",
		mcp.WithDescription("List every published value for one observation date, with release-to-release deltas."),
		mcp.WithString("series_id", mcp.Description("Series identifier."), mcp.Required()),
		mcp.WithString("observation_date", mcp.Description("Observation date in YYYY-MM-DD form."), mcp.Required()),
	), h.handleGetRevisions)

	// --- 3. Tool: compare_vintages ---
	s.AddTool(mcp.NewTool("compare_vintages",
		mcp.WithDescription("Diff a series between two vintage dates, observation by observation."),
		mcp.WithString("series_id", mcp.Description("Series identifier."), mcp.Required()),
		mcp.WithString("vintage_a", mcp.Description("First vintage date (YYYY-MM-DD)."), mcp.Required()),
		mcp.WithString("vintage_b", mcp.Description("Second vintage date (YYYY-MM-DD)."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start of the observation date range.")),
		mcp.WithString("end", mcp.Description("End of the observation date range.")),
	), h.handleCompareVintages)

	// --- 4. Tool: get_outliers ---
	s.AddTool(mcp.NewTool("get_outliers",
		mcp.WithDescription("Flag anomalous values and unusually large revisions in a series."),
		mcp.WithString("series_id", mcp.Description("Series identifier."), mcp.Required()),
		mcp.WithString("kind", mcp.Description("Detection kind. Defaults to 'both'."), mcp.Enum("level", "revision", "both")),
		mcp.WithNumber("threshold", mcp.Description("Z-score threshold above which a point is flagged.")),
	), h.handleGetOutliers)

	// --- 5. Tool: top_series ---
	s.AddTool(mcp.NewTool("top_series",
		mcp.WithDescription("Rank series by how often they have been queried."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleTopSeries)

	return s
}

// StartMCPServer starts the Vint MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.SnapshotManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
