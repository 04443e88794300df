package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.SnapshotManager
}

func (h *toolHandler) handleGetSeriesAsOf(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SeriesID = request.GetString("series_id", "")

	var err error
	if cfg.Vintage, err = parseToolDate(request.GetString("vintage", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid vintage: %v", err)), nil
	}
	if cfg.Range, err = parseToolRange(request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid range: %v", err)), nil
	}

	view, err := core.GetAsOfResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("as-of query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRevisions(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SeriesID = request.GetString("series_id", "")

	var err error
	if cfg.ObservationDate, err = parseToolDate(request.GetString("observation_date", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid observation_date: %v", err)), nil
	}

	deltas, err := core.GetRevisionResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("revision query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(deltas, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareVintages(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SeriesID = request.GetString("series_id", "")

	var err error
	if cfg.Vintage, err = parseToolDate(request.GetString("vintage_a", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid vintage_a: %v", err)), nil
	}
	if cfg.VintageB, err = parseToolDate(request.GetString("vintage_b", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid vintage_b: %v", err)), nil
	}
	if cfg.Range, err = parseToolRange(request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid range: %v", err)), nil
	}

	diffs, err := core.GetCompareResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(diffs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetOutliers(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SeriesID = request.GetString("series_id", "")
	if k := request.GetString("kind", ""); k != "" {
		cfg.Kind = k
	}
	if cfg.Kind == "" {
		cfg.Kind = "both"
	}
	if t := request.GetFloat("threshold", 0); t > 0 {
		cfg.Threshold = t
	}

	flags, err := core.GetOutlierResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("outlier scan failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(flags, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleTopSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = contract.DefaultResultLimit
	}

	ranks, err := core.GetTopResults(cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(ranks, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseToolDate parses a required YYYY-MM-DD tool argument.
func parseToolDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("a date in %s form is required", schema.DateFormat)
	}
	t, err := time.Parse(schema.DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return schema.Day(t), nil
}

// parseToolRange parses the optional start/end arguments shared by tools.
func parseToolRange(request mcp.CallToolRequest) (schema.ObservationRange, error) {
	var rng schema.ObservationRange
	if s := request.GetString("start", ""); s != "" {
		t, err := time.Parse(schema.DateFormat, s)
		if err != nil {
			return rng, err
		}
		rng.Start = schema.Day(t)
	}
	if e := request.GetString("end", ""); e != "" {
		t, err := time.Parse(schema.DateFormat, e)
		if err != nil {
			return rng, err
		}
		rng.End = schema.Day(t)
	}
	return rng, nil
}
