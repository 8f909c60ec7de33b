package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

// stringArg returns a string argument and whether it was supplied as a string.
func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok
}

// idArg reads an entry id. JSON numbers arrive as float64.
func idArg(request mcp.CallToolRequest, name string) (int64, error) {
	raw, ok := request.Params.Arguments[name]
	if !ok {
		return 0, fmt.Errorf("'%s' parameter is required", name)
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || f < 1 {
		return 0, fmt.Errorf("'%s' must be a positive integer", name)
	}
	return int64(f), nil
}

// monthArg returns the "month" argument, validated, or the current month.
func monthArg(request mcp.CallToolRequest, clock Clock) (string, error) {
	month, ok := stringArg(request, "month")
	month = strings.TrimSpace(month)
	if !ok || month == "" {
		return journal.FormatMonth(clock()), nil
	}
	if _, err := journal.ParseMonth(month); err != nil {
		return "", err
	}
	return month, nil
}

// dateArg reads a required YYYY-MM-DD argument.
func dateArg(request mcp.CallToolRequest, name string) (string, error) {
	date, ok := stringArg(request, name)
	if !ok || strings.TrimSpace(date) == "" {
		return "", fmt.Errorf("'%s' parameter is required (YYYY-MM-DD)", name)
	}
	parsed, err := journal.ParseDate(date)
	if err != nil {
		return "", err
	}
	return journal.FormatDate(parsed), nil
}

// jsonResult serializes v as the text content of a tool result.
func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize %s to JSON: %v", what, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
