package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/simpledraw/internal/prefs"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *prefs.Store
	Version string
}

// NewMCPServer creates an MCP server exposing the drawing preferences.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"simpledraw",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("simpledraw: read and change drawing preferences such as brush color, stroke width and theme."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_settings",
			mcp.WithDescription("List every drawing preference with its current value and default."),
		),
		mcpListSettings(deps),
	)

	s.AddTool(
		mcp.NewTool("get_setting",
			mcp.WithDescription("Read one drawing preference."),
			mcp.WithString("key", mcp.Description("Setting key (e.g. brush-color)"), mcp.Required()),
		),
		mcpGetSetting(deps),
	)

	s.AddTool(
		mcp.NewTool("set_setting",
			mcp.WithDescription("Change one drawing preference. Colors use #AARRGGBB or #RRGGBB."),
			mcp.WithString("key", mcp.Description("Setting key (e.g. stroke-width)"), mcp.Required()),
			mcp.WithString("value", mcp.Description("New value in text form"), mcp.Required()),
		),
		mcpSetSetting(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_setting",
			mcp.WithDescription("Restore one drawing preference to its default."),
			mcp.WithString("key", mcp.Description("Setting key"), mcp.Required()),
		),
		mcpResetSetting(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"settings://all",
			"Drawing Preferences",
			mcp.WithResourceDescription("All drawing preferences as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceSettings(deps),
	)

	return s
}

func mcpListSettings(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Store.Snapshot())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal settings: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetSetting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		v, err := deps.Store.Get(key)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(v), nil
	}
}

func mcpSetSetting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}

		if err := deps.Store.SetText(key, value); err != nil {
			return mcpError(fmt.Sprintf("failed to set setting: %v", err)), nil
		}

		current, _ := deps.Store.Get(key)
		return mcpText(fmt.Sprintf("Set %s = %s", key, current)), nil
	}
}

func mcpResetSetting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		if err := deps.Store.ResetText(key); err != nil {
			return mcpError(err.Error()), nil
		}
		current, _ := deps.Store.Get(key)
		return mcpText(fmt.Sprintf("Reset %s to %s", key, current)), nil
	}
}

func mcpResourceSettings(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Store.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal settings: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
