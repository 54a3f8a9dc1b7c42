// Package tools exposes the resource manifest as MCP tools so agents can
// list and clean up resources created across sessions.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakehouse-portfolio/workspace-tools/internal/manifest"
)

// ListTool lists tracked resources, optionally filtered by type.
type ListTool struct {
	gateway *manifest.Gateway
}

// NewListTool wires the list tool to the gateway.
func NewListTool(gateway *manifest.Gateway) *ListTool {
	return &ListTool{gateway: gateway}
}

// Definition describes the tool to MCP clients.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tracked_resources",
		mcp.WithDescription("List resources tracked in the project manifest. The manifest records every resource created through this server (dashboards, jobs, pipelines, Genie spaces, knowledge assistants, multi-agent supervisors, catalogs, schemas, volumes). Use this to see what was created across sessions."),
		mcp.WithString("type",
			mcp.Description(fmt.Sprintf("Optional filter by resource type. One of: %v. Omit to return all tracked resources.", manifest.Types)),
		),
	)
}

// Handle serves one list_tracked_resources call.
func (t *ListTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeFilter := manifest.Type(req.GetString("type", ""))
	if typeFilter != "" && !manifest.KnownType(typeFilter) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown resource type %q; expected one of %v", typeFilter, manifest.Types)), nil
	}
	return jsonResult(t.gateway.List(typeFilter))
}

// DeleteTool removes a resource from the manifest and optionally from the
// workspace itself.
type DeleteTool struct {
	gateway *manifest.Gateway
}

// NewDeleteTool wires the delete tool to the gateway.
func NewDeleteTool(gateway *manifest.Gateway) *DeleteTool {
	return &DeleteTool{gateway: gateway}
}

// Definition describes the tool to MCP clients.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_tracked_resource",
		mcp.WithDescription("Delete a resource from the project manifest, and optionally from Databricks. Use this to clean up resources created during development or testing. The result reports what actually happened; remote deletion failures never abort manifest cleanup."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Resource type, one of: %v.", manifest.Types)),
		),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("The resource id as shown by list_tracked_resources. Catalogs, schemas, and volumes use their fully qualified name."),
		),
		mcp.WithBoolean("delete_from_databricks",
			mcp.Description("Also delete the resource from Databricks before removing it from the manifest. Default: false (manifest only)."),
		),
	)
}

// Handle serves one delete_tracked_resource call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := manifest.Type(req.GetString("type", ""))
	id := req.GetString("resource_id", "")
	if typ == "" || id == "" {
		return mcp.NewToolResultError("type and resource_id are required"), nil
	}
	alsoRemote := req.GetBool("delete_from_databricks", false)

	return jsonResult(t.gateway.Delete(ctx, typ, id, alsoRemote))
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tools: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
