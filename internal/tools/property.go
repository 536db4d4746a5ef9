package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerPropertyTools(s adder, c Caller) {
	s.AddTool(mcp.Tool{
		Name:        "s1_list_properties",
		Description: "List all properties in the game",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callGame(c, "list_properties", nil), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_get_property",
		Description: "Get detailed information about a property by ID or name",
		InputSchema: objectSchema(map[string]any{
			"property_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the property",
			},
			"property_name": map[string]any{
				"type":        "string",
				"description": "The name of the property (alternative to property_id)",
			},
		}),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("property_id", "")
		name := req.GetString("property_name", "")
		if id == "" && name == "" {
			return mcp.NewToolResultError("property_id or property_name is required"), nil
		}
		params := map[string]any{}
		if id != "" {
			params["property_id"] = id
		}
		if name != "" {
			params["property_name"] = name
		}
		return callGame(c, "get_property", params), nil
	})
}
