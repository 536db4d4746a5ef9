package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerDebugTools(s adder, c Caller) {
	s.AddTool(mcp.Tool{
		Name: "s1_inspect_object",
		Description: "Inspect a Unity GameObject or component using reflection. " +
			"Useful for debugging and discovering game object properties.",
		InputSchema: objectSchema(map[string]any{
			"object_name": map[string]any{
				"type":        "string",
				"description": "The name of the GameObject to inspect",
			},
			"object_type": map[string]any{
				"type": "string",
				"description": "The type of object to inspect (e.g., 'GameObject', 'Component', " +
					"or a specific component type name)",
				"default": "GameObject",
			},
		}, "object_name"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("object_name")
		if err != nil {
			return mcp.NewToolResultError("object_name is required"), nil
		}
		return callGame(c, "inspect_object", map[string]any{
			"object_name": name,
			"object_type": req.GetString("object_type", "GameObject"),
		}), nil
	})
}
