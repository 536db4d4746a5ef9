package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerItemTools(s adder, c Caller) {
	itemID := map[string]any{
		"type":        "string",
		"description": "The unique identifier of the item",
	}

	s.AddTool(mcp.Tool{
		Name:        "s1_list_items",
		Description: "List all item definitions in the game, optionally filtered by category",
		InputSchema: objectSchema(map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Optional category filter",
			},
		}),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if category := req.GetString("category", ""); category != "" {
			params["category"] = category
		}
		return callGame(c, "list_items", params), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_get_item",
		Description: "Get detailed information about an item definition by ID",
		InputSchema: objectSchema(map[string]any{"item_id": itemID}, "item_id"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("item_id")
		if err != nil {
			return mcp.NewToolResultError("item_id is required"), nil
		}
		return callGame(c, "get_item", map[string]any{"item_id": id}), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_spawn_item",
		Description: "Spawn an item in the world at a specific position",
		InputSchema: objectSchema(map[string]any{
			"item_id":  itemID,
			"position": positionProperty("Spawn position coordinates"),
			"quantity": map[string]any{
				"type":        "number",
				"description": "Number of items to spawn (default: 1)",
				"default":     1,
			},
		}, "item_id", "position"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("item_id")
		if err != nil {
			return mcp.NewToolResultError("item_id is required"), nil
		}
		position, ok := requirePosition(req)
		if !ok {
			return mcp.NewToolResultError("position is required"), nil
		}
		params := map[string]any{
			"item_id":  id,
			"position": position,
		}
		if quantity := req.GetFloat("quantity", 1); quantity != 1 {
			params["quantity"] = quantity
		}
		return callGame(c, "spawn_item", params), nil
	})
}
