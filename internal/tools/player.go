package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerPlayerTools(s adder, c Caller) {
	s.AddTool(mcp.Tool{
		Name:        "s1_get_player",
		Description: "Get current player information including position, health, money, and network status",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callGame(c, "get_player", nil), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_get_player_inventory",
		Description: "Get the player's inventory items",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callGame(c, "get_player_inventory", nil), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_teleport_player",
		Description: "Teleport the player to a specific position",
		InputSchema: objectSchema(map[string]any{
			"position": positionProperty("Target position coordinates"),
		}, "position"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		position, ok := requirePosition(req)
		if !ok {
			return mcp.NewToolResultError("position is required"), nil
		}
		return callGame(c, "teleport_player", map[string]any{"position": position}), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_add_item_to_player",
		Description: "Add item(s) to the player's inventory",
		InputSchema: objectSchema(map[string]any{
			"item_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the item",
			},
			"quantity": map[string]any{
				"type":        "number",
				"description": "Number of items to add (default: 1)",
				"default":     1,
			},
		}, "item_id"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		itemID, err := req.RequireString("item_id")
		if err != nil {
			return mcp.NewToolResultError("item_id is required"), nil
		}
		return callGame(c, "add_item_to_player", map[string]any{
			"item_id":  itemID,
			"quantity": req.GetFloat("quantity", 1),
		}), nil
	})
}
