package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerNPCTools(s adder, c Caller) {
	npcID := map[string]any{
		"type":        "string",
		"description": "The unique identifier of the NPC",
	}

	s.AddTool(mcp.Tool{
		Name:        "s1_get_npc",
		Description: "Get detailed information about a specific NPC by ID",
		InputSchema: objectSchema(map[string]any{"npc_id": npcID}, "npc_id"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("npc_id")
		if err != nil {
			return mcp.NewToolResultError("npc_id is required"), nil
		}
		return callGame(c, "get_npc", map[string]any{"npc_id": id}), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_list_npcs",
		Description: "List all NPCs in the game, optionally filtered by state",
		InputSchema: objectSchema(map[string]any{
			"filter": map[string]any{
				"type":        "string",
				"enum":        []string{"conscious", "unconscious", "in_building", "in_vehicle"},
				"description": "Optional filter to apply to the list",
			},
		}),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if filter := req.GetString("filter", ""); filter != "" {
			params["filter"] = filter
		}
		return callGame(c, "list_npcs", params), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_get_npc_position",
		Description: "Get the current position of an NPC",
		InputSchema: objectSchema(map[string]any{"npc_id": npcID}, "npc_id"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("npc_id")
		if err != nil {
			return mcp.NewToolResultError("npc_id is required"), nil
		}
		return callGame(c, "get_npc_position", map[string]any{"npc_id": id}), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_teleport_npc",
		Description: "Teleport an NPC to a specific position",
		InputSchema: objectSchema(map[string]any{
			"npc_id":   npcID,
			"position": positionProperty("Target position coordinates"),
		}, "npc_id", "position"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("npc_id")
		if err != nil {
			return mcp.NewToolResultError("npc_id is required"), nil
		}
		position, ok := requirePosition(req)
		if !ok {
			return mcp.NewToolResultError("position is required"), nil
		}
		return callGame(c, "teleport_npc", map[string]any{
			"npc_id":   id,
			"position": position,
		}), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_set_npc_health",
		Description: "Modify an NPC's health value",
		InputSchema: objectSchema(map[string]any{
			"npc_id": npcID,
			"health": map[string]any{
				"type":        "number",
				"description": "New health value",
			},
		}, "npc_id", "health"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("npc_id")
		if err != nil {
			return mcp.NewToolResultError("npc_id is required"), nil
		}
		health, err := req.RequireFloat("health")
		if err != nil {
			return mcp.NewToolResultError("health is required"), nil
		}
		return callGame(c, "set_npc_health", map[string]any{
			"npc_id": id,
			"health": health,
		}), nil
	})
}
