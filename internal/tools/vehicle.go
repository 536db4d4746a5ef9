package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerVehicleTools(s adder, c Caller) {
	s.AddTool(mcp.Tool{
		Name:        "s1_list_vehicles",
		Description: "List all vehicles in the game",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callGame(c, "list_vehicles", nil), nil
	})

	s.AddTool(mcp.Tool{
		Name:        "s1_get_vehicle",
		Description: "Get detailed information about a vehicle by ID",
		InputSchema: objectSchema(map[string]any{
			"vehicle_id": map[string]any{
				"type":        "string",
				"description": "The unique identifier of the vehicle",
			},
		}, "vehicle_id"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("vehicle_id")
		if err != nil {
			return mcp.NewToolResultError("vehicle_id is required"), nil
		}
		return callGame(c, "get_vehicle", map[string]any{"vehicle_id": id}), nil
	})
}
