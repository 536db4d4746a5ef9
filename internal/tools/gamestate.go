package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func registerGameStateTools(s adder, c Caller) {
	s.AddTool(mcp.Tool{
		Name: "s1_get_game_state",
		Description: "Get current game state information including scene, game time, " +
			"network status, game version, and loaded mods",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callGame(c, "get_game_state", nil), nil
	})
}
