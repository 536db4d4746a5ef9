// Package tools registers the s1 tool catalog on an MCP server. Every tool is
// a thin passthrough: arguments become the params of a mod server method, and
// the result comes back as indented JSON text content.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/gameproc"
	"github.com/ifbars/s1bridge/internal/modclient"
	"github.com/ifbars/s1bridge/internal/protocol"
)

// defaultMaxRetries is the retry budget for tool-initiated calls.
const defaultMaxRetries = 3

// Caller is the connection-engine surface the tool handlers depend on.
type Caller interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	Call(method string, params map[string]any) (*protocol.Response, error)
	CallWithRetry(method string, params map[string]any, maxRetries int) (*protocol.Response, error)
}

// adder is the slice of the MCP server the registrars need.
type adder interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// RegisterAll adds the complete tool catalog to the server.
func RegisterAll(s *server.MCPServer, c Caller, mgr *gameproc.Manager, cfg *config.Config) {
	registerPlayerTools(s, c)
	registerNPCTools(s, c)
	registerItemTools(s, c)
	registerPropertyTools(s, c)
	registerVehicleTools(s, c)
	registerGameStateTools(s, c)
	registerDebugTools(s, c)
	registerLifecycleTools(s, c, mgr, cfg)
	registerDocsTools(s)
}

// callGame performs one mod call with retries and renders it as a tool result.
// Application errors from the mod become tool errors; they never surface as
// Go errors to the MCP layer.
func callGame(c Caller, method string, params map[string]any) *mcp.CallToolResult {
	resp, err := c.CallWithRetry(method, params, defaultMaxRetries)
	if err != nil {
		if modclient.IsConnError(err) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"connection failed: %v. Ensure the game is running with the mod loaded.", err))
		}
		return mcp.NewToolResultError(err.Error())
	}
	if resp.Error != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s (code: %d)", resp.Error.Message, resp.Error.Code))
	}
	return mcp.NewToolResultText(prettyJSON(resp.Result))
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func objectSchema(props map[string]any, required ...string) mcp.ToolInputSchema {
	if props == nil {
		props = map[string]any{}
	}
	if required == nil {
		required = []string{}
	}
	return mcp.ToolInputSchema{Type: "object", Properties: props, Required: required}
}

// positionProperty is the shared x/y/z coordinate schema.
func positionProperty(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "number", "description": "X coordinate"},
			"y": map[string]any{"type": "number", "description": "Y coordinate"},
			"z": map[string]any{"type": "number", "description": "Z coordinate"},
		},
		"required":    []string{"x", "y", "z"},
		"description": description,
	}
}

// requirePosition extracts a position object argument.
func requirePosition(req mcp.CallToolRequest) (map[string]any, bool) {
	pos, ok := req.GetArguments()["position"].(map[string]any)
	return pos, ok
}
