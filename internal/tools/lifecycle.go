package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/gameproc"
	"github.com/ifbars/s1bridge/internal/logx"
)

func registerLifecycleTools(s adder, c Caller, mgr *gameproc.Manager, cfg *config.Config) {
	log := logx.Log.With().Str("component", "lifecycle").Logger()

	s.AddTool(mcp.Tool{
		Name: "s1_launch_game",
		Description: "Launch the Schedule I game with specified version (IL2CPP or Mono) and optional debugging. " +
			"Automatically waits for the game to start and establishes connection to the mod server. " +
			"Use this to start the game before testing mods.",
		InputSchema: objectSchema(map[string]any{
			"version": map[string]any{
				"type":        "string",
				"enum":        []string{gameproc.VersionIL2CPP, gameproc.VersionMono},
				"description": "Game version to launch: 'il2cpp' or 'mono'",
			},
			"enable_debugger": map[string]any{
				"type":        "boolean",
				"description": "Enable MelonLoader debugger (adds --melonloader.launchdebugger --melonloader.debug flags)",
				"default":     false,
			},
			"wait_for_connection": map[string]any{
				"type":        "boolean",
				"description": "Wait for game to start and automatically connect to the mod server",
				"default":     true,
			},
		}, "version"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		version, err := req.RequireString("version")
		if err != nil {
			return mcp.NewToolResultError("version is required"), nil
		}
		version = strings.ToLower(version)
		if version != gameproc.VersionIL2CPP && version != gameproc.VersionMono {
			return mcp.NewToolResultError(fmt.Sprintf(
				"invalid version %q: must be %q or %q", version, gameproc.VersionIL2CPP, gameproc.VersionMono)), nil
		}

		if mgr.IsRunning() {
			return mcp.NewToolResultError(
				"game is already running; close it first with s1_close_game"), nil
		}

		exe, err := mgr.Launch(version, req.GetBool("enable_debugger", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Game launched (%s)\n", strings.ToUpper(version))
		fmt.Fprintf(&b, "  Executable: %s\n", exe)

		if !mgr.WaitForProcess(10 * time.Second) {
			b.WriteString("\nWarning: game process not detected after 10 seconds.\n")
			b.WriteString("The game may be starting slowly or failed to launch.\n")
			return mcp.NewToolResultText(b.String()), nil
		}

		if req.GetBool("wait_for_connection", true) {
			timeout := cfg.Game.StartupTimeoutDuration()
			interval := cfg.Game.PollIntervalDuration()
			fmt.Fprintf(&b, "\nWaiting up to %s for the game to load and connect...\n", timeout)

			res := mgr.PollConnection(c, timeout, interval)
			if res.Connected {
				fmt.Fprintf(&b, "Connected to game server after %.2fs (%d attempts)\n",
					res.ElapsedSec, res.Attempts)
				if len(res.ServerInfo) > 0 {
					fmt.Fprintf(&b, "  Server: %s\n", summarizeServerInfo(res.ServerInfo))
				}
			} else {
				fmt.Fprintf(&b, "Failed to connect to game server: %s\n", res.Error)
				b.WriteString("The game may still be loading. Check the MelonLoader logs and retry.\n")
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	})

	s.AddTool(mcp.Tool{
		Name: "s1_close_game",
		Description: "Forcefully close the Schedule I game. " +
			"Use this to terminate the game after testing or before relaunching with different settings.",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !mgr.IsRunning() {
			return mcp.NewToolResultText("Game is not currently running."), nil
		}

		c.Disconnect()
		if err := mgr.Close(); err != nil {
			log.Error().Err(err).Msg("closing game failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !mgr.WaitForExit(3 * time.Second) {
			return mcp.NewToolResultText("Warning: game process may still be running."), nil
		}
		return mcp.NewToolResultText("Game closed successfully."), nil
	})

	s.AddTool(mcp.Tool{
		Name: "s1_get_game_process_info",
		Description: "Check if the Schedule I game is currently running and get process information. " +
			"Returns running status, process ID(s), and resource usage.",
		InputSchema: objectSchema(nil),
	}, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := mgr.ProcessInfo()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})
}

// summarizeServerInfo renders "name vX.Y" from a handshake result, falling
// back to the raw JSON when the shape is unexpected.
func summarizeServerInfo(raw json.RawMessage) string {
	var info struct {
		ServerName string `json:"server_name"`
		Version    string `json:"version"`
	}
	if err := json.Unmarshal(raw, &info); err != nil || info.ServerName == "" {
		return string(raw)
	}
	if info.Version != "" {
		return info.ServerName + " v" + info.Version
	}
	return info.ServerName
}
