// Package bridge wires the bridge together: configuration, the mod client,
// the game process manager, and the stdio MCP server.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/gameproc"
	"github.com/ifbars/s1bridge/internal/logx"
	"github.com/ifbars/s1bridge/internal/modclient"
	"github.com/ifbars/s1bridge/internal/tools"
)

const (
	serverName = "s1bridge"
	version    = "1.0.0"
)

// Seam for tests.
var serveStdio = server.ServeStdio

// Run loads configuration, connects to the mod server if it is up, and serves
// the MCP tool catalog over stdio until the client disconnects.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logx.Configure(cfg.Log.Level)
	log := logx.Log.With().Str("component", "bridge").Logger()

	client := modclient.New(cfg.Mod)
	defer client.Disconnect()

	// Best effort: the game may not be running yet. Tools reconnect on demand
	// and s1_launch_game can bring the game up later.
	instructions := greetModServer(client)

	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if instructions != "" {
		opts = append(opts, server.WithInstructions(instructions))
	}
	s := server.NewMCPServer(serverName, version, opts...)

	mgr := gameproc.New(cfg.Game)
	tools.RegisterAll(s, client, mgr, cfg)

	log.Info().Str("host", cfg.Mod.Host).Int("port", cfg.Mod.Port).
		Bool("connected", client.IsConnected()).Msg("serving MCP over stdio")
	return serveStdio(s)
}

// greetModServer connects and handshakes, returning the server-provided agent
// instructions if the mod is reachable. Failure is not fatal here.
func greetModServer(client *modclient.Client) string {
	log := logx.Log.With().Str("component", "bridge").Logger()

	if err := client.Connect(); err != nil {
		log.Warn().Err(err).Msg("mod server not reachable at startup")
		return ""
	}

	resp, err := client.Call("handshake", nil)
	if err != nil {
		log.Warn().Err(err).Msg("handshake failed")
		return ""
	}
	if resp.Error != nil {
		log.Warn().Str("message", resp.Error.Message).Int32("code", resp.Error.Code).
			Msg("handshake returned error")
		return ""
	}

	var info struct {
		ServerName   string `json:"server_name"`
		Version      string `json:"version"`
		Instructions string `json:"instructions"`
	}
	if err := json.Unmarshal(resp.Result, &info); err != nil {
		log.Warn().Err(err).Msg("handshake result has unexpected shape")
		return ""
	}
	log.Info().Str("server", info.ServerName).Str("version", info.Version).
		Msg("connected to mod server")
	return info.Instructions
}
