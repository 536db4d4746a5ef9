// Package paths resolves on-disk locations for s1bridge files.
package paths

import (
	"os"
	"path/filepath"
)

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

// ConfigDir returns the s1bridge config directory ($XDG_CONFIG_HOME/s1bridge).
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "s1bridge")
	}
	return filepath.Join(homeDir(), ".config", "s1bridge")
}

// ConfigFile returns the path to config.toml. The S1BRIDGE_CONFIG environment
// variable overrides it, which the MCP host uses to point at a per-project file.
func ConfigFile() string {
	if v := os.Getenv("S1BRIDGE_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(ConfigDir(), "config.toml")
}
