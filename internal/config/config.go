// Package config loads the s1bridge TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ifbars/s1bridge/internal/paths"
)

// Config is the top-level s1bridge configuration.
type Config struct {
	Mod  ModConfig  `toml:"mod"`
	Game GameConfig `toml:"game"`
	Log  LogConfig  `toml:"log"`
}

// ModConfig describes the TCP endpoint of the in-game mod server and the
// connection engine's timing knobs. Durations are TOML strings ("5s", "1m").
type ModConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ConnectTimeout    string `toml:"connect_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	ReconnectDelay    string `toml:"reconnect_delay"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
}

// GameConfig describes the local Schedule I installation used by the
// lifecycle tools.
type GameConfig struct {
	IL2CPPPath     string `toml:"il2cpp_path"`
	MonoPath       string `toml:"mono_path"`
	Executable     string `toml:"executable"`
	StartupTimeout string `toml:"startup_timeout"`
	PollInterval   string `toml:"poll_interval"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Defaults mirrored from the mod server's expectations.
const (
	DefaultHost              = "localhost"
	DefaultPort              = 8765
	DefaultConnectTimeout    = 5 * time.Second
	DefaultReadTimeout       = 90 * time.Second
	DefaultReconnectDelay    = 1 * time.Second
	DefaultHeartbeatInterval = 60 * time.Second
	DefaultExecutable        = "Schedule I.exe"
	DefaultStartupTimeout    = 60 * time.Second
	DefaultPollInterval      = 2 * time.Second
)

// Load reads the config file and returns the parsed Config.
// A missing file yields the defaults (no error).
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads and parses a config file at the given path.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Mod.Host == "" {
		cfg.Mod.Host = DefaultHost
	}
	if cfg.Mod.Port == 0 {
		cfg.Mod.Port = DefaultPort
	}
	if cfg.Mod.ConnectTimeout == "" {
		cfg.Mod.ConnectTimeout = DefaultConnectTimeout.String()
	}
	if cfg.Mod.ReadTimeout == "" {
		cfg.Mod.ReadTimeout = DefaultReadTimeout.String()
	}
	if cfg.Mod.ReconnectDelay == "" {
		cfg.Mod.ReconnectDelay = DefaultReconnectDelay.String()
	}
	if cfg.Mod.HeartbeatInterval == "" {
		cfg.Mod.HeartbeatInterval = DefaultHeartbeatInterval.String()
	}
	if cfg.Game.Executable == "" {
		cfg.Game.Executable = DefaultExecutable
	}
	if cfg.Game.StartupTimeout == "" {
		cfg.Game.StartupTimeout = DefaultStartupTimeout.String()
	}
	if cfg.Game.PollInterval == "" {
		cfg.Game.PollInterval = DefaultPollInterval.String()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ConnectTimeoutDuration returns the parsed connect-phase timeout.
func (m ModConfig) ConnectTimeoutDuration() time.Duration {
	return parseDuration(m.ConnectTimeout, DefaultConnectTimeout)
}

// ReadTimeoutDuration returns the parsed steady-state read timeout.
// It must comfortably exceed the heartbeat interval so that idle periods
// between calls are not mistaken for a dead link.
func (m ModConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(m.ReadTimeout, DefaultReadTimeout)
}

// ReconnectDelayDuration returns the parsed inter-retry delay.
func (m ModConfig) ReconnectDelayDuration() time.Duration {
	return parseDuration(m.ReconnectDelay, DefaultReconnectDelay)
}

// HeartbeatIntervalDuration returns the parsed heartbeat interval.
func (m ModConfig) HeartbeatIntervalDuration() time.Duration {
	return parseDuration(m.HeartbeatInterval, DefaultHeartbeatInterval)
}

// StartupTimeoutDuration returns the parsed game startup timeout.
func (g GameConfig) StartupTimeoutDuration() time.Duration {
	return parseDuration(g.StartupTimeout, DefaultStartupTimeout)
}

// PollIntervalDuration returns the parsed connection poll interval.
func (g GameConfig) PollIntervalDuration() time.Duration {
	return parseDuration(g.PollInterval, DefaultPollInterval)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
