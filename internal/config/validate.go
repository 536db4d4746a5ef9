package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error

	if cfg.Mod.Host == "" {
		errs = append(errs, errors.New("mod.host must not be empty"))
	}
	if cfg.Mod.Port <= 0 || cfg.Mod.Port > 65535 {
		errs = append(errs, fmt.Errorf("mod.port %d out of range", cfg.Mod.Port))
	}

	for _, d := range []struct {
		name  string
		value string
	}{
		{"mod.connect_timeout", cfg.Mod.ConnectTimeout},
		{"mod.read_timeout", cfg.Mod.ReadTimeout},
		{"mod.reconnect_delay", cfg.Mod.ReconnectDelay},
		{"mod.heartbeat_interval", cfg.Mod.HeartbeatInterval},
		{"game.startup_timeout", cfg.Game.StartupTimeout},
		{"game.poll_interval", cfg.Game.PollInterval},
	} {
		if d.value == "" {
			continue
		}
		if v, err := time.ParseDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", d.name, d.value))
		} else if v <= 0 {
			errs = append(errs, fmt.Errorf("%s: duration must be positive, got %q", d.name, d.value))
		}
	}

	// A read timeout at or below the heartbeat interval would tear down idle
	// connections between heartbeats.
	if cfg.Mod.ReadTimeoutDuration() <= cfg.Mod.HeartbeatIntervalDuration() {
		errs = append(errs, fmt.Errorf("mod.read_timeout %s must exceed mod.heartbeat_interval %s",
			cfg.Mod.ReadTimeout, cfg.Mod.HeartbeatInterval))
	}

	return errors.Join(errs...)
}
