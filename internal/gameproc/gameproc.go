// Package gameproc manages the Schedule I game process on the local machine:
// launching a specific build (IL2CPP or Mono), checking whether it is running,
// and force-closing it. It shells out to the Windows process tooling the game
// ships alongside (tasklist, taskkill, powershell).
package gameproc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/logx"
)

// Game build flavors.
const (
	VersionIL2CPP = "il2cpp"
	VersionMono   = "mono"
)

// Seams for tests.
var (
	commandOutputFn = func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).Output()
	}
	startProcessFn = startProcess
	sleepFn        = time.Sleep
)

// ProcessStat describes one running game process.
type ProcessStat struct {
	PID       int     `json:"pid"`
	CPUTime   float64 `json:"cpu_time"`
	MemoryMB  float64 `json:"memory_mb"`
	StartTime string  `json:"start_time,omitempty"`
}

// ProcessInfo summarizes the game's process state.
type ProcessInfo struct {
	Running      bool          `json:"running"`
	ProcessCount int           `json:"process_count"`
	Processes    []ProcessStat `json:"processes"`
}

// Manager drives the game process lifecycle for one configured installation.
type Manager struct {
	cfg config.GameConfig
	log zerolog.Logger
}

// New creates a manager for the configured game installation.
func New(cfg config.GameConfig) *Manager {
	return &Manager{
		cfg: cfg,
		log: logx.Log.With().Str("component", "gameproc").Logger(),
	}
}

func (m *Manager) processName() string {
	return strings.TrimSuffix(m.cfg.Executable, filepath.Ext(m.cfg.Executable))
}

// IsRunning reports whether the game process exists.
func (m *Manager) IsRunning() bool {
	out, err := commandOutputFn("tasklist", "/FI", "IMAGENAME eq "+m.cfg.Executable)
	if err != nil {
		m.log.Warn().Err(err).Msg("tasklist failed")
		return false
	}
	return strings.Contains(string(out), m.cfg.Executable)
}

// ProcessInfo returns details about running game processes.
func (m *Manager) ProcessInfo() (*ProcessInfo, error) {
	script := fmt.Sprintf(
		`Get-Process -Name %q -ErrorAction SilentlyContinue | Select-Object Id, CPU, WorkingSet | ConvertTo-Json`,
		m.processName())
	out, err := commandOutputFn("powershell", "-Command", script)
	if err != nil {
		return nil, fmt.Errorf("querying game process: %w", err)
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return &ProcessInfo{Running: false, Processes: []ProcessStat{}}, nil
	}

	type psEntry struct {
		ID         int     `json:"Id"`
		CPU        float64 `json:"CPU"`
		WorkingSet float64 `json:"WorkingSet"`
	}

	// PowerShell emits a bare object for a single match, an array otherwise.
	var entries []psEntry
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, fmt.Errorf("parsing process list: %w", err)
		}
	} else {
		var one psEntry
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return nil, fmt.Errorf("parsing process info: %w", err)
		}
		entries = []psEntry{one}
	}

	info := &ProcessInfo{
		Running:      len(entries) > 0,
		ProcessCount: len(entries),
		Processes:    make([]ProcessStat, 0, len(entries)),
	}
	for _, e := range entries {
		info.Processes = append(info.Processes, ProcessStat{
			PID:      e.ID,
			CPUTime:  e.CPU,
			MemoryMB: roundMB(e.WorkingSet),
		})
	}
	return info, nil
}

func roundMB(bytes float64) float64 {
	mb := bytes / 1024 / 1024
	return float64(int(mb*100+0.5)) / 100
}

// DetectVersion reports whether a game installation is an IL2CPP or Mono
// build, keyed off the MelonLoader Il2CppAssemblies directory.
func DetectVersion(gamePath string) (string, error) {
	fi, err := os.Stat(gamePath)
	if err != nil || !fi.IsDir() {
		return "", fmt.Errorf("game path does not exist: %s", gamePath)
	}
	marker := filepath.Join(gamePath, "MelonLoader", "Il2CppAssemblies")
	if fi, err := os.Stat(marker); err == nil && fi.IsDir() {
		return VersionIL2CPP, nil
	}
	return VersionMono, nil
}

func (m *Manager) pathForVersion(version string) (string, error) {
	switch version {
	case VersionIL2CPP:
		if m.cfg.IL2CPPPath == "" {
			return "", errors.New("game.il2cpp_path is not configured")
		}
		return m.cfg.IL2CPPPath, nil
	case VersionMono:
		if m.cfg.MonoPath == "" {
			return "", errors.New("game.mono_path is not configured")
		}
		return m.cfg.MonoPath, nil
	default:
		return "", fmt.Errorf("unknown game version %q (want %q or %q)", version, VersionIL2CPP, VersionMono)
	}
}

// Launch starts the requested game build detached and returns the executable
// path that was started. With enableDebugger the MelonLoader debugger flags
// are appended.
func (m *Manager) Launch(version string, enableDebugger bool) (string, error) {
	dir, err := m.pathForVersion(version)
	if err != nil {
		return "", err
	}

	exe := filepath.Join(dir, m.cfg.Executable)
	if _, err := os.Stat(exe); err != nil {
		return "", fmt.Errorf("game executable not found: %s", exe)
	}

	if detected, err := DetectVersion(dir); err == nil && detected != version {
		m.log.Warn().Str("requested", version).Str("detected", detected).Str("path", dir).
			Msg("requested build does not match installation")
	}

	var args []string
	if enableDebugger {
		args = append(args, "--melonloader.launchdebugger", "--melonloader.debug")
	}

	m.log.Info().Str("exe", exe).Str("version", version).Bool("debugger", enableDebugger).
		Msg("launching game")
	if err := startProcessFn(dir, exe, args...); err != nil {
		return "", fmt.Errorf("launching game: %w", err)
	}
	return exe, nil
}

func startProcess(dir, exe string, args ...string) error {
	cmd := exec.Command(exe, args...)
	cmd.Dir = dir

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach: don't wait for the game process.
	go cmd.Wait() //nolint:errcheck
	return nil
}

// Close force-terminates the game process. Not running is not an error.
func (m *Manager) Close() error {
	if !m.IsRunning() {
		return nil
	}
	if _, err := commandOutputFn("taskkill", "/F", "/IM", m.cfg.Executable); err != nil {
		return fmt.Errorf("closing game: %w", err)
	}
	m.log.Info().Msg("game process terminated")
	return nil
}

// WaitForExit polls until the game process disappears or the timeout elapses.
func (m *Manager) WaitForExit(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !m.IsRunning() {
			return true
		}
		sleepFn(300 * time.Millisecond)
	}
	return !m.IsRunning()
}

// WaitForProcess polls until the game process appears or the timeout elapses.
func (m *Manager) WaitForProcess(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.IsRunning() {
			return true
		}
		sleepFn(500 * time.Millisecond)
	}
	return false
}
