// Package persistence implements spec §4.13's session snapshot/checkpoint
// store, the process-wide user-memory key-value file, and the per-OS
// platform directory resolution spec §6 mandates. Grounded on
// nstogner-operative's pkg/store/jsonl session store (mutex-guarded,
// filePath-keyed, atomic writes), adapted from an append-only JSONL log
// to whole-snapshot JSON files per spec §4.13's "snapshot" data model,
// and on jholhewres-goclaw's SessionPersistence directory/permission
// conventions (0700 session directories).
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ai-agent"

// DataDir returns the platform data directory spec §6 names:
// ~/.local/share/ai-agent on Linux ($XDG_DATA_HOME/ai-agent when that is
// set), ~/Library/Application Support/ai-agent on macOS,
// %LOCALAPPDATA%/ai-agent on Windows.
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", fmt.Errorf("persistence: LOCALAPPDATA is not set")
		}
		return filepath.Join(base, appName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("persistence: resolve home dir: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("persistence: resolve home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share", appName), nil
	}
}

// ConfigDir returns the platform config directory spec §6 names:
// ~/.config/ai-agent on Linux ($XDG_CONFIG_HOME/ai-agent when that is
// set), ~/Library/Application Support/ai-agent on macOS, %APPDATA%/ai-agent
// on Windows.
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			return "", fmt.Errorf("persistence: APPDATA is not set")
		}
		return filepath.Join(base, appName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("persistence: resolve home dir: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("persistence: resolve home dir: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// SessionsDir returns <data-dir>/sessions, creating it (mode 0700 where
// supported) if necessary.
func SessionsDir() (string, error) {
	return ensureDataSubdir("sessions")
}

// CheckpointsDir returns <data-dir>/checkpoints, creating it if necessary.
func CheckpointsDir() (string, error) {
	return ensureDataSubdir("checkpoints")
}

func ensureDataSubdir(name string) (string, error) {
	base, err := DataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("persistence: create %s dir: %w", name, err)
	}
	return dir, nil
}
