package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns where the watermark store lives when --data-dir is
// not given. FLAKE_DATA_DIR wins, then XDG_DATA_HOME, then the usual system
// or per-user locations, then ~/.flake.
func DefaultDataDir() string {
	if dir := os.Getenv("FLAKE_DATA_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "flake")
	}
	if isWritableDir("/var/lib") {
		return "/var/lib/flake"
	}
	// macOS
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "flake")
	}
	// Windows
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "flake")
	}
	return filepath.Join(homeDir, ".flake")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// isWritableDir probes by creating and removing a temp file.
func isWritableDir(path string) bool {
	if !isDir(path) {
		return false
	}
	f, err := os.CreateTemp(path, ".flake-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
