package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDir(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{
			name:     "FLAKE_DATA_DIR wins",
			env:      map[string]string{"FLAKE_DATA_DIR": "/srv/flake", "XDG_DATA_HOME": "/custom/data"},
			expected: "/srv/flake",
		},
		{
			name:     "XDG_DATA_HOME override",
			env:      map[string]string{"FLAKE_DATA_DIR": "", "XDG_DATA_HOME": "/custom/data"},
			expected: "/custom/data/flake",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := DefaultDataDir(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	t.Setenv("FLAKE_DATA_DIR", "")
	t.Setenv("HOME", "")
	// os.UserHomeDir fails on unix when HOME is empty.
	if got := DefaultDataDir(); got != "./data" {
		t.Errorf("Expected fallback to './data', got %s", got)
	}
}

func TestIsDir(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "existing directory", path: ".", expected: true},
		{name: "non-existent path", path: "/non/existent/path/that/does/not/exist", expected: false},
		{name: "file instead of directory", path: os.Args[0], expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDir(tt.path); got != tt.expected {
				t.Errorf("isDir(%s) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsWritableDir(t *testing.T) {
	dir := t.TempDir()
	if !isWritableDir(dir) {
		t.Fatalf("temp dir should be writable")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("probe file left behind: %v", entries)
	}
	if isWritableDir(filepath.Join(dir, "missing")) {
		t.Fatalf("missing dir reported writable")
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	t.Setenv("FLAKE_DATA_DIR", "")
	result := DefaultDataDir()
	if !filepath.IsAbs(result) && !strings.HasPrefix(result, "./") {
		t.Errorf("DefaultDataDir should return absolute path or start with ./, got %s", result)
	}
	if result != "./data" && !strings.HasSuffix(result, "flake") {
		t.Errorf("DefaultDataDir should end in 'flake', got %s", result)
	}
	if again := DefaultDataDir(); again != result {
		t.Errorf("DefaultDataDir should be consistent, got %s and %s", result, again)
	}
}
