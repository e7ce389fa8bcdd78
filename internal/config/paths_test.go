package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetHaloDir(t *testing.T) {
	// Set XDG_CONFIG_HOME for Linux tests
	if runtime.GOOS == "linux" {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
	}

	dir := GetHaloDir()
	if dir == "" {
		t.Error("GetHaloDir returned empty string")
	}
	// Should contain "halo" in path
	if !strings.Contains(strings.ToLower(dir), "halo") {
		t.Errorf("Expected path to contain 'halo', got: %s", dir)
	}
}

func TestGetStateDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		tmpDir := t.TempDir()
		t.Setenv("XDG_STATE_HOME", tmpDir)

		dir := GetStateDir()
		expected := filepath.Join(tmpDir, "halo")
		if dir != expected {
			t.Errorf("GetStateDir mismatch. Got %s, want %s", dir, expected)
		}
	} else {
		// Non-linux: should be same as HaloDir
		if GetStateDir() != GetHaloDir() {
			t.Error("GetStateDir should equal GetHaloDir on non-Linux")
		}
	}
}

func TestGetRuntimeDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		// Case 1: XDG_RUNTIME_DIR set
		tmpDir := t.TempDir()
		t.Setenv("XDG_RUNTIME_DIR", tmpDir)

		dir := GetRuntimeDir()
		expected := filepath.Join(tmpDir, "halo")
		if dir != expected {
			t.Errorf("GetRuntimeDir mismatch. Got %s, want %s", dir, expected)
		}

		// Case 2: XDG_RUNTIME_DIR unset (fallback)
		t.Setenv("XDG_RUNTIME_DIR", "")
		// Setup state dir for fallback check
		stateTmp := t.TempDir()
		t.Setenv("XDG_STATE_HOME", stateTmp)

		dirFallback := GetRuntimeDir()
		expectedFallback := filepath.Join(stateTmp, "halo")
		if dirFallback != expectedFallback {
			t.Errorf("GetRuntimeDir fallback mismatch. Got %s, want %s", dirFallback, expectedFallback)
		}
	}
}

func TestGetLogsDir(t *testing.T) {
	dir := GetLogsDir()
	if !strings.HasSuffix(dir, "logs") {
		t.Errorf("Expected path to end with 'logs', got: %s", dir)
	}

	// Should be under StateDir
	stateDir := GetStateDir()
	if !strings.HasPrefix(dir, stateDir) {
		t.Errorf("LogsDir should be under StateDir. LogsDir: %s, StateDir: %s", dir, stateDir)
	}
}

func TestEnsureDirs(t *testing.T) {
	// Setup temp env
	if runtime.GOOS == "linux" {
		baseDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(baseDir, "config"))
		t.Setenv("XDG_STATE_HOME", filepath.Join(baseDir, "state"))
		t.Setenv("XDG_RUNTIME_DIR", filepath.Join(baseDir, "runtime"))
	}

	err := EnsureDirs()
	if err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	// Verify all directories exist
	dirs := []string{GetHaloDir(), GetStateDir(), GetLogsDir(), GetRuntimeDir()}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			t.Errorf("Directory not created: %s", dir)
		} else if err != nil {
			t.Errorf("Error checking directory %s: %v", dir, err)
		} else if !info.IsDir() {
			t.Errorf("Path exists but is not a directory: %s", dir)
		}
	}
}

func TestDirectoryHierarchy(t *testing.T) {
	if runtime.GOOS != "linux" {
		haloDir := GetHaloDir()
		stateDir := GetStateDir()

		if stateDir != haloDir {
			t.Errorf("On non-Linux, StateDir should be same as HaloDir")
		}
	} else {
		// On Linux they should be distinct (assuming default different XDG vars)
		// We set them to ensure they are different
		t.Setenv("XDG_CONFIG_HOME", "/tmp/config")
		t.Setenv("XDG_STATE_HOME", "/tmp/state")

		if GetHaloDir() == GetStateDir() {
			t.Error("On Linux, HaloDir and StateDir should be different")
		}
	}
}
