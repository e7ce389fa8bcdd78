package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "halo"

// GetHaloDir returns the directory holding settings.json.
func GetHaloDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appName)
	case "darwin": // MacOS
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default: // Linux
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appName)
	}
}

// Returns directory for state files (logs, feeds recorded by the simulator)
func GetStateDir() string {
	if runtime.GOOS != "linux" {
		return GetHaloDir()
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName)
}

// Returns directory for logs
func GetLogsDir() string {
	return filepath.Join(GetStateDir(), "logs")
}

// GetRuntimeDir returns the directory for the instance lock.
func GetRuntimeDir() string {
	if runtime.GOOS == "linux" {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, appName)
		}
	}
	return GetStateDir()
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{GetHaloDir(), GetStateDir(), GetLogsDir(), GetRuntimeDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
