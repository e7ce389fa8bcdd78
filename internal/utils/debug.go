package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	debugFile *os.File
	debugOnce sync.Once
	logsDir   string
	mu        sync.RWMutex
	writeMu   sync.Mutex
)

// ConfigureDebug sets the directory for debug logs
func ConfigureDebug(dir string) {
	mu.Lock()
	defer mu.Unlock()
	logsDir = dir
}

// Debug writes a message to debug.log file in the configured directory
func Debug(format string, args ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	mu.RLock()
	dir := logsDir
	mu.RUnlock()

	// No logs directory configured: tests and library use stay silent
	if dir == "" {
		return
	}

	debugOnce.Do(func() {
		_ = os.MkdirAll(dir, 0o755)
		debugFile, _ = os.Create(filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("20060102-150405"))))
	})

	if debugFile != nil {
		writeMu.Lock()
		fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
		writeMu.Unlock()
	}
}

// CleanupLogs removes old debug logs, keeping the most recent retention files.
// A retention of zero or less keeps everything.
func CleanupLogs(retention int) {
	mu.RLock()
	dir := logsDir
	mu.RUnlock()

	if dir == "" || retention <= 0 {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var logs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "debug-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		logs = append(logs, name)
	}
	if len(logs) <= retention {
		return
	}

	// Timestamped names sort chronologically
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-retention] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			Debug("Failed to remove old log %s: %v", name, err)
		}
	}
}

// Recover converts a panic in a collaborator entry point into a debug line.
// Use as: defer utils.Recover("notify.Posted")
func Recover(where string) {
	if r := recover(); r != nil {
		Debug("Recovered panic in %s: %v", where, r)
	}
}
