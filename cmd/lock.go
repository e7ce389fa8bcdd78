package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/utils"
)

var instanceLock *flock.Flock

func lockPath() string {
	return filepath.Join(config.GetRuntimeDir(), "halo.lock")
}

// AcquireLock takes the single-instance lock. It reports false when another
// instance already holds it.
func AcquireLock() (bool, error) {
	path := lockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating runtime dir: %w", err)
	}

	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return false, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return false, nil
	}
	instanceLock = l
	utils.Debug("Acquired instance lock %s", path)
	return true, nil
}

// ReleaseLock drops the lock taken by AcquireLock.
func ReleaseLock() error {
	if instanceLock == nil {
		return nil
	}
	err := instanceLock.Unlock()
	instanceLock = nil
	return err
}
