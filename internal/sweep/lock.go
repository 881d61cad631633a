package sweep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrLocked is returned when another live sweeper holds the lockfile.
var ErrLocked = errors.New("another sweep is already running")

// Lock is a held sweep lockfile. Its content is "pid|unix-start".
type Lock struct {
	path string
}

// AcquireLock takes the sweep lockfile in dir. A lockfile left behind by a
// process that is gone, or that is not a cadence binary, is taken over.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, constants.SweepLockfileName)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d|%d", os.Getpid(), time.Now().Unix())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		pid, held := holder(path)
		if held {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		logger.Warn("Removing stale sweep lockfile", "path", path, "pid", pid)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

// holder reports the pid recorded in the lockfile and whether that process
// is a live sweeper.
func holder(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pidPart, _, _ := strings.Cut(strings.TrimSpace(string(content)), "|")
	pid, err := strconv.Atoi(pidPart)
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false
	}
	return pid, isSweeper(process.Executable())
}

func isSweeper(executable string) bool {
	return strings.HasPrefix(filepath.Base(executable), constants.SweepExecutable)
}

// Release removes the lockfile.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lockfile: %w", err)
	}
	return nil
}
