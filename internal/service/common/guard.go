package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

const (
	// MarkerFilename marks that a pdfext-kit run is mutating the repository
	// right now, to avoid parallel execution against the same working tree.
	MarkerFilename = "pdfext-kit-run-marker.bin"

	// markerLifetime is the period after which a marker with no matching
	// live process is considered stale and reclaimed.
	markerLifetime = 30 * time.Minute

	// markerFileMode keeps the marker readable for inspection.
	markerFileMode os.FileMode = 0o644
)

// AcquireRunMarker claims exclusive access to the repository at dir.
// It returns a release function that removes the marker; the caller must
// invoke it once the mutating work is done, success or failure.
//
// A fresh marker whose recorded process is still alive aborts with
// model.ExitAlreadyRunning. A marker left behind by a dead process, or one
// older than its lifetime, is reclaimed.
func AcquireRunMarker(ctx context.Context, dir string) (func(), error) {
	markerPath := filepath.Join(dir, MarkerFilename)

	info, err := os.Stat(markerPath)
	switch {
	case err == nil:
		if markerInUse(ctx, markerPath, info) {
			return nil, model.NewCLIError(model.ExitAlreadyRunning,
				"another pdfext-kit run is in progress (marker: "+markerPath+")")
		}

		logger.InfoKV(ctx, "Reclaiming stale run marker", "path", markerPath)

		if err = os.Remove(markerPath); err != nil {
			return nil, model.WrapCLIError(model.ExitAlreadyRunning, "remove stale run marker", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No marker, free to proceed.
	default:
		return nil, model.WrapCLIError(model.ExitAlreadyRunning, "read run marker", err)
	}

	contents := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(markerPath, []byte(contents), markerFileMode); err != nil {
		return nil, model.WrapCLIError(model.ExitAlreadyRunning, "write run marker", err)
	}

	release := func() {
		if err := os.Remove(markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "Unable to remove run marker: %v", err)
		}
	}

	return release, nil
}

// markerInUse reports whether the marker belongs to a live run.
// An unreadable or malformed marker is treated as in use while fresh, so a
// racing writer is never trampled.
func markerInUse(ctx context.Context, markerPath string, info os.FileInfo) bool {
	fresh := time.Since(info.ModTime()) <= markerLifetime

	contents, err := os.ReadFile(filepath.Clean(markerPath))
	if err != nil {
		return fresh
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return fresh
	}

	if pid == os.Getpid() {
		// Our own marker from an earlier acquisition in the same process.
		return false
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		logger.Infof(ctx, "Unable to inspect process %d: %v", pid, err)
		return fresh
	}

	return process != nil
}
