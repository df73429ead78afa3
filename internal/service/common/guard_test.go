package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkovalev/pdfext-kit/internal/model"
)

// TestAcquireAndRelease claims the marker, verifies it exists, and releases it.
func TestAcquireAndRelease(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	release, err := AcquireRunMarker(ctx, dir)
	require.NoError(t, err)

	markerPath := filepath.Join(dir, MarkerFilename)
	_, err = os.Stat(markerPath)
	require.NoError(t, err)

	release()

	_, err = os.Stat(markerPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestOwnMarkerIsReclaimed ensures a marker from this very process does not block.
func TestOwnMarkerIsReclaimed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	release, err := AcquireRunMarker(ctx, dir)
	require.NoError(t, err)
	defer release()

	// A second acquisition in the same process succeeds: the recorded pid is ours.
	release2, err := AcquireRunMarker(ctx, dir)
	require.NoError(t, err)
	release2()
}

// TestDeadProcessMarkerIsReclaimed ensures a marker from a dead process is removed.
func TestDeadProcessMarkerIsReclaimed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markerPath := filepath.Join(dir, MarkerFilename)

	// Pids this large are not in use on any supported platform.
	require.NoError(t, os.WriteFile(markerPath, []byte("99999999\n"), markerFileMode))

	release, err := AcquireRunMarker(context.Background(), dir)
	require.NoError(t, err)
	release()
}

// TestMalformedStaleMarkerIsReclaimed ensures an old unreadable marker does not wedge the tool.
func TestMalformedStaleMarkerIsReclaimed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markerPath := filepath.Join(dir, MarkerFilename)

	require.NoError(t, os.WriteFile(markerPath, []byte("not-a-pid"), markerFileMode))

	old := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(markerPath, old, old))

	release, err := AcquireRunMarker(context.Background(), dir)
	require.NoError(t, err)
	release()
}

// TestFreshMalformedMarkerBlocks ensures a fresh unreadable marker is treated as in use.
func TestFreshMalformedMarkerBlocks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markerPath := filepath.Join(dir, MarkerFilename)

	require.NoError(t, os.WriteFile(markerPath, []byte("not-a-pid"), markerFileMode))

	_, err := AcquireRunMarker(context.Background(), dir)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	require.Equal(t, model.ExitAlreadyRunning, cliErr.Code)
}
