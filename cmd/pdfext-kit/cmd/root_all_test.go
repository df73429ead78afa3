package cmd

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkovalev/pdfext-kit/internal/archive"
	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// requireGit skips the test when the environment cannot run the full sequence.
func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	if runtime.GOOS == "windows" {
		t.Skip("these tests use a shell script as a fake build tool")
	}

	t.Setenv("GIT_AUTHOR_NAME", "pdfext-kit-test")
	t.Setenv("GIT_AUTHOR_EMAIL", "pdfext-kit-test@localhost")
	t.Setenv("GIT_COMMITTER_NAME", "pdfext-kit-test")
	t.Setenv("GIT_COMMITTER_EMAIL", "pdfext-kit-test@localhost")
}

// runGit runs a git command in dir and fails the test on a non-zero exit.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)

	return strings.TrimSpace(string(out))
}

// setupFork creates an upstream repository with a release tag and returns a
// fork clone of it, with a three-patch customization set and the extension
// files in place.
func setupFork(t *testing.T) (fork string, patches []string) {
	t.Helper()

	upstream := t.TempDir()
	runGit(t, upstream, "init", "-b", "master", ".")
	require.NoError(t, os.WriteFile(filepath.Join(upstream, "pdf.js"), []byte("render"), 0o644))
	runGit(t, upstream, "add", "pdf.js")
	runGit(t, upstream, "commit", "-m", "rendering core")
	runGit(t, upstream, "tag", "v2.0.550")

	parent := t.TempDir()
	runGit(t, parent, "clone", upstream, "fork")
	fork = filepath.Join(parent, "fork")

	for _, name := range []string{"viewer-integration", "disable-telemetry", "toolbar-branding"} {
		require.NoError(t, os.WriteFile(filepath.Join(fork, name+".js"), []byte("custom "+name), 0o644))
		runGit(t, fork, "add", name+".js")
		runGit(t, fork, "commit", "-m", "customization "+name)
	}

	patchDir := filepath.Join(fork, "patches")
	runGit(t, fork, "format-patch", "-3", "-o", patchDir)
	runGit(t, fork, "reset", "--hard", "HEAD~3")

	entries, err := os.ReadDir(patchDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, entry := range entries {
		patches = append(patches, filepath.Join("patches", entry.Name()))
	}
	sort.Strings(patches)

	require.NoError(t, os.WriteFile(filepath.Join(fork, "manifest.json"), []byte(`{"name":"pdf viewer"}`), 0o644))

	return fork, patches
}

// writeBuildTool drops a fake build tool script and returns its path.
func writeBuildTool(t *testing.T) string {
	t.Helper()

	script := "#!/bin/sh\necho \"$1\" >> build-tool.log\nmkdir -p build/minified/web\necho minified > build/minified/web/viewer.js\n"

	path := filepath.Join(t.TempDir(), "gulp")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

// saveConfig persists the settings and returns the config file path.
func saveConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pdfext-kit.yaml")
	require.NoError(t, config.Save(path, cfg))

	return path
}

// TestAllHaltsAfterFirstFailure dispatches "all" against a directory that is
// not a git repository: the sync step fails first, and neither the build nor
// the packaging step may run afterwards.
func TestAllHaltsAfterFirstFailure(t *testing.T) {
	requireGit(t)

	fork := t.TempDir()

	cfg := config.Default()
	cfg.UpstreamDir = fork
	cfg.BuildTool = writeBuildTool(t)

	_, err := execute("all", "--config", saveConfig(t, cfg))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	require.Equal(t, model.ExitBranchSwitch, cliErr.Code)

	// The build tool never ran and no archive was produced.
	_, statErr := os.Stat(filepath.Join(fork, "build-tool.log"))
	require.ErrorIs(t, statErr, os.ErrNotExist)

	_, statErr = os.Stat(filepath.Join(fork, cfg.ArchivePath))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

// TestAllRunsFullSequence dispatches "all" against a working fork and checks
// each component's footprint in order: the checkout is detached on the
// release tag (sync), the minified target ran and was rolled back (build),
// and the archive holds both build output and extension files (dist).
func TestAllRunsFullSequence(t *testing.T) {
	requireGit(t)

	fork, patches := setupFork(t)

	cfg := config.Default()
	cfg.UpstreamDir = fork
	cfg.BuildTool = writeBuildTool(t)
	cfg.Patches = patches
	cfg.ExtensionFiles = []string{"manifest.json"}

	_, err := execute("all", "--config", saveConfig(t, cfg))
	require.NoError(t, err)

	// Sync detached HEAD on the release tag.
	require.Equal(t, "HEAD", runGit(t, fork, "rev-parse", "--abbrev-ref", "HEAD"))
	require.Equal(t,
		runGit(t, fork, "rev-parse", "v2.0.550^{commit}"),
		runGit(t, fork, "rev-parse", "HEAD"))

	// Build ran the minified target once and reverted the customizations.
	log, err := os.ReadFile(filepath.Join(fork, "build-tool.log"))
	require.NoError(t, err)
	require.Equal(t, "minified\n", string(log))
	require.Empty(t, runGit(t, fork, "status", "--porcelain", "--untracked-files=no"))

	// Dist packaged the build output together with the extension files.
	archivePath := filepath.Join(fork, cfg.ArchivePath)

	ok, err := archive.Contains(archivePath, "web/viewer.js")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = archive.Contains(archivePath, "manifest.json")
	require.NoError(t, err)
	require.True(t, ok)
}
