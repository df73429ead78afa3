package clean

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// Options contains inputs for the cleaner entry point.
type Options struct {
	// Config holds the tool settings; it must already be validated.
	Config *config.Config
}

// Run restores a pristine working tree: it invokes the build tool's clean
// target and removes the output archive.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "clean")

	cfg := opts.Config

	if _, err := exec.LookPath(cfg.BuildTool); err != nil {
		return model.WrapCLIError(model.ExitBuildToolMissing,
			cfg.BuildTool+" was not found on PATH", err)
	}

	logger.InfoKV(ctx, "Running clean target", "tool", cfg.BuildTool, "target", cfg.CleanTarget)

	// #nosec G204 — tool and target come from validated configuration.
	cmd := exec.CommandContext(ctx, cfg.BuildTool, cfg.CleanTarget)
	cmd.Dir = cfg.UpstreamDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(model.ExitClean, "clean target failed", err)
	}

	archivePath := cfg.ResolvePath(cfg.ArchivePath)
	if err := os.Remove(archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return model.WrapCLIError(model.ExitClean, "removing the archive failed", err)
	}

	logger.Info(ctx, "Working tree is pristine")

	return nil
}
