package dist

import (
	"context"
	"errors"
	"os"

	"github.com/dkovalev/pdfext-kit/internal/archive"
	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// Config holds the tool settings; it must already be validated.
	Config *config.Config
}

// Run produces the output archive. A pre-existing archive is removed first;
// there are no incremental semantics across runs, only within one run
// (create, then append).
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "dist")

	cfg := opts.Config
	archivePath := cfg.ResolvePath(cfg.ArchivePath)

	// Best-effort: a missing archive is the normal case.
	if err := os.Remove(archivePath); err == nil {
		logger.InfoKV(ctx, "Removed stale archive", "path", archivePath)
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Unable to remove stale archive: %v", err)
	}

	outputDir := cfg.ResolvePath(cfg.BuildOutputDir)

	logger.InfoKV(ctx, "Archiving build output",
		"source", outputDir, "archive", archivePath, "excludes", cfg.ExcludeGlobs)

	if err := archive.Create(outputDir, archivePath, cfg.ExcludeGlobs); err != nil {
		return model.WrapCLIError(model.ExitArchiveCreate, "archiving the build output failed", err)
	}

	logger.InfoKV(ctx, "Appending extension files", "files", cfg.ExtensionFiles)

	if err := archive.Append(archivePath, cfg.UpstreamDir, cfg.ExtensionFiles); err != nil {
		return model.WrapCLIError(model.ExitArchiveAppend, "appending extension files failed", err)
	}

	logger.InfoKV(ctx, "Archive ready", "path", archivePath)

	return nil
}
