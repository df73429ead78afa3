package sync

import (
	"context"

	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/gitrepo"
	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// Options contains inputs for the version sync entry point.
type Options struct {
	// Config holds the tool settings; it must already be validated.
	Config *config.Config
}

// Run updates the local clone to point at the latest upstream release tag.
// Each step aborts immediately on failure with its own exit code; nothing
// is retried.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sync")

	cfg := opts.Config
	repo := gitrepo.New(cfg.UpstreamDir)

	logger.InfoKV(ctx, "Switching to default branch", "branch", cfg.DefaultBranch)

	if err := repo.Switch(ctx, cfg.DefaultBranch); err != nil {
		return model.WrapCLIError(model.ExitBranchSwitch, "switching to the default branch failed", err)
	}

	logger.Info(ctx, "Pulling upstream changes")

	if err := repo.Pull(ctx); err != nil {
		return model.WrapCLIError(model.ExitPull, "pulling the default branch failed", err)
	}

	logger.Info(ctx, "Fetching release tags")

	if err := repo.FetchTags(ctx); err != nil {
		return model.WrapCLIError(model.ExitFetchTags, "fetching tags failed", err)
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitFetchTags, "listing tags failed", err)
	}

	latest := gitrepo.LatestTag(tags)
	if latest == "" {
		return model.NewCLIError(model.ExitNoReleaseTag, "no release tag found after fetching")
	}

	logger.InfoKV(ctx, "Checking out latest release", "tag", latest)

	if err := repo.CheckoutDetached(ctx, latest); err != nil {
		return model.WrapCLIError(model.ExitCheckoutTag, "checking out the release tag failed", err)
	}

	logger.InfoKV(ctx, "Checkout complete", "tag", latest)

	return nil
}
