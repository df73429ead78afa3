package build

import (
	"context"
	"os"
	"os/exec"

	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/gitrepo"
	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// Options contains inputs for the patch-and-build entry point.
type Options struct {
	// Config holds the tool settings; it must already be validated.
	Config *config.Config
	// ForceMaster allows building from the unstable default branch.
	ForceMaster bool
}

// Run applies the patch set as temporary commits, invokes the external
// minified build, and rolls the repository back to its pre-patch commit.
//
// The default-branch guard refuses to build against a moving target unless
// ForceMaster is set. Rollback always executes once patches were applied;
// a failed rollback is reported as the explicit left-dirty condition and
// requires manual intervention.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "build")

	cfg := opts.Config

	toolPath, err := exec.LookPath(cfg.BuildTool)
	if err != nil {
		return model.WrapCLIError(model.ExitBuildToolMissing,
			cfg.BuildTool+" was not found on PATH", err)
	}

	repo := gitrepo.New(cfg.UpstreamDir)

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitRepoState, "unable to determine the current branch", err)
	}

	if branch == cfg.DefaultBranch && !opts.ForceMaster {
		return model.NewCLIError(model.ExitBranchGuard,
			"refusing to build from the unstable "+cfg.DefaultBranch+
				" branch; run \"code\" first or pass --force-master")
	}

	head, err := repo.HeadCommit(ctx)
	if err != nil {
		return model.WrapCLIError(model.ExitRepoState, "unable to record the current commit", err)
	}

	logger.InfoKV(ctx, "Applying customization patches", "base_commit", head)

	if err := applyPatchSet(ctx, repo, cfg.Patches); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Running minified build", "tool", toolPath, "target", cfg.BuildTarget)

	buildErr := runBuildTool(ctx, cfg, cfg.BuildTarget)
	if buildErr != nil {
		// Logged but deliberately not returned yet: the rollback below must
		// run regardless once patches were applied.
		logger.Errorf(ctx, "Minified build failed: %v", buildErr)
	}

	logger.InfoKV(ctx, "Reverting customization patches", "base_commit", head)

	if err := rollback(ctx, repo, head, cfg.Patches); err != nil {
		return err
	}

	if buildErr != nil {
		return model.WrapCLIError(model.ExitBuildCommand, "minified build failed", buildErr)
	}

	logger.Info(ctx, "Build complete, repository restored to its pre-patch commit")

	return nil
}

// applyPatchSet applies the patches in order as commits on top of HEAD,
// through a single am invocation. On failure the partially-applied sequence
// is aborted before reporting, restoring the pre-invocation tree.
func applyPatchSet(ctx context.Context, repo *gitrepo.Repo, patches []string) error {
	logger.InfoKV(ctx, "Applying patch set", "patches", patches)

	if err := repo.Am(ctx, patches...); err != nil {
		logger.Errorf(ctx, "Patch set did not apply: %v", err)

		if abortErr := repo.AmAbort(ctx); abortErr != nil {
			return model.WrapCLIError(model.ExitPatchAbort,
				"aborting the patch sequence failed", abortErr)
		}

		return model.WrapCLIError(model.ExitPatchApply, "applying the patch set failed", err)
	}

	return nil
}

// rollback discards the temporary patch commits from history and undoes the
// patches' effect on the working tree, restoring the recorded commit.
func rollback(ctx context.Context, repo *gitrepo.Repo, head string, patches []string) error {
	if err := repo.Reset(ctx, head); err != nil {
		return model.WrapCLIError(model.ExitRevertDirty,
			"reverting customization failed, the repository is left dirty; "+
				"restore it manually with git reset --hard "+head, err)
	}

	// Reverse-apply in reverse order so each patch sees the tree it expects.
	for i := len(patches) - 1; i >= 0; i-- {
		if err := repo.ReverseApply(ctx, patches[i]); err != nil {
			return model.WrapCLIError(model.ExitRevertDirty,
				"reverting customization failed, the repository is left dirty; "+
					"restore it manually with git reset --hard "+head, err)
		}
	}

	return nil
}

// runBuildTool invokes the external build tool with the given target inside
// the upstream checkout, streaming its output to the console.
func runBuildTool(ctx context.Context, cfg *config.Config, target string) error {
	// #nosec G204 — tool and target come from validated configuration.
	cmd := exec.CommandContext(ctx, cfg.BuildTool, target)
	cmd.Dir = cfg.UpstreamDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
