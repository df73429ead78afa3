package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo executes git commands against a single working directory.
type Repo struct {
	// dir is the path to the working tree, passed to git via -C.
	dir string
}

// New returns a Repo operating on the given working directory.
func New(dir string) *Repo {
	return &Repo{dir: dir}
}

// Switch checks out the named branch.
func (r *Repo) Switch(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "checkout", branch)
	return err
}

// Pull updates the current branch from its upstream.
func (r *Repo) Pull(ctx context.Context) error {
	_, err := r.run(ctx, "pull")
	return err
}

// FetchTags fetches all tags from the default remote.
func (r *Repo) FetchTags(ctx context.Context) error {
	_, err := r.run(ctx, "fetch", "--tags")
	return err
}

// Tags returns all tag names known to the repository.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	output, err := r.run(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}

	return tags, nil
}

// CurrentBranch returns the short name of the checked-out branch,
// or "HEAD" in a detached state.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// HeadCommit returns the full commit identifier HEAD points at.
func (r *Repo) HeadCommit(ctx context.Context) (string, error) {
	output, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// CheckoutDetached detaches HEAD at the given ref.
func (r *Repo) CheckoutDetached(ctx context.Context, ref string) error {
	_, err := r.run(ctx, "checkout", "--detach", ref)
	return err
}

// Am applies the patch files, in the given order, as new commits on top of
// HEAD. All patches go through a single `git am` invocation so that AmAbort
// can unwind the whole sequence when one of them fails.
func (r *Repo) Am(ctx context.Context, patches ...string) error {
	_, err := r.run(ctx, append([]string{"am"}, patches...)...)
	return err
}

// AmAbort abandons a partially-applied patch sequence, restoring the branch
// and working tree to the state before Am started.
func (r *Repo) AmAbort(ctx context.Context) error {
	_, err := r.run(ctx, "am", "--abort")
	return err
}

// Reset moves the branch pointer to the given commit without touching the
// working tree contents (mixed reset).
func (r *Repo) Reset(ctx context.Context, commit string) error {
	_, err := r.run(ctx, "reset", commit)
	return err
}

// ReverseApply undoes a patch's effect on the working tree.
func (r *Repo) ReverseApply(ctx context.Context, patch string) error {
	_, err := r.run(ctx, "apply", "-R", patch)
	return err
}

// run executes a git command in the repository directory, returning stdout.
// On failure the returned error includes git's stderr.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)

	// #nosec G204 — arguments are constructed internally, not from user input.
	cmd := exec.CommandContext(ctx, "git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s", strings.Join(args, " "))
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return "", fmt.Errorf("%s: %s: %w", message, detail, err)
		}

		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
