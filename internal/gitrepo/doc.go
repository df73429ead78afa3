// Package gitrepo wraps the git CLI for the operations the maintenance
// workflow needs: branch switching, pulling, tag handling, patch application
// and rollback.
//
// It shells out to `git -C <dir> ...` rather than using a Go git library:
// the workflow leans on `git am`/`git apply -R` semantics that must match
// the patches a maintainer produced with the git CLI, and stock git is
// already a hard prerequisite of the fork itself.
//
// Errors carry git's stderr so that failures surface the underlying cause;
// mapping a failed step to its exit code is left to the calling service.
package gitrepo
