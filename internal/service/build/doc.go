// Package build produces minified artifacts with the local customizations
// applied, then unwinds the temporary patch commits so the customizations
// are never left committed.
//
// The patch set is applied with `git am` so a partial failure can be aborted
// cleanly; rollback is a mixed reset to the recorded commit followed by
// reverse-applying the patches, which must always run once patches landed —
// even when the external build itself failed.
package build
