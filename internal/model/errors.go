package model

import "fmt"

// ExitCode is the process exit status reported for a failure point.
// Each granular step that can fail has its own code so that scripts and CI
// can tell apart, say, a failed pull from a failed tag checkout.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitUsage indicates an unknown selector or malformed arguments.
	ExitUsage ExitCode = 1

	// ExitConfig indicates the tool configuration could not be loaded or is invalid.
	ExitConfig ExitCode = 2

	// ExitBranchSwitch indicates switching to the upstream default branch failed.
	ExitBranchSwitch ExitCode = 10

	// ExitPull indicates pulling the default branch failed.
	ExitPull ExitCode = 11

	// ExitFetchTags indicates fetching upstream tags failed.
	ExitFetchTags ExitCode = 12

	// ExitNoReleaseTag indicates no release tag was found after fetching.
	ExitNoReleaseTag ExitCode = 13

	// ExitCheckoutTag indicates detaching HEAD onto the latest release tag failed.
	ExitCheckoutTag ExitCode = 14

	// ExitBuildToolMissing indicates the external build tool is not on PATH.
	ExitBuildToolMissing ExitCode = 20

	// ExitBranchGuard indicates a build was attempted from the unstable
	// default branch without the explicit override flag.
	ExitBranchGuard ExitCode = 21

	// ExitPatchApply indicates a patch from the set failed to apply.
	// The partially-applied sequence was aborted before reporting.
	ExitPatchApply ExitCode = 22

	// ExitPatchAbort indicates aborting a partially-applied patch sequence failed.
	ExitPatchAbort ExitCode = 23

	// ExitRevertDirty indicates reverting the customizations after the build
	// failed, leaving the working tree dirty. Manual intervention is required;
	// the tool makes no further recovery attempt.
	ExitRevertDirty ExitCode = 24

	// ExitBuildCommand indicates the external minified build itself failed.
	// The rollback still ran; the repository is back at its original commit.
	ExitBuildCommand ExitCode = 25

	// ExitRepoState indicates the repository's current branch or commit
	// could not be determined before mutating it.
	ExitRepoState ExitCode = 26

	// ExitArchiveCreate indicates zipping the build output directory failed.
	ExitArchiveCreate ExitCode = 30

	// ExitArchiveAppend indicates appending the extension files to the archive failed.
	ExitArchiveAppend ExitCode = 31

	// ExitClean indicates the clean step failed.
	ExitClean ExitCode = 40

	// ExitAlreadyRunning indicates another pdfext-kit invocation holds the
	// run marker for the same working directory.
	ExitAlreadyRunning ExitCode = 50
)

// CLIError pairs a human-readable failure description with the exit code the
// process should terminate with. Services return it through the regular
// error chain; the cobra layer unwraps it at the boundary.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message describes the failure.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError without an underlying cause.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError wrapping an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
