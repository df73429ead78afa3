package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/model"
)

// TestRunMissingBuildTool ensures an absent build tool is fatal with its own code,
// before anything touches the repository.
func TestRunMissingBuildTool(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.UpstreamDir = t.TempDir()
	cfg.BuildTool = "pdfext-kit-no-such-build-tool"

	err := Run(context.Background(), &Options{Config: cfg})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	require.Equal(t, model.ExitBuildToolMissing, cliErr.Code)
}
