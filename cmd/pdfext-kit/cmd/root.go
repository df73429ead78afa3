package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkovalev/pdfext-kit/internal/config"
	"github.com/dkovalev/pdfext-kit/internal/logger"
	"github.com/dkovalev/pdfext-kit/internal/model"
	"github.com/dkovalev/pdfext-kit/internal/service/build"
	"github.com/dkovalev/pdfext-kit/internal/service/clean"
	"github.com/dkovalev/pdfext-kit/internal/service/common"
	"github.com/dkovalev/pdfext-kit/internal/service/dist"
	syncsvc "github.com/dkovalev/pdfext-kit/internal/service/sync"
	"github.com/dkovalev/pdfext-kit/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel sets the logging verbosity (debug, info, warn, error, fatal).
	logLevel string

	// forceMaster allows building from the unstable default branch.
	forceMaster bool

	// rootCmd represents the base command. Invoked without a selector it
	// runs the full maintenance sequence.
	rootCmd = &cobra.Command{
		Use:   "pdfext-kit",
		Short: "Maintain the browser-extension fork of the PDF rendering library",
		Long: "pdfext-kit automates the fork's maintenance workflow: syncing the checkout " +
			"onto the latest upstream release, building minified artifacts with the local " +
			"patch set applied, and packaging them with the extension files into a " +
			"distributable archive.",
		Args: cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
				return nil
			}

			return model.NewCLIError(model.ExitUsage, "unknown log level: "+logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOperation(cmd, runAll)
		},
	}
)

// Execute runs the CLI, reporting the final status as both a console message
// and the process exit code.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		ctx := context.Background()

		code := model.ExitUsage

		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			code = cliErr.Code
		}

		logger.Errorf(ctx, "%v (code %d)", err, code)
		os.Exit(int(code))
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging verbosity (debug, info, warn, error, fatal)")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Apply the patch set, run the minified build, then revert the patches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOperation(cmd, func(ctx context.Context, cfg *config.Config) error {
				return build.Run(ctx, &build.Options{Config: cfg, ForceMaster: forceMaster})
			})
		},
	}
	buildCmd.Flags().BoolVar(&forceMaster, "force-master", false,
		"allow building from the unstable default branch")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "code",
			Short: "Sync the checkout onto the latest upstream release tag",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOperation(cmd, func(ctx context.Context, cfg *config.Config) error {
					return syncsvc.Run(ctx, &syncsvc.Options{Config: cfg})
				})
			},
		},
		buildCmd,
		&cobra.Command{
			Use:   "dist",
			Short: "Package the build output and extension files into the archive",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOperation(cmd, func(ctx context.Context, cfg *config.Config) error {
					return dist.Run(ctx, &dist.Options{Config: cfg})
				})
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove generated artifacts and the packaged archive",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOperation(cmd, func(ctx context.Context, cfg *config.Config) error {
					return clean.Run(ctx, &clean.Options{Config: cfg})
				})
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Run the full sequence: code, build, dist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOperation(cmd, runAll)
			},
		},
	)
}

// runOperation wires the shared machinery around an operation: graceful
// shutdown handling, configuration loading, and the single-instance guard.
func runOperation(cmd *cobra.Command, fn func(context.Context, *config.Config) error) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitConfig, "loading configuration failed", err)
	}

	release, err := common.AcquireRunMarker(ctx, cfg.UpstreamDir)
	if err != nil {
		return err
	}
	defer release()

	if err := fn(ctx, cfg); err != nil {
		return err
	}

	logger.Info(ctx, "Completed successfully (code 0)")

	return nil
}

// runAll executes sync, build and dist in order, halting at the first failure.
func runAll(ctx context.Context, cfg *config.Config) error {
	if err := syncsvc.Run(ctx, &syncsvc.Options{Config: cfg}); err != nil {
		return err
	}

	if err := build.Run(ctx, &build.Options{Config: cfg, ForceMaster: forceMaster}); err != nil {
		return err
	}

	return dist.Run(ctx, &dist.Options{Config: cfg})
}
