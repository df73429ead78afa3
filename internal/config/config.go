package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all pdfext-kit commands.
type Config struct {
	// UpstreamDir is the path to the fork checkout the tool operates on.
	UpstreamDir string `yaml:"upstream_dir"`
	// DefaultBranch is the upstream default branch, considered unstable for builds.
	DefaultBranch string `yaml:"default_branch"`
	// Patches lists the patch files applied on top of a release, in order.
	Patches []string `yaml:"patches"`
	// BuildTool is the external build tool executable expected on PATH.
	BuildTool string `yaml:"build_tool"`
	// BuildTarget is the build tool target producing minified output.
	BuildTarget string `yaml:"build_target"`
	// CleanTarget is the build tool target removing generated output.
	CleanTarget string `yaml:"clean_target"`
	// BuildOutputDir is the directory the build tool writes minified assets to,
	// relative to UpstreamDir.
	BuildOutputDir string `yaml:"build_output_dir"`
	// ArchivePath is where the distributable archive is written,
	// relative to UpstreamDir.
	ArchivePath string `yaml:"archive"`
	// ExtensionFiles lists the extension-specific files appended to the archive,
	// relative to UpstreamDir.
	ExtensionFiles []string `yaml:"extension_files"`
	// ExcludeGlobs lists glob patterns excluded from the archived build output.
	ExcludeGlobs []string `yaml:"exclude_globs"`
}

const (
	// DefaultConfigFilename is the default filename for tool settings.
	DefaultConfigFilename = "pdfext-kit.yaml"

	// DefaultFilePermissions is the file permission used for the config file.
	DefaultFilePermissions = 0o600

	// PatchSetSize is the fixed number of patches in the customization set.
	PatchSetSize = 3
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPatchSetSize is returned when the patch set does not have exactly three entries.
	errPatchSetSize = fmt.Errorf("patch set must contain exactly %d files", PatchSetSize)
	// errEmptyField is returned when a required setting is blank.
	errEmptyField = errors.New("setting must not be empty")
)

// Default returns a configuration matching the stock fork layout.
func Default() *Config {
	return &Config{
		UpstreamDir:   ".",
		DefaultBranch: "master",
		Patches: []string{
			"patches/0001-viewer-integration.patch",
			"patches/0002-disable-telemetry.patch",
			"patches/0003-toolbar-branding.patch",
		},
		BuildTool:      "gulp",
		BuildTarget:    "minified",
		CleanTarget:    "clean",
		BuildOutputDir: "build/minified",
		ArchivePath:    "pdf-viewer.zip",
		ExtensionFiles: []string{
			"manifest.json",
			"pdfHandler.js",
			"extension-router.js",
			"options.html",
			"options.js",
			"icon16.png",
			"icon48.png",
			"icon128.png",
		},
		ExcludeGlobs: []string{
			"*.map",
			"debugger.*",
			"*.pdf",
			".git*",
		},
	}
}

// Load reads configuration from the provided path and validates it.
// A missing file is not an error: defaults are returned instead, so the tool
// works out of the box inside a stock fork checkout.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if len(cfg.Patches) != PatchSetSize {
		return errPatchSetSize
	}

	required := map[string]string{
		"upstream_dir":     cfg.UpstreamDir,
		"default_branch":   cfg.DefaultBranch,
		"build_tool":       cfg.BuildTool,
		"build_target":     cfg.BuildTarget,
		"clean_target":     cfg.CleanTarget,
		"build_output_dir": cfg.BuildOutputDir,
		"archive":          cfg.ArchivePath,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s: %w", name, errEmptyField)
		}
	}

	for _, patch := range cfg.Patches {
		if patch == "" {
			return fmt.Errorf("patches: %w", errEmptyField)
		}
	}

	return nil
}

// ResolvePath joins a configured relative path with the upstream directory.
// Absolute paths are returned unchanged.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.UpstreamDir, path)
}
