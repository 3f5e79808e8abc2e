package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("project-dir", "", "")
	fs.String("descriptor", "", "")
	fs.String("variant", "", "")
	fs.String("source-root-check", "", "")
	fs.String("versions-file", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	fs.String("log-level", "", "")
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Layering(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `descriptor: android/app/build.yaml
variant: release
source_root_check: deferred
versions_file: versions.star
output: text
`)

	t.Run("file only", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.ProjectRoot)
		assert.Equal(t, path, cfg.ConfigFile)
		assert.Equal(t, "release", cfg.Variant)
		assert.Equal(t, descriptor.SourceRootDeferred, cfg.SourceRootCheck)
		assert.Equal(t, "text", cfg.OutputFormat)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
		assert.Equal(t, filepath.Join(dir, "versions.star"), cfg.VersionsFile)
		assert.Equal(t, filepath.Join(dir, "android", "app", "build.yaml"), cfg.DescriptorPath())
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LEAPBUILD_VARIANT", "profile")
		t.Setenv("LEAPBUILD_SOURCE_ROOT_CHECK", "skip")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "profile", cfg.Variant)
		assert.Equal(t, descriptor.SourceRootSkip, cfg.SourceRootCheck)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("LEAPBUILD_VARIANT", "profile")

		flags := newFlags()
		require.NoError(t, flags.Parse([]string{"--variant", "debug", "-o", "json", "--log-level", "debug", "-v"}))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Variant)
		assert.Equal(t, "json", cfg.OutputFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, descriptor.SourceRootDeferred, cfg.SourceRootCheck, "unset flags keep file values")
	})
}

func TestLoadConfig_ProjectDirFlag(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "variant: release\n")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--project-dir", dir}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "leapbuild.yaml"), cfg.ConfigFile)
	assert.Equal(t, "release", cfg.Variant)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	bad := writeConfig(t, dir, "source_root_check: eventually\n")
	_, err = LoadConfig(bad, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to decode config")
}

func TestFindProjectRootUpward(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	nested := filepath.Join(dir, "android", "app", "src")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	assert.Equal(t, dir, findProjectRootUpward(nested))
	assert.Empty(t, findProjectRootUpward(t.TempDir()))
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Empty(t, resolvePathRelativeTo("", "/root"))
	assert.Equal(t, "/abs/build.yaml", resolvePathRelativeTo("/abs/build.yaml", "/root"))
	assert.Equal(t, filepath.Join("/root", "build.yaml"), resolvePathRelativeTo("build.yaml", "/root"))
	assert.Equal(t, "build.yaml", resolvePathRelativeTo("build.yaml", ""))
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))

	custom := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.WithValue(context.Background(), LoggerKey(), custom)
	assert.Same(t, custom, GetLogger(ctx))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel(" INFO "))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("chatty"))
}

func TestConfigContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	cfg := &Config{Verbose: true}
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))

	logger := slog.New(slog.DiscardHandler)
	assert.Same(t, logger, GetLogger(WithLogger(ctx, logger)))
}
