package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/testutil"
	"github.com/leapstack-labs/leapbuild/internal/document"
	intconfig "github.com/leapstack-labs/leapbuild/internal/config"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// loadProject loads the configuration of the project at dir the way the
// root command does.
func loadProject(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(dir, intconfig.ConfigFileName), nil)
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with cfg in its context and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(config.WithConfig(context.Background(), cfg))
	return stdout.String(), stderr.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewValidateCommand(), "validate [file...]", []string{"jobs", "format"}},
		{NewShowCommand(), "show [file]", []string{"format"}},
		{NewDoctorCommand(), "doctor [file]", []string{"format", "strict"}},
		{NewRulesCommand(), "rules [rule-id]", []string{"group", "verbose", "format"}},
		{NewRefsCommand(), "refs [reference...]", []string{"format"}},
		{NewWatchCommand(), "watch [file...]", []string{"debounce"}},
		{NewInitCommand(), "init [directory]", []string{"force", "application-id"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut string
	}{
		{"default version", "0.1.0", "leapbuild v0.1.0"},
		{"custom version", "1.2.3", "leapbuild v1.2.3"},
		{"dev version", "dev", "leapbuild vdev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)

			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}

func TestCommandContext_Load(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cfg := loadProject(t, dir)

	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cmdCtx, err := NewCommandContext(cmd)
	require.NoError(t, err)

	d, err := cmdCtx.Load(cfg.DescriptorPath())
	require.NoError(t, err)
	assert.Equal(t, 34, d.TargetPlatformVersion().Value)
	assert.Equal(t, "flutter.targetSdkVersion", d.TargetPlatformVersion().Reference)
	assert.Equal(t, dir, d.ResolvedSourceRoot())
	assert.Equal(t, filepath.Join("android", "app", "build.yaml"), cmdCtx.displayPath(cfg.DescriptorPath()))
}

func TestCommandContext_LoadStdin(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cfg := loadProject(t, dir)

	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cmd.SetIn(bytes.NewBufferString("applicationIdentifier: [unclosed\n"))
	cmdCtx, err := NewCommandContext(cmd)
	require.NoError(t, err)

	_, err = cmdCtx.Load(stdinName)
	var pe *document.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "<stdin>", pe.File)
	assert.Equal(t, "<stdin>", cmdCtx.displayPath(stdinName))
}

func TestCommandContext_DeferredSourceRoot(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	cfg := loadProject(t, dir)
	cfg.SourceRootCheck = descriptor.SourceRootDeferred

	missing := filepath.Join(dir, "other", "build.yaml")
	testutil.WriteFile(t, missing, replaceLine(testutil.ValidDescriptor, "sourceRoot: ../..", "sourceRoot: ./gone"))

	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cmdCtx, err := NewCommandContext(cmd)
	require.NoError(t, err)

	_, err = cmdCtx.Load(missing)
	var rootErr *descriptor.SourceRootError
	require.ErrorAs(t, err, &rootErr)
}
