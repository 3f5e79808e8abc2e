// Package main provides tests for the leapbuild CLI.
package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/cli"
	"github.com/leapstack-labs/leapbuild/internal/cli/testutil"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapbuild v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"validate", "show", "doctor", "rules", "refs", "watch", "init", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapbuild")

	_, _, err = run(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestValidate_Project(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := run(t, "validate", "--project-dir", dir, "-o", "json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["valid"])
	assert.Equal(t, "valid", results[0]["state"])
	assert.Equal(t, "com.example.tasty_track", results[0]["applicationIdentifier"])
	assert.EqualValues(t, 34, results[0]["targetPlatformVersion"])
}

func TestValidate_FirstFailure(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	broken := filepath.Join(dir, "android", "app", "broken.yaml")
	testutil.WriteFile(t, broken, strings.Replace(testutil.ValidDescriptor, "minPlatformVersion: 21\n", "", 1))

	_, _, err := run(t, "validate", "--project-dir", dir, "-o", "text", broken)
	require.Error(t, err)

	var missing *descriptor.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, descriptor.FieldMinPlatformVersion, missing.Field)
}

func TestValidate_FlagOverridesConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	testutil.WriteFile(t, filepath.Join(dir, "android", "app", "build.yaml"),
		strings.Replace(testutil.ValidDescriptor, "sourceRoot: ../..", "sourceRoot: ../missing", 1))

	_, _, err := run(t, "validate", "--project-dir", dir, "-o", "json")
	require.Error(t, err)
	assert.ErrorIs(t, err, descriptor.ErrInvalid)

	_, _, err = run(t, "validate", "--project-dir", dir, "-o", "json", "--source-root-check", "skip")
	require.NoError(t, err)
}

func TestShow_YAML(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := run(t, "show", "--project-dir", dir, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "applicationIdentifier: com.example.tasty_track")
	assert.Contains(t, out, "reference: flutter.targetSdkVersion")
}

func TestInvalidOutputFormat(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, "validate", "--project-dir", dir, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestVerboseLogsRunID(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, stderr, err := run(t, "validate", "--project-dir", dir, "-o", "json", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "run_id=")
	assert.Contains(t, stderr, "configuration loaded")
}
