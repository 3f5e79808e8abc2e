package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/cli/testutil"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name: "init empty directory",
			args: []string{},
			wantFiles: []string{
				"leapbuild.yaml",
				"versions.star",
				"android/app/build.yaml",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				testutil.WriteFile(t, filepath.Join(dir, "leapbuild.yaml"), "existing")
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				testutil.WriteFile(t, filepath.Join(dir, "leapbuild.yaml"), "existing")
			},
			args:      []string{"--force"},
			wantFiles: []string{"leapbuild.yaml", "android/app/build.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			cmd := NewInitCommand()
			out, _, err := execute(t, cmd, nil, append(tt.args, dir)...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "already exists")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "leapbuild initialized!")

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f)))
				assert.NoError(t, err, "expected %s to exist", f)
			}
		})
	}
}

func TestInitCommand_KeepsExistingDescriptor(t *testing.T) {
	dir := t.TempDir()
	descriptorPath := filepath.Join(dir, "android", "app", "build.yaml")
	testutil.WriteFile(t, descriptorPath, testutil.ValidDescriptor)

	out, _, err := execute(t, NewInitCommand(), nil, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "android/app/build.yaml")

	content, err := os.ReadFile(descriptorPath)
	require.NoError(t, err)
	assert.Equal(t, testutil.ValidDescriptor, string(content))
}

func TestInitCommand_GeneratedProjectValidates(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, NewInitCommand(), nil, "--application-id", "com.acme.tasty_track", dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "android", "app", "build.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "applicationIdentifier: com.acme.tasty_track")

	cfg := loadProject(t, dir)
	out, _, err := execute(t, NewShowCommand(), cfg, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"reference": "flutter.targetSdkVersion"`)
	assert.Contains(t, out, `"reference": "app.versionCode"`)
	assert.Contains(t, out, `"value": 10000`)

	_, _, err = execute(t, NewValidateCommand(), cfg, "-f", "json")
	require.NoError(t, err)
}

func TestListTemplateFiles(t *testing.T) {
	files, err := listTemplateFiles(templateName)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"leapbuild.yaml", "versions.star", "android/app/build.yaml"}, files)
}
