package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/cli/testutil"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

func replaceLine(s, old, replacement string) string {
	return strings.Replace(s, old, replacement, 1)
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string // relative to android/app
		args      []string
		wantErr   error
		wantField string
		wantOut   []string
	}{
		{
			name:    "configured descriptor",
			args:    []string{"-f", "text"},
			wantOut: []string{"✓ android/app/build.yaml", "com.example.tasty_track"},
		},
		{
			name: "missing field",
			files: map[string]string{
				"missing.yaml": replaceLine(testutil.ValidDescriptor, "signingReference: debug\n", ""),
			},
			args:      []string{"-f", "text", "missing.yaml"},
			wantErr:   descriptor.ErrInvalid,
			wantField: descriptor.FieldSigningReference,
			wantOut:   []string{"✗ android/app/missing.yaml"},
		},
		{
			name: "unknown signing configuration",
			files: map[string]string{
				"upload.yaml": replaceLine(testutil.ValidDescriptor, "signingReference: debug", "signingReference: upload"),
			},
			args:      []string{"-f", "text", "upload.yaml"},
			wantErr:   descriptor.ErrInvalid,
			wantField: descriptor.FieldSigningReference,
		},
		{
			name: "unresolved reference",
			files: map[string]string{
				"ref.yaml": replaceLine(testutil.ValidDescriptor, "${flutter.targetSdkVersion}", "${flutter.nope}"),
			},
			args:      []string{"-f", "text", "ref.yaml"},
			wantErr:   descriptor.ErrInvalid,
			wantField: descriptor.FieldTargetPlatformVersion,
		},
		{
			name: "markdown summary for several files",
			files: map[string]string{
				"a.yaml": testutil.ValidDescriptor,
				"b.yaml": testutil.ValidDescriptor,
			},
			args:    []string{"-f", "markdown", "a.yaml", "b.yaml"},
			wantOut: []string{"# Descriptor Validation", "- **SUCCESS** android/app/a.yaml", "2 of 2 descriptors valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.SetupTestProject(t)
			appDir := filepath.Join(dir, "android", "app")

			args := make([]string, 0, len(tt.args))
			for _, a := range tt.args {
				if _, ok := tt.files[a]; ok {
					a = filepath.Join(appDir, a)
				}
				args = append(args, a)
			}
			for name, content := range tt.files {
				testutil.WriteFile(t, filepath.Join(appDir, name), content)
			}

			out, _, err := execute(t, NewValidateCommand(), loadProject(t, dir), args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantField, descriptor.FieldOf(err))
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestValidateCommand_KeepsArgumentOrder(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	appDir := filepath.Join(dir, "android", "app")

	var args []string
	for i, id := range []string{"com.acme.one", "com.acme.two", "bad", "com.acme.four", "com.acme.five"} {
		name := filepath.Join(appDir, "v"+string(rune('0'+i))+".yaml")
		testutil.WriteFile(t, name, replaceLine(testutil.ValidDescriptor, "com.example.tasty_track", id))
		args = append(args, name)
	}

	out, _, err := execute(t, NewValidateCommand(), loadProject(t, dir), append([]string{"-f", "json", "-j", "2"}, args...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v2.yaml")

	var results []ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 5)
	for i, res := range results {
		assert.True(t, strings.HasSuffix(res.File, "v"+string(rune('0'+i))+".yaml"))
		assert.Equal(t, i != 2, res.Valid)
	}
	assert.Equal(t, descriptor.FieldApplicationIdentifier, results[2].Field)
	assert.Equal(t, "invalid", results[2].State)
}

func TestValidateCommand_StdinOnlyOnce(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	out, _, err := execute(t, NewValidateCommand(), loadProject(t, dir), "-f", "json", "-", "-")
	require.ErrorIs(t, err, errStdinTwice)
	assert.NotContains(t, out, `"file"`)

	assert.Equal(t, 1, countStdin([]string{"a.yaml", "-", "b.yaml"}))
	assert.Equal(t, 2, countStdin([]string{"-", "a.yaml", "-"}))
}

func TestRenderValidate(t *testing.T) {
	results := []ValidateResult{
		{File: "a.yaml", Valid: true, State: "valid", AppID: "com.example.tasty_track", Target: 34},
		{File: "b.yaml", State: "invalid", Field: "pluginList", Error: "missing required field pluginList"},
	}

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		require.NoError(t, renderValidate(&CommandContext{Renderer: tr.Renderer}, results))

		out := tr.Output()
		testutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "# Descriptor Validation")
		assert.Contains(t, out, "- **FAILED** b.yaml: missing required field pluginList")
		assert.Contains(t, out, "1 of 2 descriptors valid")
	})

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		require.NoError(t, renderValidate(&CommandContext{Renderer: tr.Renderer}, results))

		out := tr.Output()
		assert.Contains(t, out, "a.yaml")
		assert.Contains(t, out, "✗")
		assert.NotContains(t, out, "# Descriptor Validation")
		assert.Empty(t, tr.ErrorOutput())
	})

	t.Run("json", func(t *testing.T) {
		tr := testutil.NewTestRendererJSON()
		require.NoError(t, renderValidate(&CommandContext{Renderer: tr.Renderer}, results))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "com.example.tasty_track", got[0]["applicationIdentifier"])
		assert.Equal(t, "pluginList", got[1]["field"])
		assert.NotContains(t, got[0], "error")
	})
}
