package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

const buildYAML = `applicationIdentifier: com.example.tasty_track
minPlatformVersion: 21
targetPlatformVersion: flutter.targetSdkVersion
compileOptions:
  source: 1.8
  target: "1.8"
pluginList:
  - com.android.application
  - kotlin-android
  - dev.flutter.flutter-gradle-plugin
signingReference: debug
sourceRoot: ../..
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFile_YAML(t *testing.T) {
	doc, err := ReadFile(writeFile(t, "build.yaml", buildYAML))
	require.NoError(t, err)

	assert.Equal(t, "com.example.tasty_track", doc["applicationIdentifier"])
	assert.Equal(t, 21, doc["minPlatformVersion"])
	assert.Equal(t, "flutter.targetSdkVersion", doc["targetPlatformVersion"])
	assert.Equal(t, []any{"com.android.application", "kotlin-android", "dev.flutter.flutter-gradle-plugin"}, doc["pluginList"])

	opts, ok := doc["compileOptions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.8, opts["source"])
	assert.Equal(t, "1.8", opts["target"])
}

func TestReadFile_JSON(t *testing.T) {
	src := `{
  "applicationIdentifier": "com.example.tasty_track",
  "minPlatformVersion": 21,
  "targetPlatformVersion": 34,
  "compileOptions": {"source": "11", "target": "11"},
  "pluginList": ["com.android.application"],
  "signingReference": "debug",
  "sourceRoot": "."
}`
	doc, err := ReadFile(writeFile(t, "build.json", src))
	require.NoError(t, err)
	assert.Equal(t, 34, doc["targetPlatformVersion"])
	assert.Equal(t, "debug", doc["signingReference"])
}

func TestReadFile_DottedKeysLoad(t *testing.T) {
	src := strings.Replace(buildYAML, "compileOptions:\n  source: 1.8\n  target: \"1.8\"\n",
		"compileOptions.source: 11\ncompileOptions.target: 11\n", 1)
	doc, err := ReadFile(writeFile(t, "build.yml", src))
	require.NoError(t, err)

	d, err := descriptor.Load(doc, registry{"debug"},
		descriptor.WithResolver(descriptor.ResolverFunc(func(string) (any, error) { return 34, nil })),
		descriptor.WithSourceRootCheck(descriptor.SourceRootSkip))
	require.NoError(t, err)
	assert.Equal(t, descriptor.Java11, d.CompileOptions().Source)
	assert.Equal(t, descriptor.Java11, d.CompileOptions().Target)
}

func TestReadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "malformed",
			file:     "build.yaml",
			content:  "applicationIdentifier: com.example.app\nminPlatformVersion: 21\n  targetPlatformVersion: 34\n",
			wantLine: 3,
		},
		{
			name:     "sequence at top",
			file:     "build.yaml",
			content:  "- com.android.application\n",
			wantLine: 1,
			wantMsg:  "top level must be a mapping, got sequence",
		},
		{
			name:     "duplicate key",
			file:     "build.yaml",
			content:  "sourceRoot: .\nminPlatformVersion: 21\nsourceRoot: ../..\n",
			wantLine: 3,
			wantMsg:  `key "sourceRoot" already defined at line 1`,
		},
		{
			name:    "unsupported extension",
			file:    "build.gradle",
			content: "android {}\n",
			wantMsg: "unsupported extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(writeFile(t, tt.file, tt.content))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Contains(t, pe.File, tt.file)
			if tt.wantMsg != "" {
				assert.Contains(t, pe.Message, tt.wantMsg)
			}
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "build.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead(t *testing.T) {
	doc, err := Read(strings.NewReader(buildYAML), "<stdin>")
	require.NoError(t, err)
	assert.Equal(t, "../..", doc["sourceRoot"])

	doc, err = Read(strings.NewReader(""), "<stdin>")
	require.NoError(t, err)
	assert.Empty(t, doc)

	_, err = Read(strings.NewReader("[1, 2"), "<stdin>")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "<stdin>", pe.File)
}

func TestParseError_Error(t *testing.T) {
	assert.Equal(t, "build.yaml:3: bad", (&ParseError{File: "build.yaml", Line: 3, Message: "bad"}).Error())
	assert.Equal(t, "build.yaml: bad", (&ParseError{File: "build.yaml", Message: "bad"}).Error())
	assert.Equal(t, "bad", (&ParseError{Message: "bad"}).Error())
}

type registry []string

func (r registry) Has(name string) bool {
	for _, n := range r {
		if n == name {
			return true
		}
	}
	return false
}

func (r registry) Names() []string { return r }
