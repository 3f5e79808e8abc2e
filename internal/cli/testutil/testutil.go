// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
)

// ValidDescriptor is a descriptor that loads with the default signing
// registry and a resolver answering flutter.targetSdkVersion.
const ValidDescriptor = `applicationIdentifier: com.example.tasty_track
minPlatformVersion: 21
targetPlatformVersion: ${flutter.targetSdkVersion}
compileSdkVersion: 34
compileOptions:
  source: "11"
  target: "11"
jvmTarget: "11"
pluginList:
  - com.android.application
  - org.jetbrains.kotlin.android
signingReference: debug
sourceRoot: ../..
`

// ProjectConfig is the leapbuild.yaml written by SetupTestProject.
const ProjectConfig = `descriptor: android/app/build.yaml
source_root_check: immediate
versions:
  flutter:
    targetSdkVersion: 34
`

// SetupTestProject creates a temporary Flutter-style project with a
// leapbuild.yaml and a valid android/app/build.yaml. It returns the
// project root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	WriteFile(t, filepath.Join(tmpDir, "leapbuild.yaml"), ProjectConfig)
	WriteFile(t, filepath.Join(tmpDir, "android", "app", "build.yaml"), ValidDescriptor)
	return tmpDir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Chdir changes the working directory for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for balanced code fences and a leading header.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if strings.Count(md, "```")%2 != 0 {
		t.Errorf("markdown has unclosed code fence")
	}
	trimmed := strings.TrimSpace(md)
	if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
		t.Errorf("markdown should start with a header, got: %q", firstLine(trimmed))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
