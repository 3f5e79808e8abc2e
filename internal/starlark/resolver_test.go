package starlark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/sdkversion"
)

const versionsFile = `
flutter = struct(
    minSdkVersion = 21,
    targetSdkVersion = 34,
    compileSdkVersion = 34,
    ndkVersion = "26.1.10909125",
)

def _code(major, minor, patch):
    return major * 10000 + minor * 100 + patch

app = struct(
    versionCode = _code(1, 4, 2),
    versionName = "1.4.2",
)
`

var _ descriptor.VersionResolver = (*Resolver)(nil)

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolverFromSource("versions.star", []byte(versionsFile), opts...)
	require.NoError(t, err)
	return r
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		ref  string
		want any
	}{
		{"flutter.targetSdkVersion", int64(34)},
		{"flutter.minSdkVersion", int64(21)},
		{"flutter.ndkVersion", "26.1.10909125"},
		{"app.versionCode", int64(10402)},
		{" app.versionName ", "1.4.2"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve("flutter.maxSdkVersion")
	require.ErrorIs(t, err, sdkversion.ErrUnknownReference)

	_, err = r.Resolve("gradle.version")
	require.ErrorIs(t, err, sdkversion.ErrUnknownReference)

	_, err = r.Resolve("flutter.targetSdkVersion + 1")
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "flutter.targetSdkVersion + 1", evalErr.Reference)
}

func TestResolver_NonValueReference(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve("_code")
	var valErr *ValueError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "function", valErr.Type)
}

func TestResolver_UnsupportedPredeclared(t *testing.T) {
	_, err := NewResolverFromSource("versions.star", []byte(versionsFile), WithPredeclared(map[string]any{
		"ci": map[string]any{"started": struct{}{}},
	}))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "ci.started")
}

func TestResolver_Predeclared(t *testing.T) {
	r := newTestResolver(t, WithPredeclared(map[string]any{
		"ci":      map[string]any{"buildNumber": 812},
		"flutter": map[string]any{"targetSdkVersion": 33},
	}))

	got, err := r.Resolve("ci.buildNumber")
	require.NoError(t, err)
	assert.Equal(t, int64(812), got)

	// Declarations in the file win over predeclared values.
	got, err = r.Resolve("flutter.targetSdkVersion")
	require.NoError(t, err)
	assert.Equal(t, int64(34), got)

	// Only names the file declares are listed.
	assert.NotContains(t, r.Names(), "ci.buildNumber")
	assert.Contains(t, r.Names(), "flutter.targetSdkVersion")
}

func TestResolver_PredeclaredVisibleToFile(t *testing.T) {
	src := `sdk = struct(target = base + 1)`
	r, err := NewResolverFromSource("inline.star", []byte(src), WithPredeclared(map[string]any{"base": 33}))
	require.NoError(t, err)

	got, err := r.Resolve("sdk.target")
	require.NoError(t, err)
	assert.Equal(t, int64(34), got)
}

func TestResolver_Names(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, []string{
		"app.versionCode",
		"app.versionName",
		"flutter.compileSdkVersion",
		"flutter.minSdkVersion",
		"flutter.ndkVersion",
		"flutter.targetSdkVersion",
	}, r.Names())
}

func TestResolver_ResolveAll(t *testing.T) {
	r := newTestResolver(t, WithPoolSize(2))

	got := r.ResolveAll([]string{"flutter.targetSdkVersion", "missing.value", "app.versionName", "1 + 1"})
	require.Len(t, got, 4)

	assert.Equal(t, int64(34), got[0].Value)
	require.NoError(t, got[0].Err)
	assert.ErrorIs(t, got[1].Err, sdkversion.ErrUnknownReference)
	assert.Equal(t, "1.4.2", got[2].Value)
	assert.Error(t, got[3].Err)
	assert.Equal(t, "1 + 1", got[3].Reference)
}

func TestNewResolver_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "versions.star")
	require.NoError(t, os.WriteFile(path, []byte(versionsFile), 0o600))

	r, err := NewResolver(path)
	require.NoError(t, err)
	got, err := r.Resolve("flutter.compileSdkVersion")
	require.NoError(t, err)
	assert.Equal(t, int64(34), got)

	_, err = NewResolver(filepath.Join(dir, "missing.star"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestNewResolver_ExecError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "flutter = struct(\n"},
		{"runtime", "flutter = struct(targetSdkVersion = 1 // 0)"},
		{"undefined", "flutter = struct(targetSdkVersion = sdk)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolverFromSource("bad.star", []byte(tt.src))
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, "bad.star", loadErr.File)
			assert.NotEmpty(t, loadErr.Message)
		})
	}
}

func TestResolver_WithLoad(t *testing.T) {
	r := newTestResolver(t)
	doc := descriptor.Document{
		"applicationIdentifier": "dev.leapstack.tasty_track",
		"minPlatformVersion":    21,
		"targetPlatformVersion": "${flutter.targetSdkVersion}",
		"compileSdkVersion":     "flutter.compileSdkVersion",
		"versionCode":           "app.versionCode",
		"versionName":           "${app.versionName}",
		"compileOptions":        map[string]any{"source": "1.8", "target": "1.8"},
		"pluginList":            []any{"com.android.application", "kotlin-android"},
		"signingReference":      "debug",
		"sourceRoot":            "../..",
	}

	d, err := descriptor.Load(doc, registry{"debug"},
		descriptor.WithResolver(r),
		descriptor.WithSourceRootCheck(descriptor.SourceRootSkip))
	require.NoError(t, err)

	assert.Equal(t, 34, d.TargetPlatformVersion().Value)
	vc, ok := d.VersionCode()
	require.True(t, ok)
	assert.Equal(t, 10402, vc.Value)
	vn, ok := d.VersionName()
	require.True(t, ok)
	assert.Equal(t, "1.4.2", vn.Value)
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
