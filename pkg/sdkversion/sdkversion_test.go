package sdkversion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

func TestFromMap_Flattens(t *testing.T) {
	s := FromMap(map[string]any{
		"flutter": map[string]any{
			"minSdkVersion":    21,
			"targetSdkVersion": 34,
		},
		"versionName": "1.2.0",
	})

	v, err := s.Resolve("flutter.targetSdkVersion")
	require.NoError(t, err)
	assert.Equal(t, 34, v)

	assert.Equal(t, []string{"flutter.minSdkVersion", "flutter.targetSdkVersion", "versionName"}, s.Names())

	_, err = s.Resolve("flutter")
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestChain(t *testing.T) {
	boom := errors.New("versions file broken")

	tests := []struct {
		name    string
		chain   Chain
		want    any
		wantErr error
	}{
		{
			name:  "first wins",
			chain: Chain{Static{"sdk.target": 34}, Static{"sdk.target": 33}},
			want:  34,
		},
		{
			name:  "falls through unknown",
			chain: Chain{Static{}, nil, Static{"sdk.target": 33}},
			want:  33,
		},
		{
			name: "stops on other errors",
			chain: Chain{
				descriptor.ResolverFunc(func(string) (any, error) { return nil, boom }),
				Static{"sdk.target": 33},
			},
			wantErr: boom,
		},
		{
			name:    "exhausted",
			chain:   Chain{Static{"other": 1}},
			wantErr: ErrUnknownReference,
		},
		{
			name:    "empty",
			chain:   nil,
			wantErr: ErrUnknownReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chain.Resolve("sdk.target")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChain_Names(t *testing.T) {
	c := Chain{
		Static{"b": 1, "a": 2},
		descriptor.ResolverFunc(func(string) (any, error) { return nil, ErrUnknownReference }),
		Static{"a": 3, "c": 4},
	}
	assert.Equal(t, []string{"a", "b", "c"}, c.Names())
}

func TestChain_WithLoad(t *testing.T) {
	doc := descriptor.Document{
		"applicationIdentifier": "com.example.tasty_track",
		"minPlatformVersion":    21,
		"targetPlatformVersion": "flutter.targetSdkVersion",
		"compileOptions":        map[string]any{"source": "11", "target": "11"},
		"pluginList":            []any{"com.android.application"},
		"signingReference":      "debug",
		"sourceRoot":            ".",
	}
	registry := staticRegistry{"debug"}

	d, err := descriptor.Load(doc, registry,
		descriptor.WithResolver(Chain{FromMap(map[string]any{"flutter": map[string]any{"targetSdkVersion": 34}})}),
		descriptor.WithSourceRootCheck(descriptor.SourceRootSkip))
	require.NoError(t, err)
	assert.Equal(t, 34, d.TargetPlatformVersion().Value)
	assert.Equal(t, "flutter.targetSdkVersion", d.TargetPlatformVersion().Reference)

	_, err = descriptor.Load(doc, registry,
		descriptor.WithResolver(Chain{Static{}}),
		descriptor.WithSourceRootCheck(descriptor.SourceRootSkip))
	var unresolved *descriptor.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

type staticRegistry []string

func (r staticRegistry) Has(name string) bool {
	for _, n := range r {
		if n == name {
			return true
		}
	}
	return false
}

func (r staticRegistry) Names() []string { return r }
