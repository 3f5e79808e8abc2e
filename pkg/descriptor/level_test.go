package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguageLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LanguageLevel
		wantErr bool
	}{
		{"11", Java11, false},
		{" 17 ", Java17, false},
		{"1.8", Java8, false},
		{"8", Java8, false},
		{"VERSION_1_8", Java8, false},
		{"VERSION_11", Java11, false},
		{"JavaVersion.VERSION_17", Java17, false},
		{"JavaVersion.VERSION_21", Java21, false},
		{"1.5", LevelUnknown, true},
		{"22", LevelUnknown, true},
		{"eleven", LevelUnknown, true},
		{"", LevelUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLanguageLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageLevelFromValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   LanguageLevel
		wantOK bool
	}{
		{"yaml int", 11, Java11, true},
		{"yaml float", 1.8, Java8, true},
		{"json integral float", float64(17), Java17, true},
		{"string", "VERSION_1_7", Java7, true},
		{"bool", true, LevelUnknown, false},
		{"nil", nil, LevelUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := languageLevelFromValue(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLanguageLevel_Accessors(t *testing.T) {
	assert.Equal(t, 8, Java8.Feature())
	assert.Equal(t, 11, Java11.Feature())
	assert.Equal(t, "VERSION_1_8", Java8.GradleName())
	assert.Equal(t, "VERSION_17", Java17.GradleName())
	assert.Empty(t, LevelUnknown.GradleName())
	assert.False(t, LevelUnknown.Valid())
	assert.Len(t, SupportedLevels(), 16)
}

func TestSourceRootCheck_Text(t *testing.T) {
	for _, c := range []SourceRootCheck{SourceRootImmediate, SourceRootDeferred, SourceRootSkip} {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back SourceRootCheck
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	got, err := ParseSourceRootCheck("")
	require.NoError(t, err)
	assert.Equal(t, SourceRootImmediate, got)

	_, err = ParseSourceRootCheck("later")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deferred, immediate, skip")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unparsed", StateUnparsed.String())
	assert.Equal(t, "validating", StateValidating.String())
	assert.Equal(t, "valid", StateValid.String())
	assert.Equal(t, "invalid", StateInvalid.String())
	assert.Equal(t, StateInvalid, StateOf(nil, nil))
}
