package descriptor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LanguageLevel is a Java language level as understood by the Android
// toolchain. The zero value means "not declared".
type LanguageLevel string

// Supported language levels.
const (
	LevelUnknown LanguageLevel = ""
	Java6        LanguageLevel = "1.6"
	Java7        LanguageLevel = "1.7"
	Java8        LanguageLevel = "1.8"
	Java9        LanguageLevel = "9"
	Java10       LanguageLevel = "10"
	Java11       LanguageLevel = "11"
	Java12       LanguageLevel = "12"
	Java13       LanguageLevel = "13"
	Java14       LanguageLevel = "14"
	Java15       LanguageLevel = "15"
	Java16       LanguageLevel = "16"
	Java17       LanguageLevel = "17"
	Java18       LanguageLevel = "18"
	Java19       LanguageLevel = "19"
	Java20       LanguageLevel = "20"
	Java21       LanguageLevel = "21"
)

var supportedLevels = []LanguageLevel{
	Java6, Java7, Java8, Java9, Java10, Java11, Java12, Java13,
	Java14, Java15, Java16, Java17, Java18, Java19, Java20, Java21,
}

// SupportedLevels returns every accepted language level, oldest first.
func SupportedLevels() []LanguageLevel {
	return slices.Clone(supportedLevels)
}

// Valid reports whether l is one of the supported levels.
func (l LanguageLevel) Valid() bool {
	return slices.Contains(supportedLevels, l)
}

// Feature returns the major feature release number (8 for "1.8").
func (l LanguageLevel) Feature() int {
	s := strings.TrimPrefix(string(l), "1.")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// GradleName returns the JavaVersion constant name, e.g. VERSION_1_8.
func (l LanguageLevel) GradleName() string {
	if l == LevelUnknown {
		return ""
	}
	return "VERSION_" + strings.ReplaceAll(string(l), ".", "_")
}

func (l LanguageLevel) String() string {
	return string(l)
}

// ParseLanguageLevel normalizes the accepted spellings of a language level:
// "11", "1.8", "8", "VERSION_1_8" and "JavaVersion.VERSION_17".
func ParseLanguageLevel(s string) (LanguageLevel, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "JavaVersion.")
	if strings.HasPrefix(s, "VERSION_") {
		s = strings.ReplaceAll(strings.TrimPrefix(s, "VERSION_"), "_", ".")
	}
	switch s {
	case "6", "7", "8":
		s = "1." + s
	}
	l := LanguageLevel(s)
	if !l.Valid() {
		return LevelUnknown, fmt.Errorf("unsupported language level %q", raw)
	}
	return l, nil
}

// languageLevelFromValue parses a decoded document value. YAML decodes
// 11 as an integer and 1.8 as a float, so both are accepted next to strings.
// ok is false when the value has the wrong type.
func languageLevelFromValue(v any) (level LanguageLevel, ok bool, err error) {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		n, isInt := asInt(v)
		if !isInt {
			return LevelUnknown, false, nil
		}
		s = strconv.Itoa(n)
	}
	level, err = ParseLanguageLevel(s)
	return level, true, err
}
