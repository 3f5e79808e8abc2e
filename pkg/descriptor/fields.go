package descriptor

import (
	"math"
	"regexp"
	"strings"
)

// Document field names.
const (
	FieldApplicationIdentifier = "applicationIdentifier"
	FieldMinPlatformVersion    = "minPlatformVersion"
	FieldTargetPlatformVersion = "targetPlatformVersion"
	FieldCompileOptions        = "compileOptions"
	FieldCompileOptionsSource  = "compileOptions.source"
	FieldCompileOptionsTarget  = "compileOptions.target"
	FieldPluginList            = "pluginList"
	FieldSigningReference      = "signingReference"
	FieldSourceRoot            = "sourceRoot"

	FieldNamespace         = "namespace"
	FieldCompileSdkVersion = "compileSdkVersion"
	FieldNDKVersion        = "ndkVersion"
	FieldJVMTarget         = "jvmTarget"
	FieldVersionCode       = "versionCode"
	FieldVersionName       = "versionName"
	FieldBuildTypes        = "buildTypes"
)

// requiredFields lists required fields in presence-check order.
var requiredFields = []string{
	FieldApplicationIdentifier,
	FieldMinPlatformVersion,
	FieldTargetPlatformVersion,
	FieldCompileOptions,
	FieldCompileOptionsSource,
	FieldCompileOptionsTarget,
	FieldPluginList,
	FieldSigningReference,
	FieldSourceRoot,
}

var knownTopLevel = map[string]bool{
	FieldApplicationIdentifier: true,
	FieldMinPlatformVersion:    true,
	FieldTargetPlatformVersion: true,
	FieldCompileOptions:        true,
	FieldPluginList:            true,
	FieldSigningReference:      true,
	FieldSourceRoot:            true,
	FieldNamespace:             true,
	FieldCompileSdkVersion:     true,
	FieldNDKVersion:            true,
	FieldJVMTarget:             true,
	FieldVersionCode:           true,
	FieldVersionName:           true,
	FieldBuildTypes:            true,
}

// RequiredFields returns the required document fields in check order.
// Nested fields use dotted paths.
func RequiredFields() []string {
	out := make([]string, len(requiredFields))
	copy(out, requiredFields)
	return out
}

var applicationIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`)

// lookup walks a dotted path through nested mappings.
func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// asInt accepts every integer kind a decoder may produce, plus floats with
// no fractional part (JSON numbers).
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// typeName describes a decoded value for TypeMismatchError.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64:
		if _, ok := asInt(v); ok {
			return "integer"
		}
		return "float"
	case []any, []string:
		return "sequence"
	case map[string]any:
		return "mapping"
	}
	if _, ok := asInt(v); ok {
		return "integer"
	}
	return "unknown"
}

// referenceOf extracts a reference from "${name}" or returns s unchanged.
func referenceOf(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return strings.TrimSpace(s[2 : len(s)-1]), true
	}
	return s, false
}
