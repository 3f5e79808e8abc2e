// Package starlark evaluates version references such as
// "flutter.targetSdkVersion" against a Starlark versions file.
package starlark

import (
	"fmt"
	"math"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ValueError reports a value that cannot cross between Go and a versions
// file.
type ValueError struct {
	Path string // dotted path of the offending value, "" at the top level
	Type string
}

func (e *ValueError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unsupported version value of type %s", e.Type)
	}
	return fmt.Sprintf("%s: unsupported version value of type %s", e.Path, e.Type)
}

// fromGo converts a configured version value for use as a predeclared
// global. Nested maps become structs so that config versions and
// struct() declarations are referenced the same way.
func fromGo(path string, v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float64:
		return starlark.Float(val), nil
	case []any:
		elems := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := fromGo(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return starlark.NewList(elems), nil
	case map[string]any:
		fields := make(starlark.StringDict, len(val))
		for k, item := range val {
			sv, err := fromGo(join(path, k), item)
			if err != nil {
				return nil, err
			}
			fields[k] = sv
		}
		return starlarkstruct.FromStringDict(starlarkstruct.Default, fields), nil
	}
	return nil, &ValueError{Path: path, Type: fmt.Sprintf("%T", v)}
}

// toGo converts a resolved value. Integers come back as int64 and structs
// as map[string]any; functions and other callables are rejected.
func toGo(path string, v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		n, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("%s: integer %s overflows int64", path, val)
		}
		return n, nil
	case starlark.Float:
		f := float64(val)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%s: %s is not a finite number", path, val)
		}
		return f, nil
	case starlark.Indexable:
		out := make([]any, val.Len())
		for i := range out {
			gv, err := toGo(fmt.Sprintf("%s[%d]", path, i), val.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	case *starlarkstruct.Struct:
		out := make(map[string]any)
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				return nil, err
			}
			if out[name], err = toGo(join(path, name), attr); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, &ValueError{Path: path, Type: v.Type()}
}

// dottedNames lists every leaf path below v, e.g. "flutter.minSdkVersion".
func dottedNames(prefix string, v starlark.Value) []string {
	st, ok := v.(*starlarkstruct.Struct)
	if !ok {
		return []string{prefix}
	}
	var names []string
	attrs := st.AttrNames()
	sort.Strings(attrs)
	for _, name := range attrs {
		attr, err := st.Attr(name)
		if err != nil {
			continue
		}
		names = append(names, dottedNames(prefix+"."+name, attr)...)
	}
	return names
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
