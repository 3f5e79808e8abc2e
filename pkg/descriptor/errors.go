package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every validation error returned by Load.
var ErrInvalid = errors.New("invalid build descriptor")

// MissingFieldError reports a required field absent from the document.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is makes the error match ErrInvalid.
func (e *MissingFieldError) Is(target error) bool { return target == ErrInvalid }

// TypeMismatchError reports a field whose value has the wrong type.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Is makes the error match ErrInvalid.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrInvalid }

// InvalidValueError reports a well-typed value outside the accepted range or
// format.
type InvalidValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q: invalid value %v: %s", e.Field, e.Value, e.Reason)
}

// Is makes the error match ErrInvalid.
func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalid }

// UnknownFieldError reports a top-level key the loader does not recognize.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// Is makes the error match ErrInvalid.
func (e *UnknownFieldError) Is(target error) bool { return target == ErrInvalid }

// UnresolvedReferenceError reports a platform-version reference the resolver
// could not turn into a concrete value.
type UnresolvedReferenceError struct {
	Field     string
	Reference string
	Err       error
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %q: cannot resolve reference %q: %v", e.Field, e.Reference, e.Err)
	}
	return fmt.Sprintf("field %q: cannot resolve reference %q", e.Field, e.Reference)
}

func (e *UnresolvedReferenceError) Unwrap() error { return e.Err }

// Is makes the error match ErrInvalid.
func (e *UnresolvedReferenceError) Is(target error) bool { return target == ErrInvalid }

// VersionOrderError reports minPlatformVersion above the resolved
// targetPlatformVersion.
type VersionOrderError struct {
	Min    int
	Target PlatformVersion
}

func (e *VersionOrderError) Error() string {
	return fmt.Sprintf("minPlatformVersion %d is greater than targetPlatformVersion %s", e.Min, e.Target)
}

// Is makes the error match ErrInvalid.
func (e *VersionOrderError) Is(target error) bool { return target == ErrInvalid }

// UnknownSigningConfigError reports a signing reference missing from the
// caller's registry.
type UnknownSigningConfigError struct {
	Reference string
	Variant   string
	Available []string
}

func (e *UnknownSigningConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown signing configuration %q", e.Reference)
	if e.Variant != "" {
		fmt.Fprintf(&b, " for variant %q", e.Variant)
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available: %s)", strings.Join(e.Available, ", "))
	}
	return b.String()
}

// Is makes the error match ErrInvalid.
func (e *UnknownSigningConfigError) Is(target error) bool { return target == ErrInvalid }

// DuplicatePluginError reports a plugin identifier listed more than once.
type DuplicatePluginError struct {
	Plugin     string
	Index      int
	FirstIndex int
}

func (e *DuplicatePluginError) Error() string {
	return fmt.Sprintf("duplicate plugin %q in pluginList (positions %d and %d)", e.Plugin, e.FirstIndex, e.Index)
}

// Is makes the error match ErrInvalid.
func (e *DuplicatePluginError) Is(target error) bool { return target == ErrInvalid }

// SourceRootError reports a source root that is missing or not a directory.
type SourceRootError struct {
	Path     string
	Resolved string
	Err      error
}

func (e *SourceRootError) Error() string {
	return fmt.Sprintf("sourceRoot %q (%s): %v", e.Path, e.Resolved, e.Err)
}

func (e *SourceRootError) Unwrap() error { return e.Err }

// Is makes the error match ErrInvalid.
func (e *SourceRootError) Is(target error) bool { return target == ErrInvalid }

// FieldOf returns the document field a validation error refers to, or "".
func FieldOf(err error) string {
	var (
		missing  *MissingFieldError
		mismatch *TypeMismatchError
		invalid  *InvalidValueError
		unknown  *UnknownFieldError
		unres    *UnresolvedReferenceError
		order    *VersionOrderError
		signing  *UnknownSigningConfigError
		dup      *DuplicatePluginError
		root     *SourceRootError
	)
	switch {
	case errors.As(err, &missing):
		return missing.Field
	case errors.As(err, &mismatch):
		return mismatch.Field
	case errors.As(err, &invalid):
		return invalid.Field
	case errors.As(err, &unknown):
		return unknown.Field
	case errors.As(err, &unres):
		return unres.Field
	case errors.As(err, &order):
		return FieldMinPlatformVersion
	case errors.As(err, &signing):
		return FieldSigningReference
	case errors.As(err, &dup):
		return FieldPluginList
	case errors.As(err, &root):
		return FieldSourceRoot
	}
	return ""
}

// State is the lifecycle state of a descriptor load.
type State int

// Load states. Valid and Invalid are terminal.
const (
	StateUnparsed State = iota
	StateValidating
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "unparsed"
	case StateValidating:
		return "validating"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StateOf maps the result of Load to its terminal state.
func StateOf(d *BuildDescriptor, err error) State {
	if err == nil && d != nil {
		return StateValid
	}
	return StateInvalid
}
