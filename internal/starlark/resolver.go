package starlark

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/leapbuild/pkg/sdkversion"
)

// LoadError is returned when a versions file cannot be read or executed.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("versions file %s: %s", e.File, e.Message)
}

// EvalError is returned when a reference fails to evaluate.
type EvalError struct {
	Reference string
	Err       error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Reference, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// referencePattern accepts dotted identifiers only. Arbitrary expressions
// are not references.
var referencePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Resolver answers version references from a Starlark versions file:
//
//	flutter = struct(
//	    minSdkVersion = 21,
//	    targetSdkVersion = 34,
//	)
//
// The file runs once; its globals are frozen and shared by every lookup.
// A Resolver is safe for concurrent use.
type Resolver struct {
	name    string
	globals starlark.StringDict
	pool    *ThreadPool
	workers int
	err     error

	// predeclared names the versions file did not redefine.
	predeclared map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPredeclared makes values visible to the versions file and to
// references. Values declared in the file take precedence.
func WithPredeclared(values map[string]any) Option {
	return func(r *Resolver) {
		for k, v := range values {
			sv, err := fromGo(k, v)
			if err != nil {
				r.err = err
				return
			}
			r.globals[k] = sv
			r.predeclared[k] = true
		}
	}
}

// WithPoolSize bounds the number of pooled threads and parallel lookups.
func WithPoolSize(n int) Option {
	return func(r *Resolver) {
		r.pool = NewThreadPool(n)
		r.workers = n
	}
}

// NewResolver executes the versions file at path.
func NewResolver(path string, opts ...Option) (*Resolver, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return NewResolverFromSource(path, src, opts...)
}

// NewResolverFromSource executes src as a versions file named name.
func NewResolverFromSource(name string, src []byte, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		name:        name,
		globals:     make(starlark.StringDict),
		pool:        NewThreadPool(0),
		predeclared: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, &LoadError{File: name, Message: r.err.Error()}
	}

	predeclared := starlark.StringDict{"struct": starlark.NewBuiltin("struct", starlarkstruct.Make)}
	for k, v := range r.globals {
		predeclared[k] = v
	}

	thread := r.pool.Get(name)
	defer r.pool.Put(thread)

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, predeclared)
	if err != nil {
		msg := err.Error()
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			msg = evalErr.Backtrace()
		}
		return nil, &LoadError{File: name, Message: msg}
	}

	for k, v := range globals {
		r.globals[k] = v
		delete(r.predeclared, k)
	}
	r.globals.Freeze()
	return r, nil
}

// Name returns the versions file name.
func (r *Resolver) Name() string { return r.name }

// Resolve implements descriptor.VersionResolver. Integers come back as
// int64, strings as string, structs as map[string]any.
func (r *Resolver) Resolve(ref string) (any, error) {
	ref = strings.TrimSpace(ref)
	if !referencePattern.MatchString(ref) {
		return nil, &EvalError{Reference: ref, Err: fmt.Errorf("not a dotted reference")}
	}
	if !r.has(ref) {
		return nil, fmt.Errorf("%w: %s", sdkversion.ErrUnknownReference, ref)
	}

	thread := r.pool.Get(ref)
	defer r.pool.Put(thread)

	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, r.name, ref, r.globals)
	if err != nil {
		return nil, &EvalError{Reference: ref, Err: err}
	}
	return toGo(ref, v)
}

// has walks the dotted path without evaluating, so a missing name maps to
// ErrUnknownReference rather than a Starlark error.
func (r *Resolver) has(ref string) bool {
	parts := strings.Split(ref, ".")
	v, ok := r.globals[parts[0]]
	if !ok {
		return false
	}
	for _, name := range parts[1:] {
		hv, ok := v.(starlark.HasAttrs)
		if !ok {
			return false
		}
		attr, err := hv.Attr(name)
		if err != nil || attr == nil {
			return false
		}
		v = attr
	}
	return true
}

// Names lists every leaf reference the versions file declares, sorted.
// Functions and predeclared values are skipped.
func (r *Resolver) Names() []string {
	var names []string
	for _, name := range r.globals.Keys() {
		if r.predeclared[name] {
			continue
		}
		v := r.globals[name]
		switch v.(type) {
		case *starlark.Function, *starlark.Builtin:
			continue
		}
		names = append(names, dottedNames(name, v)...)
	}
	sort.Strings(names)
	return names
}

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	Reference string
	Value     any
	Err       error
}

// ResolveAll resolves refs in parallel. Results keep the order of refs.
func (r *Resolver) ResolveAll(refs []string) []Resolution {
	tasks := make([]EvalTask, 0, len(refs))
	out := make([]Resolution, len(refs))
	index := make([]int, 0, len(refs))

	for i, ref := range refs {
		out[i].Reference = ref
		if !referencePattern.MatchString(ref) {
			out[i].Err = &EvalError{Reference: ref, Err: fmt.Errorf("not a dotted reference")}
			continue
		}
		if !r.has(ref) {
			out[i].Err = fmt.Errorf("%w: %s", sdkversion.ErrUnknownReference, ref)
			continue
		}
		tasks = append(tasks, EvalTask{Name: ref, Expr: ref})
		index = append(index, i)
	}

	results := NewParallelExecutor(r.workers, r.globals).Execute(tasks)
	for j, res := range results {
		i := index[j]
		if res.Error != nil {
			out[i].Err = &EvalError{Reference: res.Name, Err: res.Error}
			continue
		}
		out[i].Value, out[i].Err = toGo(res.Name, res.Value)
	}
	return out
}
