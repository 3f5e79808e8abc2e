package descriptor

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// SigningRegistry is the caller's set of named signing configurations.
type SigningRegistry interface {
	Has(name string) bool
	Names() []string
}

// VersionResolver supplies concrete values for references such as
// "flutter.targetSdkVersion". Integer fields expect an integer result;
// versionName expects a string.
type VersionResolver interface {
	Resolve(ref string) (any, error)
}

// ResolverFunc adapts a function to VersionResolver.
type ResolverFunc func(ref string) (any, error)

// Resolve implements VersionResolver.
func (f ResolverFunc) Resolve(ref string) (any, error) { return f(ref) }

// ErrNoResolver is wrapped by UnresolvedReferenceError when a document uses a
// reference but Load was given no resolver.
var ErrNoResolver = fmt.Errorf("no version resolver configured")

// ErrNotDirectory is wrapped by SourceRootError when the path exists but is
// not a directory.
var ErrNotDirectory = fmt.Errorf("not a directory")

// SourceRootCheck selects when the source root is stat'ed.
type SourceRootCheck int

// Source root check modes.
const (
	// SourceRootImmediate checks during Load.
	SourceRootImmediate SourceRootCheck = iota
	// SourceRootDeferred leaves the check to BuildDescriptor.CheckSourceRoot.
	SourceRootDeferred
	// SourceRootSkip never checks.
	SourceRootSkip
)

var sourceRootCheckNames = map[SourceRootCheck]string{
	SourceRootImmediate: "immediate",
	SourceRootDeferred:  "deferred",
	SourceRootSkip:      "skip",
}

func (c SourceRootCheck) String() string {
	if s, ok := sourceRootCheckNames[c]; ok {
		return s
	}
	return fmt.Sprintf("SourceRootCheck(%d)", int(c))
}

// ParseSourceRootCheck parses "immediate", "deferred" or "skip".
func ParseSourceRootCheck(s string) (SourceRootCheck, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SourceRootImmediate, nil
	}
	for c, name := range sourceRootCheckNames {
		if name == s {
			return c, nil
		}
	}
	names := make([]string, 0, len(sourceRootCheckNames))
	for _, name := range sourceRootCheckNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return SourceRootImmediate, fmt.Errorf("unknown source root check %q (expected one of: %s)", s, strings.Join(names, ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (c SourceRootCheck) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SourceRootCheck) UnmarshalText(b []byte) error {
	v, err := ParseSourceRootCheck(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// StatFunc matches os.Stat.
type StatFunc func(name string) (os.FileInfo, error)

type options struct {
	resolver VersionResolver
	variant  string
	baseDir  string
	check    SourceRootCheck
	stat     StatFunc
	logger   *slog.Logger
}

// Option configures Load.
type Option func(*options)

// WithResolver sets the resolver used for version references.
func WithResolver(r VersionResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithVariant selects the build variant whose buildTypes entry may override
// signingReference.
func WithVariant(name string) Option {
	return func(o *options) { o.variant = name }
}

// WithBaseDir sets the directory relative source roots are resolved against.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithSourceRootCheck selects when the source root is checked.
func WithSourceRootCheck(c SourceRootCheck) Option {
	return func(o *options) { o.check = c }
}

// WithStat replaces os.Stat for the source root check.
func WithStat(fn StatFunc) Option {
	return func(o *options) { o.stat = fn }
}

// WithLogger sets the logger. Load logs at debug level only.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) *options {
	o := &options{
		check: SourceRootImmediate,
		stat:  os.Stat,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.stat == nil {
		o.stat = os.Stat
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
