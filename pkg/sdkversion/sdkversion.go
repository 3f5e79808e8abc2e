// Package sdkversion provides version resolvers for descriptor references
// such as "flutter.targetSdkVersion".
package sdkversion

import (
	"errors"
	"fmt"
	"sort"

	"github.com/knadh/koanf/maps"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// ErrUnknownReference is returned when a resolver has no value for a
// reference. Chain moves on to the next resolver only for this error.
var ErrUnknownReference = errors.New("unknown reference")

// Lister is implemented by resolvers that can enumerate their references.
type Lister interface {
	Names() []string
}

// Static resolves references from a fixed table keyed by dotted path.
type Static map[string]any

// FromMap builds a Static table from a possibly nested map. Nested keys are
// joined with ".", so {"flutter": {"minSdkVersion": 21}} answers
// "flutter.minSdkVersion".
func FromMap(m map[string]any) Static {
	flat, _ := maps.Flatten(m, nil, ".")
	return Static(flat)
}

// Resolve implements descriptor.VersionResolver.
func (s Static) Resolve(ref string) (any, error) {
	v, ok := s[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	return v, nil
}

// Names returns the table's references, sorted.
func (s Static) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain tries each resolver in order and returns the first answer.
// Nil entries are skipped.
type Chain []descriptor.VersionResolver

// Resolve implements descriptor.VersionResolver.
func (c Chain) Resolve(ref string) (any, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		v, err := r.Resolve(ref)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrUnknownReference) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReference, ref)
}

// Names merges the references of every resolver that implements Lister.
func (c Chain) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range c {
		l, ok := r.(Lister)
		if !ok {
			continue
		}
		for _, name := range l.Names() {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
