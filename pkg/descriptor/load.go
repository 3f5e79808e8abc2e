package descriptor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/maps"
)

// Load validates doc against registry and returns an immutable descriptor.
// The first validation failure is returned and no descriptor is produced.
func Load(doc Document, registry SigningRegistry, opts ...Option) (*BuildDescriptor, error) {
	o := newOptions(opts)

	var d *BuildDescriptor
	normalized, err := normalize(doc)
	if err == nil {
		l := &loader{doc: normalized, opts: o}
		d, err = l.load(registry)
	}
	if err != nil {
		o.logger.Debug("descriptor invalid", "state", StateInvalid.String(), "field", FieldOf(err), "error", err)
		return nil, err
	}
	o.logger.Debug("descriptor valid",
		"state", StateValid.String(),
		"application_id", d.applicationID,
		"target_platform", d.targetPlatform.Value,
		"plugins", len(d.plugins),
	)
	return d, nil
}

// normalize returns a deep copy of doc with dotted top-level keys
// ("compileOptions.source") merged into nested mappings. Dotted keys are
// merged in sorted order so the result does not depend on map iteration.
// The caller's document is never modified.
func normalize(doc Document) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}

	out := maps.Copy(map[string]any(doc))
	var dotted []string
	for k := range out {
		if strings.Contains(k, ".") {
			dotted = append(dotted, k)
		}
	}
	sort.Strings(dotted)

	for _, key := range dotted {
		v := out[key]
		delete(out, key)
		if err := mergeDotted(out, key, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeDotted stores v at the dotted path key inside m, creating nested
// mappings as needed.
func mergeDotted(m map[string]any, key string, v any) error {
	parts := strings.Split(key, ".")
	cur := m
	for i, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok || next == nil {
			child := make(map[string]any)
			cur[part] = child
			cur = child
			continue
		}
		child, isMap := next.(map[string]any)
		if !isMap {
			return &TypeMismatchError{
				Field:    strings.Join(parts[:i+1], "."),
				Expected: "mapping",
				Actual:   typeName(next),
			}
		}
		cur = child
	}

	leaf := parts[len(parts)-1]
	if existing, ok := cur[leaf]; ok && existing != nil {
		return &InvalidValueError{Field: key, Value: v, Reason: "defined both as a dotted key and in a nested mapping"}
	}
	cur[leaf] = v
	return nil
}

// intOrRef is an integer literal or a pending reference.
type intOrRef struct {
	value int
	ref   string
}

type loader struct {
	doc  map[string]any
	opts *options

	d              BuildDescriptor
	target         intOrRef
	compileSdk     *intOrRef
	versionCode    *intOrRef
	versionNameRaw *VersionName
}

func (l *loader) load(registry SigningRegistry) (*BuildDescriptor, error) {
	l.opts.logger.Debug("validating descriptor", "state", StateValidating.String(), "variant", l.opts.variant)

	if err := l.checkPresence(); err != nil {
		return nil, err
	}
	if err := l.parseFields(); err != nil {
		return nil, err
	}
	if err := l.checkDuplicates(); err != nil {
		return nil, err
	}
	if err := l.resolveVersions(); err != nil {
		return nil, err
	}
	if err := l.checkSigning(registry); err != nil {
		return nil, err
	}
	if err := l.checkSourceRoot(); err != nil {
		return nil, err
	}

	d := l.d
	return &d, nil
}

func (l *loader) checkPresence() error {
	for _, field := range requiredFields {
		if _, ok := lookup(l.doc, field); ok {
			continue
		}
		// A non-mapping compileOptions is a type error, reported next.
		if parent, _, nested := strings.Cut(field, "."); nested {
			if v, ok := lookup(l.doc, parent); ok {
				if _, isMap := v.(map[string]any); !isMap {
					continue
				}
			}
		}
		return &MissingFieldError{Field: field}
	}

	keys := make([]string, 0, len(l.doc))
	for k := range l.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !knownTopLevel[k] {
			return &UnknownFieldError{Field: k}
		}
	}
	return nil
}

func (l *loader) parseFields() error {
	var err error

	if l.d.applicationID, err = l.applicationID(); err != nil {
		return err
	}
	if l.d.minPlatform, err = l.positiveInt(FieldMinPlatformVersion); err != nil {
		return err
	}
	if l.target, err = l.intOrReference(FieldTargetPlatformVersion, l.doc[FieldTargetPlatformVersion]); err != nil {
		return err
	}
	if l.d.compileOptions, err = l.compileOptions(); err != nil {
		return err
	}
	if l.d.plugins, err = l.pluginList(); err != nil {
		return err
	}
	if l.d.signingReference, err = l.nonEmptyString(FieldSigningReference); err != nil {
		return err
	}
	if l.d.sourceRoot, err = l.nonEmptyString(FieldSourceRoot); err != nil {
		return err
	}

	return l.parseOptionalFields()
}

func (l *loader) parseOptionalFields() error {
	if v, ok := lookup(l.doc, FieldNamespace); ok {
		s, isString := v.(string)
		if !isString {
			return &TypeMismatchError{Field: FieldNamespace, Expected: "string", Actual: typeName(v)}
		}
		s = strings.TrimSpace(s)
		if !applicationIDPattern.MatchString(s) {
			return &InvalidValueError{Field: FieldNamespace, Value: s, Reason: "must be a dotted package name such as com.example.app"}
		}
		l.d.namespace = s
	}

	if v, ok := lookup(l.doc, FieldCompileSdkVersion); ok {
		r, err := l.intOrReference(FieldCompileSdkVersion, v)
		if err != nil {
			return err
		}
		l.compileSdk = &r
	}

	if v, ok := lookup(l.doc, FieldNDKVersion); ok {
		s, isString := v.(string)
		if !isString {
			return &TypeMismatchError{Field: FieldNDKVersion, Expected: "string", Actual: typeName(v)}
		}
		l.d.ndkVersion = strings.TrimSpace(s)
	}

	if v, ok := lookup(l.doc, FieldJVMTarget); ok {
		level, err := l.languageLevel(FieldJVMTarget, v)
		if err != nil {
			return err
		}
		l.d.jvmTarget = level
	}

	if v, ok := lookup(l.doc, FieldVersionCode); ok {
		r, err := l.intOrReference(FieldVersionCode, v)
		if err != nil {
			return err
		}
		l.versionCode = &r
	}

	if v, ok := lookup(l.doc, FieldVersionName); ok {
		s, isString := v.(string)
		if !isString {
			return &TypeMismatchError{Field: FieldVersionName, Expected: "string or reference", Actual: typeName(v)}
		}
		if ref, isRef := referenceOf(s); isRef {
			if ref == "" {
				return &InvalidValueError{Field: FieldVersionName, Value: s, Reason: "empty reference"}
			}
			l.versionNameRaw = &VersionName{Reference: ref}
		} else {
			l.versionNameRaw = &VersionName{Value: s}
		}
	}

	if v, ok := lookup(l.doc, FieldBuildTypes); ok {
		overrides, err := l.buildTypes(v)
		if err != nil {
			return err
		}
		l.d.variantSigning = overrides
	}

	return nil
}

func (l *loader) applicationID() (string, error) {
	s, err := l.nonEmptyString(FieldApplicationIdentifier)
	if err != nil {
		return "", err
	}
	if !applicationIDPattern.MatchString(s) {
		return "", &InvalidValueError{
			Field:  FieldApplicationIdentifier,
			Value:  s,
			Reason: "must be a reverse-domain identifier such as com.example.app",
		}
	}
	return s, nil
}

func (l *loader) nonEmptyString(field string) (string, error) {
	v, _ := lookup(l.doc, field)
	s, ok := v.(string)
	if !ok {
		return "", &TypeMismatchError{Field: field, Expected: "string", Actual: typeName(v)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &InvalidValueError{Field: field, Value: `""`, Reason: "must not be empty"}
	}
	return s, nil
}

func (l *loader) positiveInt(field string) (int, error) {
	v, _ := lookup(l.doc, field)
	n, ok := asInt(v)
	if !ok {
		return 0, &TypeMismatchError{Field: field, Expected: "integer", Actual: typeName(v)}
	}
	if n < 1 {
		return 0, &InvalidValueError{Field: field, Value: n, Reason: "must be at least 1"}
	}
	return n, nil
}

func (l *loader) intOrReference(field string, v any) (intOrRef, error) {
	if n, ok := asInt(v); ok {
		if n < 1 {
			return intOrRef{}, &InvalidValueError{Field: field, Value: n, Reason: "must be at least 1"}
		}
		return intOrRef{value: n}, nil
	}

	s, ok := v.(string)
	if !ok {
		return intOrRef{}, &TypeMismatchError{Field: field, Expected: "integer or reference", Actual: typeName(v)}
	}
	ref, _ := referenceOf(s)
	if ref == "" {
		return intOrRef{}, &InvalidValueError{Field: field, Value: `""`, Reason: "reference must not be empty"}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 {
			return intOrRef{}, &InvalidValueError{Field: field, Value: n, Reason: "must be at least 1"}
		}
		return intOrRef{value: n}, nil
	}
	return intOrRef{ref: ref}, nil
}

func (l *loader) languageLevel(field string, v any) (LanguageLevel, error) {
	level, ok, err := languageLevelFromValue(v)
	if !ok {
		return LevelUnknown, &TypeMismatchError{Field: field, Expected: "language level", Actual: typeName(v)}
	}
	if err != nil {
		levels := make([]string, len(supportedLevels))
		for i, lv := range supportedLevels {
			levels[i] = string(lv)
		}
		return LevelUnknown, &InvalidValueError{
			Field:  field,
			Value:  v,
			Reason: "supported levels are " + strings.Join(levels, ", "),
		}
	}
	return level, nil
}

func (l *loader) compileOptions() (CompileOptions, error) {
	raw := l.doc[FieldCompileOptions]
	m, ok := raw.(map[string]any)
	if !ok {
		return CompileOptions{}, &TypeMismatchError{Field: FieldCompileOptions, Expected: "mapping", Actual: typeName(raw)}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != "source" && k != "target" {
			return CompileOptions{}, &UnknownFieldError{Field: FieldCompileOptions + "." + k}
		}
	}

	source, err := l.languageLevel(FieldCompileOptionsSource, m["source"])
	if err != nil {
		return CompileOptions{}, err
	}
	target, err := l.languageLevel(FieldCompileOptionsTarget, m["target"])
	if err != nil {
		return CompileOptions{}, err
	}
	return CompileOptions{Source: source, Target: target}, nil
}

func (l *loader) pluginList() ([]string, error) {
	raw := l.doc[FieldPluginList]

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, &TypeMismatchError{Field: FieldPluginList, Expected: "sequence of strings", Actual: typeName(raw)}
	}

	plugins := make([]string, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", FieldPluginList, i)
		s, ok := item.(string)
		if !ok {
			return nil, &TypeMismatchError{Field: field, Expected: "string", Actual: typeName(item)}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &InvalidValueError{Field: field, Value: `""`, Reason: "plugin identifier must not be empty"}
		}
		plugins = append(plugins, s)
	}
	return plugins, nil
}

func (l *loader) buildTypes(raw any) (map[string]string, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &TypeMismatchError{Field: FieldBuildTypes, Expected: "mapping", Actual: typeName(raw)}
	}

	variants := make([]string, 0, len(m))
	for variant := range m {
		variants = append(variants, variant)
	}
	sort.Strings(variants)

	overrides := make(map[string]string, len(m))
	for _, variant := range variants {
		cfg := m[variant]
		field := FieldBuildTypes + "." + variant
		if cfg == nil {
			continue
		}
		vm, ok := cfg.(map[string]any)
		if !ok {
			return nil, &TypeMismatchError{Field: field, Expected: "mapping", Actual: typeName(cfg)}
		}
		keys := make([]string, 0, len(vm))
		for k := range vm {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k != FieldSigningReference {
				return nil, &UnknownFieldError{Field: field + "." + k}
			}
		}

		v, ok := vm[FieldSigningReference]
		if !ok || v == nil {
			continue
		}
		key := field + "." + FieldSigningReference
		s, isString := v.(string)
		if !isString {
			return nil, &TypeMismatchError{Field: key, Expected: "string", Actual: typeName(v)}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &InvalidValueError{Field: key, Value: `""`, Reason: "must not be empty"}
		}
		overrides[variant] = s
	}
	return overrides, nil
}

func (l *loader) checkDuplicates() error {
	seen := make(map[string]int, len(l.d.plugins))
	for i, p := range l.d.plugins {
		if first, ok := seen[p]; ok {
			return &DuplicatePluginError{Plugin: p, Index: i, FirstIndex: first}
		}
		seen[p] = i
	}
	return nil
}

func (l *loader) resolve(field string, ref string) (any, error) {
	if l.opts.resolver == nil {
		return nil, &UnresolvedReferenceError{Field: field, Reference: ref, Err: ErrNoResolver}
	}
	v, err := l.opts.resolver.Resolve(ref)
	if err != nil {
		return nil, &UnresolvedReferenceError{Field: field, Reference: ref, Err: err}
	}
	l.opts.logger.Debug("resolved reference", "field", field, "reference", ref, "value", v)
	return v, nil
}

func (l *loader) resolveInt(field string, r intOrRef) (PlatformVersion, error) {
	if r.ref == "" {
		return PlatformVersion{Value: r.value}, nil
	}
	v, err := l.resolve(field, r.ref)
	if err != nil {
		return PlatformVersion{}, err
	}
	n, ok := asInt(v)
	if !ok {
		return PlatformVersion{}, &TypeMismatchError{Field: field, Expected: "integer", Actual: typeName(v)}
	}
	if n < 1 {
		return PlatformVersion{}, &InvalidValueError{Field: field, Value: n, Reason: "must be at least 1"}
	}
	return PlatformVersion{Value: n, Reference: r.ref}, nil
}

func (l *loader) resolveVersions() error {
	target, err := l.resolveInt(FieldTargetPlatformVersion, l.target)
	if err != nil {
		return err
	}
	if l.d.minPlatform > target.Value {
		return &VersionOrderError{Min: l.d.minPlatform, Target: target}
	}
	l.d.targetPlatform = target

	if l.compileSdk != nil {
		v, err := l.resolveInt(FieldCompileSdkVersion, *l.compileSdk)
		if err != nil {
			return err
		}
		l.d.compileSdk = &v
	}

	if l.versionCode != nil {
		v, err := l.resolveInt(FieldVersionCode, *l.versionCode)
		if err != nil {
			return err
		}
		l.d.versionCode = &v
	}

	if l.versionNameRaw != nil {
		name := *l.versionNameRaw
		if name.Reference != "" {
			v, err := l.resolve(FieldVersionName, name.Reference)
			if err != nil {
				return err
			}
			s, ok := v.(string)
			if !ok {
				return &TypeMismatchError{Field: FieldVersionName, Expected: "string", Actual: typeName(v)}
			}
			name.Value = s
		}
		l.d.versionName = &name
	}

	return nil
}

func (l *loader) checkSigning(registry SigningRegistry) error {
	var available []string
	if registry != nil {
		available = registry.Names()
		sort.Strings(available)
	}
	known := func(name string) bool {
		return registry != nil && registry.Has(name)
	}

	variant := l.opts.variant
	l.d.variant = variant
	l.d.defaultSigning = l.d.signingReference
	if override, ok := l.d.variantSigning[variant]; ok && variant != "" {
		l.d.signingReference = override
	}
	if !known(l.d.signingReference) {
		return &UnknownSigningConfigError{Reference: l.d.signingReference, Variant: variant, Available: available}
	}

	variants := make([]string, 0, len(l.d.variantSigning))
	for v := range l.d.variantSigning {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		if ref := l.d.variantSigning[v]; !known(ref) {
			return &UnknownSigningConfigError{Reference: ref, Variant: v, Available: available}
		}
	}
	return nil
}

func (l *loader) checkSourceRoot() error {
	resolved := l.d.sourceRoot
	if !filepath.IsAbs(resolved) && l.opts.baseDir != "" {
		resolved = filepath.Join(l.opts.baseDir, resolved)
	}
	l.d.resolvedRoot = filepath.Clean(resolved)

	if l.opts.check != SourceRootImmediate {
		return nil
	}
	if err := checkSourceRoot(l.opts.stat, l.d.sourceRoot, l.d.resolvedRoot); err != nil {
		return err
	}
	l.d.sourceRootChecked = true
	return nil
}

func checkSourceRoot(stat StatFunc, path, resolved string) error {
	info, err := stat(resolved)
	if err != nil {
		return &SourceRootError{Path: path, Resolved: resolved, Err: err}
	}
	if !info.IsDir() {
		return &SourceRootError{Path: path, Resolved: resolved, Err: ErrNotDirectory}
	}
	return nil
}
