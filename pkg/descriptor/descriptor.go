package descriptor

import (
	"fmt"
	"os"
	"slices"
)

// Document is a parsed descriptor document: string keys mapped to scalars,
// sequences ([]any) and nested mappings (map[string]any).
type Document map[string]any

// PlatformVersion is a resolved platform (SDK) level.
// Reference is empty when the document carried an integer literal.
type PlatformVersion struct {
	Value     int    `json:"value" yaml:"value"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// IsReference reports whether the value was resolved from a reference.
func (v PlatformVersion) IsReference() bool {
	return v.Reference != ""
}

func (v PlatformVersion) String() string {
	if v.Reference != "" {
		return fmt.Sprintf("%d (%s)", v.Value, v.Reference)
	}
	return fmt.Sprintf("%d", v.Value)
}

// CompileOptions holds the Java source and target compatibility levels.
type CompileOptions struct {
	Source LanguageLevel `json:"source" yaml:"source"`
	Target LanguageLevel `json:"target" yaml:"target"`
}

// VersionName is the user-visible version string, optionally resolved from
// a reference.
type VersionName struct {
	Value     string `json:"value" yaml:"value"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// BuildDescriptor is a validated build configuration.
// It is immutable; accessors return copies of any slice or map state.
type BuildDescriptor struct {
	applicationID     string
	namespace         string
	minPlatform       int
	targetPlatform    PlatformVersion
	compileSdk        *PlatformVersion
	compileOptions    CompileOptions
	jvmTarget         LanguageLevel
	ndkVersion        string
	versionCode       *PlatformVersion
	versionName       *VersionName
	plugins           []string
	variant           string
	signingReference  string
	defaultSigning    string
	variantSigning    map[string]string
	sourceRoot        string
	resolvedRoot      string
	sourceRootChecked bool
}

// ApplicationID returns the reverse-domain application identifier.
func (d *BuildDescriptor) ApplicationID() string { return d.applicationID }

// Namespace returns the code namespace. It defaults to the application
// identifier when the document does not declare one.
func (d *BuildDescriptor) Namespace() string {
	if d.namespace == "" {
		return d.applicationID
	}
	return d.namespace
}

// MinPlatformVersion returns the minimum supported platform level.
func (d *BuildDescriptor) MinPlatformVersion() int { return d.minPlatform }

// TargetPlatformVersion returns the resolved target platform level.
func (d *BuildDescriptor) TargetPlatformVersion() PlatformVersion { return d.targetPlatform }

// CompileSdkVersion returns the compile SDK level, if declared.
func (d *BuildDescriptor) CompileSdkVersion() (PlatformVersion, bool) {
	if d.compileSdk == nil {
		return PlatformVersion{}, false
	}
	return *d.compileSdk, true
}

// CompileOptions returns the Java compatibility levels.
func (d *BuildDescriptor) CompileOptions() CompileOptions { return d.compileOptions }

// JVMTarget returns the Kotlin JVM target, or LevelUnknown if not declared.
func (d *BuildDescriptor) JVMTarget() LanguageLevel { return d.jvmTarget }

// NDKVersion returns the declared NDK version, or "".
func (d *BuildDescriptor) NDKVersion() string { return d.ndkVersion }

// VersionCode returns the declared version code, if any.
func (d *BuildDescriptor) VersionCode() (PlatformVersion, bool) {
	if d.versionCode == nil {
		return PlatformVersion{}, false
	}
	return *d.versionCode, true
}

// VersionName returns the declared version name, if any.
func (d *BuildDescriptor) VersionName() (VersionName, bool) {
	if d.versionName == nil {
		return VersionName{}, false
	}
	return *d.versionName, true
}

// Plugins returns the plugin identifiers in application order.
func (d *BuildDescriptor) Plugins() []string { return slices.Clone(d.plugins) }

// HasPlugin reports whether id is applied.
func (d *BuildDescriptor) HasPlugin(id string) bool { return slices.Contains(d.plugins, id) }

// Variant returns the build variant the descriptor was loaded for, or "".
func (d *BuildDescriptor) Variant() string { return d.variant }

// SigningReference returns the signing configuration applied to the loaded
// variant.
func (d *BuildDescriptor) SigningReference() string { return d.signingReference }

// SigningReferenceFor returns the signing configuration variant would use:
// its buildTypes override if declared, else the top-level reference.
func (d *BuildDescriptor) SigningReferenceFor(variant string) string {
	if ref, ok := d.variantSigning[variant]; ok && variant != "" {
		return ref
	}
	return d.defaultSigning
}

// VariantSigning returns the per-variant signing overrides declared under
// buildTypes, keyed by variant name.
func (d *BuildDescriptor) VariantSigning() map[string]string {
	out := make(map[string]string, len(d.variantSigning))
	for k, v := range d.variantSigning {
		out[k] = v
	}
	return out
}

// SourceRoot returns the source root exactly as written in the document.
func (d *BuildDescriptor) SourceRoot() string { return d.sourceRoot }

// ResolvedSourceRoot returns the source root joined with the loader's base
// directory.
func (d *BuildDescriptor) ResolvedSourceRoot() string { return d.resolvedRoot }

// SourceRootChecked reports whether the source root was stat'ed during Load.
func (d *BuildDescriptor) SourceRootChecked() bool { return d.sourceRootChecked }

// CheckSourceRoot performs the deferred source root check.
func (d *BuildDescriptor) CheckSourceRoot() error {
	return checkSourceRoot(os.Stat, d.sourceRoot, d.resolvedRoot)
}

// Summary is a plain, serializable view of a BuildDescriptor.
type Summary struct {
	ApplicationIdentifier string            `json:"applicationIdentifier" yaml:"applicationIdentifier"`
	Namespace             string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	MinPlatformVersion    int               `json:"minPlatformVersion" yaml:"minPlatformVersion"`
	TargetPlatformVersion PlatformVersion   `json:"targetPlatformVersion" yaml:"targetPlatformVersion"`
	CompileSdkVersion     *PlatformVersion  `json:"compileSdkVersion,omitempty" yaml:"compileSdkVersion,omitempty"`
	CompileOptions        CompileOptions    `json:"compileOptions" yaml:"compileOptions"`
	JVMTarget             LanguageLevel     `json:"jvmTarget,omitempty" yaml:"jvmTarget,omitempty"`
	NDKVersion            string            `json:"ndkVersion,omitempty" yaml:"ndkVersion,omitempty"`
	VersionCode           *PlatformVersion  `json:"versionCode,omitempty" yaml:"versionCode,omitempty"`
	VersionName           *VersionName      `json:"versionName,omitempty" yaml:"versionName,omitempty"`
	PluginList            []string          `json:"pluginList" yaml:"pluginList"`
	Variant               string            `json:"variant,omitempty" yaml:"variant,omitempty"`
	SigningReference      string            `json:"signingReference" yaml:"signingReference"`
	BuildTypes            map[string]string `json:"buildTypes,omitempty" yaml:"buildTypes,omitempty"`
	SourceRoot            string            `json:"sourceRoot" yaml:"sourceRoot"`
	ResolvedSourceRoot    string            `json:"resolvedSourceRoot" yaml:"resolvedSourceRoot"`
}

// Summary returns a serializable copy of the descriptor.
func (d *BuildDescriptor) Summary() Summary {
	s := Summary{
		ApplicationIdentifier: d.applicationID,
		Namespace:             d.namespace,
		MinPlatformVersion:    d.minPlatform,
		TargetPlatformVersion: d.targetPlatform,
		CompileOptions:        d.compileOptions,
		JVMTarget:             d.jvmTarget,
		NDKVersion:            d.ndkVersion,
		PluginList:            d.Plugins(),
		Variant:               d.variant,
		SigningReference:      d.signingReference,
		SourceRoot:            d.sourceRoot,
		ResolvedSourceRoot:    d.resolvedRoot,
	}
	if d.compileSdk != nil {
		v := *d.compileSdk
		s.CompileSdkVersion = &v
	}
	if d.versionCode != nil {
		v := *d.versionCode
		s.VersionCode = &v
	}
	if d.versionName != nil {
		v := *d.versionName
		s.VersionName = &v
	}
	if len(d.variantSigning) > 0 {
		s.BuildTypes = d.VariantSigning()
	}
	return s
}
