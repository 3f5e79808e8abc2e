// Package config provides the project configuration read from leapbuild.yaml.
// It is decoupled from CLI concerns; the CLI layers environment variables and
// flags on top in internal/cli/config.
package config

import (
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/signing"
)

// ProjectConfig is the content of leapbuild.yaml.
type ProjectConfig struct {
	// Descriptor is the default descriptor path, relative to the project root.
	Descriptor string `koanf:"descriptor"`

	// Variant selects the buildTypes entry whose signingReference applies.
	Variant string `koanf:"variant"`

	SourceRootCheck descriptor.SourceRootCheck `koanf:"source_root_check"`

	// VersionsFile is a Starlark file answering version references.
	VersionsFile string `koanf:"versions_file"`

	// Versions holds static references, e.g. versions.flutter.targetSdkVersion.
	Versions map[string]any `koanf:"versions"`

	Signing map[string]signing.Config `koanf:"signing"`
	Lint    LintConfig                `koanf:"lint"`
}

// LintConfig holds health rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`
}
