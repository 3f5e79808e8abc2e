package config

import "github.com/leapstack-labs/leapbuild/pkg/descriptor"

// Default configuration values.
const (
	DefaultDescriptor   = "android/app/build.yaml"
	DefaultVersionsFile = ""
)

// Defaults returns the default values keyed as in leapbuild.yaml, for use as
// the lowest koanf layer.
func Defaults() map[string]any {
	return map[string]any{
		"descriptor":        DefaultDescriptor,
		"variant":           "",
		"source_root_check": descriptor.SourceRootImmediate.String(),
		"versions_file":     DefaultVersionsFile,
	}
}

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.Descriptor == "" {
		c.Descriptor = DefaultDescriptor
	}
}
