// Package config loads the layered leapbuild CLI configuration.
//
// The project file (internal/config) is the base layer; environment
// variables and explicitly set flags override it.
package config

import (
	intconfig "github.com/leapstack-labs/leapbuild/internal/config"
)

// Default CLI values.
const (
	DefaultOutput   = "auto"
	DefaultLogLevel = "warn"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = intconfig.LintConfig

// Config holds all CLI configuration options.
type Config struct {
	intconfig.ProjectConfig `koanf:",squash"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	LogLevel     string `koanf:"log_level"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`

	// ConfigFile is the config file that was loaded, or "".
	ConfigFile string `koanf:"-"`
}

// DescriptorPath returns the configured descriptor path, resolved against
// the project root.
func (c *Config) DescriptorPath() string {
	return resolvePathRelativeTo(c.Descriptor, c.ProjectRoot)
}
