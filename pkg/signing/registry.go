// Package signing provides the named signing configurations a build
// descriptor's signingReference is checked against.
package signing

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// DebugName is the signing configuration the Android Gradle plugin creates
// implicitly for every project.
const DebugName = "debug"

// Config is one named set of signing parameters. Only the references are
// kept; nothing here reads the keystore.
type Config struct {
	StoreFile     string `koanf:"store_file" json:"storeFile" yaml:"storeFile"`
	StorePassword string `koanf:"store_password" json:"-" yaml:"-"`
	KeyAlias      string `koanf:"key_alias" json:"keyAlias" yaml:"keyAlias"`
	KeyPassword   string `koanf:"key_password" json:"-" yaml:"-"`
}

// DefaultDebugConfig returns the implicit debug configuration.
func DefaultDebugConfig() Config {
	store := filepath.Join("~", ".android", "debug.keystore")
	if home, err := os.UserHomeDir(); err == nil {
		store = filepath.Join(home, ".android", "debug.keystore")
	}
	return Config{
		StoreFile:     store,
		StorePassword: "android",
		KeyAlias:      "androiddebugkey",
		KeyPassword:   "android",
	}
}

// Registry is an immutable set of signing configurations keyed by name.
// It implements descriptor.SigningRegistry.
type Registry struct {
	configs map[string]Config
}

// NewRegistry builds a registry from configs. The implicit debug
// configuration is added unless configs already defines one.
// ${VAR} references in passwords are expanded from the environment.
func NewRegistry(configs map[string]Config) *Registry {
	r := &Registry{configs: make(map[string]Config, len(configs)+1)}
	for name, cfg := range configs {
		cfg.StorePassword = expandEnvVars(cfg.StorePassword)
		cfg.KeyPassword = expandEnvVars(cfg.KeyPassword)
		cfg.StoreFile = expandEnvVars(cfg.StoreFile)
		r.configs[name] = cfg
	}
	if _, ok := r.configs[DebugName]; !ok {
		r.configs[DebugName] = DefaultDebugConfig()
	}
	return r
}

// Has reports whether name is a known configuration.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.configs[name]
	return ok
}

// Get returns the configuration registered under name.
func (r *Registry) Get(name string) (Config, bool) {
	if r == nil {
		return Config{}, false
	}
	cfg, ok := r.configs[name]
	return cfg, ok
}

// Names returns all configuration names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configurations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.configs)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns. Unset variables are left as-is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
