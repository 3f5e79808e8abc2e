package config

import (
	"path/filepath"

	"github.com/leapstack-labs/leapbuild/internal/starlark"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
	"github.com/leapstack-labs/leapbuild/pkg/sdkversion"
	"github.com/leapstack-labs/leapbuild/pkg/signing"
)

// SigningRegistry builds the signing registry from the signing section.
func (c *ProjectConfig) SigningRegistry() *signing.Registry {
	return signing.NewRegistry(c.Signing)
}

// Resolver builds the version resolver. The versions file, if any, is
// consulted first with the static versions predeclared; the static table
// answers everything else. A relative versions file is resolved against
// baseDir.
func (c *ProjectConfig) Resolver(baseDir string) (sdkversion.Chain, error) {
	var chain sdkversion.Chain
	if c.VersionsFile != "" {
		path := c.VersionsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		r, err := starlark.NewResolver(path, starlark.WithPredeclared(c.Versions))
		if err != nil {
			return nil, err
		}
		chain = append(chain, r)
	}
	chain = append(chain, sdkversion.FromMap(c.Versions))
	return chain, nil
}

// LintConfig converts the lint section.
func (c *ProjectConfig) LintConfig() (*lint.Config, error) {
	return lint.ConfigFrom(c.Lint.Disabled, c.Lint.Severity)
}

// LoadOptions returns the descriptor.Load options the configuration implies.
func (c *ProjectConfig) LoadOptions(resolver descriptor.VersionResolver) []descriptor.Option {
	opts := []descriptor.Option{descriptor.WithSourceRootCheck(c.SourceRootCheck)}
	if c.Variant != "" {
		opts = append(opts, descriptor.WithVariant(c.Variant))
	}
	if resolver != nil {
		opts = append(opts, descriptor.WithResolver(resolver))
	}
	return opts
}
