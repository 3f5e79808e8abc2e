package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/internal/document"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/sdkversion"
	"github.com/leapstack-labs/leapbuild/pkg/signing"
)

// stdinName is the file argument that reads a descriptor from stdin.
const stdinName = "-"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer

	cmd      *cobra.Command
	mu       sync.Mutex
	registry *signing.Registry
	resolver sdkversion.Chain
}

// NewCommandContext builds the context from the config stored by the root
// command. Without one, configuration is loaded from the working directory.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		var err error
		if cfg, err = config.LoadConfig("", nil); err != nil {
			return nil, err
		}
	}

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
		cmd:      cmd,
	}, nil
}

// WithOutput replaces the renderer when format is set.
func (c *CommandContext) WithOutput(format string) error {
	if format == "" {
		return nil
	}
	mode, err := output.ParseMode(format)
	if err != nil {
		return err
	}
	c.Renderer = output.NewRenderer(c.cmd.OutOrStdout(), c.cmd.ErrOrStderr(), mode)
	return nil
}

// Registry returns the signing registry built from the configuration.
func (c *CommandContext) Registry() *signing.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registry == nil {
		c.registry = c.Cfg.SigningRegistry()
	}
	return c.registry
}

// Resolver returns the version resolver built from the configuration.
// The versions file is executed on first use.
func (c *CommandContext) Resolver() (sdkversion.Chain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolver != nil {
		return c.resolver, nil
	}
	r, err := c.Cfg.Resolver(c.Cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	c.resolver = r
	return r, nil
}

// Reset drops the cached resolver so the versions file is read again.
func (c *CommandContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolver = nil
}

// Paths returns args, or the configured descriptor when args is empty.
func (c *CommandContext) Paths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{c.Cfg.DescriptorPath()}
}

// Load reads and validates the descriptor at path. The source root is
// resolved against the descriptor's directory, or the project root for
// stdin. In deferred mode the source root is checked before returning.
func (c *CommandContext) Load(path string) (*descriptor.BuildDescriptor, error) {
	resolver, err := c.Resolver()
	if err != nil {
		return nil, err
	}

	var (
		doc     descriptor.Document
		baseDir string
	)
	if path == stdinName {
		doc, err = document.Read(c.cmd.InOrStdin(), "<stdin>")
		baseDir = c.Cfg.ProjectRoot
	} else {
		doc, err = document.ReadFile(path)
		baseDir = filepath.Dir(path)
	}
	if err != nil {
		return nil, err
	}

	opts := c.Cfg.LoadOptions(resolver)
	opts = append(opts, descriptor.WithBaseDir(baseDir), descriptor.WithLogger(c.Logger))

	d, err := descriptor.Load(doc, c.Registry(), opts...)
	if err != nil {
		return nil, err
	}
	if c.Cfg.SourceRootCheck == descriptor.SourceRootDeferred {
		if err := d.CheckSourceRoot(); err != nil {
			return nil, err
		}
	}

	c.Logger.Debug("descriptor loaded",
		"path", path,
		"application_id", d.ApplicationID(),
		"variant", d.Variant())
	return d, nil
}

// LoadOne loads the single descriptor named by args or the configuration.
func (c *CommandContext) LoadOne(args []string) (string, *descriptor.BuildDescriptor, error) {
	paths := c.Paths(args)
	if len(paths) != 1 {
		return "", nil, errors.New("expected a single descriptor file")
	}
	d, err := c.Load(paths[0])
	if err != nil {
		return paths[0], nil, err
	}
	return paths[0], d, nil
}

// displayPath shortens path relative to the project root for output.
func (c *CommandContext) displayPath(path string) string {
	if path == stdinName {
		return "<stdin>"
	}
	if rel, err := filepath.Rel(c.Cfg.ProjectRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func wrapPath(path string, err error) error {
	return fmt.Errorf("%s: %w", path, err)
}
