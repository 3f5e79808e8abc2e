package commands

import (
	"errors"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Jobs   int
	Format string
}

// ValidateResult is the outcome for one descriptor file.
type ValidateResult struct {
	File   string `json:"file" yaml:"file"`
	Valid  bool   `json:"valid" yaml:"valid"`
	State  string `json:"state" yaml:"state"`
	Field  string `json:"field,omitempty" yaml:"field,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	AppID  string `json:"applicationIdentifier,omitempty" yaml:"applicationIdentifier,omitempty"`
	Target int    `json:"targetPlatformVersion,omitempty" yaml:"targetPlatformVersion,omitempty"`

	err error
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate build descriptors",
		Long: `Load and validate one or more build descriptors.

Without arguments the descriptor configured in leapbuild.yaml is
validated. Use "-" to read a descriptor from stdin. Files are validated
concurrently; the command fails with the first failure in argument order.`,
		Example: `  # Validate the configured descriptor
  leapbuild validate

  # Validate several variants
  leapbuild validate android/app/build.yaml flavors/*.yaml

  # Validate from stdin as JSON output
  cat build.yaml | leapbuild validate - -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.NumCPU(), "Maximum number of files validated at once")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cmdCtx.WithOutput(opts.Format); err != nil {
		return err
	}

	// Build the shared resolver before fanning out.
	if _, err := cmdCtx.Resolver(); err != nil {
		return err
	}

	paths := cmdCtx.Paths(args)
	if countStdin(paths) > 1 {
		return errStdinTwice
	}
	results := validateAll(cmdCtx, paths, opts.Jobs)

	if err := renderValidate(cmdCtx, results); err != nil {
		return err
	}

	for _, res := range results {
		if res.err != nil {
			if len(results) > 1 {
				return wrapPath(res.File, res.err)
			}
			return res.err
		}
	}
	return nil
}

var errStdinTwice = errors.New("stdin (-) can only be given once")

func countStdin(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == stdinName {
			n++
		}
	}
	return n
}

// validateAll loads paths with at most jobs loads in flight. Results keep
// the order of paths.
func validateAll(cmdCtx *CommandContext, paths []string, jobs int) []ValidateResult {
	if jobs <= 0 {
		jobs = 1
	}
	results := make([]ValidateResult, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			d, err := cmdCtx.Load(path)
			res := ValidateResult{
				File:  cmdCtx.displayPath(path),
				Valid: err == nil,
				State: descriptor.StateOf(d, err).String(),
				err:   err,
			}
			if err != nil {
				res.Error = err.Error()
				res.Field = descriptor.FieldOf(err)
				cmdCtx.Logger.Debug("descriptor invalid", "path", path, "error", err)
			} else {
				res.AppID = d.ApplicationID()
				res.Target = d.TargetPlatformVersion().Value
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func renderValidate(cmdCtx *CommandContext, results []ValidateResult) error {
	r := cmdCtx.Renderer
	if ok, err := r.Structured(results); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(1, "Descriptor Validation")
	}

	valid := 0
	for _, res := range results {
		if res.Valid {
			valid++
			r.StatusLine(res.File, output.StatusSuccess, res.AppID)
			continue
		}
		r.StatusLine(res.File, output.StatusFailed, res.Error)
	}

	if len(results) > 1 {
		r.Println("")
		r.Printf("%d of %d descriptors valid\n", valid, len(results))
	}
	return nil
}
