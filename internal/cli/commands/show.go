package commands

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Show a validated build descriptor",
		Long: `Load a build descriptor and print its resolved values.

References such as ${flutter.targetSdkVersion} are shown with the value
they resolved to. The signing configuration is the one in effect for the
configured variant.`,
		Example: `  # Show the configured descriptor
  leapbuild show

  # Show the release variant as YAML
  leapbuild show --variant release -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if err := cmdCtx.WithOutput(format); err != nil {
				return err
			}

			_, d, err := cmdCtx.LoadOne(args)
			if err != nil {
				return err
			}
			return renderShow(cmdCtx, d)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

func renderShow(cmdCtx *CommandContext, d *descriptor.BuildDescriptor) error {
	r := cmdCtx.Renderer
	summary := d.Summary()
	if ok, err := r.Structured(summary); ok {
		return err
	}

	r.Header(1, summary.ApplicationIdentifier)
	r.Table([]string{"Field", "Value"}, summaryRows(summary))

	if len(summary.BuildTypes) > 0 {
		r.Println("")
		r.Header(2, "Build Types")
		names := make([]string, 0, len(summary.BuildTypes))
		for name := range summary.BuildTypes {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, d.SigningReferenceFor(name)})
		}
		r.Table([]string{"Build Type", "Signing"}, rows)
	}
	return nil
}

// summaryRows lists the descriptor fields in document order. Absent
// optional fields are left out.
func summaryRows(s descriptor.Summary) [][]string {
	rows := [][]string{{descriptor.FieldApplicationIdentifier, s.ApplicationIdentifier}}
	if s.Namespace != "" {
		rows = append(rows, []string{descriptor.FieldNamespace, s.Namespace})
	}
	rows = append(rows,
		[]string{descriptor.FieldMinPlatformVersion, strconv.Itoa(s.MinPlatformVersion)},
		[]string{descriptor.FieldTargetPlatformVersion, s.TargetPlatformVersion.String()},
	)
	if s.CompileSdkVersion != nil {
		rows = append(rows, []string{descriptor.FieldCompileSdkVersion, s.CompileSdkVersion.String()})
	}
	rows = append(rows,
		[]string{descriptor.FieldCompileOptionsSource, s.CompileOptions.Source.String()},
		[]string{descriptor.FieldCompileOptionsTarget, s.CompileOptions.Target.String()},
	)
	if s.JVMTarget != "" {
		rows = append(rows, []string{descriptor.FieldJVMTarget, s.JVMTarget.String()})
	}
	if s.NDKVersion != "" {
		rows = append(rows, []string{descriptor.FieldNDKVersion, s.NDKVersion})
	}
	if s.VersionCode != nil {
		rows = append(rows, []string{descriptor.FieldVersionCode, s.VersionCode.String()})
	}
	if s.VersionName != nil {
		rows = append(rows, []string{descriptor.FieldVersionName, s.VersionName.Value})
	}
	rows = append(rows, []string{descriptor.FieldPluginList, strings.Join(s.PluginList, ", ")})
	if s.Variant != "" {
		rows = append(rows, []string{"variant", s.Variant})
	}
	root := s.SourceRoot
	if s.ResolvedSourceRoot != "" && s.ResolvedSourceRoot != s.SourceRoot {
		root += " (" + s.ResolvedSourceRoot + ")"
	}
	rows = append(rows,
		[]string{descriptor.FieldSigningReference, s.SigningReference},
		[]string{descriptor.FieldSourceRoot, root},
	)
	return rows
}
