package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	starctx "github.com/leapstack-labs/leapbuild/internal/starlark"
	"github.com/leapstack-labs/leapbuild/pkg/sdkversion"
)

// sourceConfig labels references answered by the versions table in
// leapbuild.yaml.
const sourceConfig = "leapbuild.yaml"

// RefInfo is one resolvable version reference.
type RefInfo struct {
	Reference string `json:"reference" yaml:"reference"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRefsCommand creates the refs command.
func NewRefsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "refs [reference...]",
		Short: "List version references and their values",
		Long: `List the version references descriptors can use, such as
${flutter.targetSdkVersion}, with the value each resolves to.

References come from the versions file (a Starlark file) and the versions
table in leapbuild.yaml; the versions file wins when both define one.
With arguments, only the given references are resolved.`,
		Example: `  # List every known reference
  leapbuild refs

  # Resolve specific references
  leapbuild refs flutter.targetSdkVersion flutter.minSdkVersion`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if err := cmdCtx.WithOutput(format); err != nil {
				return err
			}

			chain, err := cmdCtx.Resolver()
			if err != nil {
				return err
			}

			var refs []RefInfo
			if len(args) > 0 {
				refs = resolveRefs(chain, args)
			} else {
				refs = listRefs(chain)
			}
			return renderRefs(cmdCtx, refs)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

// listRefs resolves every reference each resolver in chain can list.
// Earlier resolvers shadow later ones.
func listRefs(chain sdkversion.Chain) []RefInfo {
	seen := make(map[string]bool)
	var refs []RefInfo

	add := func(info RefInfo) {
		if seen[info.Reference] {
			return
		}
		seen[info.Reference] = true
		refs = append(refs, info)
	}

	for _, r := range chain {
		switch r := r.(type) {
		case *starctx.Resolver:
			for _, res := range r.ResolveAll(r.Names()) {
				info := RefInfo{Reference: res.Reference, Value: res.Value, Source: r.Name()}
				if res.Err != nil {
					info.Value = nil
					info.Error = res.Err.Error()
				}
				add(info)
			}
		case sdkversion.Static:
			for _, name := range r.Names() {
				add(RefInfo{Reference: name, Value: r[name], Source: sourceConfig})
			}
		}
	}
	return refs
}

// resolveRefs resolves names through chain in argument order.
func resolveRefs(chain sdkversion.Chain, names []string) []RefInfo {
	refs := make([]RefInfo, 0, len(names))
	for _, name := range names {
		info := RefInfo{Reference: name}
		v, err := chain.Resolve(name)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Value = v
		}
		refs = append(refs, info)
	}
	return refs
}

func renderRefs(cmdCtx *CommandContext, refs []RefInfo) error {
	r := cmdCtx.Renderer
	if ok, err := r.Structured(refs); ok {
		return err
	}

	r.Header(1, "Version References")
	if len(refs) == 0 {
		r.Println("No version references defined.")
		return nil
	}

	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		value := fmt.Sprint(ref.Value)
		if ref.Error != "" {
			value = "error: " + ref.Error
		}
		rows = append(rows, []string{"${" + ref.Reference + "}", value, cmdCtx.displayPath(ref.Source)})
	}
	r.Table([]string{"Reference", "Value", "Source"}, rows)
	return nil
}
