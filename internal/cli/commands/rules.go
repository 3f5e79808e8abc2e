package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
	_ "github.com/leapstack-labs/leapbuild/pkg/lint/rules" // register descriptor rules
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// RuleInfo is the structured view of one rule with configuration applied.
type RuleInfo struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Group          string        `json:"group" yaml:"group"`
	Description    string        `json:"description" yaml:"description"`
	Severity       lint.Severity `json:"severity" yaml:"severity"`
	Enabled        bool          `json:"enabled" yaml:"enabled"`
	Rationale      string        `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Recommendation string        `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List descriptor health rules",
		Long: `List the health rules run by "leapbuild doctor".

Severities and enabled state reflect the lint section of leapbuild.yaml.
Use --verbose to include each rule's rationale and recommendation.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all rules
  leapbuild rules

  # Show details for a specific rule
  leapbuild rules DS01

  # List rules in the signing group
  leapbuild rules --group signing

  # Output as JSON
  leapbuild rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

// ruleInfos lists registered rules with cfg applied, sorted by ID.
func ruleInfos(cfg *lint.Config, group string) []RuleInfo {
	var defs []lint.RuleDef
	if group != "" {
		defs = lint.GetByGroup(group)
	} else {
		defs = lint.GetAll()
	}

	infos := make([]RuleInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, RuleInfo{
			ID:             def.ID,
			Name:           def.Name,
			Group:          def.Group,
			Description:    def.Description,
			Severity:       cfg.GetSeverity(def.ID, def.Severity),
			Enabled:        !cfg.IsDisabled(def.ID),
			Rationale:      def.Rationale,
			Recommendation: def.Recommendation,
		})
	}
	return infos
}

func rulesContext(cmd *cobra.Command, format string) (*CommandContext, *lint.Config, error) {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cmdCtx.WithOutput(format); err != nil {
		return nil, nil, err
	}
	cfg, err := cmdCtx.Cfg.LintConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid lint configuration: %w", err)
	}
	return cmdCtx, cfg, nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx, cfg, err := rulesContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	infos := ruleInfos(cfg, opts.Group)
	if ok, err := r.Structured(infos); ok {
		return err
	}

	r.Header(1, "Descriptor Rules")
	if len(infos) == 0 {
		r.Println("No rules match.")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		state := "enabled"
		if !info.Enabled {
			state = "disabled"
		}
		rows = append(rows, []string{info.ID, info.Name, info.Group, info.Severity.String(), state})
	}
	r.Table([]string{"ID", "Name", "Group", "Severity", "State"}, rows)

	if opts.Verbose {
		for _, info := range infos {
			r.Println("")
			renderRuleDetail(r, info)
		}
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx, cfg, err := rulesContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	ruleID = strings.ToUpper(strings.TrimSpace(ruleID))
	if _, ok := lint.GetByID(ruleID); !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	var info RuleInfo
	for _, ri := range ruleInfos(cfg, "") {
		if ri.ID == ruleID {
			info = ri
			break
		}
	}

	if ok, err := r.Structured(info); ok {
		return err
	}
	renderRuleDetail(r, info)
	return nil
}

func renderRuleDetail(r *output.Renderer, info RuleInfo) {
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Printf("## %s: %s\n\n", info.ID, info.Name)
		r.Printf("- **Group**: %s\n", info.Group)
		r.Printf("- **Severity**: %s\n", info.Severity)
		r.Printf("- **Enabled**: %t\n\n", info.Enabled)
		r.Println(info.Description)
		if info.Rationale != "" {
			r.Println("")
			r.Println("### Rationale")
			r.Println("")
			r.Println(info.Rationale)
		}
		if info.Recommendation != "" {
			r.Println("")
			r.Println("### Recommendation")
			r.Println("")
			r.Println(info.Recommendation)
		}
		return
	}

	styles := r.Styles()
	r.Println(styles.Header2.Render(info.ID+": "+info.Name) + " " + styles.Muted.Render("["+info.Group+"]"))
	severity := info.Severity.String()
	if !info.Enabled {
		severity += ", disabled"
	}
	r.Println("  " + styles.Muted.Render("Severity: ") + severity)
	r.Println("  " + info.Description)
	if info.Rationale != "" {
		r.Println("")
		r.Println("  " + styles.Bold.Render("Rationale"))
		for _, line := range strings.Split(info.Rationale, "\n") {
			r.Println("  " + line)
		}
	}
	if info.Recommendation != "" {
		r.Println("")
		r.Println("  " + styles.Bold.Render("Recommendation"))
		r.Println("  " + info.Recommendation)
	}
}
