package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
	_ "github.com/leapstack-labs/leapbuild/pkg/lint/rules" // register descriptor rules
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json, yaml
	Strict bool   // Fail when any rule reports an issue
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor [file]",
		Short: "Run a health check on a build descriptor",
		Long: `Validate a build descriptor, then run the descriptor health rules over it.

The report includes:
- Descriptor summary (application id, platform versions, variant)
- Health checks grouped by category (Signing, Identity, Platform, Toolchain, Plugins)
- Health score (0-100)
- Actionable recommendations

Health rules are advisory. A descriptor that fails validation is reported
as an error before any rule runs. Rules can be disabled or re-graded in
the lint section of leapbuild.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Run health check
  leapbuild doctor

  # Fail CI when any rule reports an issue
  leapbuild doctor --strict

  # Output as JSON
  leapbuild doctor --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with an error when any rule reports an issue")

	return cmd
}

// DoctorOutput is the structured output for the doctor command.
type DoctorOutput struct {
	File            string             `json:"file" yaml:"file"`
	Summary         descriptor.Summary `json:"summary" yaml:"summary"`
	HealthChecks    []lint.HealthCheck `json:"health_checks" yaml:"health_checks"`
	Diagnostics     []lint.Diagnostic  `json:"diagnostics" yaml:"diagnostics"`
	Score           int                `json:"score" yaml:"score"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
	IssueCount      int                `json:"issue_count" yaml:"issue_count"`
}

func runDoctor(cmd *cobra.Command, args []string, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cmdCtx.WithOutput(opts.Format); err != nil {
		return err
	}

	lintCfg, err := cmdCtx.Cfg.LintConfig()
	if err != nil {
		return fmt.Errorf("invalid lint configuration: %w", err)
	}

	path, d, err := cmdCtx.LoadOne(args)
	if err != nil {
		return err
	}

	report := lint.NewAnalyzer(lintCfg).BuildReport(d)
	doctorOutput := &DoctorOutput{
		File:            cmdCtx.displayPath(path),
		Summary:         d.Summary(),
		HealthChecks:    report.HealthChecks,
		Diagnostics:     report.Diagnostics,
		Score:           report.Score,
		Recommendations: report.Recommendations,
		IssueCount:      report.IssueCount,
	}
	cmdCtx.Logger.Debug("doctor finished", "score", report.Score, "issues", report.IssueCount)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(doctorOutput)
	case output.ModeYAML:
		err = r.YAML(doctorOutput)
	case output.ModeMarkdown:
		err = renderDoctorMarkdown(r, doctorOutput)
	default:
		err = renderDoctorText(r, doctorOutput)
	}
	if err != nil {
		return err
	}

	if opts.Strict && doctorOutput.IssueCount > 0 {
		return fmt.Errorf("doctor found %d issue(s), health score %d/100", doctorOutput.IssueCount, doctorOutput.Score)
	}
	return nil
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Build Descriptor Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	// Descriptor Summary
	r.Println(styles.Header2.Render("Descriptor Summary"))
	r.Printf("   File: %s\n", out.File)
	r.Printf("   Application: %s\n", out.Summary.ApplicationIdentifier)
	r.Printf("   Platform: min %d | target %s%s\n",
		out.Summary.MinPlatformVersion, out.Summary.TargetPlatformVersion, compileSuffix(out.Summary))
	r.Printf("   Signing: %s%s\n", out.Summary.SigningReference, variantSuffix(out.Summary))
	r.Println("")

	// Health Checks grouped by category
	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case lint.StatusInfo:
			icon = styles.Info.Render("i")
		case lint.StatusWarn:
			icon = styles.StatusWarning.String()
		case lint.StatusError:
			icon = styles.StatusFailed.String()
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%s)", pluralIssues(check.IssueCount))
		}
		r.Println("   " + status)

		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Build Descriptor Health Report")
	r.Println("")

	// Descriptor Summary
	r.Println("## Descriptor Summary")
	r.Println("")
	r.Printf("- **File**: %s\n", out.File)
	r.Printf("- **Application**: %s\n", out.Summary.ApplicationIdentifier)
	r.Printf("- **Min Platform**: %d\n", out.Summary.MinPlatformVersion)
	r.Printf("- **Target Platform**: %s\n", out.Summary.TargetPlatformVersion)
	if out.Summary.CompileSdkVersion != nil {
		r.Printf("- **Compile SDK**: %s\n", out.Summary.CompileSdkVersion)
	}
	r.Printf("- **Signing**: %s%s\n", out.Summary.SigningReference, variantSuffix(out.Summary))
	r.Println("")

	// Health Checks
	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%s)", pluralIssues(check.IssueCount))
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	// Health Score
	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func compileSuffix(s descriptor.Summary) string {
	if s.CompileSdkVersion == nil {
		return ""
	}
	return " | compile " + s.CompileSdkVersion.String()
}

func variantSuffix(s descriptor.Summary) string {
	if s.Variant == "" {
		return ""
	}
	return " (variant " + s.Variant + ")"
}

func pluralIssues(n int) string {
	if n == 1 {
		return "1 issue"
	}
	return fmt.Sprintf("%d issues", n)
}
