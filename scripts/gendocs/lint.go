package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapbuild/pkg/lint"
	_ "github.com/leapstack-labs/leapbuild/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"signing":   "Rules about which signing configuration each build type uses.",
	"identity":  "Rules about the application identifier and version name.",
	"platform":  "Rules about minimum, target, and compile platform versions.",
	"toolchain": "Rules about Java and Kotlin language levels.",
	"plugins":   "Rules about the Gradle plugin list.",
}

// generateLintDocs generates all lint documentation files.
func generateLintDocs(outDir string) error {
	log.Printf("Generating lint docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := lint.GetAll()

	if err := generateLintIndex(outDir, len(rules)); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	if err := generateRulesPage(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")

	return nil
}

// generateLintIndex generates the main linting overview page.
func generateLintIndex(outDir string, count int) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Linting", "Build descriptor health rules for leapbuild")
	w.GeneratedMarker()

	w.Header(1, "Linting")
	w.Paragraph(fmt.Sprintf("%s checks a valid build descriptor against **%d rules**. "+
		"Findings never make a descriptor invalid; they lower its health score.",
		InlineCode("leapbuild doctor"), count))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description", "Score Penalty"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed", "25"},
			{InlineCode("warning"), "Potential issue that should be reviewed", "10"},
			{InlineCode("info"), "Informational feedback", "0"},
			{InlineCode("hint"), "Suggestion for improvement", "0"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `leapbuild.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled:
    - DS02           # disable rule
  severity:
    DS01: error      # override severity`)

	w.Header(2, "Rule Categories")
	var rows [][]string
	for _, group := range lint.Groups() {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/linting/rules#%s)", capitalizeFirst(group), group),
			groupDescriptions[group],
		})
	}
	w.Table([]string{"Category", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateRulesPage generates the rule reference page.
func generateRulesPage(outDir string, rules []lint.RuleDef) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Descriptor Rules", "Build descriptor rules for leapbuild")
	w.GeneratedMarker()

	w.Header(1, "Descriptor Rules")
	groups := lint.Groups()
	w.Paragraph(fmt.Sprintf("leapbuild includes %d descriptor rules organized into %d categories.", len(rules), len(groups)))

	for _, group := range groups {
		groupRules := lint.GetByGroup(group)
		if len(groupRules) == 0 {
			continue
		}

		w.Line(fmt.Sprintf("## %s {#%s}", capitalizeFirst(group), group))
		w.Newline()

		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}

		for _, rule := range groupRules {
			writeRuleDoc(w, rule)
		}
	}

	return os.WriteFile(filepath.Join(outDir, "rules.md"), w.Bytes(), 0600)
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.RuleDef) {
	// ### DS01 - release-debug-signing {#DS01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Line(Bold("Severity:") + " " + InlineCode(rule.Severity.String()))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	if rationale := rule.Rationale; rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rationale))
	}

	if rec := rule.Recommendation; rec != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(rec))
	}

	w.Line("---")
	w.Newline()
}
