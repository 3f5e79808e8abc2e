package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	clicfg "github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/internal/config"
)

// generateConfigDocs generates the leapbuild.yaml reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "signing", "lint", "cli"
}

// getConfigSchema returns the configuration schema definition.
// This mirrors internal/config/types.go ProjectConfig and the CLI settings.
func getConfigSchema() []ConfigField {
	defaults := config.Defaults()
	return []ConfigField{
		{Name: "descriptor", Type: "string", Default: fmt.Sprint(defaults["descriptor"]), Description: "Path to the build descriptor", Category: "project"},
		{Name: "variant", Type: "string", Description: "Build variant whose signing reference is reported", Category: "project"},
		{Name: "source_root_check", Type: "string", Default: fmt.Sprint(defaults["source_root_check"]), Description: "When the source root is checked: immediate, deferred, skip", Category: "project"},
		{Name: "versions_file", Type: "string", Description: "Starlark file answering ${name.attr} version references", Category: "project"},
		{Name: "versions", Type: "map[string]any", Description: "Static version references, checked after the versions file", Category: "project"},

		{Name: "signing.<name>.store_file", Type: "string", Description: "Keystore path", Category: "signing"},
		{Name: "signing.<name>.store_password", Type: "string", Description: "Keystore password; ${VAR} is expanded from the environment", Category: "signing"},
		{Name: "signing.<name>.key_alias", Type: "string", Description: "Key alias", Category: "signing"},
		{Name: "signing.<name>.key_password", Type: "string", Description: "Key password; ${VAR} is expanded from the environment", Category: "signing"},

		{Name: "lint.disabled", Type: "[]string", Description: "Rule IDs to skip", Category: "lint"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Per-rule severity overrides", Category: "lint"},

		{Name: "output", Type: "string", Default: clicfg.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "cli"},
		{Name: "log_level", Type: "string", Default: clicfg.DefaultLogLevel, Description: "Log level: debug, info, warn, error", Category: "cli"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Shorthand for debug logging", Category: "cli"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "leapbuild configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("leapbuild reads `leapbuild.yaml` from the project directory. " +
		"Environment variables with the " + InlineCode(clicfg.EnvPrefix) +
		" prefix override the file, and explicitly set flags override both.")

	w.Header(2, "Example")
	w.CodeBlock("yaml", `descriptor: android/app/build.yaml
source_root_check: immediate
versions_file: versions.star

signing:
  upload:
    store_file: keys/upload.jks
    store_password: ${UPLOAD_STORE_PASSWORD}
    key_alias: upload

lint:
  severity:
    DS01: error`)

	sections := []struct {
		category string
		title    string
	}{
		{"project", "Project"},
		{"signing", "Signing"},
		{"lint", "Lint"},
		{"cli", "CLI"},
	}

	schema := getConfigSchema()
	for _, section := range sections {
		w.Header(2, section.title)
		var rows [][]string
		for _, f := range schema {
			if f.Category != section.category {
				continue
			}
			def := f.Default
			if def != "" {
				def = InlineCode(def)
			}
			rows = append(rows, []string{InlineCode(f.Name), InlineCode(f.Type), def, f.Description})
		}
		w.Table([]string{"Key", "Type", "Default", "Description"}, rows)
	}

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600)
}
