package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapbuild/internal/cli"
	clicfg "github.com/leapstack-labs/leapbuild/internal/cli/config"
	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// fieldDocs describes each descriptor field for the field reference.
var fieldDocs = map[string]string{
	descriptor.FieldApplicationIdentifier: "Reverse-domain application identifier, such as `com.acme.app`",
	descriptor.FieldMinPlatformVersion:    "Lowest supported platform version; an integer literal",
	descriptor.FieldTargetPlatformVersion: "Target platform version; an integer or a version reference",
	descriptor.FieldCompileOptions:        "Java compatibility levels",
	descriptor.FieldCompileOptionsSource:  "Java source level, from 1.6 to 21",
	descriptor.FieldCompileOptionsTarget:  "Java target level, from 1.6 to 21",
	descriptor.FieldPluginList:            "Gradle plugin identifiers in application order, without duplicates",
	descriptor.FieldSigningReference:      "Signing configuration used unless a build type overrides it",
	descriptor.FieldSourceRoot:            "Flutter project directory, relative to the descriptor",

	descriptor.FieldNamespace:         "Code namespace; defaults to the application identifier",
	descriptor.FieldCompileSdkVersion: "Compile SDK version; an integer or a version reference",
	descriptor.FieldNDKVersion:        "NDK version string",
	descriptor.FieldJVMTarget:         "Kotlin JVM target level",
	descriptor.FieldVersionCode:       "Version code; an integer or a version reference",
	descriptor.FieldVersionName:       "Version name; a string, or `${name}` for a reference",
	descriptor.FieldBuildTypes:        "Per-variant `signingReference` overrides",
}

var optionalFields = []string{
	descriptor.FieldNamespace,
	descriptor.FieldCompileSdkVersion,
	descriptor.FieldNDKVersion,
	descriptor.FieldJVMTarget,
	descriptor.FieldVersionCode,
	descriptor.FieldVersionName,
	descriptor.FieldBuildTypes,
}

const descriptorExample = `applicationIdentifier: com.acme.tasty_track
minPlatformVersion: 21
targetPlatformVersion: ${flutter.targetSdkVersion}
compileOptions:
  source: "17"
  target: "17"
pluginList:
  - com.android.application
  - org.jetbrains.kotlin.android
signingReference: debug
buildTypes:
  release:
    signingReference: upload
sourceRoot: ../..`

// generateCLIDocs writes index.md, descriptor.md and one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := visibleCommands(root)

	pages := map[string][]byte{
		"index.md":      cliIndex(root, cmds),
		"descriptor.md": descriptorReference(),
	}
	for _, cmd := range cmds {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(outDir, name), pages[name], 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func visibleCommands(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.IsAvailableCommand() {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line reference for leapbuild")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapbuild/cmd/leapbuild@latest")

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(cmds))
	for _, cmd := range cmds {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](%s.md)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)
	w.Paragraph("Descriptor fields are listed in the [descriptor reference](descriptor.md).")

	w.Header(2, "Global Flags")
	writeFlags(w, root.PersistentFlags())

	w.Header(2, "Environment")
	w.Paragraph("Scalar configuration keys can be set from the environment. " +
		"Flags set on the command line win over the environment, which wins over leapbuild.yaml.")
	w.Table([]string{"Variable", "Key"}, envRows())

	return w.Bytes()
}

// envRows maps each scalar configuration key to its environment variable.
func envRows() [][]string {
	var rows [][]string
	for _, f := range getConfigSchema() {
		if strings.Contains(f.Name, ".") || strings.HasPrefix(f.Type, "map") {
			continue
		}
		rows = append(rows, []string{
			InlineCode(clicfg.EnvPrefix + strings.ToUpper(f.Name)),
			InlineCode(f.Name),
		})
	}
	return rows
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cleanDescription(cmd.Short))
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())
	if strings.Contains(cmd.Use, "[file") {
		w.Paragraph("Without a file argument the " + InlineCode("descriptor") +
			" path from leapbuild.yaml is used. See the [descriptor reference](descriptor.md).")
	}

	if flags := cmd.NonInheritedFlags(); flags.HasAvailableFlags() {
		w.Header(2, "Flags")
		writeFlags(w, flags)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

func writeFlags(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := f.DefValue
		if def != "" && def != "false" && def != "[]" {
			def = InlineCode(def)
		} else {
			def = ""
		}
		rows = append(rows, []string{InlineCode(name), def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Flag", "Default", "Description"}, rows)
}

// descriptorReference documents the descriptor document fields.
func descriptorReference() []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("Descriptor Reference", "Fields of a leapbuild build descriptor")
	w.GeneratedMarker()

	w.Header(1, "Descriptor Reference")
	w.Paragraph("A build descriptor is a YAML or JSON document. Unknown top-level fields are rejected, " +
		"and the first failing check is reported.")
	w.CodeBlock("yaml", descriptorExample)

	w.Header(2, "Required Fields")
	w.Paragraph("Presence is checked in this order:")
	w.Table([]string{"Field", "Description"}, fieldRows(descriptor.RequiredFields()))

	w.Header(2, "Optional Fields")
	w.Table([]string{"Field", "Description"}, fieldRows(optionalFields))

	w.Header(2, "Validation Order")
	w.BulletList([]string{
		"Field presence and unknown fields",
		"Field types and values",
		"Duplicate plugins",
		"Version references, then " + InlineCode("minPlatformVersion <= targetPlatformVersion"),
		"Signing references against the " + InlineCode("signing") + " section of leapbuild.yaml",
		"Source root existence",
	})

	w.Header(2, "Version References")
	w.Paragraph("Integer fields accept a reference such as " + InlineCode("flutter.targetSdkVersion") +
		", bare or wrapped as " + InlineCode("${flutter.targetSdkVersion}") + ". " +
		"References are answered by the versions file, then the " + InlineCode("versions") +
		" table in leapbuild.yaml. Run " + InlineCode("leapbuild refs") + " to list them.")

	return w.Bytes()
}

func fieldRows(fields []string) [][]string {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{InlineCode(f), fieldDocs[f]})
	}
	return rows
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
