package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS05",
		Name:        "language-level-mismatch",
		Group:       "toolchain",
		Description: "Source, target and Kotlin JVM target language levels differ",
		Severity:    lint.SeverityWarning,
		Check:       checkLanguageLevelMismatch,

		Rationale: `Kotlin and Java sources compiled for different JVM targets fail at link time
with "Inconsistent JVM-target compatibility", and a source level above the
target cannot be honored.`,
		Recommendation: "Use one language level for compileOptions.source, compileOptions.target and jvmTarget",
	})
}

func checkLanguageLevelMismatch(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic
	opts := d.CompileOptions()

	if opts.Source != opts.Target {
		diagnostics = append(diagnostics, lint.Diagnostic{
			Message: fmt.Sprintf("compileOptions.source %s differs from compileOptions.target %s", opts.Source, opts.Target),
			Field:   descriptor.FieldCompileOptionsSource,
		})
	}

	if jvm := d.JVMTarget(); jvm.Valid() && jvm != opts.Target {
		diagnostics = append(diagnostics, lint.Diagnostic{
			Message: fmt.Sprintf("jvmTarget %s differs from compileOptions.target %s", jvm, opts.Target),
			Field:   descriptor.FieldJVMTarget,
		})
	}

	return diagnostics
}
