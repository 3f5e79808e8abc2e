package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS04",
		Name:        "compile-below-target",
		Group:       "platform",
		Description: "compileSdkVersion lower than targetPlatformVersion",
		Severity:    lint.SeverityWarning,
		Check:       checkCompileBelowTarget,

		Rationale: `Targeting a platform the build does not compile against hides the new APIs
and behavior changes the target opts into.`,
		Recommendation: "Set compileSdkVersion to at least targetPlatformVersion",
	})
}

func checkCompileBelowTarget(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	compile, ok := d.CompileSdkVersion()
	if !ok {
		return nil
	}
	target := d.TargetPlatformVersion()
	if compile.Value >= target.Value {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("compileSdkVersion %s is below targetPlatformVersion %s", compile, target),
		Field:   descriptor.FieldCompileSdkVersion,
	}}
}
