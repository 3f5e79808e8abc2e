package rules

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS06",
		Name:        "plugin-order",
		Group:       "plugins",
		Description: "Kotlin Android plugin applied before the Android application plugin",
		Severity:    lint.SeverityError,
		Check:       checkPluginOrder,

		Rationale: `The Kotlin Android plugin configures itself against the Android extension,
which only exists once com.android.application has been applied.`,
		Recommendation: "Move com.android.application ahead of the Kotlin Android plugin in pluginList",
	})
}

func checkPluginOrder(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	plugins := d.Plugins()
	app := slices.Index(plugins, pluginAndroidApplication)
	if app < 0 {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for i, p := range plugins[:app] {
		if p == pluginKotlinAndroid || p == pluginKotlinAndroidShort {
			diagnostics = append(diagnostics, lint.Diagnostic{
				Message: fmt.Sprintf("%s (index %d) is applied before %s (index %d)", p, i, pluginAndroidApplication, app),
				Field:   descriptor.FieldPluginList,
			})
		}
	}
	return diagnostics
}
