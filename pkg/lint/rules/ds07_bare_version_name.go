package rules

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

// dottedIdentifier matches names like flutter.versionName. Version strings
// such as 1.4.2 or 2.0.0-beta do not match.
var dottedIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS07",
		Name:        "bare-version-name",
		Group:       "identity",
		Description: "Literal versionName looks like a version reference",
		Severity:    lint.SeverityWarning,
		Check:       checkBareVersionName,

		Rationale: `Unlike the integer fields, versionName is free text, so a bare dotted name is
kept as a literal string. flutter.versionName ships as the visible version
instead of the value it names.`,
		Recommendation: "Wrap the reference as ${flutter.versionName}",
	})
}

func checkBareVersionName(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	name, ok := d.VersionName()
	if !ok || name.Reference != "" || !dottedIdentifier.MatchString(name.Value) {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("versionName %q is a literal; write ${%s} to resolve it", name.Value, name.Value),
		Field:   descriptor.FieldVersionName,
	}}
}
