package rules

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS02",
		Name:        "example-namespace",
		Group:       "identity",
		Description: "Application identifier still uses the com.example placeholder",
		Severity:    lint.SeverityWarning,
		Check:       checkExampleNamespace,

		Rationale: `Project templates generate identifiers under com.example. The identifier is
permanent once published, and com.example is rejected by the Play Console.`,
		Recommendation: "Choose a unique applicationIdentifier before the first release",
	})
}

func checkExampleNamespace(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	id := d.ApplicationID()
	if id != "com.example" && !strings.HasPrefix(id, "com.example.") {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("applicationIdentifier %q is in the com.example namespace", id),
		Field:   descriptor.FieldApplicationIdentifier,
	}}
}
