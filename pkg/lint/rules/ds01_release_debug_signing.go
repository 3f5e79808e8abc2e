package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
	"github.com/leapstack-labs/leapbuild/pkg/signing"
)

// releaseVariant is the variant published to stores.
const releaseVariant = "release"

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS01",
		Name:        "release-debug-signing",
		Group:       "signing",
		Description: "Release builds signed with the debug configuration",
		Severity:    lint.SeverityWarning,
		Check:       checkReleaseDebugSigning,

		Rationale: `The debug keystore is generated per machine and shared by every project on it.
Stores reject or cannot update apps signed with it, so a release signed with debug
only works for local "flutter run --release".`,
		Recommendation: "Add a release signing configuration and reference it from buildTypes.release",
	})
}

// checkReleaseDebugSigning flags a release variant that resolves to the
// debug signing configuration, either through buildTypes.release or by
// falling back to the top-level signingReference.
func checkReleaseDebugSigning(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	ref := d.SigningReferenceFor(releaseVariant)
	if ref != signing.DebugName {
		return nil
	}

	field := descriptor.FieldSigningReference
	if _, ok := d.VariantSigning()[releaseVariant]; ok {
		field = descriptor.FieldBuildTypes + "." + releaseVariant + "." + descriptor.FieldSigningReference
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("release builds are signed with the %q configuration", ref),
		Field:   field,
	}}
}
