package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
	"github.com/leapstack-labs/leapbuild/pkg/lint"
)

// minPlatformFloor is the lowest platform version current toolchains
// support.
const minPlatformFloor = 21

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS03",
		Name:        "min-sdk-floor",
		Group:       "platform",
		Description: "Minimum platform version below 21",
		Severity:    lint.SeverityInfo,
		Check:       checkMinSDKFloor,

		Rationale: `AndroidX, Flutter and recent Android Gradle plugin releases require platform 21
or later. Lower values build only with legacy multidex workarounds.`,
		Recommendation: "Raise minPlatformVersion to 21 or later",
	})
}

func checkMinSDKFloor(d *descriptor.BuildDescriptor) []lint.Diagnostic {
	if d.MinPlatformVersion() >= minPlatformFloor {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("minPlatformVersion %d is below %d", d.MinPlatformVersion(), minPlatformFloor),
		Field:   descriptor.FieldMinPlatformVersion,
	}}
}
