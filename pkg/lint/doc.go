// Package lint runs advisory health rules over a valid build descriptor.
//
// Rules never affect validity: descriptor.Load decides whether a document
// is accepted, and lint reports on what was accepted. Rules register
// themselves from init() in package rules:
//
//	import _ "github.com/leapstack-labs/leapbuild/pkg/lint/rules"
//
//	a := lint.NewAnalyzer(lint.NewConfig().Disable("DS02"))
//	for _, d := range a.Analyze(desc) {
//		fmt.Println(d.RuleID, d.Severity, d.Message)
//	}
package lint
