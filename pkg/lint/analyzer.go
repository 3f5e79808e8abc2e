package lint

import (
	"sort"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// Analyzer runs registered rules against a descriptor.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Rules returns the registered rules the analyzer will run.
func (a *Analyzer) Rules() []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if !a.config.IsDisabled(rule.ID) {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Analyze runs every enabled rule. Diagnostics are ordered by severity,
// then rule ID.
func (a *Analyzer) Analyze(d *descriptor.BuildDescriptor) []Diagnostic {
	if d == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range a.Rules() {
		diags := rule.Check(d)
		for i := range diags {
			diags[i].RuleID = rule.ID
			diags[i].Severity = a.config.GetSeverity(rule.ID, rule.Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Severity != diagnostics[j].Severity {
			return diagnostics[i].Severity < diagnostics[j].Severity
		}
		return diagnostics[i].RuleID < diagnostics[j].RuleID
	})
	return diagnostics
}

// Severity returns the effective severity of a rule.
func (a *Analyzer) Severity(rule RuleDef) Severity {
	return a.config.GetSeverity(rule.ID, rule.Severity)
}

// Disable disables a rule by ID.
func (a *Analyzer) Disable(ruleID string) {
	a.config.Disable(ruleID)
}

// Enable enables a previously disabled rule.
func (a *Analyzer) Enable(ruleID string) {
	a.config.Enable(ruleID)
}
