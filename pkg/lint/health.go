package lint

import (
	"sort"

	"github.com/leapstack-labs/leapbuild/pkg/descriptor"
)

// Check statuses.
const (
	StatusPass  = "pass"
	StatusInfo  = "info" // info and hint findings; not scored
	StatusWarn  = "warn"
	StatusError = "error"
)

// maxRecommendations caps the recommendation list.
const maxRecommendations = 5

// HealthCheck is one rule's result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id" yaml:"rule_id"`
	Name       string   `json:"name" yaml:"name"`
	Group      string   `json:"group" yaml:"group"`
	Status     string   `json:"status" yaml:"status"` // "pass", "info", "warn", "error"
	IssueCount int      `json:"issue_count" yaml:"issue_count"`
	Details    []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Report is the health report for one descriptor.
type Report struct {
	HealthChecks    []HealthCheck `json:"health_checks" yaml:"health_checks"`
	Diagnostics     []Diagnostic  `json:"diagnostics" yaml:"diagnostics"`
	Score           int           `json:"score" yaml:"score"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	IssueCount      int           `json:"issue_count" yaml:"issue_count"`
}

// BuildReport runs a over d and summarizes the result per rule.
func (a *Analyzer) BuildReport(d *descriptor.BuildDescriptor) *Report {
	diags := a.Analyze(d)

	byRule := make(map[string][]Diagnostic)
	for _, diag := range diags {
		byRule[diag.RuleID] = append(byRule[diag.RuleID], diag)
	}

	rules := a.Rules()
	checks := make([]HealthCheck, 0, len(rules))
	for _, rule := range rules {
		ruleDiags := byRule[rule.ID]
		status := StatusPass
		if len(ruleDiags) > 0 {
			status = statusFor(a.Severity(rule))
		}

		details := make([]string, 0, len(ruleDiags))
		for _, diag := range ruleDiags {
			details = append(details, diag.Message)
		}

		checks = append(checks, HealthCheck{
			RuleID:     rule.ID,
			Name:       rule.Name,
			Group:      rule.Group,
			Status:     status,
			IssueCount: len(ruleDiags),
			Details:    details,
		})
	}

	// Sort health checks by group then by rule ID
	sort.Slice(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].RuleID < checks[j].RuleID
	})

	return &Report{
		HealthChecks:    checks,
		Diagnostics:     diags,
		Score:           HealthScore(checks),
		Recommendations: Recommendations(checks),
		IssueCount:      len(diags),
	}
}

// statusFor maps the effective severity of a failing rule to its status.
func statusFor(sev Severity) string {
	switch sev {
	case SeverityError:
		return StatusError
	case SeverityWarning:
		return StatusWarn
	default:
		return StatusInfo
	}
}

// HealthScore computes a score from 0 to 100. Each warning costs 10
// points and each error 25; info findings are free.
func HealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case StatusError:
			score -= check.IssueCount * 25
		case StatusWarn:
			score -= check.IssueCount * 10
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Recommendations returns the recommendation of every failing rule,
// errors first, at most five.
func Recommendations(checks []HealthCheck) []string {
	failing := make([]HealthCheck, 0, len(checks))
	for _, check := range checks {
		if check.IssueCount > 0 {
			failing = append(failing, check)
		}
	}
	sort.SliceStable(failing, func(i, j int) bool {
		return failing[i].Status == StatusError && failing[j].Status != StatusError
	})

	var recommendations []string
	seen := make(map[string]bool)
	for _, check := range failing {
		rule, ok := GetByID(check.RuleID)
		if !ok || rule.Recommendation == "" || seen[rule.Recommendation] {
			continue
		}
		seen[rule.Recommendation] = true
		recommendations = append(recommendations, rule.Recommendation)
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}
