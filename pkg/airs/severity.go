package airs

import "github.com/crimson-sun/airs/internal/engine/severity"

// SeverityRule assigns Severity to labels containing any of Keywords.
type SeverityRule struct {
	Severity string
	Keywords []string
}

// SeverityRules returns the label to severity rules in the order they are
// checked. The first matching rule wins.
func SeverityRules() []SeverityRule {
	rules := severity.Rules()
	out := make([]SeverityRule, len(rules))
	for i, r := range rules {
		out[i] = SeverityRule{Severity: string(r.Severity), Keywords: r.Keywords}
	}
	return out
}

// Severity returns the tier for an attack label.
func Severity(label string) string {
	return string(severity.Classify(label))
}
