// Package severity maps attack labels to severity tiers.
package severity

import (
	"strings"

	"github.com/crimson-sun/airs/internal/model"
)

// Rule assigns Severity to any label containing one of Keywords.
type Rule struct {
	Severity model.Severity
	Keywords []string
}

// rules are checked in order; the first match wins, so a label containing
// both "ddos" and "injection" is high.
var rules = []Rule{
	{Severity: model.SeverityHigh, Keywords: []string{"ddos", "dos"}},
	{Severity: model.SeverityMedium, Keywords: []string{"injection", "xss"}},
	{Severity: model.SeverityLow, Keywords: []string{"brute", "scan"}},
}

// Classify returns the tier of the first rule with a keyword contained in
// the lowercased label, or SeverityUnknown.
func Classify(label string) model.Severity {
	l := strings.ToLower(label)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(l, kw) {
				return r.Severity
			}
		}
	}
	return model.SeverityUnknown
}

// Rules returns a copy of the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Severity: r.Severity, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
