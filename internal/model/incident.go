package model

import "strings"

// Incident is a flat record handed to the report exporter. Values are written
// verbatim; nothing is normalised at export time.
type Incident struct {
	Timestamp  string `json:"timestamp"`
	Source     string `json:"source"`
	AttackType string `json:"attack_type"`
	Severity   string `json:"severity"`
	Status     string `json:"status"`
}

// IncidentFields is the column order shared by the CSV and JSON exports.
var IncidentFields = []string{"timestamp", "source", "attack_type", "severity", "status"}

// Record returns the incident's values in IncidentFields order.
func (i Incident) Record() []string {
	return []string{i.Timestamp, i.Source, i.AttackType, i.Severity, i.Status}
}

// AlertWorthy reports whether the incident should raise an alert: severity
// "high" or attack type "unknown", compared case-insensitively. Either one
// is enough.
func (i Incident) AlertWorthy() bool {
	return strings.EqualFold(i.Severity, string(SeverityHigh)) ||
		strings.EqualFold(i.AttackType, "unknown")
}
