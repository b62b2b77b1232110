package report

import "github.com/crimson-sun/airs/internal/model"

// SampleIncidents is a small fixed batch for trying the exporter.
func SampleIncidents() []model.Incident {
	return []model.Incident{
		{Timestamp: "2025-04-07 10:15:00", Source: "Firewall", AttackType: "SQL Injection", Severity: "High", Status: "Blocked"},
		{Timestamp: "2025-04-07 10:16:45", Source: "Web Server", AttackType: "XSS", Severity: "Medium", Status: "Mitigated"},
		{Timestamp: "2025-04-07 10:18:12", Source: "Proxy", AttackType: "Unknown", Severity: "Low", Status: "Logged"},
	}
}
