package model

import "testing"

func TestAlertWorthy(t *testing.T) {
	tests := []struct {
		name string
		inc  Incident
		want bool
	}{
		{"high severity", Incident{Severity: "High", AttackType: "SQLi"}, true},
		{"unknown type", Incident{Severity: "Low", AttackType: "Unknown"}, true},
		{"both", Incident{Severity: "HIGH", AttackType: "unknown"}, true},
		{"neither", Incident{Severity: "Low", AttackType: "Scan"}, false},
		{"medium xss", Incident{Severity: "Medium", AttackType: "XSS"}, false},
		{"substring is not enough", Incident{Severity: "highest", AttackType: "unknown-ish"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inc.AlertWorthy(); got != tt.want {
				t.Errorf("AlertWorthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordOrder(t *testing.T) {
	inc := Incident{"2025-04-07 10:15:00", "Firewall", "SQL Injection", "High", "Blocked"}
	rec := inc.Record()
	if len(rec) != len(IncidentFields) {
		t.Fatalf("record has %d fields, want %d", len(rec), len(IncidentFields))
	}
	want := []string{"2025-04-07 10:15:00", "Firewall", "SQL Injection", "High", "Blocked"}
	for i := range want {
		if rec[i] != want[i] {
			t.Errorf("rec[%d] = %q, want %q", i, rec[i], want[i])
		}
	}
}

func TestAnalysisResultIncident(t *testing.T) {
	r := AnalysisResult{
		ModelUsed:  "RF",
		AttackType: "DDoS",
		Severity:   SeverityHigh,
		Status:     StatusLogged,
		Timestamp:  "2026-10-19 08:00:00",
	}
	inc := r.Incident("nginx")
	if inc.Source != "nginx" || inc.AttackType != "DDoS" || inc.Severity != "high" || inc.Status != "logged" {
		t.Errorf("unexpected incident: %+v", inc)
	}
	if !inc.AlertWorthy() {
		t.Error("high-severity incident should be alert-worthy")
	}
}
