package model

// Severity is the coarse urgency bucket derived from an attack label.
type Severity string

const (
	SeverityHigh    Severity = "high"
	SeverityMedium  Severity = "medium"
	SeverityLow     Severity = "low"
	SeverityUnknown Severity = "unknown"
)

// StatusLogged is the fixed status reported for every analysis.
const StatusLogged = "logged"

// TimestampLayout is the local-time format used in analysis results.
const TimestampLayout = "2006-01-02 15:04:05"

// IncidentRequest is the input to a single classification. Message must be
// present but may be empty; Model keeps its preset value when absent.
type IncidentRequest struct {
	Message *string `json:"message" binding:"required"`
	Model   string  `json:"model"`
}

// AnalysisResult is the output of a single classification.
type AnalysisResult struct {
	ModelUsed  string   `json:"model_used"` // uppercased selector, e.g. "RF"
	AttackType string   `json:"attack_type"`
	Severity   Severity `json:"severity"`
	Status     string   `json:"status"`
	Timestamp  string   `json:"timestamp"` // local time, TimestampLayout
}

// Incident converts the result into an exportable incident attributed to source.
func (r AnalysisResult) Incident(source string) Incident {
	return Incident{
		Timestamp:  r.Timestamp,
		Source:     source,
		AttackType: r.AttackType,
		Severity:   string(r.Severity),
		Status:     r.Status,
	}
}
