package airs

// Result is the outcome of one classification.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	ModelUsed  string `json:"model_used"`  // Uppercased selector: RF, XGB, LR, ANN
	AttackType string `json:"attack_type"` // Decoded label, e.g. "SQL Injection"
	Severity   string `json:"severity"`    // high, medium, low, unknown
	Status     string `json:"status"`      // Always "logged"
	Timestamp  string `json:"timestamp"`   // Local time, "2006-01-02 15:04:05"
}

// Incident is an exportable incident record.
type Incident struct {
	Timestamp  string `json:"timestamp"`
	Source     string `json:"source"`
	AttackType string `json:"attack_type"`
	Severity   string `json:"severity"`
	Status     string `json:"status"`
}

// Report locates the files written by Export.
type Report struct {
	CSVPath  string
	JSONPath string
	Alerts   []Incident // alert-worthy incidents, in input order
}
