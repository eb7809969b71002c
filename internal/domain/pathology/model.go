package pathology

import "time"

// Severity grades how urgently a finding needs follow-up.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// RequiresFollowUp reports whether a report with this severity needs a
// follow-up appointment.
func (s Severity) RequiresFollowUp() bool {
	return s == SeverityMedium || s == SeverityHigh
}

// Report is a fabricated pathology finding for a single patient. Reports are
// generated per request and never mutated after Generate returns.
type Report struct {
	PatientID        string    `json:"patientId"`
	ReportID         string    `json:"reportId"`
	ReportType       string    `json:"reportType"`
	Status           string    `json:"status"`
	Severity         Severity  `json:"severity"`
	Doctor           string    `json:"doctor"`
	Hospital         string    `json:"hospital"`
	Timestamp        time.Time `json:"timestamp"`
	FollowUpRequired bool      `json:"followUpRequired"`
	Findings         Findings  `json:"findings"`
}

type Findings struct {
	Description string         `json:"description"`
	Details     FindingDetails `json:"details"`
}

type FindingDetails struct {
	CellAbnormality string `json:"cellAbnormality"`
	TissueDamage    string `json:"tissueDamage"`
	TumorMarkers    string `json:"tumorMarkers"`
}
