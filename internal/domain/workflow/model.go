package workflow

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type StepName string

const (
	StepNotify     StepName = "slack_notification"
	StepLog        StepName = "notion_logging"
	StepReschedule StepName = "appointment_rescheduling"
	StepEmail      StepName = "email_notification"
)

// Steps lists the workflow steps in execution order.
var Steps = []StepName{StepNotify, StepLog, StepReschedule, StepEmail}

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

type StepResult struct {
	Name      StepName   `json:"name"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Details   any        `json:"details,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Execution is the log of one workflow run. Steps only ever grow, in
// execution order.
type Execution struct {
	ID        string       `json:"id"`
	PatientID string       `json:"patientId"`
	Status    Status       `json:"status"`
	Steps     []StepResult `json:"steps"`
	Timestamp time.Time    `json:"timestamp"`
	Error     string       `json:"error,omitempty"`
}

func (e *Execution) clone() *Execution {
	out := *e
	out.Steps = make([]StepResult, len(e.Steps))
	copy(out.Steps, e.Steps)
	return &out
}

// StepSummary is a step without its details.
type StepSummary struct {
	Name      StepName   `json:"name"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// Summary is the condensed view served by the status listing.
type Summary struct {
	ID        string        `json:"id"`
	PatientID string        `json:"patientId"`
	Status    Status        `json:"status"`
	Steps     []StepSummary `json:"steps"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}

func (e *Execution) Summary() Summary {
	steps := make([]StepSummary, len(e.Steps))
	for i, s := range e.Steps {
		steps[i] = StepSummary{Name: s.Name, Status: s.Status, Timestamp: s.Timestamp}
	}
	return Summary{
		ID:        e.ID,
		PatientID: e.PatientID,
		Status:    e.Status,
		Steps:     steps,
		Timestamp: e.Timestamp,
		Error:     e.Error,
	}
}
