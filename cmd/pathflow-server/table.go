package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/domain/workflow"
	"github.com/ghostshell/pathflow/internal/integration/chat"
	"github.com/ghostshell/pathflow/internal/integration/hospital"
	"github.com/ghostshell/pathflow/internal/integration/mail"
	"github.com/ghostshell/pathflow/internal/integration/recordlog"
	"github.com/ghostshell/pathflow/internal/platform/db"
)

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func renderReport(r *pathology.Report) string {
	tw := newTable("Field", "Value")
	tw.AppendRows([]table.Row{
		{"Patient", r.PatientID},
		{"Report", r.ReportID},
		{"Type", r.ReportType},
		{"Status", r.Status},
		{"Severity", string(r.Severity)},
		{"Follow-up", yesNo(r.FollowUpRequired)},
		{"Doctor", r.Doctor},
		{"Hospital", r.Hospital},
		{"Timestamp", r.Timestamp.Format(time.RFC3339)},
		{"Description", r.Findings.Description},
		{"Cell abnormality", r.Findings.Details.CellAbnormality},
		{"Tissue damage", r.Findings.Details.TissueDamage},
		{"Tumor markers", r.Findings.Details.TumorMarkers},
	})
	return tw.Render()
}

func renderExecution(exec *workflow.Execution) string {
	tw := newTable("Step", "Status", "Detail")
	tw.SetTitle(fmt.Sprintf("%s  %s  %s", exec.ID, exec.PatientID, strings.ToUpper(string(exec.Status))))
	for _, s := range exec.Steps {
		detail := stepDetail(s.Details)
		if s.Error != "" {
			detail = s.Error
		}
		tw.AppendRow(table.Row{string(s.Name), string(s.Status), detail})
	}
	return tw.Render()
}

// stepDetail picks the identifier worth showing for each step's result.
func stepDetail(details any) string {
	switch d := details.(type) {
	case chat.Result:
		return d.MessageID
	case recordlog.Result:
		return d.RecordID
	case hospital.RescheduleResult:
		if !d.Success {
			return ""
		}
		return d.AppointmentID + " -> " + d.NewDate
	case mail.Result:
		return d.EmailID + " to " + d.Recipient
	default:
		return ""
	}
}

func renderMigrations(statuses []db.MigrationStatus) string {
	tw := newTable("Version", "Name", "Status", "Applied At")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		tw.AppendRow(table.Row{s.Version, s.Name, status, appliedAt})
	}
	return tw.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
