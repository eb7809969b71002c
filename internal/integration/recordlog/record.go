package recordlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
)

const dateLayout = "2006-01-02"

// Record is a single entry in the pathology record log.
type Record struct {
	ID              string    `json:"id"`
	DatabaseID      string    `json:"databaseId"`
	PatientID       string    `json:"patientId"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	Date            string    `json:"date"`
	NotificationRef string    `json:"notificationRef,omitempty"`
	Severity        string    `json:"severity,omitempty"`
	ReportID        string    `json:"reportId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Properties are the column values written for a report.
type Properties struct {
	Title           string `json:"Patient ID"`
	Status          string `json:"Status"`
	Date            string `json:"Timestamp"`
	NotificationRef string `json:"Slack Message,omitempty"`
}

// FormatProperties maps a report onto record columns. The date is the
// report's day, or today's when the report carries no timestamp.
func FormatProperties(r *pathology.Report, notificationRef string, now time.Time) Properties {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return Properties{
		Title:           r.PatientID,
		Status:          r.Status,
		Date:            ts.UTC().Format(dateLayout),
		NotificationRef: notificationRef,
	}
}

// Filter narrows a query. Empty fields match everything.
type Filter struct {
	PatientID string
	Status    string
}

func (f *Filter) matches(rec *Record) bool {
	if f == nil {
		return true
	}
	if f.PatientID != "" && rec.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// Sort orders query results by a single column.
type Sort struct {
	Field      string
	Descending bool
}

// Sortable columns.
const (
	SortCreatedAt = "created_at"
	SortDate      = "date"
	SortPatientID = "patient_id"
	SortStatus    = "status"
)

var sortColumns = map[string]bool{
	SortCreatedAt: true,
	SortDate:      true,
	SortPatientID: true,
	SortStatus:    true,
}

// ParseSort reads a comma separated list such as "-date,patient_id". A
// leading minus sorts descending. Unknown columns are rejected.
func ParseSort(s string) ([]Sort, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var sorts []Sort
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if !sortColumns[field] {
			return nil, fmt.Errorf("unknown sort field %q", field)
		}
		sorts = append(sorts, Sort{Field: field, Descending: desc})
	}
	return sorts, nil
}

// selectQuery renders the shared SELECT for the SQL stores. placeholder
// returns the bind marker for the n-th argument (1-based).
func selectQuery(f *Filter, sorts []Sort, placeholder func(int) string) (string, []any) {
	var (
		b     strings.Builder
		where []string
		args  []any
	)
	b.WriteString(`SELECT ` + recordCols + ` FROM pathology_records`)
	if f != nil {
		if f.PatientID != "" {
			args = append(args, f.PatientID)
			where = append(where, "patient_id = "+placeholder(len(args)))
		}
		if f.Status != "" {
			args = append(args, f.Status)
			where = append(where, "status = "+placeholder(len(args)))
		}
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	var order []string
	for _, s := range sorts {
		if !sortColumns[s.Field] {
			continue
		}
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		order = append(order, s.Field+" "+dir)
	}
	if len(order) == 0 {
		order = append(order, "created_at DESC")
	}
	b.WriteString(" ORDER BY " + strings.Join(order, ", "))
	return b.String(), args
}

const recordCols = `id, database_id, patient_id, title, status, date,
	notification_ref, severity, report_id, created_at`
