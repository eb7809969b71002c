// Package hospital simulates the hospital scheduling system. Appointments live
// in an injected in-process Store.
package hospital

import (
	"sync"
	"time"
)

// DateLayout is the wire format for appointment dates.
const DateLayout = "2006-01-02T15:04:05Z"

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusRescheduled Status = "rescheduled"
	StatusCancelled   Status = "cancelled"
)

const (
	DefaultDoctor           = "Dr. Tanaka"
	DefaultDepartment       = "General Medicine"
	DefaultRescheduleReason = "Urgent medical consideration"
	DefaultCancelReason     = "Patient request"
)

type Appointment struct {
	AppointmentID string `json:"appointmentId"`
	PatientID     string `json:"patientId"`
	Date          string `json:"date"`
	Doctor        string `json:"doctor"`
	Department    string `json:"department"`
	Status        Status `json:"status"`
	Reason        string `json:"reason,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	CancelledAt   string `json:"cancelledAt,omitempty"`
}

// Store maps patient ids to their appointments in creation order. All access
// goes through the owning Client, which holds mu for the whole operation.
type Store struct {
	mu        sync.Mutex
	byPatient map[string][]*Appointment
}

func NewStore() *Store {
	return &Store{byPatient: make(map[string][]*Appointment)}
}

// find returns the appointment with id, or the first one when id is empty.
// Callers must hold mu.
func (s *Store) find(patientID, id string) *Appointment {
	appts := s.byPatient[patientID]
	if len(appts) == 0 {
		return nil
	}
	if id == "" {
		return appts[0]
	}
	for _, a := range appts {
		if a.AppointmentID == id {
			return a
		}
	}
	return nil
}

// exists reports whether the patient holds an appointment with id. Callers
// must hold mu.
func (s *Store) exists(patientID, id string) bool {
	for _, a := range s.byPatient[patientID] {
		if a.AppointmentID == id {
			return true
		}
	}
	return false
}

func formatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
