package hospital

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Config struct {
	APIURL string
	APIKey string
}

type Client struct {
	store  *Store
	apiURL string
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a scheduling client over store. The API settings identify the
// hospital system in logs only.
func New(cfg Config, store *Store, logger zerolog.Logger) *Client {
	if store == nil {
		store = NewStore()
	}
	return &Client{
		store:  store,
		apiURL: cfg.APIURL,
		logger: logger.With().Str("integration", "hospital").Str("api_url", cfg.APIURL).Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func requirePatient(patientID string) error {
	if strings.TrimSpace(patientID) == "" {
		return fmt.Errorf("patient id is required: %w", apperr.ErrInvalidInput)
	}
	return nil
}

// ensureAppointment creates the default follow-up for a patient with no
// appointments. Callers must hold the store mutex.
func (c *Client) ensureAppointment(patientID string) {
	if len(c.store.byPatient[patientID]) > 0 {
		return
	}
	now := c.now()
	c.store.byPatient[patientID] = append(c.store.byPatient[patientID], &Appointment{
		AppointmentID: fmt.Sprintf("apt-%s-%s", patientID, now.Format("20060102")),
		PatientID:     patientID,
		Date:          formatDate(now.AddDate(0, 0, 14)),
		Doctor:        DefaultDoctor,
		Department:    DefaultDepartment,
		Status:        StatusScheduled,
		CreatedAt:     formatDate(now),
	})
}

// ListAppointments returns copies of the patient's appointments, creating a
// default one 14 days out if the patient has none.
func (c *Client) ListAppointments(_ context.Context, patientID string) ([]Appointment, error) {
	if err := requirePatient(patientID); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.ensureAppointment(patientID)
	appts := c.store.byPatient[patientID]
	out := make([]Appointment, len(appts))
	for i, a := range appts {
		out[i] = *a
	}
	c.logger.Debug().Str("patient_id", patientID).Int("count", len(out)).Msg("appointments listed")
	return out, nil
}

// RescheduleResult describes a reschedule attempt. A miss is reported with
// Success false rather than as a Go error.
type RescheduleResult struct {
	Success       bool      `json:"success"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	PatientID     string    `json:"patientId"`
	PreviousDate  string    `json:"previousDate,omitempty"`
	NewDate       string    `json:"newDate,omitempty"`
	Doctor        string    `json:"doctor,omitempty"`
	Department    string    `json:"department,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Error         string    `json:"error,omitempty"`

	err error
}

// Err returns the failure behind an unsuccessful result, or nil.
func (r RescheduleResult) Err() error {
	return r.err
}

// Reschedule moves the appointment with appointmentID, or the patient's first
// appointment when the id is empty, to 7 days from now.
func (c *Client) Reschedule(_ context.Context, patientID, appointmentID, reason string) RescheduleResult {
	now := c.now()
	res := RescheduleResult{PatientID: patientID, Timestamp: now}
	if err := requirePatient(patientID); err != nil {
		res.Error, res.err = err.Error(), err
		return res
	}
	if reason == "" {
		reason = DefaultRescheduleReason
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.ensureAppointment(patientID)
	appt := c.store.find(patientID, appointmentID)
	if appt == nil {
		err := fmt.Errorf("appointment %s not found for patient %s: %w", appointmentID, patientID, apperr.ErrNotFound)
		c.logger.Error().Str("patient_id", patientID).Str("appointment_id", appointmentID).Msg("reschedule target not found")
		res.Error, res.err = err.Error(), err
		return res
	}

	res.PreviousDate = appt.Date
	appt.Date = formatDate(now.AddDate(0, 0, 7))
	appt.Status = StatusRescheduled
	appt.Reason = reason
	appt.UpdatedAt = formatDate(now)

	c.logger.Info().Str("patient_id", patientID).Str("appointment_id", appt.AppointmentID).Msg("appointment rescheduled")
	res.Success = true
	res.AppointmentID = appt.AppointmentID
	res.NewDate = appt.Date
	res.Doctor = appt.Doctor
	res.Department = appt.Department
	res.Reason = reason
	return res
}

// Create appends a scheduled appointment. Empty doctor and department fall
// back to the defaults.
func (c *Client) Create(_ context.Context, patientID, date, doctor, department string) (*Appointment, error) {
	if err := requirePatient(patientID); err != nil {
		return nil, err
	}
	when, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("date must use layout %s: %w", DateLayout, apperr.ErrInvalidInput)
	}
	if doctor == "" {
		doctor = DefaultDoctor
	}
	if department == "" {
		department = DefaultDepartment
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	now := c.now()
	base := fmt.Sprintf("apt-%s-%s", patientID, now.Format("20060102150405"))
	id := base
	for n := 2; c.store.exists(patientID, id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}

	appt := &Appointment{
		AppointmentID: id,
		PatientID:     patientID,
		Date:          formatDate(when),
		Doctor:        doctor,
		Department:    department,
		Status:        StatusScheduled,
		CreatedAt:     formatDate(now),
	}
	c.store.byPatient[patientID] = append(c.store.byPatient[patientID], appt)

	c.logger.Info().Str("patient_id", patientID).Str("appointment_id", id).Msg("appointment created")
	out := *appt
	return &out, nil
}

// Cancel marks an existing appointment cancelled. It never creates one.
func (c *Client) Cancel(_ context.Context, patientID, appointmentID, reason string) (*Appointment, error) {
	if err := requirePatient(patientID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = DefaultCancelReason
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if len(c.store.byPatient[patientID]) == 0 {
		return nil, fmt.Errorf("no appointments found for patient %s: %w", patientID, apperr.ErrNotFound)
	}
	if appointmentID == "" {
		return nil, fmt.Errorf("appointment id is required: %w", apperr.ErrInvalidInput)
	}
	appt := c.store.find(patientID, appointmentID)
	if appt == nil {
		return nil, fmt.Errorf("appointment %s not found for patient %s: %w", appointmentID, patientID, apperr.ErrNotFound)
	}

	now := c.now()
	appt.Status = StatusCancelled
	appt.Reason = reason
	appt.CancelledAt = formatDate(now)

	c.logger.Info().Str("patient_id", patientID).Str("appointment_id", appointmentID).Msg("appointment cancelled")
	out := *appt
	return &out, nil
}
