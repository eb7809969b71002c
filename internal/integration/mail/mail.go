// Package mail sends appointment notices to patients.
package mail

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

const (
	DefaultFrom     = "appointments@tokyogeneral.example.com"
	DefaultHospital = "Tokyo General Hospital"

	RescheduleSubject = "Important: Your Appointment Has Been Rescheduled"
)

// Sender delivers an encoded message and returns the provider's id for it.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Config struct {
	Token        string
	RefreshToken string
	From         string
	HospitalName string
}

// Result is the outcome of a delivery attempt.
type Result struct {
	Success   bool      `json:"success"`
	EmailID   string    `json:"emailId,omitempty"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type Client struct {
	sender   Sender
	from     string
	hospital string
	logger   zerolog.Logger
	now      func() time.Time
}

func New(cfg Config, sender Sender, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("mail token is required: %w", apperr.ErrConfiguration)
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("mail refresh token is required: %w", apperr.ErrConfiguration)
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender is required: %w", apperr.ErrConfiguration)
	}
	from := cfg.From
	if from == "" {
		from = DefaultFrom
	}
	hospital := cfg.HospitalName
	if hospital == "" {
		hospital = DefaultHospital
	}
	return &Client{
		sender:   sender,
		from:     from,
		hospital: hospital,
		logger:   logger.With().Str("integration", "mail").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Recipient derives the patient's address from their id.
func Recipient(patientID string) string {
	return fmt.Sprintf("patient-%s@example.com", patientID)
}

// SendAppointmentEmail notifies the patient of a rescheduled appointment.
// Rendering and delivery failures are reported in the result.
func (c *Client) SendAppointmentEmail(ctx context.Context, patientID string, d AppointmentDetails) Result {
	res := Result{
		Recipient: Recipient(patientID),
		Subject:   RescheduleSubject,
		Timestamp: c.now(),
	}
	fail := func(err error) Result {
		c.logger.Error().Err(err).Str("patient_id", patientID).Str("recipient", res.Recipient).Msg("appointment email failed")
		res.Error = err.Error()
		return res
	}

	if strings.ContainsFunc(patientID, unicode.IsControl) {
		return fail(fmt.Errorf("patient id contains control characters: %w", apperr.ErrInvalidInput))
	}

	body, err := FormatAppointmentEmail(patientID, c.hospital, d)
	if err != nil {
		return fail(fmt.Errorf("render email: %w", err))
	}
	msg := Message{From: c.from, To: res.Recipient, Subject: res.Subject, Body: body}
	if err := msg.Encode(); err != nil {
		return fail(err)
	}

	id, err := c.sender.Send(ctx, msg)
	if err != nil {
		return fail(err)
	}

	c.logger.Info().Str("patient_id", patientID).Str("email_id", id).Msg("appointment email sent")
	res.Success = true
	res.EmailID = id
	return res
}

// ---------------------------------------------------------------------------
// Mock Sender
// ---------------------------------------------------------------------------

// MockSender is an in-process Sender. Ids are derived from the payload hash.
type MockSender struct {
	mu         sync.Mutex
	calls      []Message
	ShouldFail bool
	FailError  string
}

// Send records the message and optionally returns an error.
func (m *MockSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, msg)
	if m.ShouldFail {
		text := m.FailError
		if text == "" {
			text = "mailbox unavailable"
		}
		return "", errors.New(text)
	}
	sum := sha256.Sum256([]byte(msg.Raw))
	return "email-" + hex.EncodeToString(sum[:8]), nil
}

// Calls returns a copy of recorded messages.
func (m *MockSender) Calls() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.calls))
	copy(out, m.calls)
	return out
}
