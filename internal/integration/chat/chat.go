// Package chat posts critical pathology alerts to the staff chat workspace.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

// DefaultChannel receives alerts when no channel is configured.
const DefaultChannel = "#scheduling"

// Sender delivers a message to a channel and returns the message id assigned
// by the workspace.
type Sender interface {
	PostMessage(ctx context.Context, channel, text string, blocks []Block) (string, error)
}

type Config struct {
	Token          string
	DefaultChannel string
}

// Result is the outcome of a notification attempt.
type Result struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type Client struct {
	sender  Sender
	channel string
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a chat client. The token is required even though the sender
// never leaves the process.
func New(cfg Config, sender Sender, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("chat token is required: %w", apperr.ErrConfiguration)
	}
	if sender == nil {
		return nil, fmt.Errorf("chat sender is required: %w", apperr.ErrConfiguration)
	}
	channel := cfg.DefaultChannel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Client{
		sender:  sender,
		channel: channel,
		logger:  logger.With().Str("integration", "chat").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// NotifyPathologyResult posts the alert for r. An empty channel selects the
// configured default. Delivery failures are reported in the result.
func (c *Client) NotifyPathologyResult(ctx context.Context, r *pathology.Report, channel string) Result {
	if channel == "" {
		channel = c.channel
	}
	res := Result{Channel: channel, Timestamp: c.now()}

	text := fmt.Sprintf("Critical Pathology Result: Patient %s - %s", r.PatientID, r.Status)
	id, err := c.sender.PostMessage(ctx, channel, text, FormatPathologyAlert(r))
	if err != nil {
		c.logger.Error().Err(err).Str("patient_id", r.PatientID).Str("channel", channel).Msg("chat notification failed")
		res.Error = err.Error()
		return res
	}

	c.logger.Info().Str("patient_id", r.PatientID).Str("channel", channel).Str("message_id", id).Msg("chat notification sent")
	res.Success = true
	res.MessageID = id
	return res
}

// ---------------------------------------------------------------------------
// Mock Sender
// ---------------------------------------------------------------------------

// Message records a single call to PostMessage.
type Message struct {
	Channel string
	Text    string
	Blocks  []Block
}

// MockSender is an in-process Sender that fabricates message ids.
type MockSender struct {
	mu         sync.Mutex
	calls      []Message
	seq        int
	ShouldFail bool
	FailError  string
}

// PostMessage records the call and optionally returns an error.
func (m *MockSender) PostMessage(ctx context.Context, channel, text string, blocks []Block) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Message{Channel: channel, Text: text, Blocks: blocks})
	if m.ShouldFail {
		msg := m.FailError
		if msg == "" {
			msg = "channel_not_found"
		}
		return "", errors.New(msg)
	}
	m.seq++
	return fmt.Sprintf("slack-msg-%d-%d", m.seq, time.Now().Unix()), nil
}

// Calls returns a copy of recorded messages.
func (m *MockSender) Calls() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.calls))
	copy(out, m.calls)
	return out
}
