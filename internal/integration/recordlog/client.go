// Package recordlog keeps an auditable log of pathology results.
package recordlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Config struct {
	Token      string
	DatabaseID string
}

// Result is the outcome of a log attempt.
type Result struct {
	Success    bool      `json:"success"`
	RecordID   string    `json:"recordId,omitempty"`
	DatabaseID string    `json:"databaseId"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}

type Client struct {
	store      Store
	databaseID string
	logger     zerolog.Logger
	now        func() time.Time
}

func New(cfg Config, store Store, logger zerolog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("record log token is required: %w", apperr.ErrConfiguration)
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("record log database id is required: %w", apperr.ErrConfiguration)
	}
	if store == nil {
		return nil, fmt.Errorf("record log store is required: %w", apperr.ErrConfiguration)
	}
	return &Client{
		store:      store,
		databaseID: cfg.DatabaseID,
		logger:     logger.With().Str("integration", "recordlog").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// LogReport appends a record for r. notificationRef links the entry to the
// chat message that announced it and may be empty.
func (c *Client) LogReport(ctx context.Context, r *pathology.Report, notificationRef string) Result {
	now := c.now()
	res := Result{DatabaseID: c.databaseID, Timestamp: now}

	props := FormatProperties(r, notificationRef, now)
	rec := &Record{
		ID:              uuid.New().String(),
		DatabaseID:      c.databaseID,
		PatientID:       r.PatientID,
		Title:           props.Title,
		Status:          props.Status,
		Date:            props.Date,
		NotificationRef: props.NotificationRef,
		Severity:        string(r.Severity),
		ReportID:        r.ReportID,
		CreatedAt:       now,
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		c.logger.Error().Err(err).Str("patient_id", r.PatientID).Msg("record log write failed")
		res.Error = err.Error()
		return res
	}

	c.logger.Info().Str("patient_id", r.PatientID).Str("record_id", rec.ID).Msg("pathology result logged")
	res.Success = true
	res.RecordID = rec.ID
	return res
}

// Query returns matching records. Store failures are logged and yield an
// empty list.
func (c *Client) Query(ctx context.Context, f *Filter, sorts []Sort) []Record {
	recs, err := c.store.Query(ctx, f, sorts)
	if err != nil {
		c.logger.Error().Err(err).Msg("record log query failed")
		return []Record{}
	}
	if recs == nil {
		return []Record{}
	}
	return recs
}
