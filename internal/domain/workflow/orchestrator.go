// Package workflow runs the pathology notification workflow: alert staff,
// log the result, reschedule the follow-up and email the patient.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/integration/chat"
	"github.com/ghostshell/pathflow/internal/integration/hospital"
	"github.com/ghostshell/pathflow/internal/integration/mail"
	"github.com/ghostshell/pathflow/internal/integration/recordlog"
	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type Notifier interface {
	NotifyPathologyResult(ctx context.Context, r *pathology.Report, channel string) chat.Result
}

type RecordLogger interface {
	LogReport(ctx context.Context, r *pathology.Report, notificationRef string) recordlog.Result
}

type Rescheduler interface {
	Reschedule(ctx context.Context, patientID, appointmentID, reason string) hospital.RescheduleResult
}

type Mailer interface {
	SendAppointmentEmail(ctx context.Context, patientID string, d mail.AppointmentDetails) mail.Result
}

// Deps are the integrations a run talks to.
type Deps struct {
	Notifier    Notifier
	Records     RecordLogger
	Rescheduler Rescheduler
	Mailer      Mailer
}

type Orchestrator struct {
	deps    Deps
	history *History
	logger  zerolog.Logger
	now     func() time.Time
}

func New(deps Deps, history *History, logger zerolog.Logger) (*Orchestrator, error) {
	if deps.Notifier == nil || deps.Records == nil || deps.Rescheduler == nil || deps.Mailer == nil {
		return nil, fmt.Errorf("workflow integrations are incomplete: %w", apperr.ErrConfiguration)
	}
	if history == nil {
		history = NewHistory(DefaultHistoryLimit)
	}
	return &Orchestrator{
		deps:    deps,
		history: history,
		logger:  logger.With().Str("component", "workflow").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (o *Orchestrator) History() *History {
	return o.history
}

type step struct {
	name StepName
	run  func(ctx context.Context) (any, error)
}

func stepFailure(msg string) error {
	if msg == "" {
		msg = "integration reported failure"
	}
	return fmt.Errorf("%s: %w", msg, apperr.ErrIntegrationFailure)
}

// Run executes the four steps in order against r. It only returns an error
// when r is unusable; step failures are recorded on the execution, which
// stops at the first failed step.
func (o *Orchestrator) Run(ctx context.Context, r *pathology.Report) (*Execution, error) {
	if r == nil {
		return nil, fmt.Errorf("report is required: %w", apperr.ErrInvalidInput)
	}
	if err := pathology.ValidatePatientID(r.PatientID); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	exec := &Execution{
		ID:        uuid.New().String(),
		PatientID: r.PatientID,
		Status:    StatusPending,
		Steps:     []StepResult{},
		Timestamp: o.now(),
	}
	log := o.logger.With().Str("patient_id", r.PatientID).Str("execution_id", exec.ID).Logger()
	log.Info().Msg("workflow started")

	var (
		messageID   string
		rescheduled hospital.RescheduleResult
	)
	steps := []step{
		{StepNotify, func(ctx context.Context) (any, error) {
			res := o.deps.Notifier.NotifyPathologyResult(ctx, r, "")
			if !res.Success {
				return res, stepFailure(res.Error)
			}
			messageID = res.MessageID
			return res, nil
		}},
		{StepLog, func(ctx context.Context) (any, error) {
			res := o.deps.Records.LogReport(ctx, r, messageID)
			if !res.Success {
				return res, stepFailure(res.Error)
			}
			return res, nil
		}},
		{StepReschedule, func(ctx context.Context) (any, error) {
			res := o.deps.Rescheduler.Reschedule(ctx, r.PatientID, "", hospital.DefaultRescheduleReason)
			if !res.Success {
				return res, stepFailure(res.Error)
			}
			rescheduled = res
			return res, nil
		}},
		{StepEmail, func(ctx context.Context) (any, error) {
			res := o.deps.Mailer.SendAppointmentEmail(ctx, r.PatientID, mail.AppointmentDetails{
				PreviousDate: rescheduled.PreviousDate,
				NewDate:      rescheduled.NewDate,
				Doctor:       rescheduled.Doctor,
				Department:   rescheduled.Department,
			})
			if !res.Success {
				return res, stepFailure(res.Error)
			}
			return res, nil
		}},
	}

	for _, s := range steps {
		details, err := o.runStep(ctx, s)
		result := StepResult{Name: s.name, Timestamp: o.now(), Details: details}
		if err != nil {
			result.Status = StepFailed
			result.Error = err.Error()
			exec.Steps = append(exec.Steps, result)
			exec.Status = StatusFailed
			exec.Error = err.Error()
			log.Error().Err(err).Str("step", string(s.name)).Msg("workflow failed")
			o.history.Add(exec)
			return exec, nil
		}
		result.Status = StepCompleted
		exec.Steps = append(exec.Steps, result)
		log.Debug().Str("step", string(s.name)).Msg("workflow step completed")
	}

	exec.Status = StatusCompleted
	log.Info().Msg("workflow completed")
	o.history.Add(exec)
	return exec, nil
}

// runStep invokes s, turning a cancelled context or a panic into an error.
func (o *Orchestrator) runStep(ctx context.Context, s step) (details any, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", ctxErr.Error(), apperr.ErrIntegrationFailure)
	}
	defer func() {
		if rec := recover(); rec != nil {
			details = nil
			err = fmt.Errorf("panic in %s: %v: %w", s.name, rec, apperr.ErrIntegrationFailure)
		}
	}()
	details, err = s.run(ctx)
	if err != nil && !errors.Is(err, apperr.ErrIntegrationFailure) {
		err = fmt.Errorf("%w: %w", err, apperr.ErrIntegrationFailure)
	}
	return details, err
}
