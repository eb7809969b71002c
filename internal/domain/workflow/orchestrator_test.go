package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/integration/chat"
	"github.com/ghostshell/pathflow/internal/integration/hospital"
	"github.com/ghostshell/pathflow/internal/integration/mail"
	"github.com/ghostshell/pathflow/internal/integration/recordlog"
	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

type testEnv struct {
	orch     *Orchestrator
	chat     *chat.MockSender
	mail     *mail.MockSender
	records  *recordlog.Client
	hospital *hospital.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	chatSender := &chat.MockSender{}
	mailSender := &mail.MockSender{}

	notifier, err := chat.New(chat.Config{Token: "t"}, chatSender, logger)
	if err != nil {
		t.Fatalf("chat client: %v", err)
	}
	records, err := recordlog.New(recordlog.Config{Token: "t", DatabaseID: "db"}, recordlog.NewMemoryStore(), logger)
	if err != nil {
		t.Fatalf("recordlog client: %v", err)
	}
	sched := hospital.New(hospital.Config{}, hospital.NewStore(), logger)
	mailer, err := mail.New(mail.Config{Token: "t", RefreshToken: "r"}, mailSender, logger)
	if err != nil {
		t.Fatalf("mail client: %v", err)
	}

	orch, err := New(Deps{Notifier: notifier, Records: records, Rescheduler: sched, Mailer: mailer}, NewHistory(10), logger)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return &testEnv{orch: orch, chat: chatSender, mail: mailSender, records: records, hospital: sched}
}

func testReport(t *testing.T, id string) *pathology.Report {
	t.Helper()
	r, err := pathology.Generate(id, pathology.NewRand(id), time.Now().UTC())
	if err != nil {
		t.Fatalf("generate report: %v", err)
	}
	return r
}

func stepNames(exec *Execution) string {
	names := make([]string, len(exec.Steps))
	for i, s := range exec.Steps {
		names[i] = string(s.Name) + ":" + string(s.Status)
	}
	return strings.Join(names, ",")
}

func TestRun_AllStepsComplete(t *testing.T) {
	env := newTestEnv(t)
	exec, err := env.orch.Run(context.Background(), testReport(t, "P12345"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != StatusCompleted {
		t.Errorf("expected completed, got %q (%s)", exec.Status, exec.Error)
	}
	want := "slack_notification:completed,notion_logging:completed,appointment_rescheduling:completed,email_notification:completed"
	if got := stepNames(exec); got != want {
		t.Errorf("expected steps %s, got %s", want, got)
	}
	if exec.PatientID != "P12345" || exec.ID == "" || exec.Error != "" {
		t.Errorf("unexpected execution %+v", exec)
	}

	// The record log entry points back at the chat message.
	chatRes := exec.Steps[0].Details.(chat.Result)
	recs := env.records.Query(context.Background(), &recordlog.Filter{PatientID: "P12345"}, nil)
	if len(recs) != 1 || recs[0].NotificationRef != chatRes.MessageID {
		t.Errorf("expected record referencing %q, got %+v", chatRes.MessageID, recs)
	}

	// The email carries the reschedule details.
	resched := exec.Steps[2].Details.(hospital.RescheduleResult)
	sent := env.mail.Calls()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Body.Text, "New Appointment: "+resched.NewDate) {
		t.Errorf("email missing new date %q", resched.NewDate)
	}
	if resched.Reason != hospital.DefaultRescheduleReason {
		t.Errorf("expected reason %q, got %q", hospital.DefaultRescheduleReason, resched.Reason)
	}

	if env.orch.History().Len() != 1 {
		t.Errorf("expected execution in history, got %d", env.orch.History().Len())
	}
}

func TestRun_IndependentExecutions(t *testing.T) {
	env := newTestEnv(t)
	r := testReport(t, "P12345")
	a, _ := env.orch.Run(context.Background(), r)
	b, _ := env.orch.Run(context.Background(), r)
	if a.ID == b.ID {
		t.Error("expected distinct execution ids")
	}
	if a.Status != StatusCompleted || b.Status != StatusCompleted {
		t.Errorf("expected both completed, got %q and %q", a.Status, b.Status)
	}
	if len(env.chat.Calls()) != 2 {
		t.Errorf("expected 2 chat messages, got %d", len(env.chat.Calls()))
	}
}

func TestRun_InvalidReport(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.orch.Run(context.Background(), nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil report, got %v", err)
	}
	if _, err := env.orch.Run(context.Background(), &pathology.Report{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty patient id, got %v", err)
	}
	if _, err := env.orch.Run(context.Background(), &pathology.Report{PatientID: "P1\r\nX-Injected: yes"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for patient id with CRLF, got %v", err)
	}
	if env.orch.History().Len() != 0 {
		t.Error("expected no execution recorded for invalid input")
	}
	if len(env.chat.Calls()) != 0 {
		t.Error("expected no integration calls for invalid input")
	}
}

func TestRun_NotifyFailureStopsRun(t *testing.T) {
	env := newTestEnv(t)
	env.chat.ShouldFail = true
	env.chat.FailError = "channel_not_found"

	exec, err := env.orch.Run(context.Background(), testReport(t, "P1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != StatusFailed {
		t.Errorf("expected failed, got %q", exec.Status)
	}
	if got := stepNames(exec); got != "slack_notification:failed" {
		t.Errorf("unexpected steps %s", got)
	}
	if !strings.Contains(exec.Error, "channel_not_found") {
		t.Errorf("expected error text, got %q", exec.Error)
	}
	if recs := env.records.Query(context.Background(), nil, nil); len(recs) != 0 {
		t.Errorf("expected no later steps to run, got %d records", len(recs))
	}
}

func TestRun_EmailFailureKeepsEarlierSteps(t *testing.T) {
	env := newTestEnv(t)
	env.mail.ShouldFail = true

	exec, _ := env.orch.Run(context.Background(), testReport(t, "P1"))
	if exec.Status != StatusFailed {
		t.Errorf("expected failed, got %q", exec.Status)
	}
	want := "slack_notification:completed,notion_logging:completed,appointment_rescheduling:completed,email_notification:failed"
	if got := stepNames(exec); got != want {
		t.Errorf("expected steps %s, got %s", want, got)
	}
	appts, _ := env.hospital.ListAppointments(context.Background(), "P1")
	if appts[0].Status != hospital.StatusRescheduled {
		t.Errorf("expected reschedule to stand without rollback, got %q", appts[0].Status)
	}
}

type stubNotifier struct{ fn func() chat.Result }

func (s stubNotifier) NotifyPathologyResult(context.Context, *pathology.Report, string) chat.Result {
	return s.fn()
}

type stubRecords struct{ res recordlog.Result }

func (s stubRecords) LogReport(context.Context, *pathology.Report, string) recordlog.Result {
	return s.res
}

type stubRescheduler struct{ res hospital.RescheduleResult }

func (s stubRescheduler) Reschedule(context.Context, string, string, string) hospital.RescheduleResult {
	return s.res
}

type stubMailer struct{}

func (stubMailer) SendAppointmentEmail(context.Context, string, mail.AppointmentDetails) mail.Result {
	return mail.Result{Success: true, EmailID: "email-stub"}
}

func newStubOrchestrator(t *testing.T, d Deps) *Orchestrator {
	t.Helper()
	if d.Notifier == nil {
		d.Notifier = stubNotifier{fn: func() chat.Result { return chat.Result{Success: true, MessageID: "m1"} }}
	}
	if d.Records == nil {
		d.Records = stubRecords{res: recordlog.Result{Success: true, RecordID: "r1"}}
	}
	if d.Rescheduler == nil {
		d.Rescheduler = stubRescheduler{res: hospital.RescheduleResult{Success: true}}
	}
	if d.Mailer == nil {
		d.Mailer = stubMailer{}
	}
	o, err := New(d, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o
}

func TestRun_FailureAtEachStep(t *testing.T) {
	tests := []struct {
		name string
		deps Deps
		want string
	}{
		{
			"log",
			Deps{Records: stubRecords{res: recordlog.Result{Error: "disk full"}}},
			"slack_notification:completed,notion_logging:failed",
		},
		{
			"reschedule",
			Deps{Rescheduler: stubRescheduler{res: hospital.RescheduleResult{Error: "appointment not found"}}},
			"slack_notification:completed,notion_logging:completed,appointment_rescheduling:failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newStubOrchestrator(t, tt.deps)
			exec, err := o.Run(context.Background(), testReport(t, "P5"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exec.Status != StatusFailed {
				t.Errorf("expected failed, got %q", exec.Status)
			}
			if got := stepNames(exec); got != tt.want {
				t.Errorf("expected steps %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	o := newStubOrchestrator(t, Deps{
		Notifier: stubNotifier{fn: func() chat.Result { panic("socket closed") }},
	})
	exec, err := o.Run(context.Background(), testReport(t, "P5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != StatusFailed || !strings.Contains(exec.Error, "socket closed") {
		t.Errorf("expected failed execution mentioning panic, got %q / %q", exec.Status, exec.Error)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	o := newStubOrchestrator(t, Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec, err := o.Run(ctx, testReport(t, "P5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != StatusFailed || len(exec.Steps) != 1 {
		t.Errorf("expected failure at first step, got %q with %d steps", exec.Status, len(exec.Steps))
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}, nil, zerolog.Nop()); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
