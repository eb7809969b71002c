package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/ghostshell/pathflow/internal/config"
	"github.com/ghostshell/pathflow/internal/domain/pathology"
	"github.com/ghostshell/pathflow/internal/domain/workflow"
	"github.com/ghostshell/pathflow/internal/integration/chat"
	"github.com/ghostshell/pathflow/internal/integration/hospital"
	"github.com/ghostshell/pathflow/internal/integration/mail"
	"github.com/ghostshell/pathflow/internal/integration/recordlog"
	"github.com/ghostshell/pathflow/internal/platform/db"
	"github.com/ghostshell/pathflow/internal/platform/middleware"
)

// app holds the wired services shared by the server and the CLI commands.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	reports  *pathology.Source
	records  *recordlog.Client
	hospital *hospital.Client
	orch     *workflow.Orchestrator
	storeDB  db.Pinger
	closers  []func()
}

func newLogger(cfg *config.Config, out *os.File) zerolog.Logger {
	var w io.Writer = out
	fd := out.Fd()
	if cfg.IsDev() && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "pathflow").Logger()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, reports: pathology.NewSource(nil)}

	store, err := a.openRecordStore(ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := chat.New(chat.Config{
		Token:          cfg.SlackToken,
		DefaultChannel: cfg.SlackChannel,
	}, &chat.MockSender{}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("chat client: %w", err)
	}

	a.records, err = recordlog.New(recordlog.Config{
		Token:      cfg.NotionToken,
		DatabaseID: cfg.NotionDatabaseID,
	}, store, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("record log client: %w", err)
	}

	a.hospital = hospital.New(hospital.Config{
		APIURL: cfg.HospitalAPIURL,
		APIKey: cfg.HospitalAPIKey,
	}, hospital.NewStore(), logger)

	mailer, err := mail.New(mail.Config{
		Token:        cfg.GoogleToken,
		RefreshToken: cfg.GoogleRefreshToken,
		From:         cfg.EmailSender,
		HospitalName: cfg.HospitalName,
	}, &mail.MockSender{}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("mail client: %w", err)
	}

	a.orch, err = workflow.New(workflow.Deps{
		Notifier:    notifier,
		Records:     a.records,
		Rescheduler: a.hospital,
		Mailer:      mailer,
	}, workflow.NewHistory(cfg.ExecutionHistoryLimit), logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("workflow: %w", err)
	}

	return a, nil
}

// openRecordStore selects the record log backend named by RECORD_STORE.
func (a *app) openRecordStore(ctx context.Context) (recordlog.Store, error) {
	switch a.cfg.RecordStore {
	case config.StoreSQLite:
		s, err := recordlog.OpenSQLite(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.storeDB = s
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, a.cfg.DatabaseURL, a.cfg.DBMaxConns, a.cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		a.storeDB = pool
		a.closers = append(a.closers, pool.Close)
		return recordlog.NewPGStore(pool), nil
	case config.StoreMemory, "":
		return recordlog.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown record store %q", a.cfg.RecordStore)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// trigger fetches the report for patientID and runs the workflow on it.
func (a *app) trigger(ctx context.Context, patientID string) (*workflow.Execution, error) {
	r, err := a.reports.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return a.orch.Run(ctx, r)
}

func newServer(a *app) *echo.Echo {
	cfg := a.cfg
	logger := a.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.Audit(logger))

	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.BodyLimit(cfg.BodyLimit))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	api.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "pathflow backend is running",
		})
	})
	api.GET("/status/db", db.HealthHandler(cfg.RecordStore, a.storeDB))

	pathology.NewHandler(a.reports).RegisterRoutes(api)
	workflow.NewHandler(a.orch, a.reports).RegisterRoutes(api)
	recordlog.NewHandler(a.records).RegisterRoutes(api)
	hospital.NewHandler(a.hospital).RegisterRoutes(api)

	return e
}
