package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/calendar"
	"github.com/abhisek/studyloop/internal/config"
	"github.com/abhisek/studyloop/internal/logging"
	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/study"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *store.Store
	svc      *study.Service
	calendar calendar.Provider
}

// openApp loads configuration, opens the store and builds the study
// service. Callers must Close the result.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == store.DriverSQLite {
		dsn, err = resolveDBPath(cmd, dsn)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.OpenDriver(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sched, err := review.NewScheduler(cfg.ReviewConfig())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure scheduler: %w", err)
	}

	// The app works without a calendar; reminders are just unavailable.
	cal, err := calendar.NewProvider(ctx, cfg.CalendarProvider())
	if err != nil {
		log.WithError(err).Warn("calendar not configured, reminders disabled")
		cal = calendar.Disabled{}
	}

	svc := study.NewService(st.Items(), st.Sessions(), sched,
		study.WithCalendar(cal),
		study.WithRetry(cfg.StudyRetry()),
		study.WithLogger(log),
	)
	return &app{cfg: cfg, log: log, store: st, svc: svc, calendar: cal}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// calendarEnabled reports whether reminders can be created.
func (a *app) calendarEnabled() bool {
	_, disabled := a.calendar.(calendar.Disabled)
	return !disabled
}
