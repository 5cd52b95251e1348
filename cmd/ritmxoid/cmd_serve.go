package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/api"
	"github.com/talgya/ritmxoid/internal/clock"
	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/rhythm"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the target clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", a.cfg.DBPath)

	f, err := forecast.New(a.cfg.CacheSize)
	if err != nil {
		return err
	}

	clk := clock.New()
	clk.Interval = a.cfg.TickInterval
	clk.OnDay = func(target time.Time) {
		slog.Info("target day changed",
			"date", target.Format("2006-01-02"),
			"day_of_year", humanize.Ordinal(rhythm.DayOfYear(target)),
			"season", rhythm.SeasonWindow(rhythm.DayOfYear(target)).String(),
		)
	}
	if v, err := db.Meta(api.MetaTarget); err == nil {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			clk.Set(t)
			slog.Info("target restored", "target", v)
		}
	}

	if a.cfg.AdminKey == "" {
		slog.Warn("RITMXOID_ADMIN_KEY not set, admin endpoints will be disabled")
	}

	srv, err := (&api.Server{
		Forecast:      f,
		Clock:         clk,
		DB:            db,
		Port:          a.cfg.APIPort,
		AdminKey:      a.cfg.AdminKey,
		CORSOrigins:   a.cfg.CORSOrigins,
		CalendarLimit: a.cfg.RateLimit.Calendar,
		LimitWindow:   a.cfg.RateLimit.Window,
	}).Start()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status (Ctrl+C to stop)\n", a.cfg.APIPort)

	clk.Run(ctx)
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
