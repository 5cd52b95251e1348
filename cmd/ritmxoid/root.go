package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/config"
	"github.com/talgya/ritmxoid/internal/logging"
	"github.com/talgya/ritmxoid/internal/persistence"
	"github.com/talgya/ritmxoid/internal/rhythm"
	"github.com/talgya/ritmxoid/internal/roster"
)

// timeNow is the wall clock; tests pin it.
var timeNow = time.Now

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	configPath string
	dbPath     string
	jsonOut    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ritmxoid",
		Short: "Biorhythm balance, risk and activity windows",
		Long:  "Ritmxoid evaluates four biological rhythms across nine time scales for\nstored profiles and serves the results over HTTP.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	f.BoolVar(&a.jsonOut, "json", false, "Write JSON instead of text")

	root.AddCommand(
		newServeCmd(a),
		newSnapshotCmd(a),
		newCalendarCmd(a),
		newRankCmd(a),
		newCompatCmd(a),
		newProfileCmd(a),
	)
	root.Version = version
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}

func (a *app) openDB() (*persistence.DB, error) {
	if dir := filepath.Dir(a.cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return persistence.Open(a.cfg.DBPath)
}

// findProfile resolves a profile by ID, then by case-insensitive name. An
// empty key selects the master profile.
func findProfile(db *persistence.DB, key string) (roster.Profile, error) {
	if key == "" {
		return db.Master()
	}
	p, err := db.Profile(key)
	if err == nil || !errors.Is(err, persistence.ErrNotFound) {
		return p, err
	}

	profiles, err := db.Profiles()
	if err != nil {
		return roster.Profile{}, err
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return roster.Profile{}, fmt.Errorf("profile %q: %w", key, persistence.ErrNotFound)
}

// parseTarget reads an RFC3339 instant, or a wall clock in the application
// zone. Empty means now.
func parseTarget(s string) (time.Time, error) {
	if s == "" {
		return rhythm.Target(timeNow()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return rhythm.Target(t), nil
	}
	for _, layout := range []string{roster.BirthLayout, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, rhythm.AppZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid target %q", s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
