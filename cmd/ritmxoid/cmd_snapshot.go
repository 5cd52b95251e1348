package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/rhythm"
	"github.com/talgya/ritmxoid/internal/roster"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var at string
	var span int
	cmd := &cobra.Command{
		Use:   "snapshot [profile]",
		Short: "Show balance, risk, phases and activity windows for one profile",
		Long:  "Show the full engine output for a profile (ID or name, default the master\nprofile) at a target instant.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(at)
			if err != nil {
				return err
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			p, err := findProfile(db, argOrEmpty(args))
			if err != nil {
				return err
			}
			origin, err := p.Origin()
			if err != nil {
				return err
			}

			f, err := forecast.New(a.cfg.CacheSize)
			if err != nil {
				return err
			}
			snap := f.Snapshot(origin, target)

			var bars []forecast.ChartBar
			if span > 0 {
				if bars, err = forecast.Chart(origin, target, span); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, map[string]any{"profile": p, "snapshot": snap, "chart": bars})
			}
			printSnapshot(out, p, snap)
			if len(bars) > 0 {
				printChart(out, bars)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Target instant (RFC3339 or 2006-01-02[T15:04]); default now")
	cmd.Flags().IntVar(&span, "chart", 0, "Also print a rhythm chart of 14, 28, 42 or 49 days")
	return cmd
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printSnapshot(w io.Writer, p roster.Profile, s forecast.Snapshot) {
	fmt.Fprintf(w, "%s (born %s)\n", p.Name, p.Birth)
	fmt.Fprintf(w, "Target:     %s, %s day of the year\n", s.Target.Format("2006-01-02 15:04 MST"), humanize.Ordinal(rhythm.DayOfYear(s.Target)))
	fmt.Fprintf(w, "Elapsed:    %s\n", s.TimePassed)
	fmt.Fprintf(w, "Balance:    %d (%s)  basic %d  reactive %d\n", s.Balance.Full, s.Level, s.Balance.Basic, s.Balance.Reactive)

	parts := make([]string, 0, len(rhythm.Rhythms))
	for _, r := range rhythm.Rhythms {
		parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(r.String()), s.Rhythms[r.String()]))
	}
	fmt.Fprintf(w, "Rhythms:    %s\n", strings.Join(parts, "  "))
	fmt.Fprintf(w, "Risk:       %d (%d/3 marks)\n", s.Risk, s.RiskMarks)
	fmt.Fprintf(w, "Sun/Moon:   %.1f° / %.1f°\n", s.SunAngle, s.MoonAngle)

	fmt.Fprintln(w, "Activities:")
	for _, act := range rhythm.Activities {
		var active []string
		for _, win := range s.Activities[act] {
			if win.IsActive {
				active = append(active, win.Start.Format("15:04")+"-"+win.End.Format("15:04"))
			}
		}
		state := "idle"
		if len(active) > 0 {
			state = "active " + strings.Join(active, ", ")
		}
		fmt.Fprintf(w, "  %-10s %s\n", act, state)
	}
}

func printChart(w io.Writer, bars []forecast.ChartBar) {
	fmt.Fprintln(w, "Chart:")
	for _, b := range bars {
		marker := " "
		if b.Today {
			marker = ">"
		}
		fmt.Fprintf(w, " %s %+4d  %3d %3d %3d %3d\n", marker, b.Offset,
			b.Rhythms[rhythm.Motor], b.Rhythms[rhythm.Physical], b.Rhythms[rhythm.Sensory], b.Rhythms[rhythm.Analytical])
	}
}
