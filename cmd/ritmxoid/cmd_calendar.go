package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/rhythm"
)

func newCalendarCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "calendar [profile]",
		Short: "Print the yearly balance calendar for one profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = rhythm.Target(timeNow()).Year()
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
			cal, err := f.Year(cmd.Context(), origin, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, cal)
			}
			fmt.Fprintf(out, "%s, %d\n", p.Name, year)
			printCalendar(out, cal)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default the current year)")
	return cmd
}

// printCalendar writes one Monday-first grid per month. Each day shows its
// balance, with a "!" when at least two risk marks are set.
func printCalendar(w io.Writer, cal forecast.Calendar) {
	for _, m := range cal.Months {
		fmt.Fprintf(w, "\n%-9s  risk index %d\n", m.Month, m.RiskIndex)
		fmt.Fprintln(w, " Mo  Tu  We  Th  Fr  Sa  Su")

		var row strings.Builder
		row.WriteString(strings.Repeat("    ", m.Lead))
		col := m.Lead
		for _, d := range m.Days {
			flag := " "
			if d.Marks >= 2 {
				flag = "!"
			}
			fmt.Fprintf(&row, "%3d%s", d.Balance, flag)
			col++
			if col == 7 {
				fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
				row.Reset()
				col = 0
			}
		}
		if row.Len() > 0 {
			fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
		}
	}
}
