package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/roster"
)

func newRankCmd(a *app) *cobra.Command {
	var (
		at     string
		mode   string
		groups []string
		ids    []string
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank every profile by balance, or run an arena of teams and profiles",
		Long: "Without --group or --id, rank all profiles per team by full balance.\n" +
			"With them, score the selected teams and profiles in the given mode.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := parseTarget(at)
			if err != nil {
				return err
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			profiles, err := db.Profiles()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(groups) > 0 || len(ids) > 0 {
				m, err := roster.ParseMode(mode)
				if err != nil {
					return err
				}
				entries, err := roster.Arena(profiles, groups, ids, m, target)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(out, entries)
				}
				printArena(out, m, entries)
				return nil
			}

			f, err := forecast.New(a.cfg.CacheSize)
			if err != nil {
				return err
			}
			ranking, err := roster.Rank(cmd.Context(), f, profiles, target)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(out, ranking)
			}
			printRanking(out, ranking)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&at, "at", "", "Target instant (RFC3339 or 2006-01-02[T15:04]); default now")
	f.StringVar(&mode, "mode", "total", "Arena mode: total, basic or reactive")
	f.StringSliceVar(&groups, "group", nil, "Team to enter into the arena (repeatable)")
	f.StringSliceVar(&ids, "id", nil, "Profile ID to enter into the arena (repeatable)")
	return cmd
}

func printRanking(w io.Writer, r roster.Ranking) {
	teams := make([]string, 0, len(r.Groups))
	for team := range r.Groups {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		fmt.Fprintf(w, "%s\n", team)
		printStandings(w, r.Groups[team])
	}
	if len(r.Ungrouped) > 0 {
		fmt.Fprintln(w, "No team")
		printStandings(w, r.Ungrouped)
	}
}

func printStandings(w io.Writer, standings []roster.Standing) {
	for i, s := range standings {
		fmt.Fprintf(w, "  %-5s %-20s %3d %-9s risk %d\n", humanize.Ordinal(i+1), s.Name, s.Balance, s.Level, s.Risk)
	}
}

func printArena(w io.Writer, m roster.Mode, entries []roster.Entry) {
	fmt.Fprintf(w, "Arena (%s)\n", m)
	for i, e := range entries {
		name := e.Name
		if e.IsGroup {
			name = fmt.Sprintf("%s [%d]", e.Name, e.Members)
		}
		fmt.Fprintf(w, "  %-5s %-24s %3d\n", humanize.Ordinal(i+1), name, e.Score)
	}
}

func newCompatCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "compat <profile> <profile>",
		Short: "Compare two profiles",
		Args:  cobra.ExactArgs(2),
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

			pa, err := findProfile(db, args[0])
			if err != nil {
				return err
			}
			pb, err := findProfile(db, args[1])
			if err != nil {
				return err
			}
			c, err := roster.Compare(pa, pb, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return writeJSON(out, c)
			}
			fmt.Fprintf(out, "%s and %s: %s (index %d, gauge %d)\n", pa.Name, pb.Name, c.Band, c.Index, c.Gauge)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Target instant (RFC3339 or 2006-01-02[T15:04]); default now")
	return cmd
}
