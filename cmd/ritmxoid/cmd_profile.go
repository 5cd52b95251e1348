package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/ritmxoid/internal/roster"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored profiles",
	}
	cmd.AddCommand(
		newProfileAddCmd(a),
		newProfileListCmd(a),
		newProfileRemoveCmd(a),
		newProfileImportCmd(a),
		newProfileExportCmd(a),
	)
	return cmd
}

func newProfileAddCmd(a *app) *cobra.Command {
	var name, birth, team string
	var master bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := roster.NewProfile(name, birth, team)
			if err != nil {
				return err
			}
			p.IsMaster = master

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveProfile(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Display name (required)")
	f.StringVar(&birth, "birth", "", "Birth wall clock, 2006-01-02T15:04 (required)")
	f.StringVar(&team, "team", "", "Team name")
	f.BoolVar(&master, "master", false, "Make this the master profile")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("birth")
	return cmd
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			if a.jsonOut {
				return writeJSON(out, profiles)
			}
			for _, p := range profiles {
				master := ""
				if p.IsMaster {
					master = " *"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s%s\n", p.ID, p.Name, p.Birth, p.Team, master)
			}
			return nil
		},
	}
}

func newProfileRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <profile>",
		Short: "Remove a profile by ID or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			p, err := findProfile(db, args[0])
			if err != nil {
				return err
			}
			if err := db.DeleteProfile(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", p.Name)
			return nil
		},
	}
}

func newProfileImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import a JSON array of profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.ImportJSON(r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d profiles\n", n)
			return nil
		},
	}
}

func newProfileExportCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all profiles as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if path == "" || path == "-" {
				return db.ExportJSON(cmd.OutOrStdout())
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := db.ExportJSON(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "", "Output file (default stdout)")
	return cmd
}
