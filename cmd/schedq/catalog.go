package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type prefixView struct {
	Prefix  string   `json:"prefix"`
	Aliases []string `json:"aliases"`
	Sites   []string `json:"sites"`
}

type statsView struct {
	Source   string   `json:"source"`
	Rows     int      `json:"rows"`
	Exams    int      `json:"exams"`
	Sites    int      `json:"sites"`
	Warnings []string `json:"warnings,omitempty"`
}

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the loaded scheduling catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prefixes",
		Short: "Show which catalog sites every location prefix expands to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.app.Catalog.Snapshot()

			views := make([]prefixView, 0, len(snap.Hierarchy.Prefixes()))
			for _, loc := range snap.Hierarchy.Locations() {
				views = append(views, prefixView{
					Prefix:  loc.Prefix,
					Aliases: loc.Aliases,
					Sites:   snap.LocationToSites.Sites(loc.Prefix),
				})
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), views)
			}

			out := cmd.OutOrStdout()
			for _, v := range views {
				fmt.Fprintf(out, "%s", v.Prefix)
				if len(v.Aliases) > 0 {
					fmt.Fprintf(out, " (aliases: %s)", strings.Join(v.Aliases, ", "))
				}
				fmt.Fprintln(out)
				if len(v.Sites) == 0 {
					fmt.Fprintln(out, "  (no catalog sites)")
				}
				for _, s := range v.Sites {
					fmt.Fprintf(out, "  • %s\n", s)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Reload the catalog and report its size and load warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.Catalog.Reload(cmd.Context())
			if err != nil {
				return err
			}

			view := statsView{
				Source:   snap.Source,
				Rows:     snap.Index.Len(),
				Exams:    len(snap.Index.Exams()),
				Sites:    len(snap.Index.Sites()),
				Warnings: snap.Warnings,
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:  %s\nrows:    %d\nexams:   %d\nsites:   %d\n", view.Source, view.Rows, view.Exams, view.Sites)
			for _, w := range view.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	})

	return cmd
}
