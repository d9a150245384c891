package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) disableCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:     "disable <exam> <site>",
		Short:   "Mark an exam temporarily unavailable at a catalog site or location prefix",
		Example: `  schedq disable "CT HEAD WO IV CONTRAST" "1176 5TH AVE RAD CT" --reason "scanner down"
  schedq disable "ct head without contrast" hess --reason "scanner down"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exam, site, err := c.resolveTarget(cmd, args)
			if err != nil {
				return err
			}
			entry, err := c.app.Journal.DisableExam(cmd.Context(), exam, site, reason)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s at %s (%s).\n", entry.Exam, entry.Site, entry.Reason)
			return err
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the exam is unavailable")
	return cmd
}

func (c *cli) enableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <exam> <site>",
		Short: "Clear a temporary unavailability",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exam, site, err := c.resolveTarget(cmd, args)
			if err != nil {
				return err
			}
			removed, err := c.app.Journal.EnableExam(cmd.Context(), exam, site)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"removed": removed})
			}
			if removed == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s was not disabled at %s.\n", exam, site)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s at %s.\n", exam, site)
			return err
		},
	}
}

// resolveTarget turns the <exam> <site> arguments into the canonical pair the
// journal stores. Unrecognized names are rejected before anything is written.
func (c *cli) resolveTarget(cmd *cobra.Command, args []string) (string, string, error) {
	return c.app.Resolver.ResolveOverrideTarget(cmd.Context(), c.app.Catalog.Snapshot(), args[0], args[1])
}

func (c *cli) noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "note <text>",
		Short:   "Attach an operational note to the location it mentions",
		Example: `  schedq note "HESS MRI 2 down for service until Friday"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := c.app.Journal.AddLocationNote(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), note)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Note added to %s.\n", note.Location)
			return err
		},
	}
}

func (c *cli) journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the override journal",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List disabled exams and location notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Journal.State()
			if c.jsonOut {
				return writeJSON(cmd.OutOrStdout(), state)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DISABLED EXAMS (%d)\n", len(state.DisabledExams))
			for _, d := range state.DisabledExams {
				fmt.Fprintf(out, "• %s @ %s: %s (%s)\n", d.Exam, d.Site, d.Reason, d.Timestamp.Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(out, "\nLOCATION NOTES (%d)\n", len(state.LocationNotes))
			for _, n := range state.LocationNotes {
				fmt.Fprintf(out, "• %s: %s (%s)\n", n.Location, n.Note, n.Timestamp.Format("2006-01-02 15:04"))
			}
			return nil
		},
	})

	return cmd
}
