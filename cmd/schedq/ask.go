package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

func (c *cli) askCmd() *cobra.Command {
	var (
		intent string
		exam   string
		site   string
		batch  bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer one classified question",
		Long: `Answer a question already classified into {intent, exam, site}.

With --batch, reads one JSON intent record per line from stdin, e.g.
  {"intent":"exam_at_site","exam":"ct head","site":"hess"}`,
		Example: `  schedq ask --intent exam_at_site --exam "ct head w/o" --site "1176 5th ave"
  schedq ask --intent rooms_for_exam --exam "mri brain" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch {
				return c.askBatch(cmd)
			}
			if intent == "" {
				return fmt.Errorf("--intent is required (one of %s)", intentList())
			}
			return c.answer(cmd, entities.IntentRecord{Intent: entities.Intent(intent), Exam: exam, Site: site})
		},
	}
	cmd.Flags().StringVar(&intent, "intent", "", "question type: "+intentList())
	cmd.Flags().StringVar(&exam, "exam", "", "exam phrase as the user typed it")
	cmd.Flags().StringVar(&site, "site", "", "location phrase as the user typed it")
	cmd.Flags().BoolVar(&batch, "batch", false, "read JSON intent records from stdin, one per line")
	return cmd
}

func (c *cli) answer(cmd *cobra.Command, rec entities.IntentRecord) error {
	reply, err := c.app.Dispatcher.Answer(cmd.Context(), rec)
	if err != nil {
		return err
	}
	if c.jsonOut {
		return writeJSON(cmd.OutOrStdout(), reply)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return err
}

func (c *cli) askBatch(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec entities.IntentRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return fmt.Errorf("line %d: invalid intent record: %w", line, err)
		}
		if err := c.answer(cmd, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if !c.jsonOut {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
	return scanner.Err()
}

func intentList() string {
	names := make([]string, 0, len(entities.ValidIntents()))
	for _, i := range entities.ValidIntents() {
		names = append(names, string(i))
	}
	return strings.Join(names, ", ")
}
