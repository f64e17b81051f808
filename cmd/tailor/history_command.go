package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tailor/internal/api"
)

var titleCaser = cases.Title(language.Und)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded optimization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			hist, err := client.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(hist.Runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			headers := []string{"ID", "When", "Outcome", "Pages", "Fix", "Shrink", "Duration", "Summary"}
			rows := make([][]string, 0, len(hist.Runs))
			for _, run := range hist.Runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					formatRunTime(run.CreatedAt),
					runOutcome(run),
					strconv.Itoa(run.PageCount),
					strconv.Itoa(run.FixAttempts),
					strconv.Itoa(run.ShrinkAttempts),
					(time.Duration(run.DurationMS) * time.Millisecond).Round(100 * time.Millisecond).String(),
					run.Summary,
				})
			}
			aligns := []columnAlignment{
				alignRight, alignLeft, alignLeft, alignRight,
				alignRight, alignRight, alignRight, alignLeft,
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 = all)")
	return cmd
}

func runOutcome(run api.RunView) string {
	switch {
	case run.Success:
		return titleCaser.String("success")
	case run.Compiled:
		return titleCaser.String("over length")
	default:
		return titleCaser.String("failed")
	}
}

func formatRunTime(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}
