package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"club-incentives/domain/history"
	"club-incentives/infrastructure/journal"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show processed submissions",
	Long: `List the most recent pipeline runs from the run journal, or show one run
with its defects when a run ID is given.

Examples:
  club-incentives history
  club-incentives history --limit 50
  club-incentives history 6f1c...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := journal.Open(ctx, cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var id string
	if len(args) == 1 {
		id = args[0]
	}
	return RunHistoryWithDependencies(ctx, store, id, historyLimit, os.Stdout)
}

// RunHistoryWithDependencies runs the history command with injected dependencies (for testing)
func RunHistoryWithDependencies(ctx context.Context, reader history.Reader, id string, limit int, output io.Writer) error {
	if id != "" {
		run, err := reader.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, renderRun(run))
		return nil
	}

	runs, err := reader.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, mutedStyle.Render("No runs recorded yet."))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprint(r.SubmissionRow),
			outcomeText(r.Outcome),
			fmt.Sprint(r.Clubs),
			fmt.Sprint(r.Certificates),
			fmt.Sprint(r.EmailsSent),
			r.ID,
		})
	}
	fmt.Fprintln(output, renderTable([]string{"STARTED", "ROW", "OUTCOME", "CLUBS", "CERTS", "EMAILS", "ID"}, rows))
	return nil
}

func outcomeText(o history.Outcome) string {
	switch o {
	case history.OutcomeNotified:
		return passStyle.Render(string(o))
	case history.OutcomeHeld:
		return heldStyle.Render(string(o))
	default:
		return failStyle.Render(string(o))
	}
}

func renderRun(r *history.Run) string {
	rows := [][]string{
		{"Run", r.ID},
		{"Submission row", fmt.Sprint(r.SubmissionRow)},
		{"Outcome", outcomeText(r.Outcome)},
		{"Spreadsheet", r.SpreadsheetURL},
		{"Clubs", fmt.Sprint(r.Clubs)},
		{"Certificates", fmt.Sprint(r.Certificates)},
		{"Emails sent", fmt.Sprint(r.EmailsSent)},
		{"Started", r.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Duration", formatRunDuration(r)},
	}
	for i, d := range r.Defects {
		label := ""
		if i == 0 {
			label = "Defects"
		}
		rows = append(rows, []string{label, d})
	}
	return renderTable([]string{"FIELD", "VALUE"}, rows)
}

func formatRunDuration(r *history.Run) string {
	if r.FinishedAt.IsZero() {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(100 * time.Millisecond).String()
}
