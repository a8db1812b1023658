package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"club-incentives/application/pipeline"
	"club-incentives/domain/history"
	"club-incentives/infrastructure/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	processRow    int
	processLatest bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a form submission through the complete workflow",
	Long: `Process one form submission through the complete automated workflow:
1. Read and parse the submission row
2. Create the submission spreadsheet and share it
3. Load the officer and district leader tables
4. Fan the submission out into one row per club, with role addresses
5. Link the submission spreadsheet from the form responses
6. Render, store and share one certificate per club
7. Verify the rows and certificates
8. Email each club, or send the defects to the failure recipients

Example:
  club-incentives process --row 42
  club-incentives process --latest`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().IntVar(&processRow, "row", 0, "Form responses row to process (row 1 is the header)")
	processCmd.Flags().BoolVar(&processLatest, "latest", false, "Process the last submission")
	processCmd.MarkFlagsMutuallyExclusive("row", "latest")
	processCmd.MarkFlagsOneRequired("row", "latest")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := GetLogger()

	services, err := productionServices(ctx, cfg)
	if err != nil {
		return err
	}
	recorder, closeJournal := openJournal(ctx, cfg, log)
	defer closeJournal()

	return RunProcessWithDependencies(ctx, cfg, services, recorder, log, pipeline.Input{
		Row:    processRow,
		Latest: processLatest,
	}, os.Stdout)
}

// RunProcessWithDependencies runs the process command with injected dependencies (for testing)
func RunProcessWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	services Services,
	recorder history.Recorder,
	log *zap.Logger,
	input pipeline.Input,
	output io.Writer,
) error {
	svc, err := newPipeline(ctx, cfg, services, recorder, log, output)
	if err != nil {
		return err
	}

	res, err := svc.Process(ctx, input)
	if err != nil {
		return fmt.Errorf("submission not processed: %w", err)
	}
	if !res.Verification.Passed {
		fmt.Fprintf(output, "Submission %d held: %d defect(s), see %s\n", res.SubmissionRow, len(res.Verification.Defects), res.SpreadsheetURL)
	}
	return nil
}
