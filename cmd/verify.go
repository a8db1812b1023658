package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"club-incentives/application/pipeline"
	"club-incentives/domain/enrichment"
	"club-incentives/domain/sheet"
	"club-incentives/infrastructure/config"

	"github.com/spf13/cobra"
)

// ErrVerificationFailed is returned by verify when the gate reports defects
var ErrVerificationFailed = errors.New("verification failed")

var (
	verifySpreadsheet string
	verifySheet       string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-run verification on a submission spreadsheet",
	Long: `Read back a submission spreadsheet created by process and run the
verification checks again, e.g. after fixing missing officer addresses by hand.
One certificate is expected per row.

Example:
  club-incentives verify --spreadsheet 1AbC...`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifySpreadsheet, "spreadsheet", "", "Submission spreadsheet ID (required)")
	verifyCmd.Flags().StringVar(&verifySheet, "sheet", "Sheet1", "Sheet name inside the spreadsheet")
	verifyCmd.MarkFlagRequired("spreadsheet")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	services, err := productionServices(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := buildAdapters(ctx, cfg, services, GetLogger())
	if err != nil {
		return err
	}

	ref := sheet.Ref{SpreadsheetID: verifySpreadsheet, SheetName: verifySheet}
	return RunVerifyWithDependencies(ctx, cfg, a.sheets, ref, os.Stdout)
}

// RunVerifyWithDependencies runs the verify command with injected dependencies (for testing)
func RunVerifyWithDependencies(ctx context.Context, cfg *config.Config, store sheet.Store, ref sheet.Ref, output io.Writer) error {
	sub, err := pipeline.LoadSubmission(ctx, store, ref)
	if err != nil {
		return err
	}
	result := sub.Verify(cfg.Incentives.RequiredColumns)

	fmt.Fprintln(output, titleStyle.Render(fmt.Sprintf("Submission %s (%s)", ref.SpreadsheetID, sub.IncentiveType)))
	fmt.Fprintln(output, renderTable([]string{"ROW", "CLUB", "CERTIFICATE", "STATUS"}, submissionRows(sub.Rows)))
	fmt.Fprintln(output, renderVerification(result))

	if !result.Passed {
		return ErrVerificationFailed
	}
	return nil
}

func submissionRows(rows []*enrichment.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cert := mutedStyle.Render("missing")
		if r.Certificate != "" {
			cert = r.Certificate
		}
		out = append(out, []string{fmt.Sprint(r.SheetRow), r.ClubName, cert, string(r.ClaimStatus)})
	}
	return out
}
