package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"club-incentives/application/pipeline"
	"club-incentives/domain/notification"
	"club-incentives/domain/sheet"
	"club-incentives/infrastructure/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrSendIncomplete is returned when at least one certificate email failed
var ErrSendIncomplete = errors.New("some certificate emails were not sent")

var (
	emailSpreadsheet string
	emailSheet       string
	emailRows        []int
	emailPreview     bool
	emailForce       bool
)

var sendEmailCmd = &cobra.Command{
	Use:   "send-email",
	Short: "Send certificate emails for a submission spreadsheet",
	Long: `Send the certificate emails for a submission spreadsheet created by process.

Use this after a run was held by verification and the spreadsheet has been
fixed by hand. The spreadsheet is verified again first; nothing is sent while
defects remain unless --force is given.

Examples:
  # Send every row
  club-incentives send-email --spreadsheet 1AbC...

  # Resend rows 3 and 5 only
  club-incentives send-email --spreadsheet 1AbC... --row 3 --row 5

  # Print the emails instead of sending them
  club-incentives send-email --spreadsheet 1AbC... --preview`,
	RunE: runSendEmail,
}

func init() {
	rootCmd.AddCommand(sendEmailCmd)
	sendEmailCmd.Flags().StringVar(&emailSpreadsheet, "spreadsheet", "", "Submission spreadsheet ID (required)")
	sendEmailCmd.Flags().StringVar(&emailSheet, "sheet", "Sheet1", "Sheet name inside the spreadsheet")
	sendEmailCmd.Flags().IntSliceVar(&emailRows, "row", nil, "Sheet row(s) to send (can be repeated or comma-separated; default all)")
	sendEmailCmd.Flags().BoolVar(&emailPreview, "preview", false, "Print the emails instead of sending them")
	sendEmailCmd.Flags().BoolVar(&emailForce, "force", false, "Send even if verification reports defects")
	sendEmailCmd.MarkFlagRequired("spreadsheet")
}

func runSendEmail(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := GetLogger()

	services, err := productionServices(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := buildAdapters(ctx, cfg, services, log)
	if err != nil {
		return err
	}

	ref := sheet.Ref{SpreadsheetID: emailSpreadsheet, SheetName: emailSheet}
	return RunSendEmailWithDependencies(ctx, cfg, a.sheets, a.gmail, log, ref, emailRows, emailPreview, emailForce, os.Stdout)
}

// RunSendEmailWithDependencies runs the send-email command with injected dependencies (for testing)
func RunSendEmailWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	store sheet.Store,
	sender notification.EmailSender,
	log *zap.Logger,
	ref sheet.Ref,
	rows []int,
	preview bool,
	force bool,
	output io.Writer,
) error {
	sub, err := pipeline.LoadSubmission(ctx, store, ref)
	if err != nil {
		return err
	}

	result := sub.Verify(cfg.Incentives.RequiredColumns)
	if !result.Passed {
		fmt.Fprintln(output, renderVerification(result))
		if !force {
			fmt.Fprintln(output, mutedStyle.Render("Fix the spreadsheet and try again, or pass --force to send anyway."))
			return ErrVerificationFailed
		}
		fmt.Fprintln(output, heldStyle.Render("Sending anyway (--force)"))
	}

	selected, err := sub.Select(rows...)
	if err != nil {
		return err
	}

	var previewOut io.Writer
	if preview {
		previewOut = output
	}
	notifier, err := newNotifier(cfg, sender, log, previewOut)
	if err != nil {
		return err
	}

	summary := notifier.SendCertificates(ctx, sub.Headers, selected)

	verb := "Sent"
	if preview {
		verb = "Previewed"
	}
	fmt.Fprintf(output, "%s %d email(s), skipped %d, failed %d\n", verb, summary.Sent, summary.Skipped, summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d failed", ErrSendIncomplete, summary.Failed)
	}
	return nil
}
