package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"club-incentives/application/pipeline"
	"club-incentives/domain/history"
	"club-incentives/infrastructure/config"
	"club-incentives/infrastructure/webhook"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the submission webhook",
	Long: `Listen for submission events and process each one through the workflow.

POST /submissions with {"row": 42} or {"latest": true} queues a submission;
submissions are processed one at a time. GET /healthz reports liveness.
When server.token is configured, requests must send it in the X-Webhook-Token header.

Example:
  club-incentives serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := GetLogger()

	services, err := productionServices(ctx, cfg)
	if err != nil {
		return err
	}
	recorder, closeJournal := openJournal(ctx, cfg, log)
	defer closeJournal()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}
	return RunServeWithDependencies(ctx, cfg, services, recorder, log, addr, os.Stdout)
}

// RunServeWithDependencies serves the webhook until ctx is cancelled (for testing)
func RunServeWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	services Services,
	recorder history.Recorder,
	log *zap.Logger,
	addr string,
	output io.Writer,
) error {
	svc, err := newPipeline(ctx, cfg, services, recorder, log, output)
	if err != nil {
		return err
	}

	server := webhook.New(func(ctx context.Context, t webhook.Trigger) error {
		_, err := svc.Process(ctx, pipeline.Input{Row: t.Row, Latest: t.Latest})
		return err
	}, log, webhook.WithToken(cfg.Server.Token))

	log.Info("webhook listening", zap.String("addr", addr))
	return server.ListenAndServe(ctx, addr)
}
