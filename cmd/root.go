package cmd

import (
	"fmt"
	"os"

	"club-incentives/infrastructure/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	cfg     *config.Config
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "club-incentives",
	Short: "Automate club incentive certificates and notifications",
	Long: `club-incentives turns a club incentive form submission into certificates
and notification emails:

  - Fan the submission out into one row per club
  - Look up officer and district leader addresses
  - Render a certificate per club from a Slides template
  - Verify the result before any email is sent
  - Email the clubs, or report the defects to the incentives team

Example:
  club-incentives process --latest`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(cfg, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help and setup)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// GetLogger returns the process logger, or a no-op logger before initialisation
func GetLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// newLogger builds a production zap logger at the configured level
func newLogger(c *config.Config, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c != nil && c.Log.Level != "" {
		level, err := zapcore.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: log.level %q", config.ErrInvalidSetting, c.Log.Level)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

func requireConfig() (*config.Config, error) {
	c := GetConfig()
	if c == nil {
		return nil, fmt.Errorf("configuration not loaded from %s. Run 'club-incentives setup' first", cfgFile)
	}
	return c, nil
}
