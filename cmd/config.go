package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"club-incentives/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Manage incentives directors, failure report recipients and the shared
incentives mailbox in the configuration file.

Examples:
  club-incentives config list directors
  club-incentives config add director --code CGD --name "Jane Doe" --title "Club Growth Director" --email "cgd@example.org"
  club-incentives config add failure-recipient --key ops --name "Ops" --email "ops@example.org"
  club-incentives config set shared-mailbox incentives@example.org`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUpdateCmd)
	configCmd.AddCommand(configSetCmd)
}

func loadedConfig() (*config.Config, error) {
	c := GetConfig()
	if c == nil {
		return nil, fmt.Errorf("config file not found. Run 'club-incentives setup' first")
	}
	return c, nil
}

// --- ADD command ---

var (
	addCode  string
	addKey   string
	addName  string
	addTitle string
	addEmail string
)

var configAddCmd = &cobra.Command{
	Use:   "add [director|failure-recipient]",
	Short: "Add a new config entry",
	Long: `Add an incentives director or a failure report recipient.

Examples:
  club-incentives config add director --code PQD --name "John Roe" --title "Program Quality Director" --email "pqd@example.org"
  club-incentives config add failure-recipient --key ops --name "Ops" --email "ops@example.org"`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addCode, "code", "", "Incentive code for a director (CGD or PQD)")
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Unique key for a failure recipient")
	configAddCmd.Flags().StringVar(&addName, "name", "", "Display name (required)")
	configAddCmd.Flags().StringVar(&addTitle, "title", "", "Director title shown in the email signature")
	configAddCmd.Flags().StringVar(&addEmail, "email", "", "Email address (required)")
	configAddCmd.MarkFlagRequired("name")
	configAddCmd.MarkFlagRequired("email")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	key := addKey
	if args[0] == "director" {
		key = addCode
	}
	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], key, addName, addTitle, addEmail, DefaultOutput)
}

// RunConfigAddWithDependencies runs the add command with injected dependencies.
// For directors key is the incentive code.
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType, key, name, title, email string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "director":
		if key == "" {
			return fmt.Errorf("--code is required for directors")
		}
		if err := mgr.AddDirector(key, name, title, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added director %s: %s <%s>\n", key, name, email)

	case "failure-recipient":
		if key == "" {
			return fmt.Errorf("--key is required for failure recipients")
		}
		if err := mgr.AddFailureRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added failure recipient %q: %s <%s>\n", key, name, email)

	default:
		return fmt.Errorf("unknown entity type %q. Use director or failure-recipient", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [directors|failure-recipients]",
	Short: "List config entries",
	Long: `List the incentives directors or the failure report recipients.

Examples:
  club-incentives config list directors
  club-incentives config list failure-recipients`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch entityType {
	case "directors":
		directors := mgr.ListDirectors()
		if len(directors) == 0 {
			fmt.Fprintln(out, "No directors configured.")
			return nil
		}
		fmt.Fprintln(w, "CODE\tNAME\tTITLE\tEMAIL")
		for _, d := range directors {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Code, d.Name, d.Title, d.Address)
		}
		if cfg.Incentives.SharedMailbox != "" {
			fmt.Fprintf(w, "\nShared mailbox:\t%s\n", cfg.Incentives.SharedMailbox)
		}

	case "failure-recipients":
		recipients := mgr.ListFailureRecipients()
		if len(recipients) == 0 {
			fmt.Fprintln(out, "No failure recipients configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL")
		for _, r := range recipients {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Key, r.Name, r.Address)
		}

	default:
		return fmt.Errorf("unknown entity type %q. Use directors or failure-recipients", entityType)
	}

	return w.Flush()
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [director|failure-recipient] <code-or-key>",
	Short: "Remove a config entry",
	Long: `Remove an incentives director or a failure report recipient.

Examples:
  club-incentives config remove director PQD
  club-incentives config remove failure-recipient ops`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "director":
		if err := mgr.RemoveDirector(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed director %s\n", key)

	case "failure-recipient":
		if err := mgr.RemoveFailureRecipient(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed failure recipient %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use director or failure-recipient", entityType)
	}

	return nil
}

// --- UPDATE command ---

var (
	updateName  string
	updateTitle string
	updateEmail string
)

var configUpdateCmd = &cobra.Command{
	Use:   "update [director|failure-recipient] <code-or-key>",
	Short: "Update a config entry",
	Long: `Update an existing director or failure report recipient.

Examples:
  club-incentives config update director CGD --email "new-cgd@example.org"
  club-incentives config update failure-recipient ops --name "Operations"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigUpdate,
}

func init() {
	configUpdateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	configUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "New director title")
	configUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email address")
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}

	if updateName == "" && updateTitle == "" && updateEmail == "" {
		return fmt.Errorf("at least one of --name, --title or --email is required")
	}

	return RunConfigUpdateWithDependencies(cfg, cfgFile, args[0], args[1], updateName, updateTitle, updateEmail, DefaultOutput)
}

// RunConfigUpdateWithDependencies runs the update command with injected dependencies
func RunConfigUpdateWithDependencies(cfg *config.Config, configPath, entityType, key, name, title, email string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "director":
		if err := mgr.UpdateDirector(key, name, title, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated director %s\n", key)

	case "failure-recipient":
		if title != "" {
			return fmt.Errorf("--title only applies to directors")
		}
		if err := mgr.UpdateFailureRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated failure recipient %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use director or failure-recipient", entityType)
	}

	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set shared-mailbox <email>",
	Short: "Set a single config value",
	Long: `Set the shared incentives mailbox copied on every certificate email.

Example:
  club-incentives config set shared-mailbox incentives@example.org`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(cfg *config.Config, configPath, setting, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch setting {
	case "shared-mailbox":
		if err := mgr.SetSharedMailbox(value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Shared mailbox set to %s\n", value)
	default:
		return fmt.Errorf("unknown setting %q. Use shared-mailbox", setting)
	}
	return nil
}
