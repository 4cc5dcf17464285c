package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/StacySimmons/logging-hosts/internal/config"
)

var forceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write the current settings (defaults, environment and flags) to the config
file. The API key is prompted for when stdin is a terminal and none is set.
The file is created with mode 0600.`,
	Example: `  logging-hosts config init --region eu
  logging-hosts config init --config ./config.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configViewCmd = &cobra.Command{
	Use:     "view",
	Short:   "Print the effective configuration with the API key redacted",
	Example: `  logging-hosts config view`,
	Args:    cobra.NoArgs,
	RunE:    runConfigView,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configViewCmd)
	configInitCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config file")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !forceFlag {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := runIntake(&cfg, viper.IsSet(config.KeyRegion), viper.GetString(config.KeyEndpoint) != ""); err != nil {
		return err
	}

	if err := config.WriteFile(path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("# %s\n", used)
	}
	fmt.Print(string(data))
	return nil
}
