package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/config"
	"github.com/StacySimmons/logging-hosts/internal/logx"
	"github.com/StacySimmons/logging-hosts/internal/metrics"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

const serviceName = "logging-hosts"

var (
	cfgFile    string
	verbose    bool
	appVersion = "dev"

	closeLogger = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "logging-hosts",
	Short: "Audit which inventory hosts are actually sending logs",
	Long: `logging-hosts compares the hosts registered in the infrastructure inventory
with the hosts that emitted log records in the last two 24 hour windows.

It reports hosts in inventory but silent in logs, hosts logging without an
inventory entry, and hosts whose logging stopped or started between the
two windows.`,
	Version:           "dev",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogger()
	},
}

// Execute runs the root command
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file path (default: ~/.config/logging-hosts/config.yaml)")
	flags.String(config.KeyAPIKey, "", "User API key for the query service")
	flags.StringP(config.KeyRegion, "r", querysvc.DefaultRegion, "Region of the account ("+strings.Join(querysvc.Regions(), ", ")+")")
	flags.String(config.KeyEndpoint, "", "Query service URL (overrides --region)")
	flags.Duration(config.KeyTimeout, 30*time.Second, "Timeout of a single query attempt")
	flags.Int(config.KeyWorkers, audit.DefaultWorkers, "Accounts queried concurrently")
	flags.Int(config.KeyLogPageSize, audit.DefaultLogPageSize, "Hostnames requested per log host page")
	flags.String(config.KeyCABundle, "", "PEM bundle of additional trusted CAs, e.g. an intercepting proxy")
	flags.Bool(config.KeyInsecureSkipVerify, false, "Disable TLS certificate verification (unsafe)")
	flags.StringP(config.KeyOutput, "o", "table", "Output format (table, json, yaml, csv)")
	flags.String(config.KeyOutputFile, "", "Write output to this file or directory instead of stdout")
	flags.String(config.KeyMetricsFile, "", "Write Prometheus metrics to this textfile after the run")
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, key := range []string{
		config.KeyAPIKey, config.KeyRegion, config.KeyEndpoint, config.KeyTimeout,
		config.KeyWorkers, config.KeyLogPageSize, config.KeyCABundle,
		config.KeyInsecureSkipVerify, config.KeyOutput, config.KeyOutputFile,
		config.KeyMetricsFile, config.KeyLogLevel,
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/logging-hosts")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("LOGGING_HOSTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg := logx.LoadConfig(serviceName)
	if cmd.Flags().Changed(config.KeyLogLevel) || viper.IsSet(config.KeyLogLevel) {
		cfg.Level = logx.ParseLevel(viper.GetString(config.KeyLogLevel))
	}
	if verbose {
		cfg.Level = slog.LevelDebug
	}

	_, closer, err := logx.Init(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	closeLogger = closer
	return nil
}

// loadConfig loads the configuration, asks for missing credentials on a
// terminal and validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	if err := runIntake(&cfg, viper.IsSet(config.KeyRegion), viper.GetString(config.KeyEndpoint) != ""); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// newQueryClient builds the query service client for cfg.
func newQueryClient(cfg config.Config, m *metrics.Metrics, logger *slog.Logger) (*querysvc.Client, error) {
	tlsCfg, err := querysvc.TLSConfig(querysvc.TLSOptions{
		CABundle:           cfg.CABundle,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled; traffic and the API key can be intercepted")
	}

	opts := []querysvc.Option{
		querysvc.WithAPIKey(cfg.APIKey),
		querysvc.WithTimeout(cfg.Timeout),
		querysvc.WithTLSConfig(tlsCfg),
		querysvc.WithUserAgent(serviceName + "/" + appVersion),
		querysvc.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, querysvc.WithObserver(m))
	}
	return querysvc.NewClient(cfg.Endpoint, opts...), nil
}

// newAuditor wires the configuration, client and metrics into an Auditor.
func newAuditor(ctx context.Context, cfg config.Config, m *metrics.Metrics) (*audit.Auditor, error) {
	logger := logx.LoggerWithRunID(ctx)
	client, err := newQueryClient(cfg, m, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("query client ready", "component", "cli", "endpoint", client.Endpoint())
	opts := audit.Options{
		Region:      cfg.Region,
		Workers:     cfg.Workers,
		LogPageSize: cfg.LogPageSize,
		RunID:       logx.RunIDFromContext(ctx),
		Logger:      logger,
	}
	if m != nil {
		opts.Pages = m
	}
	return audit.New(client, opts), nil
}

// writeMetrics writes the metrics textfile when one is configured.
func writeMetrics(cfg config.Config, m *metrics.Metrics) {
	if cfg.MetricsFile == "" || m == nil {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		slog.Error("failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		return
	}
	slog.Debug("metrics written", "path", cfg.MetricsFile)
}
