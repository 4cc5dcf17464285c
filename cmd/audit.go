package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/config"
	"github.com/StacySimmons/logging-hosts/internal/logx"
	"github.com/StacySimmons/logging-hosts/internal/metrics"
	"github.com/StacySimmons/logging-hosts/internal/output"
)

var runIDFlag string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare inventory hosts with hosts that sent logs",
	Long: `Run a full audit: resolve the accounts visible to the API key, list every
inventory host, list the hosts that logged in the last 24 hours (day1) and in
the 24 hours before that (day2), and report the differences.

A failure limited to one account or window is reported as a warning and the
audit continues with the data collected so far. An invalid API key or an
untrusted TLS certificate stops the audit.`,
	Example: `  # Audit with the key from the environment
  LOGGING_HOSTS_API_KEY=NRAK-... logging-hosts audit

  # EU region, JSON report written into a directory
  logging-hosts audit --region eu -o json --output-file ./reports

  # Behind an intercepting proxy
  logging-hosts audit --ca-bundle /etc/ssl/corp-root.pem`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&runIDFlag, "run-id", "", "UUID identifying this run (generated when empty or invalid)")
}

// session is what every query command needs before it talks to the service.
type session struct {
	ctx     context.Context
	cfg     config.Config
	metrics *metrics.Metrics
	auditor *audit.Auditor
	logger  *slog.Logger
}

func newSession(cmd *cobra.Command, runID string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ctx := logx.WithRunID(cmd.Context(), logx.NormalizeRunID(runID))
	logger := logx.LoggerWithRunID(ctx)
	logger.Debug("configuration loaded", "component", "cli",
		"region", cfg.Region, "workers", cfg.Workers)

	m := metrics.NewMetrics()
	a, err := newAuditor(ctx, cfg, m)
	if err != nil {
		return nil, err
	}
	return &session{ctx: ctx, cfg: cfg, metrics: m, auditor: a, logger: logger}, nil
}

// write sends the output of fn to stdout or to the configured output file.
func (s *session) write(fn func(w io.Writer, format output.Format) error) error {
	format := output.ParseFormat(s.cfg.Output)
	sink, name, err := output.OpenSink(s.cfg.OutputFile, s.cfg.Region, format, time.Now())
	if err != nil {
		return err
	}
	werr := fn(sink, format)
	if cerr := sink.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("failed to write output: %w", werr)
	}
	if name != "" {
		s.logger.Info("output written", "component", "cli", "path", name)
	}
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, runIDFlag)
	if err != nil {
		return err
	}
	defer writeMetrics(s.cfg, s.metrics)

	report, err := s.auditor.Run(s.ctx)
	if err != nil {
		return err
	}
	s.metrics.ObserveReport(report)

	return s.write(func(w io.Writer, format output.Format) error {
		return output.WriteReport(w, format, report)
	})
}
