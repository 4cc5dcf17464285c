package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/output"
)

var (
	logHostsAccountFlag int
	logHostsWindowFlag  string
)

var logHostsCmd = &cobra.Command{
	Use:   "log-hosts --account <id>",
	Short: "List hosts that sent logs in a time window",
	Long: `List the distinct hostnames found in the log records of one account.

Windows:
  day1  the last 24 hours
  day2  the 24 hours before that`,
	Example: `  logging-hosts log-hosts --account 1234567
  logging-hosts log-hosts --account 1234567 --window day2 -o json`,
	Args: cobra.NoArgs,
	RunE: runLogHosts,
}

func init() {
	rootCmd.AddCommand(logHostsCmd)
	logHostsCmd.Flags().IntVar(&logHostsAccountFlag, "account", 0, "Account to query (required)")
	logHostsCmd.Flags().StringVar(&logHostsWindowFlag, "window", "day1", "Time window (day1, day2)")
	logHostsCmd.MarkFlagRequired("account")
}

func runLogHosts(cmd *cobra.Command, args []string) error {
	if logHostsAccountFlag <= 0 {
		return fmt.Errorf("--account must be a positive account id")
	}
	window, err := audit.ParseLogWindow(logHostsWindowFlag)
	if err != nil {
		return err
	}

	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	defer writeMetrics(s.cfg, s.metrics)

	hosts, err := s.auditor.ListLoggingHosts(s.ctx, logHostsAccountFlag, window)
	if err = keepPartial(s, err); err != nil {
		return err
	}

	return s.write(func(w io.Writer, format output.Format) error {
		return output.WriteHosts(w, format, hosts)
	})
}
