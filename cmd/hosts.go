package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/output"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

var hostsAccountFlag int

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List inventory hosts",
	Long: `List the hosts registered in the infrastructure inventory, for every
visible account or for a single account.`,
	Example: `  # Every account
  logging-hosts hosts

  # One account as CSV
  logging-hosts hosts --account 1234567 -o csv`,
	Args: cobra.NoArgs,
	RunE: runHosts,
}

func init() {
	rootCmd.AddCommand(hostsCmd)
	hostsCmd.Flags().IntVar(&hostsAccountFlag, "account", 0, "Only list hosts of this account")
}

func runHosts(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	defer writeMetrics(s.cfg, s.metrics)

	var hosts []audit.HostRecord
	if hostsAccountFlag > 0 {
		hosts, err = s.auditor.ListInventoryHosts(s.ctx, hostsAccountFlag)
		if err = keepPartial(s, err); err != nil {
			return err
		}
	} else {
		accounts, err := s.auditor.ListAccounts(s.ctx)
		if err != nil {
			return err
		}
		var warnings []audit.Warning
		hosts, warnings, err = s.auditor.CollectInventory(s.ctx, accounts)
		if err != nil {
			return err
		}
		logWarnings(s, warnings)
	}

	return s.write(func(w io.Writer, format output.Format) error {
		return output.WriteHosts(w, format, hosts)
	})
}

// keepPartial logs a transient listing failure and lets the caller print
// the hosts collected before it. Any other error is returned.
func keepPartial(s *session, err error) error {
	var listErr *audit.ListError
	if err == nil || !errors.As(err, &listErr) || querysvc.IsFatalTrust(err) || s.ctx.Err() != nil {
		return err
	}
	s.logger.Warn("listing incomplete, printing partial result", "component", "cli", "error", err)
	return nil
}

func logWarnings(s *session, warnings []audit.Warning) {
	for _, w := range warnings {
		s.logger.Warn("listing incomplete", "component", "cli",
			"op", w.Op, "account_id", w.AccountID, "window", w.Window, "page", w.Page, "message", w.Message)
	}
}
