package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/StacySimmons/logging-hosts/internal/output"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts visible to the API key",
	Long: `Resolve the accounts the API key can read. This is the first step of an
audit and a quick way to check that a key is valid.`,
	Example: `  logging-hosts accounts
  logging-hosts accounts -o json`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	defer writeMetrics(s.cfg, s.metrics)

	accounts, err := s.auditor.ListAccounts(s.ctx)
	if err != nil {
		return err
	}

	return s.write(func(w io.Writer, format output.Format) error {
		if format == output.FormatTable {
			return output.NewTableFormatterWithLabels([]string{"id", "name"}, map[string]string{"id": "ACCOUNT"}).Write(w, accounts)
		}
		return output.NewFormatter(format).Write(w, accounts)
	})
}
