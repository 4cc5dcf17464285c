package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/StacySimmons/logging-hosts/internal/audit"
)

var hostFields = []string{"hostname", "accountId", "hostId"}

var hostLabels = map[string]string{
	"hostname":  "HOSTNAME",
	"accountId": "ACCOUNT",
	"hostId":    "HOST ID",
}

// WriteReport writes r to w in the given format
func WriteReport(w io.Writer, format Format, r *audit.Report) error {
	if format != FormatTable {
		return NewFormatter(format).Write(w, r)
	}

	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Region:    %s\n", r.Region)
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Accounts: %d  Inventory hosts: %d  Log hosts day1: %d  day2: %d\n",
		len(r.Accounts), r.InventoryCount, r.Day1Count, r.Day2Count)

	hosts := NewTableFormatterWithLabels(hostFields, hostLabels)
	for _, s := range resultSets(r.Result) {
		fmt.Fprintf(w, "\n%s (%d)\n", s.title, len(s.hosts))
		if err := hosts.Write(w, s.hosts); err != nil {
			return err
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d)\n", len(r.Warnings))
		return NewTableFormatter([]string{"op", "accountId", "window", "page", "message"}).Write(w, r.Warnings)
	}
	return nil
}

// WriteHosts writes a host listing in the given format
func WriteHosts(w io.Writer, format Format, hosts []audit.HostRecord) error {
	if format == FormatTable {
		return NewTableFormatterWithLabels(hostFields, hostLabels).Write(w, hosts)
	}
	return NewFormatter(format).Write(w, hosts)
}

// ReportFileName is the default file name of a report
func ReportFileName(region string, format Format, at time.Time) string {
	return fmt.Sprintf("logging-hosts-%s-%s.%s", region, at.UTC().Format("20060102T150405Z"), format.Extension())
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenSink returns the writer the report goes to: stdout when path is
// empty, a generated file name when path is a directory, path otherwise.
// The returned name is empty for stdout.
func OpenSink(path, region string, format Format, at time.Time) (io.WriteCloser, string, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, "", nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ReportFileName(region, format, at))
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file: %w", err)
	}
	return f, path, nil
}
