package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/StacySimmons/logging-hosts/internal/audit"
)

var csvHeader = []string{"set", "accountId", "hostId", "hostname"}

// CSVFormatter writes host records as CSV rows tagged with their set
type CSVFormatter struct{}

// Write accepts a report, a result or a slice of host records
func (f *CSVFormatter) Write(w io.Writer, data interface{}) error {
	var sets []hostSet
	switch v := data.(type) {
	case *audit.Report:
		sets = resultSets(v.Result)
	case audit.Result:
		sets = resultSets(v)
	case []audit.HostRecord:
		sets = []hostSet{{name: "hosts", hosts: v}}
	default:
		return fmt.Errorf("csv output is not supported for %T", data)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range sets {
		for _, h := range s.hosts {
			if err := cw.Write([]string{s.name, strconv.Itoa(h.AccountID), h.HostID, h.Hostname}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type hostSet struct {
	name  string
	title string
	hosts []audit.HostRecord
}

func resultSets(r audit.Result) []hostSet {
	return []hostSet{
		{name: "inventoryOnly", title: "In inventory, no logs (day1)", hosts: r.InventoryOnly},
		{name: "logsOnly", title: "Logging, not in inventory (day1)", hosts: r.LogsOnly},
		{name: "newlyMissing", title: "Logged day2, silent day1", hosts: r.NewlyMissing},
		{name: "newlyAppeared", title: "Logged day1, silent day2", hosts: r.NewlyAppeared},
	}
}
