package audit

import (
	"fmt"
	"strings"
	"time"
)

// Account is an account the credential can read.
type Account struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// HostRecord identifies a host. Reconciliation keys on Hostname only.
// Inventory records always carry a HostID; log-derived records never do.
type HostRecord struct {
	AccountID int    `json:"accountId" yaml:"accountId"`
	HostID    string `json:"hostId,omitempty" yaml:"hostId,omitempty"`
	Hostname  string `json:"hostname" yaml:"hostname"`
}

// LogWindow is one of the two trailing 24 hour windows.
type LogWindow int

const (
	// Day1 is the most recent 24 hours.
	Day1 LogWindow = iota + 1
	// Day2 is the 24 hours before Day1.
	Day2
)

// Windows lists both windows, newest first.
var Windows = []LogWindow{Day1, Day2}

func (w LogWindow) String() string {
	switch w {
	case Day1:
		return "day1"
	case Day2:
		return "day2"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// TimeClause returns the relative time expression the window corresponds to.
func (w LogWindow) TimeClause() string {
	switch w {
	case Day1:
		return "SINCE 1 day ago"
	case Day2:
		return "SINCE 2 days ago UNTIL 1 day ago"
	default:
		return ""
	}
}

// ParseLogWindow parses "day1" or "day2".
func ParseLogWindow(s string) (LogWindow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day1", "1", "today":
		return Day1, nil
	case "day2", "2", "yesterday":
		return Day2, nil
	default:
		return 0, fmt.Errorf("unknown log window %q (valid: day1, day2)", s)
	}
}

// Result holds the four reconciled host sets.
type Result struct {
	// InventoryOnly are inventory hosts that did not log in Day1.
	InventoryOnly []HostRecord `json:"inventoryOnly" yaml:"inventoryOnly"`
	// LogsOnly are Day1 log hosts missing from the inventory.
	LogsOnly []HostRecord `json:"logsOnly" yaml:"logsOnly"`
	// NewlyMissing logged in Day2 but not in Day1.
	NewlyMissing []HostRecord `json:"newlyMissing" yaml:"newlyMissing"`
	// NewlyAppeared logged in Day1 but not in Day2.
	NewlyAppeared []HostRecord `json:"newlyAppeared" yaml:"newlyAppeared"`
}

// Warning records a call or listing that contributed nothing or only part
// of its data.
type Warning struct {
	Op        string `json:"op" yaml:"op"`
	AccountID int    `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	Window    string `json:"window,omitempty" yaml:"window,omitempty"`
	Page      int    `json:"page,omitempty" yaml:"page,omitempty"`
	Message   string `json:"message" yaml:"message"`
}

// Report is the outcome of a full audit run.
type Report struct {
	RunID       string    `json:"runId" yaml:"runId"`
	Region      string    `json:"region" yaml:"region"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Accounts    []Account `json:"accounts" yaml:"accounts"`
	// InventoryCount is the number of inventory host records.
	InventoryCount int `json:"inventoryCount" yaml:"inventoryCount"`
	// Day1Count and Day2Count are distinct hostnames seen in each window.
	Day1Count int       `json:"day1Count" yaml:"day1Count"`
	Day2Count int       `json:"day2Count" yaml:"day2Count"`
	Result    Result    `json:"result" yaml:"result"`
	Warnings  []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
