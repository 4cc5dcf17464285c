package audit

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// listing is the independent outcome of one account-scoped listing.
type listing struct {
	hosts   []HostRecord
	warning *Warning
}

// CollectInventory lists the inventory hosts of every account through the
// worker pool. Failed or stalled listings become warnings; only a fatal
// trust failure is returned as an error.
func (a *Auditor) CollectInventory(ctx context.Context, accounts []Account) ([]HostRecord, []Warning, error) {
	outcomes := make([]listing, len(accounts))

	err := forEach(ctx, a.opts.Workers, len(accounts), func(ctx context.Context, i int) error {
		hosts, err := a.ListInventoryHosts(ctx, accounts[i].ID)
		if err != nil {
			if querysvc.IsFatalTrust(err) {
				return err
			}
			a.logger.Warn("inventory listing incomplete", "component", "inventory", "account_id", accounts[i].ID, "error", err)
			w := warningFor(opInventoryHosts, accounts[i].ID, 0, err)
			outcomes[i] = listing{hosts: hosts, warning: &w}
			return nil
		}
		outcomes[i] = listing{hosts: hosts}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	hosts, warnings := merge(outcomes)
	return hosts, warnings, nil
}

// CollectLogHosts lists the log hosts of every account for each window
// through the worker pool.
func (a *Auditor) CollectLogHosts(ctx context.Context, accountIDs []int, windows ...LogWindow) (map[LogWindow][]HostRecord, []Warning, error) {
	type task struct {
		accountID int
		window    LogWindow
	}
	tasks := make([]task, 0, len(accountIDs)*len(windows))
	for _, w := range windows {
		for _, id := range accountIDs {
			tasks = append(tasks, task{accountID: id, window: w})
		}
	}
	outcomes := make([]listing, len(tasks))

	err := forEach(ctx, a.opts.Workers, len(tasks), func(ctx context.Context, i int) error {
		t := tasks[i]
		hosts, err := a.ListLoggingHosts(ctx, t.accountID, t.window)
		if err != nil {
			if querysvc.IsFatalTrust(err) {
				return err
			}
			a.logger.Warn("log host listing incomplete", "component", "loghosts", "account_id", t.accountID, "window", t.window.String(), "error", err)
			w := warningFor(opLogHosts, t.accountID, t.window, err)
			outcomes[i] = listing{hosts: hosts, warning: &w}
			return nil
		}
		outcomes[i] = listing{hosts: hosts}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	byWindow := make(map[LogWindow][]HostRecord, len(windows))
	for _, w := range windows {
		byWindow[w] = make([]HostRecord, 0)
	}
	var warnings []Warning
	for i, o := range outcomes {
		byWindow[tasks[i].window] = append(byWindow[tasks[i].window], o.hosts...)
		if o.warning != nil {
			warnings = append(warnings, *o.warning)
		}
	}
	return byWindow, warnings, nil
}

// Run performs a full audit: accounts, inventory, both log windows for
// every account with inventory hosts, then reconciliation.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	started := a.opts.Now().UTC()
	// A caller supplied run ID is expected to be on the logger already.
	runID := a.opts.RunID
	logger := a.logger
	if runID == "" {
		runID = uuid.NewString()
		logger = logger.With("run_id", runID)
	}

	accounts, err := a.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	inventory, warnings, err := a.CollectInventory(ctx, accounts)
	if err != nil {
		return nil, err
	}
	logger.Info("inventory collected", "component", "audit", "hosts", len(inventory), "accounts", len(accounts))

	ids := accountsWithHosts(inventory)
	logHosts, logWarnings, err := a.CollectLogHosts(ctx, ids, Windows...)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, logWarnings...)
	day1Count := distinctHostnames(logHosts[Day1])
	day2Count := distinctHostnames(logHosts[Day2])
	logger.Info("log hosts collected", "component", "audit",
		"accounts", len(ids), "day1", day1Count, "day2", day2Count)

	result := Reconcile(inventory, logHosts[Day1], logHosts[Day2])
	logger.Info("reconciled", "component", "audit",
		"inventory_only", len(result.InventoryOnly),
		"logs_only", len(result.LogsOnly),
		"newly_missing", len(result.NewlyMissing),
		"newly_appeared", len(result.NewlyAppeared),
		"warnings", len(warnings))

	return &Report{
		RunID:          runID,
		Region:         a.opts.Region,
		GeneratedAt:    started,
		Accounts:       accounts,
		InventoryCount: len(inventory),
		Day1Count:      day1Count,
		Day2Count:      day2Count,
		Result:         result,
		Warnings:       warnings,
	}, nil
}

func merge(outcomes []listing) ([]HostRecord, []Warning) {
	hosts := make([]HostRecord, 0)
	var warnings []Warning
	for _, o := range outcomes {
		hosts = append(hosts, o.hosts...)
		if o.warning != nil {
			warnings = append(warnings, *o.warning)
		}
	}
	return hosts, warnings
}

// distinctHostnames counts hostnames the way Reconcile matches them.
func distinctHostnames(hosts []HostRecord) int {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[h.Hostname] = struct{}{}
	}
	return len(set)
}

// accountsWithHosts returns the sorted IDs of accounts owning at least one
// host.
func accountsWithHosts(hosts []HostRecord) []int {
	set := make(map[int]struct{})
	for _, h := range hosts {
		set[h.AccountID] = struct{}{}
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func warningFor(op string, accountID int, window LogWindow, err error) Warning {
	w := Warning{Op: op, AccountID: accountID, Message: err.Error()}
	if window != 0 {
		w.Window = window.String()
	}

	var stall *StallError
	var listErr *ListError
	switch {
	case errors.As(err, &stall):
		w.Page = stall.Page
	case errors.As(err, &listErr):
		w.Page = listErr.Page
	}
	return w
}
