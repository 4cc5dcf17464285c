package audit

import (
	"context"
	"strings"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// ListInventoryHosts pages through the inventory host entities of one
// account, following the server cursor until a page carries none.
//
// Entities without an identifier or a hostname are dropped. Records are not
// deduplicated; duplicates across pages are only logged.
//
// On a failed page the hosts gathered so far are returned together with a
// *ListError. If the cursor or the page content repeats, the listing is
// abandoned with a *StallError and no hosts.
func (a *Auditor) ListInventoryHosts(ctx context.Context, accountID int) ([]HostRecord, error) {
	logger := a.logger.With("component", "inventory", "account_id", accountID)

	var (
		hosts    []HostRecord
		cursor   string
		previous string
		seen     = make(map[string]struct{})
		dupes    int
		unnamed  int
	)

	for page := 1; ; page++ {
		if page > a.opts.MaxPages {
			return nil, &StallError{Op: opInventoryHosts, AccountID: accountID, Page: page, Reason: "page limit exceeded"}
		}

		var resp entitySearchResponse
		req := querysvc.Request{
			Op:        opInventoryHosts,
			Query:     inventoryHostsQuery,
			Variables: inventoryVariables(accountID, cursor),
		}
		if err := a.exec.Execute(ctx, req, &resp); err != nil {
			return hosts, &ListError{Op: opInventoryHosts, AccountID: accountID, Page: page, Err: err}
		}
		a.pageFetched(opInventoryHosts)

		search := resp.Actor.EntitySearch
		entities := search.Results.Entities
		if page == 1 {
			logger.Info("inventory listing started", "total", search.Count)
		}

		fingerprint := pageFingerprint(entities)
		if page > 1 && len(entities) > 0 && fingerprint == previous {
			return nil, &StallError{Op: opInventoryHosts, AccountID: accountID, Page: page, Reason: "page repeated previous content"}
		}
		previous = fingerprint

		for _, e := range entities {
			if e.GUID == "" {
				continue
			}
			if strings.TrimSpace(e.Name) == "" {
				unnamed++
				continue
			}
			if _, ok := seen[e.GUID]; ok {
				dupes++
			}
			seen[e.GUID] = struct{}{}

			owner := e.AccountID
			if owner == 0 {
				owner = accountID
			}
			hosts = append(hosts, HostRecord{AccountID: owner, HostID: e.GUID, Hostname: e.Name})
		}
		logger.Debug("inventory page fetched", "page", page, "entities", len(entities), "hosts", len(hosts), "total", search.Count)

		next := ""
		if search.Results.NextCursor != nil {
			next = *search.Results.NextCursor
		}
		if next == "" {
			break
		}
		if next == cursor {
			return nil, &StallError{Op: opInventoryHosts, AccountID: accountID, Page: page, Reason: "cursor repeated"}
		}
		cursor = next
	}

	if unnamed > 0 {
		logger.Warn("inventory listing skipped entities without a hostname", "skipped", unnamed)
	}
	if dupes > 0 {
		logger.Warn("inventory listing returned duplicate entities across pages", "duplicates", dupes)
	}
	return hosts, nil
}

func pageFingerprint(entities []entity) string {
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.GUID + "/" + e.Name
	}
	return strings.Join(ids, "\x00")
}
