package audit

import (
	"context"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// ListLoggingHosts returns the hosts of one account that emitted log
// records in window. Records carry a hostname and no host ID.
//
// The aggregate query has no continuation token, so pages are chained by
// watermark: while a page comes back full, the next page asks for
// hostnames greater than the largest one seen. A short page ends the
// listing.
//
// On a failed page the hosts gathered so far are returned together with a
// *ListError. A watermark that does not advance yields a *StallError.
func (a *Auditor) ListLoggingHosts(ctx context.Context, accountID int, window LogWindow) ([]HostRecord, error) {
	logger := a.logger.With("component", "loghosts", "account_id", accountID, "window", window.String())
	limit := a.opts.LogPageSize

	hosts := make([]HostRecord, 0)
	watermark := ""

	for page := 1; ; page++ {
		if page > a.opts.MaxPages {
			return nil, &StallError{Op: opLogHosts, AccountID: accountID, Window: window, Page: page, Reason: "page limit exceeded"}
		}

		var resp logHostsResponse
		req := querysvc.Request{
			Op:    opLogHosts,
			Query: logHostsQuery,
			Variables: map[string]any{
				"accountId": accountID,
				"nrql":      logHostsNRQL(window, watermark, limit),
			},
		}
		if err := a.exec.Execute(ctx, req, &resp); err != nil {
			return hosts, &ListError{Op: opLogHosts, AccountID: accountID, Window: window, Page: page, Err: err}
		}
		a.pageFetched(opLogHosts)

		rows := resp.Actor.Account.NRQL.Results
		pageMax := ""
		for _, row := range rows {
			name := row.name()
			if name == "" {
				continue
			}
			hosts = append(hosts, HostRecord{AccountID: accountID, Hostname: name})
			if name > pageMax {
				pageMax = name
			}
		}
		logger.Debug("log host page fetched", "page", page, "rows", len(rows), "watermark", watermark)

		if len(rows) < limit {
			break
		}
		if pageMax <= watermark {
			return nil, &StallError{Op: opLogHosts, AccountID: accountID, Window: window, Page: page, Reason: "watermark did not advance"}
		}
		watermark = pageMax
	}

	logger.Info("log hosts listed", "hosts", len(hosts))
	return hosts, nil
}
