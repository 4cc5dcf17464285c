package audit

import (
	"context"
	"fmt"
	"sort"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// ListAccounts returns the accounts the credential can read, sorted by ID.
// It doubles as the credential check: any transient failure or an empty
// list yields ErrInvalidCredential.
func (a *Auditor) ListAccounts(ctx context.Context) ([]Account, error) {
	var resp accountsResponse
	err := a.exec.Execute(ctx, querysvc.Request{Op: opAccounts, Query: accountsQuery}, &resp)
	if err != nil {
		if querysvc.IsFatalTrust(err) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	a.pageFetched(opAccounts)

	accounts := resp.Actor.Accounts
	if len(accounts) == 0 {
		return nil, ErrInvalidCredential
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	a.logger.Info("accounts resolved", "component", "accounts", "count", len(accounts))
	return accounts, nil
}
