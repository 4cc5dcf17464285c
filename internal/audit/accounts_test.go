package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

func TestListAccountsSortsByID(t *testing.T) {
	exec := &fakeExecutor{handler: func(req querysvc.Request) (any, error) {
		assert.Equal(t, opAccounts, req.Op)
		return accountsPage(30, 10, 20), nil
	}}

	accounts, err := New(exec, Options{}).ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, 10, accounts[0].ID)
	assert.Equal(t, "acct-10", accounts[0].Name)
	assert.Equal(t, 30, accounts[2].ID)
}

func TestListAccountsEmptyIsInvalidCredential(t *testing.T) {
	exec := &fakeExecutor{handler: func(req querysvc.Request) (any, error) {
		return accountsPage(), nil
	}}

	accounts, err := New(exec, Options{}).ListAccounts(context.Background())
	assert.Empty(t, accounts)
	assert.True(t, errors.Is(err, ErrInvalidCredential))
}

func TestListAccountsNoDataIsInvalidCredential(t *testing.T) {
	exec := &fakeExecutor{handler: func(req querysvc.Request) (any, error) {
		return nil, transientErr(opAccounts)
	}}

	_, err := New(exec, Options{}).ListAccounts(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidCredential))
	assert.True(t, querysvc.IsTransient(err))
}

func TestListAccountsFatalTrustPropagates(t *testing.T) {
	exec := &fakeExecutor{handler: func(req querysvc.Request) (any, error) {
		return nil, fatalTrustErr(opAccounts)
	}}

	_, err := New(exec, Options{}).ListAccounts(context.Background())
	assert.True(t, querysvc.IsFatalTrust(err))
	assert.False(t, errors.Is(err, ErrInvalidCredential))
}
