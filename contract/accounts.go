package contract

import (
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

// The host chain owns account creation; the contract keeps a local
// roster so counterparty-existence checks have something to ask.
var accounts = table.New[AccountRecord]("accounts")

// AccountRecord marks a known host account.
type AccountRecord struct {
	Registered uint64
}

type accountIndex struct {
	st *state.State
}

// Exists implements ledger.AccountIndex.
func (a *accountIndex) Exists(name trybe.Name) (bool, error) {
	return accounts.Has(a.st, name)
}

func (a *accountIndex) register(name trybe.Name, now uint64) error {
	if !name.Valid() {
		return reverts.New(reverts.UnknownAccount, "invalid account name")
	}
	existing, err := accounts.Has(a.st, name)
	if err != nil {
		return err
	}
	if existing {
		return reverts.New(reverts.AlreadyExists, "account already registered")
	}
	return accounts.Set(a.st, &AccountRecord{Registered: now}, name)
}

// RegisterAccount adds a host account to the local roster. Owner only.
func (c *Contract) RegisterAccount(caller authz.Caller, name trybe.Name) error {
	return c.run("registeraccount", func(e *env) error {
		owner, err := e.params.Owner()
		if err != nil {
			return err
		}
		if err := caller.RequireAuth(owner); err != nil {
			return err
		}
		return e.accounts.register(name, c.clock())
	})
}

// HasAccount reports whether name is on the roster.
func (c *Contract) HasAccount(name trybe.Name) (exists bool, err error) {
	err = c.view(func(e *env) error {
		exists, err = e.accounts.Exists(name)
		return err
	})
	return
}
