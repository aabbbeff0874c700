// Package ledger holds per-symbol supply records and per-account
// balance records, and implements the issuance and transfer primitives
// every other component settles through.
package ledger

import (
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

// MemoMaxLength bounds the free-text memo on issue and transfer.
const MemoMaxLength = 256

var (
	logger = log.WithContext("pkg", "ledger")

	supplies = table.New[SupplyRecord]("supplies")
	balances = table.New[BalanceRecord]("balances")
)

// Ledger binds the supply and balance tables to a mutation scope.
type Ledger struct {
	st       *state.State
	params   *params.Params
	accounts AccountIndex
}

// New creates an instance bound to st.
func New(st *state.State, p *params.Params, accounts AccountIndex) *Ledger {
	return &Ledger{st: st, params: p, accounts: accounts}
}

// CreateSymbol registers a new symbol with its issuer and supply cap.
// Only the contract's own authority may call it.
func (l *Ledger) CreateSymbol(caller authz.Caller, issuer trybe.Name, maxSupply trybe.Asset) error {
	owner, err := l.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	if !maxSupply.Valid() || maxSupply.Amount <= 0 {
		return reverts.New(reverts.InvalidQuantity, "invalid maximum supply")
	}

	existing, err := supplies.Has(l.st, maxSupply.Symbol)
	if err != nil {
		return err
	}
	if existing {
		return reverts.New(reverts.AlreadyExists, "token with symbol already exists")
	}

	record := SupplyRecord{
		Supply:    trybe.NewAsset(0, maxSupply.Symbol),
		MaxSupply: maxSupply,
		Issuer:    issuer,
	}
	if err := supplies.Set(l.st, &record, maxSupply.Symbol); err != nil {
		return err
	}
	logger.WithField("symbol", maxSupply.Symbol.Code).Info("created symbol")
	return nil
}

// Claim creates an empty balance row for the caller so the row's
// resource cost lands on the claimer rather than a later counterparty.
func (l *Ledger) Claim(caller authz.Caller, claimer trybe.Name) error {
	if err := caller.RequireAuth(claimer); err != nil {
		return err
	}

	existing, err := balances.Has(l.st, claimer, trybe.TRYBE)
	if err != nil {
		return err
	}
	if existing {
		return reverts.New(reverts.AlreadyClaimed, "user already has a balance")
	}

	empty := BalanceRecord{Balance: trybe.NewAsset(0, trybe.TRYBE)}
	return balances.Set(l.st, &empty, claimer, trybe.TRYBE)
}

// Issue mints quantity against the symbol's supply record. The issuance
// always credits the issuer's own balance first; when to differs, the
// quantity is then moved by an internal transfer under the issuer's
// authority. The two-step effect is deliberate and kept for the audit
// trail it leaves.
func (l *Ledger) Issue(caller authz.Caller, to trybe.Name, quantity trybe.Asset, memo string) error {
	if !quantity.Symbol.Valid() {
		return reverts.New(reverts.InvalidQuantity, "invalid symbol name")
	}
	if len(memo) > MemoMaxLength {
		return reverts.New(reverts.MemoTooLong, "memo has more than 256 bytes")
	}

	record, err := supplies.Get(l.st, quantity.Symbol)
	if err != nil {
		return err
	}
	if record == nil {
		return reverts.New(reverts.NotFound, "token with symbol does not exist, create token before issue")
	}
	if err := caller.RequireAuth(record.Issuer); err != nil {
		return err
	}
	if !quantity.Valid() || quantity.Amount <= 0 {
		return reverts.New(reverts.InvalidQuantity, "must issue positive quantity")
	}
	if !quantity.Symbol.Equal(record.Supply.Symbol) {
		return reverts.New(reverts.PrecisionMismatch, "symbol precision mismatch")
	}
	if quantity.Amount > record.Available() {
		return reverts.New(reverts.SupplyExceeded, "quantity exceeds available supply")
	}

	record.Supply = record.Supply.Add(quantity)
	if err := supplies.Set(l.st, record, quantity.Symbol); err != nil {
		return err
	}
	if err := l.AddBalance(record.Issuer, quantity, record.Issuer); err != nil {
		return err
	}

	if to != record.Issuer {
		if err := l.Transfer(authz.Active(record.Issuer), record.Issuer, to, quantity, memo); err != nil {
			return err
		}
	}
	logger.WithField("to", to).WithField("quantity", quantity.String()).Info("issued")
	return nil
}

// Transfer moves quantity from one spendable balance to another within
// a single mutation scope: either both sides land or neither does.
func (l *Ledger) Transfer(caller authz.Caller, from, to trybe.Name, quantity trybe.Asset, memo string) error {
	if from == to {
		return reverts.New(reverts.SelfTransfer, "cannot transfer to self")
	}
	if err := caller.RequireAuth(from); err != nil {
		return err
	}
	exists, err := l.accounts.Exists(to)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.New(reverts.UnknownAccount, "to account does not exist")
	}

	record, err := supplies.Get(l.st, quantity.Symbol)
	if err != nil {
		return err
	}
	if record == nil {
		return reverts.New(reverts.NotFound, "token with symbol does not exist")
	}
	if !quantity.Valid() || quantity.Amount <= 0 {
		return reverts.New(reverts.InvalidQuantity, "must transfer positive quantity")
	}
	if !quantity.Symbol.Equal(record.Supply.Symbol) {
		return reverts.New(reverts.PrecisionMismatch, "symbol precision mismatch")
	}
	if len(memo) > MemoMaxLength {
		return reverts.New(reverts.MemoTooLong, "memo has more than 256 bytes")
	}

	if err := l.SubBalance(from, quantity); err != nil {
		return err
	}
	return l.AddBalance(to, quantity, from)
}

// SubBalance debits owner, deleting the row when it reaches exactly
// zero so no zero-balance rows persist.
func (l *Ledger) SubBalance(owner trybe.Name, value trybe.Asset) error {
	record, err := balances.Get(l.st, owner, value.Symbol)
	if err != nil {
		return err
	}
	if record == nil {
		return reverts.New(reverts.NotFound, "no balance object found")
	}
	if record.Balance.Amount < value.Amount {
		return reverts.New(reverts.Overdrawn, "overdrawn balance")
	}

	if record.Balance.Amount == value.Amount {
		balances.Delete(l.st, owner, value.Symbol)
		return nil
	}
	record.Balance = record.Balance.Sub(value)
	return balances.Set(l.st, record, owner, value.Symbol)
}

// AddBalance credits owner, creating the row on first credit. The payer
// names whose resource allocation a newly created row is charged to;
// the ledger records it for parity with the host model but the charge
// itself is the host's concern.
func (l *Ledger) AddBalance(owner trybe.Name, value trybe.Asset, payer trybe.Name) error {
	_ = payer

	record, err := balances.Get(l.st, owner, value.Symbol)
	if err != nil {
		return err
	}
	if record == nil {
		created := BalanceRecord{Balance: value}
		return balances.Set(l.st, &created, owner, value.Symbol)
	}
	record.Balance = record.Balance.Add(value)
	return balances.Set(l.st, record, owner, value.Symbol)
}

// GetSupply returns the supply record for a symbol, or nil when the
// symbol was never created.
func (l *Ledger) GetSupply(symbol trybe.Symbol) (*SupplyRecord, error) {
	return supplies.Get(l.st, symbol)
}

// GetBalance returns the spendable balance of (owner, symbol); a zero
// asset when no row exists.
func (l *Ledger) GetBalance(owner trybe.Name, symbol trybe.Symbol) (trybe.Asset, error) {
	record, err := balances.Get(l.st, owner, symbol)
	if err != nil {
		return trybe.Asset{}, err
	}
	if record == nil {
		return trybe.NewAsset(0, symbol), nil
	}
	return record.Balance, nil
}

// HasBalanceRow reports whether a balance row exists, zero-valued or
// not. Claim's empty row makes this distinct from a zero GetBalance.
func (l *Ledger) HasBalanceRow(owner trybe.Name, symbol trybe.Symbol) (bool, error) {
	return balances.Has(l.st, owner, symbol)
}

// IterateBalances walks every balance row of the symbol.
func (l *Ledger) IterateBalances(symbol trybe.Symbol, fn func(owner trybe.Name, balance trybe.Asset) (bool, error)) error {
	return balances.Iterate(l.st, func(key []byte, record *BalanceRecord) (bool, error) {
		if !record.Balance.Symbol.Equal(symbol) {
			return true, nil
		}
		owner := ownerFromBalanceKey(key)
		return fn(owner, record.Balance)
	})
}

// ownerFromBalanceKey strips the trailing "/SYMBOL" key part.
func ownerFromBalanceKey(key []byte) trybe.Name {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return trybe.Name(key[:i])
		}
	}
	return trybe.Name(key)
}
