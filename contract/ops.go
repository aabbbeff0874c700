package contract

import (
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/ledger"
	"github.com/trybenetwork/trybe/presale"
	"github.com/trybenetwork/trybe/prices"
	"github.com/trybenetwork/trybe/registry"
	"github.com/trybenetwork/trybe/staking"
	"github.com/trybenetwork/trybe/trybe"
)

// CreateSymbol registers a new token symbol with its issuer and cap.
func (c *Contract) CreateSymbol(caller authz.Caller, issuer trybe.Name, maxSupply trybe.Asset) error {
	return c.run("create", func(e *env) error {
		return e.ledger.CreateSymbol(caller, issuer, maxSupply)
	})
}

// Claim opens an empty TRYBE balance row for claimer.
func (c *Contract) Claim(caller authz.Caller, claimer trybe.Name) error {
	return c.run("claim", func(e *env) error {
		return e.ledger.Claim(caller, claimer)
	})
}

// Issue mints quantity to the issuer, then moves it to to when they
// differ.
func (c *Contract) Issue(caller authz.Caller, to trybe.Name, quantity trybe.Asset, memo string) error {
	return c.run("issue", func(e *env) error {
		return e.ledger.Issue(caller, to, quantity, memo)
	})
}

// Transfer moves quantity between spendable balances.
func (c *Contract) Transfer(caller authz.Caller, from, to trybe.Name, quantity trybe.Asset, memo string) error {
	return c.run("transfer", func(e *env) error {
		return e.ledger.Transfer(caller, from, to, quantity, memo)
	})
}

// Stake locks quantity of from's TRYBE under to's scope.
func (c *Contract) Stake(caller authz.Caller, from, to trybe.Name, quantity trybe.Asset, attributeToDelegate bool) error {
	return c.run("stake", func(e *env) error {
		return e.staking.Stake(caller, from, to, quantity, attributeToDelegate, c.clock())
	})
}

// Unstake releases quantity of owner's stake into a pending refund.
func (c *Contract) Unstake(caller authz.Caller, owner, receiver trybe.Name, quantity trybe.Asset) error {
	return c.run("unstake", func(e *env) error {
		return e.staking.Unstake(caller, owner, receiver, quantity, c.clock())
	})
}

// RefundClaim settles owner's matured refund.
func (c *Contract) RefundClaim(caller authz.Caller, owner trybe.Name, settle bool) error {
	return c.run("refund", func(e *env) error {
		return e.staking.RefundClaim(caller, owner, settle, c.clock())
	})
}

// RegisterFounder adds founder to the founder tier.
func (c *Contract) RegisterFounder(caller authz.Caller, founder trybe.Name) error {
	return c.run("addfounder", func(e *env) error {
		return e.staking.RegisterFounder(caller, founder, c.clock())
	})
}

// SetPrices upserts price quotes for a batch of symbols.
func (c *Contract) SetPrices(caller authz.Caller, symbols []trybe.Symbol, eosPrices, usdPrices []float64) error {
	return c.run("seteostoken", func(e *env) error {
		return e.prices.SetPrices(caller, symbols, eosPrices, usdPrices)
	})
}

// SetupPresale creates or resizes the presale allocation.
func (c *Contract) SetupPresale(caller authz.Caller, cap trybe.Asset) error {
	return c.run("setuppresale", func(e *env) error {
		return e.presale.SetupPresale(caller, cap)
	})
}

// Deposit is the inbound transfer notification: deposits addressed to
// the contract carrying the presale memo buy into the presale, anything
// else is ignored.
func (c *Contract) Deposit(caller authz.Caller, from trybe.Name, quantity trybe.Asset, memo string) error {
	return c.run("deposit", func(e *env) error {
		if err := caller.RequireAuth(from); err != nil {
			return err
		}
		deposit := presale.Deposit{From: from, To: c.name, Quantity: quantity, Memo: memo}
		return e.presale.HandleDeposit(c.name, deposit, c.clock())
	})
}

// Subscribe enrolls subscriber in the registry.
func (c *Contract) Subscribe(caller authz.Caller, subscriber trybe.Name, status uint8) error {
	return c.run("add", func(e *env) error {
		return e.registry.Subscribe(caller, subscriber, status, c.clock())
	})
}

// Unsubscribe removes subscriber from the registry.
func (c *Contract) Unsubscribe(caller authz.Caller, subscriber trybe.Name) error {
	return c.run("remove", func(e *env) error {
		return e.registry.Unsubscribe(caller, subscriber)
	})
}

// ConfirmSubscription accepts subscriber with a fresh start time.
func (c *Contract) ConfirmSubscription(caller authz.Caller, subscriber trybe.Name, status uint8) error {
	return c.run("confirm", func(e *env) error {
		return e.registry.Confirm(caller, subscriber, status, c.clock())
	})
}

// GetSupply returns the supply record for symbol, nil when never
// created.
func (c *Contract) GetSupply(symbol trybe.Symbol) (record *ledger.SupplyRecord, err error) {
	err = c.view(func(e *env) error {
		record, err = e.ledger.GetSupply(symbol)
		return err
	})
	return
}

// GetBalance returns owner's spendable balance of symbol.
func (c *Contract) GetBalance(owner trybe.Name, symbol trybe.Symbol) (balance trybe.Asset, err error) {
	err = c.view(func(e *env) error {
		balance, err = e.ledger.GetBalance(owner, symbol)
		return err
	})
	return
}

// GetStaked returns owner's self-scoped staked amount.
func (c *Contract) GetStaked(owner trybe.Name) (staked trybe.Asset, err error) {
	err = c.view(func(e *env) error {
		staked, err = e.staking.GetStaked(owner)
		return err
	})
	return
}

// GetAggregateStake returns the total stake attributed to account.
func (c *Contract) GetAggregateStake(account trybe.Name) (total trybe.Asset, err error) {
	err = c.view(func(e *env) error {
		total, err = e.staking.GetAggregate(account)
		return err
	})
	return
}

// GetRefund returns account's pending refund, nil when none.
func (c *Contract) GetRefund(account trybe.Name) (refund *staking.RefundRecord, err error) {
	err = c.view(func(e *env) error {
		refund, err = e.staking.GetRefund(account)
		return err
	})
	return
}

// IsFounder reports founder tier membership.
func (c *Contract) IsFounder(account trybe.Name) (founder bool, err error) {
	err = c.view(func(e *env) error {
		founder, err = e.staking.IsFounder(account)
		return err
	})
	return
}

// GetPrice returns the quote row for symbol, nil when never quoted.
func (c *Contract) GetPrice(symbol trybe.Symbol) (record *prices.Record, err error) {
	err = c.view(func(e *env) error {
		record, err = e.prices.Get(symbol)
		return err
	})
	return
}

// ListPrices returns every quote row.
func (c *Contract) ListPrices() (records []*prices.Record, err error) {
	err = c.view(func(e *env) error {
		records, err = e.prices.List()
		return err
	})
	return
}

// GetPurchase returns from's presale position, nil when absent.
func (c *Contract) GetPurchase(from trybe.Name) (record *presale.PurchaseRecord, err error) {
	err = c.view(func(e *env) error {
		record, err = e.presale.GetPurchase(from)
		return err
	})
	return
}

// GetPresaleStats returns the presale totals, nil before setup.
func (c *Contract) GetPresaleStats() (record *presale.StatsRecord, err error) {
	err = c.view(func(e *env) error {
		record, err = e.presale.GetStats()
		return err
	})
	return
}

// GetSubscription returns subscriber's registry row, nil when not
// enrolled.
func (c *Contract) GetSubscription(subscriber trybe.Name) (record *registry.SubscriptionRecord, err error) {
	err = c.view(func(e *env) error {
		record, err = e.registry.Get(subscriber)
		return err
	})
	return
}
