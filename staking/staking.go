// Package staking locks spendable TRYBE against an account and releases
// it again through a delayed refund. Stakes are scoped by the delegate
// account they are placed under; an aggregate row per beneficiary keeps
// the total cheap to read. Founder accounts sit in their own tier with a
// separately tunable cooldown.
package staking

import (
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/ledger"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

var (
	logger = log.WithContext("pkg", "staking")

	stakes     = table.New[StakeRecord]("stakes")
	aggregates = table.New[AggregateStakeRecord]("stakes.agg")
	refunds    = table.New[RefundRecord]("refunds")
	founders   = table.New[FounderRecord]("founders")
)

// Engine binds the staking tables to a mutation scope.
type Engine struct {
	st       *state.State
	params   *params.Params
	ledger   *ledger.Ledger
	accounts ledger.AccountIndex
	deferrer Deferrer
}

// New creates an instance bound to st. deferrer may be nil, in which
// case refunds are claimable but never self-settle.
func New(st *state.State, p *params.Params, led *ledger.Ledger, accounts ledger.AccountIndex, deferrer Deferrer) *Engine {
	return &Engine{st: st, params: p, ledger: led, accounts: accounts, deferrer: deferrer}
}

// Stake locks quantity of from's spendable TRYBE under to's scope.
// The stake is attributed to from unless attributeToDelegate is set,
// in which case to becomes the beneficiary.
func (e *Engine) Stake(caller authz.Caller, from, to trybe.Name, quantity trybe.Asset, attributeToDelegate bool, now uint64) error {
	if err := caller.RequireAuth(from); err != nil {
		return err
	}
	exists, err := e.accounts.Exists(to)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.New(reverts.UnknownAccount, "receiving account does not exist")
	}
	if !quantity.Symbol.Equal(trybe.TRYBE) || !quantity.Valid() {
		return reverts.New(reverts.InvalidQuantity, "invalid asset details offered")
	}
	if quantity.Amount < 0 {
		return reverts.New(reverts.InvalidAmount, "must stake a positive amount")
	}

	liquid, err := e.ledger.GetBalance(from, trybe.TRYBE)
	if err != nil {
		return err
	}
	if quantity.Amount > liquid.Amount {
		return reverts.New(reverts.InsufficientBalance, "not enough liquid TRYBE in account")
	}

	owner := from
	if attributeToDelegate {
		owner = to
	}

	record, err := stakes.Get(e.st, to, owner)
	if err != nil {
		return err
	}
	if record == nil {
		record = &StakeRecord{
			Owner:    owner,
			Delegate: to,
			Staker:   from,
			Amount:   quantity,
			StakedAt: now,
		}
	} else {
		record.Amount = record.Amount.Add(quantity)
	}
	if record.Amount.Amount < 0 {
		return reverts.New(reverts.InsufficientStake, "insufficient staked TRYBE")
	}
	if record.Amount.IsZero() {
		stakes.Delete(e.st, to, owner)
	} else if err := stakes.Set(e.st, record, to, owner); err != nil {
		return err
	}

	if err := e.updateAggregate(owner, quantity); err != nil {
		return err
	}
	if err := e.ledger.SubBalance(from, quantity); err != nil {
		return err
	}
	logger.WithField("owner", owner).
		WithField("delegate", to).
		WithField("quantity", quantity.String()).
		Info("staked")
	return nil
}

// Unstake releases quantity of owner's self-scoped stake into a pending
// refund paid to receiver after the owner's cooldown. The stake must
// stay strictly positive afterwards and there must be no refund already
// in flight.
func (e *Engine) Unstake(caller authz.Caller, owner, receiver trybe.Name, quantity trybe.Asset, now uint64) error {
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	exists, err := e.accounts.Exists(receiver)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.New(reverts.UnknownAccount, "receiving account does not exist")
	}
	if !quantity.Symbol.Equal(trybe.TRYBE) || !quantity.Valid() {
		return reverts.New(reverts.InvalidQuantity, "invalid asset details offered")
	}
	if quantity.Amount < 0 {
		return reverts.New(reverts.InvalidAmount, "must unstake a positive amount")
	}

	record, err := stakes.Get(e.st, owner, owner)
	if err != nil {
		return err
	}
	if record == nil {
		return reverts.New(reverts.NoStake, "No staking entry found")
	}
	if record.Amount.Amount <= quantity.Amount {
		return reverts.New(reverts.InsufficientStake, "You do not have enough staked TRYBE")
	}

	record.Amount = record.Amount.Sub(quantity)
	if record.Amount.IsZero() {
		stakes.Delete(e.st, owner, owner)
	} else if err := stakes.Set(e.st, record, owner, owner); err != nil {
		return err
	}

	pending, err := refunds.Has(e.st, owner)
	if err != nil {
		return err
	}
	if pending {
		return reverts.New(reverts.RefundPending, "Pending refund in progress")
	}
	refund := RefundRecord{RequestTime: now, Amount: quantity}
	if err := refunds.Set(e.st, &refund, owner); err != nil {
		return err
	}

	if err := e.updateAggregate(owner, quantity.Neg()); err != nil {
		return err
	}

	if e.deferrer != nil {
		delay, err := e.refundDelay(owner)
		if err != nil {
			return err
		}
		e.deferrer.ScheduleRefund(owner, delay)
	}
	logger.WithField("owner", owner).
		WithField("quantity", quantity.String()).
		Info("unstake requested")
	return nil
}

// RefundClaim settles account's pending refund once matured, crediting
// the amount back to the spendable balance. The settle flag is accepted
// for wire compatibility and ignored: a claim always settles, it never
// cancels.
func (e *Engine) RefundClaim(caller authz.Caller, account trybe.Name, settle bool, now uint64) error {
	_ = settle

	if err := caller.RequireAuth(account); err != nil {
		return err
	}
	refund, err := refunds.Get(e.st, account)
	if err != nil {
		return err
	}
	if refund == nil {
		return reverts.New(reverts.NoRefund, "No refunds found for account")
	}

	delay, err := e.refundDelay(account)
	if err != nil {
		return err
	}
	if maturesAt := refund.MaturesAt(delay); now < maturesAt {
		return reverts.New(reverts.RefundNotMatured,
			"refund is not available yet %d seconds remaining", maturesAt-now)
	}

	refunds.Delete(e.st, account)
	if err := e.ledger.AddBalance(account, refund.Amount, account); err != nil {
		return err
	}
	logger.WithField("account", account).
		WithField("quantity", refund.Amount.String()).
		Info("refund settled")
	return nil
}

// RegisterFounder adds founder to the founder tier. Requires the
// contract owner's founders permission.
func (e *Engine) RegisterFounder(caller authz.Caller, founder trybe.Name, now uint64) error {
	owner, err := e.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequirePermission(owner, authz.PermissionFounders); err != nil {
		return err
	}
	exists, err := e.accounts.Exists(founder)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.New(reverts.UnknownAccount, "to account does not exist")
	}

	already, err := founders.Has(e.st, founder)
	if err != nil {
		return err
	}
	if already {
		return reverts.New(reverts.AlreadyFounder, "Founder account already added")
	}
	return founders.Set(e.st, &FounderRecord{Since: now}, founder)
}

// GetStake returns the stake row at (delegate, owner), nil when absent.
func (e *Engine) GetStake(delegate, owner trybe.Name) (*StakeRecord, error) {
	return stakes.Get(e.st, delegate, owner)
}

// GetStaked returns the self-scoped staked amount of owner; a zero
// asset when no row exists.
func (e *Engine) GetStaked(owner trybe.Name) (trybe.Asset, error) {
	record, err := stakes.Get(e.st, owner, owner)
	if err != nil {
		return trybe.Asset{}, err
	}
	if record == nil {
		return trybe.NewAsset(0, trybe.TRYBE), nil
	}
	return record.Amount, nil
}

// GetAggregate returns the total stake attributed to account across all
// delegates; a zero asset when nothing is staked.
func (e *Engine) GetAggregate(account trybe.Name) (trybe.Asset, error) {
	record, err := aggregates.Get(e.st, account)
	if err != nil {
		return trybe.Asset{}, err
	}
	if record == nil {
		return trybe.NewAsset(0, trybe.TRYBE), nil
	}
	return record.Total, nil
}

// GetRefund returns account's pending refund, nil when none is in
// flight.
func (e *Engine) GetRefund(account trybe.Name) (*RefundRecord, error) {
	return refunds.Get(e.st, account)
}

// IsFounder reports founder tier membership.
func (e *Engine) IsFounder(account trybe.Name) (bool, error) {
	return founders.Has(e.st, account)
}

// IterateDelegated walks every stake row placed under delegate's scope.
func (e *Engine) IterateDelegated(delegate trybe.Name, fn func(record *StakeRecord) (bool, error)) error {
	return stakes.Iterate(e.st, func(_ []byte, record *StakeRecord) (bool, error) {
		return fn(record)
	}, delegate)
}

// IterateStakes walks every stake row regardless of scope.
func (e *Engine) IterateStakes(fn func(record *StakeRecord) (bool, error)) error {
	return stakes.Iterate(e.st, func(_ []byte, record *StakeRecord) (bool, error) {
		return fn(record)
	})
}

// IterateRefunds walks every pending refund.
func (e *Engine) IterateRefunds(fn func(owner trybe.Name, record *RefundRecord) (bool, error)) error {
	return refunds.Iterate(e.st, func(key []byte, record *RefundRecord) (bool, error) {
		return fn(trybe.Name(key), record)
	})
}

// refundDelay resolves the cooldown for account according to its tier.
func (e *Engine) refundDelay(account trybe.Name) (uint64, error) {
	founder, err := founders.Has(e.st, account)
	if err != nil {
		return 0, err
	}
	key := params.KeyUserRefundDelay
	if founder {
		key = params.KeyFounderRefundDelay
	}
	return e.params.GetOr(key, params.DefaultRefundDelay)
}

// updateAggregate adjusts the aggregate total for account by delta,
// creating the row on first stake and deleting it when it drains.
func (e *Engine) updateAggregate(account trybe.Name, delta trybe.Asset) error {
	record, err := aggregates.Get(e.st, account)
	if err != nil {
		return err
	}
	if record == nil {
		if delta.IsZero() {
			return nil
		}
		record = &AggregateStakeRecord{Account: account, Total: delta}
	} else {
		record.Total = record.Total.Add(delta)
	}
	if record.Total.Amount < 0 {
		return reverts.New(reverts.InsufficientStake, "insufficient staked TRYBE")
	}
	if record.Total.IsZero() {
		aggregates.Delete(e.st, account)
		return nil
	}
	return aggregates.Set(e.st, record, account)
}
