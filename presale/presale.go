// Package presale converts incoming EOS deposits into TRYBE
// allocations recorded against the depositor. Allocations are bookkept
// here only; nothing is credited to the ledger until distribution
// happens out of band. A deposit opts in by carrying the exact memo
// sentinel, so unrelated transfers pass through the contract untouched.
package presale

import (
	"math"

	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/prices"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

const (
	// SalePrice is the fixed EOS-denominated price of one TRYBE.
	SalePrice = 0.01

	// DepositMemo is the sentinel a transfer must carry to take part in
	// the presale.
	DepositMemo = "TRYBE PRESALE"

	// MinimumDeposit is one whole EOS in subunits.
	MinimumDeposit = int64(100)

	// DefaultCap is the allocation ceiling used when the presale is set
	// up without an explicit cap, in TRYBE subunits.
	DefaultCap = int64(100_000_000_0000)
)

var (
	logger = log.WithContext("pkg", "presale")

	purchases = table.New[PurchaseRecord]("presale")
	stats     = table.New[StatsRecord]("presale.stats")
)

// PurchaseRecord accumulates one depositor's presale position.
type PurchaseRecord struct {
	Owner        trybe.Name
	EOSAmount    trybe.Asset
	TRYBEAmount  trybe.Asset
	PurchaseDate uint64
}

// StatsRecord tracks the running total against the allocation cap.
type StatsRecord struct {
	TotalAvailable trybe.Asset
	TotalSold      trybe.Asset
	Issuer         trybe.Name
}

// Deposit is an observed inbound transfer.
type Deposit struct {
	From     trybe.Name
	To       trybe.Name
	Quantity trybe.Asset
	Memo     string
}

// Engine binds the presale tables to a mutation scope.
type Engine struct {
	st     *state.State
	params *params.Params
	prices *prices.Table
}

// New creates an instance bound to st.
func New(st *state.State, p *params.Params, priceTable *prices.Table) *Engine {
	return &Engine{st: st, params: p, prices: priceTable}
}

// SetupPresale creates the stats row or, when it already exists,
// adjusts the allocation ceiling. Only the contract owner may call it.
func (e *Engine) SetupPresale(caller authz.Caller, cap trybe.Asset) error {
	owner, err := e.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	if !cap.Valid() || !cap.Symbol.Equal(trybe.TRYBE) || cap.Amount < 0 {
		return reverts.New(reverts.InvalidQuantity, "invalid presale cap")
	}

	record, err := stats.Get(e.st, trybe.TRYBE)
	if err != nil {
		return err
	}
	if record == nil {
		record = &StatsRecord{
			TotalAvailable: cap,
			TotalSold:      trybe.NewAsset(0, trybe.TRYBE),
			Issuer:         owner,
		}
	} else {
		record.TotalAvailable = cap
	}
	return stats.Set(e.st, record, trybe.TRYBE)
}

// HandleDeposit inspects an inbound transfer and routes presale
// deposits to Buy. Transfers not addressed to the contract, sent by the
// contract itself, or missing the memo sentinel are ignored without
// error. A sentinel-carrying deposit in anything but EOS is rejected.
func (e *Engine) HandleDeposit(contract trybe.Name, deposit Deposit, now uint64) error {
	if deposit.From == contract {
		logger.WithField("to", deposit.To).Debug("ignoring outbound transfer")
		return nil
	}
	if deposit.To != contract {
		return nil
	}
	if deposit.Memo != DepositMemo {
		return nil
	}
	return e.Buy(deposit.From, deposit.Quantity, now)
}

// Buy converts an EOS deposit into a TRYBE allocation at the quoted
// EOS price. The purchase row is updated before the cap is checked so a
// rejection rolls the whole mutation scope back.
func (e *Engine) Buy(from trybe.Name, quantity trybe.Asset, now uint64) error {
	if !quantity.Symbol.Equal(trybe.EOS) {
		return reverts.New(reverts.WrongAsset, "Token must be EOS")
	}
	if !quantity.Valid() {
		return reverts.New(reverts.InvalidQuantity, "Token asset is not valid")
	}
	if quantity.Amount < MinimumDeposit {
		return reverts.New(reverts.BelowMinimum, "Not enough tokens, need at 1 EOS")
	}

	quote, err := e.prices.Get(trybe.EOS)
	if err != nil {
		return err
	}
	if quote == nil || quote.EOSPrice <= 0 {
		return reverts.New(reverts.NotFound, "no EOS price quoted")
	}
	allocation := Convert(quantity, quote.EOSPrice)

	record, err := purchases.Get(e.st, from)
	if err != nil {
		return err
	}
	if record == nil {
		record = &PurchaseRecord{
			Owner:        from,
			EOSAmount:    quantity,
			TRYBEAmount:  allocation,
			PurchaseDate: now,
		}
	} else {
		record.EOSAmount = record.EOSAmount.Add(quantity)
		record.TRYBEAmount = record.TRYBEAmount.Add(allocation)
		record.PurchaseDate = now
	}
	if err := purchases.Set(e.st, record, from); err != nil {
		return err
	}

	statsRecord, err := stats.Get(e.st, trybe.TRYBE)
	if err != nil {
		return err
	}
	if statsRecord == nil {
		return reverts.New(reverts.NotFound, "Presale statistics entry not found")
	}
	sold := statsRecord.TotalSold.Add(allocation)
	if sold.Amount > statsRecord.TotalAvailable.Amount {
		return reverts.New(reverts.PresaleCapExceeded,
			"Not enough TRYBE available, please select a lower amount of EOS")
	}
	statsRecord.TotalSold = sold
	if err := stats.Set(e.st, statsRecord, trybe.TRYBE); err != nil {
		return err
	}
	logger.WithField("from", from).
		WithField("deposit", quantity.String()).
		WithField("allocation", allocation.String()).
		Info("presale purchase")
	return nil
}

// Convert prices an EOS deposit in TRYBE subunits: scale by the quoted
// EOS price over the fixed sale price, widen to TRYBE precision, and
// truncate toward zero.
func Convert(deposit trybe.Asset, eosPrice float64) trybe.Asset {
	scale := math.Pow10(int(trybe.TRYBE.Precision) - int(trybe.EOS.Precision))
	tokens := float64(deposit.Amount) * eosPrice / SalePrice * scale
	return trybe.NewAsset(int64(math.Floor(tokens)), trybe.TRYBE)
}

// GetPurchase returns from's accumulated position, nil when it never
// took part.
func (e *Engine) GetPurchase(from trybe.Name) (*PurchaseRecord, error) {
	return purchases.Get(e.st, from)
}

// GetStats returns the presale totals, nil before setup.
func (e *Engine) GetStats() (*StatsRecord, error) {
	return stats.Get(e.st, trybe.TRYBE)
}

// IteratePurchases walks every presale position in owner order.
func (e *Engine) IteratePurchases(fn func(record *PurchaseRecord) (bool, error)) error {
	return purchases.Iterate(e.st, func(_ []byte, record *PurchaseRecord) (bool, error) {
		return fn(record)
	})
}
