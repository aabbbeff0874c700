package ledger

import "github.com/trybenetwork/trybe/trybe"

// SupplyRecord tracks issuance of one symbol. There is at most one
// record per symbol code.
type SupplyRecord struct {
	Supply    trybe.Asset
	MaxSupply trybe.Asset
	Issuer    trybe.Name
}

// Available returns the amount still issuable.
func (r *SupplyRecord) Available() int64 {
	return r.MaxSupply.Amount - r.Supply.Amount
}

// BalanceRecord is the spendable balance of one (owner, symbol) pair.
// Rows with a zero balance are deleted on debit; Claim intentionally
// creates one so the owner bears the row's resource cost.
type BalanceRecord struct {
	Balance trybe.Asset
}

// AccountIndex reports account existence at the host level. The host's
// account system is an external collaborator; the contract only asks
// whether a transfer or stake counterparty exists.
type AccountIndex interface {
	Exists(name trybe.Name) (bool, error)
}
