// Package params is the governance parameter table: the contract-owner
// identity and the tunable numeric knobs live here rather than in
// package-level mutable state.
package params

import (
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

// Key names a numeric parameter.
type Key string

// Bytes implements table.Keyer.
func (k Key) Bytes() []byte {
	return []byte(k)
}

const (
	// KeyUserRefundDelay is the unstake cooldown for regular accounts,
	// in seconds.
	KeyUserRefundDelay Key = "user-refund-delay"
	// KeyFounderRefundDelay is the unstake cooldown for founder
	// accounts, in seconds.
	KeyFounderRefundDelay Key = "founder-refund-delay"

	keyOwner Key = "owner"
)

// DefaultRefundDelay applies to both tiers unless overridden.
const DefaultRefundDelay = uint64(60)

type numericRecord struct {
	Value uint64
}

type ownerRecord struct {
	Name string
}

var (
	numerics = table.New[numericRecord]("params")
	owners   = table.New[ownerRecord]("params.owner")
)

// Params binds the parameter table to a mutation scope.
type Params struct {
	st state.ReadWriter
}

// New creates an instance bound to st.
func New(st state.ReadWriter) *Params {
	return &Params{st: st}
}

// Get returns the value for key, or 0 when unset.
func (p *Params) Get(key Key) (uint64, error) {
	record, err := numerics.Get(p.st, key)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, nil
	}
	return record.Value, nil
}

// GetOr returns the value for key, or def when unset.
func (p *Params) GetOr(key Key, def uint64) (uint64, error) {
	record, err := numerics.Get(p.st, key)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return def, nil
	}
	return record.Value, nil
}

// Set stores the value for key.
func (p *Params) Set(key Key, value uint64) error {
	return numerics.Set(p.st, &numericRecord{Value: value}, key)
}

// Owner returns the contract-owner identity, empty when unset.
func (p *Params) Owner() (trybe.Name, error) {
	record, err := owners.Get(p.st, keyOwner)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", nil
	}
	return trybe.Name(record.Name), nil
}

// SetOwner stores the contract-owner identity.
func (p *Params) SetOwner(name trybe.Name) error {
	return owners.Set(p.st, &ownerRecord{Name: string(name)}, keyOwner)
}
