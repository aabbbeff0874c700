package staking

import "github.com/trybenetwork/trybe/trybe"

// StakeRecord is the stake attributed to Owner under Delegate's scope.
// Owner and Delegate coincide for a self-stake; Staker is the account
// whose spendable balance funded it.
type StakeRecord struct {
	Owner    trybe.Name
	Delegate trybe.Name
	Staker   trybe.Name
	Amount   trybe.Asset
	StakedAt uint64
}

// AggregateStakeRecord sums every StakeRecord attributed to Account.
// It is deleted when the total reaches zero.
type AggregateStakeRecord struct {
	Account trybe.Name
	Total   trybe.Asset
}

// RefundRecord is a pending unstake refund. At most one exists per
// owner; it persists until claimed, blocking further unstakes.
type RefundRecord struct {
	RequestTime uint64
	Amount      trybe.Asset
}

// MaturesAt returns the earliest claim time given the owner's delay.
func (r *RefundRecord) MaturesAt(delay uint64) uint64 {
	return r.RequestTime + delay
}

// FounderRecord marks membership of the founder tier.
type FounderRecord struct {
	Since uint64
}

// Deferrer schedules the delayed self-invocation that finalizes a
// refund after its cooldown. Scheduling is best effort with a lower
// time bound only; an explicit RefundClaim remains the authoritative
// settlement path.
type Deferrer interface {
	ScheduleRefund(owner trybe.Name, delaySeconds uint64)
}
