// Package registry keeps the subscriber roll: accounts opt in
// themselves, the contract owner confirms or removes them. A
// subscription starts unaccepted and its start time is refreshed on
// confirmation.
package registry

import (
	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

var subscriptions = table.New[SubscriptionRecord]("subscribers")

// SubscriptionRecord is one subscriber's standing.
type SubscriptionRecord struct {
	Account   trybe.Name
	Status    uint8
	Accepted  bool
	StartTime uint64
}

// Registry binds the subscriber table to a mutation scope.
type Registry struct {
	st     *state.State
	params *params.Params
}

// New creates an instance bound to st.
func New(st *state.State, p *params.Params) *Registry {
	return &Registry{st: st, params: p}
}

// Subscribe enrolls subscriber with the given status, unaccepted.
func (r *Registry) Subscribe(caller authz.Caller, subscriber trybe.Name, status uint8, now uint64) error {
	if err := caller.RequireAuth(subscriber); err != nil {
		return err
	}
	existing, err := subscriptions.Has(r.st, subscriber)
	if err != nil {
		return err
	}
	if existing {
		return reverts.New(reverts.AlreadySubscribed, "Rows for this subscriber already exist")
	}

	record := SubscriptionRecord{
		Account:   subscriber,
		Status:    status,
		Accepted:  false,
		StartTime: now,
	}
	return subscriptions.Set(r.st, &record, subscriber)
}

// Unsubscribe removes subscriber's row. Owner only.
func (r *Registry) Unsubscribe(caller authz.Caller, subscriber trybe.Name) error {
	owner, err := r.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	existing, err := subscriptions.Has(r.st, subscriber)
	if err != nil {
		return err
	}
	if !existing {
		return reverts.New(reverts.NotFound, "No subscribe found for this subscriber")
	}
	subscriptions.Delete(r.st, subscriber)
	return nil
}

// Confirm accepts subscriber, updating its status and restarting its
// clock. Owner only.
func (r *Registry) Confirm(caller authz.Caller, subscriber trybe.Name, status uint8, now uint64) error {
	owner, err := r.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	record, err := subscriptions.Get(r.st, subscriber)
	if err != nil {
		return err
	}
	if record == nil {
		return reverts.New(reverts.NotFound, "this subscriber does not exist")
	}

	record.Status = status
	record.Accepted = true
	record.StartTime = now
	return subscriptions.Set(r.st, record, subscriber)
}

// Get returns subscriber's row, nil when not enrolled.
func (r *Registry) Get(subscriber trybe.Name) (*SubscriptionRecord, error) {
	return subscriptions.Get(r.st, subscriber)
}

// Iterate walks every subscription in account order.
func (r *Registry) Iterate(fn func(record *SubscriptionRecord) (bool, error)) error {
	return subscriptions.Iterate(r.st, func(_ []byte, record *SubscriptionRecord) (bool, error) {
		return fn(record)
	})
}
