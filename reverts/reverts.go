// Package reverts defines the rejection errors raised by contract
// operations. A revert is fatal to the operation that raised it: the
// whole mutation scope is dropped and the caller sees the message.
package reverts

import (
	"errors"
	"fmt"
)

// Kind is the canonical failure classification.
type Kind string

const (
	AlreadyExists      Kind = "already-exists"
	AlreadyClaimed     Kind = "already-claimed"
	AlreadyFounder     Kind = "already-founder"
	AlreadySubscribed  Kind = "already-subscribed"
	NotFound           Kind = "not-found"
	Unauthorized       Kind = "unauthorized"
	InvalidQuantity    Kind = "invalid-quantity"
	InvalidAmount      Kind = "invalid-amount"
	PrecisionMismatch  Kind = "precision-mismatch"
	SupplyExceeded     Kind = "supply-exceeded"
	Overdrawn          Kind = "overdrawn"
	SelfTransfer       Kind = "self-transfer"
	UnknownAccount     Kind = "unknown-account"
	MemoTooLong        Kind = "memo-too-long"
	InsufficientBalance Kind = "insufficient-balance"
	NoStake            Kind = "no-stake"
	InsufficientStake  Kind = "insufficient-stake"
	RefundPending      Kind = "refund-pending"
	NoRefund           Kind = "no-refund"
	RefundNotMatured   Kind = "refund-not-matured"
	PresaleCapExceeded Kind = "presale-cap-exceeded"
	WrongAsset         Kind = "wrong-asset"
	BelowMinimum       Kind = "below-minimum"
	LengthMismatch     Kind = "length-mismatch"
)

// ErrRevert rejects the in-flight operation.
type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a revert of the given kind.
func New(kind Kind, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the failure classification.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevert reports whether err is an operation rejection.
func IsRevert(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve)
}

// Is reports whether err is a rejection of the given kind.
func Is(err error, kind Kind) bool {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return false
	}
	return ve.kind == kind
}

// KindOf returns the kind of a rejection, or "" for other errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if !errors.As(err, &ve) {
		return ""
	}
	return ve.kind
}
