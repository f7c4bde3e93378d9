package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Domain errors. Every mutating operation rolls its transaction back in full
// before returning one of these; handlers map them to HTTP status codes.
var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOverpayment         = errors.New("payment exceeds pending balance")
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrDuplicateSaleNumber = errors.New("could not allocate a unique sale number")
)

// paymentTolerance absorbs rounding on split payments: the proposed sum may
// exceed the pending balance by at most one cent.
var paymentTolerance = decimal.New(1, -2)

// exceedsTolerance reports whether a proposed payment sum overshoots the
// pending balance by more than the rounding tolerance.
func exceedsTolerance(sum, pending decimal.Decimal) bool {
	return sum.Sub(pending).GreaterThan(paymentTolerance)
}
