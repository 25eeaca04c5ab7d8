// internal/util/errors.go
package util

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidAmount       = errors.New("amount must be a positive value")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrDailyLimitExceeded  = errors.New("daily withdrawal limit exceeded")
	ErrAuth                = errors.New("invalid account number or PIN")
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	// ErrStorageUnavailable marks retryable storage failures, distinct from
	// business-rule rejections.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPartialWrite marks a violation of the all-or-nothing mutation
	// guarantee and must never be reported as an ordinary rejection.
	ErrPartialWrite = errors.New("partial write detected")
)

// IsError reports whether err matches the target sentinel.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// InsufficientFundsError carries the balance and the total requested
// deduction (amount plus any fee) that caused the rejection.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s",
		e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// DailyLimitError carries the configured limit and the amount still
// withdrawable today.
type DailyLimitError struct {
	Limit     decimal.Decimal
	Remaining decimal.Decimal
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily limit exceeded: only %s more can be withdrawn today (limit %s)",
		e.Remaining.StringFixed(2), e.Limit.StringFixed(2))
}

func (e *DailyLimitError) Unwrap() error { return ErrDailyLimitExceeded }
