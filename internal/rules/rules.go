// internal/rules/rules.go
package rules

import (
	"atm-backend/internal/util"

	"github.com/shopspring/decimal"
)

// Policy holds the bank's withdrawal rules. The values are configuration, not
// structural constants; see internal/config.
type Policy struct {
	DailyWithdrawalLimit decimal.Decimal
	FeeAmount            decimal.Decimal
	FeeThreshold         decimal.Decimal
}

// DefaultPolicy returns the stock bank rules: a 5000.00 cumulative daily
// withdrawal limit and a flat 2.00 fee on withdrawals under 100.00.
func DefaultPolicy() Policy {
	return Policy{
		DailyWithdrawalLimit: decimal.NewFromInt(5000),
		FeeAmount:            decimal.NewFromInt(2),
		FeeThreshold:         decimal.NewFromInt(100),
	}
}

// Fee returns the flat fee charged for withdrawing the given amount.
func (p Policy) Fee(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThan(p.FeeThreshold) {
		return p.FeeAmount
	}
	return decimal.Zero
}

// EvaluateWithdrawal decides whether a withdrawal is allowed given the current
// balance and the amount already withdrawn today. It is a pure function of its
// inputs. On acceptance it returns the fee to charge; on rejection it returns
// a typed error and a zero fee.
//
// The balance check covers amount plus fee so that a committed withdrawal can
// never drive the balance negative. The daily limit is inclusive: landing
// exactly on the limit is allowed, one cent over is rejected. The fee does not
// count against the limit.
func (p Policy) EvaluateWithdrawal(balance, dailyWithdrawn, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, util.ErrInvalidAmount
	}

	fee := p.Fee(amount)
	total := amount.Add(fee)

	if total.GreaterThan(balance) {
		return decimal.Zero, &util.InsufficientFundsError{
			Balance:   balance,
			Requested: total,
		}
	}

	if dailyWithdrawn.Add(amount).GreaterThan(p.DailyWithdrawalLimit) {
		return decimal.Zero, &util.DailyLimitError{
			Limit:     p.DailyWithdrawalLimit,
			Remaining: p.DailyWithdrawalLimit.Sub(dailyWithdrawn),
		}
	}

	return fee, nil
}
