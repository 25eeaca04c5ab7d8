// internal/ledger/ledger.go
package ledger

import (
	"time"

	"atm-backend/internal/domain"
	"atm-backend/internal/rules"
	"atm-backend/internal/util"

	"github.com/shopspring/decimal"
)

// Ledger owns one account's balance and daily-counter state for the duration
// of an operation. All mutations are all-or-nothing: a rejected operation
// leaves the account untouched. Callers are responsible for serializing access
// per account number and for persisting the mutated account afterwards.
type Ledger struct {
	acct   *domain.Account
	policy rules.Policy
}

// New wraps an account with the bank's withdrawal policy.
func New(acct *domain.Account, policy rules.Policy) *Ledger {
	return &Ledger{acct: acct, policy: policy}
}

// Account returns the wrapped account.
func (l *Ledger) Account() *domain.Account { return l.acct }

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal { return l.acct.Balance }

// sameDay compares calendar dates in UTC; the wall-clock time of day is
// irrelevant to the daily counter.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// effectiveDailyWithdrawn returns the daily counter as of today: zero when the
// stored last-withdrawal date is unset or belongs to a different calendar day.
func (l *Ledger) effectiveDailyWithdrawn(today time.Time) decimal.Decimal {
	if l.acct.LastWithdrawalDate == nil || !sameDay(*l.acct.LastWithdrawalDate, today) {
		return decimal.Zero
	}
	return l.acct.DailyWithdrawn
}

// Deposit increases the balance by amount and returns the new balance. No
// limit applies to deposits.
func (l *Ledger) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, util.ErrInvalidAmount
	}
	l.acct.Balance = l.acct.Balance.Add(amount)
	l.acct.UpdatedAt = time.Now().UTC()
	return l.acct.Balance, nil
}

// Withdraw debits amount plus any policy fee, charges the amount (not the
// fee) against the daily limit, and returns the new balance and the fee.
// The date rollover is evaluated lazily: if today differs from the stored
// last-withdrawal date the counter restarts from zero. State is only written
// once the rule engine accepts the request.
func (l *Ledger) Withdraw(amount decimal.Decimal, today time.Time) (decimal.Decimal, decimal.Decimal, error) {
	daily := l.effectiveDailyWithdrawn(today)

	fee, err := l.policy.EvaluateWithdrawal(l.acct.Balance, daily, amount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	day := today.UTC().Truncate(24 * time.Hour)
	l.acct.Balance = l.acct.Balance.Sub(amount.Add(fee))
	l.acct.DailyWithdrawn = daily.Add(amount)
	l.acct.LastWithdrawalDate = &day
	l.acct.UpdatedAt = time.Now().UTC()

	return l.acct.Balance, fee, nil
}

// Transfer debits this ledger under withdrawal rules and credits the target
// with the same amount. If the withdrawal leg fails the target is never
// touched. The fee, if any, stays with the source.
func (l *Ledger) Transfer(amount decimal.Decimal, target *Ledger, today time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if l.acct.AccountNumber == target.acct.AccountNumber {
		return decimal.Zero, decimal.Zero, util.ErrSameAccountTransfer
	}

	newBalance, fee, err := l.Withdraw(amount, today)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if _, err := target.Deposit(amount); err != nil {
		// Compensate the withdrawal leg so no partial state is observable.
		l.acct.Balance = l.acct.Balance.Add(amount.Add(fee))
		l.acct.DailyWithdrawn = l.acct.DailyWithdrawn.Sub(amount)
		return decimal.Zero, decimal.Zero, err
	}
	return newBalance, fee, nil
}
