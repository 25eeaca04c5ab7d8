// internal/domain/account.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the mutable balance and daily-withdrawal state for one
// account. DailyWithdrawn is only meaningful relative to LastWithdrawalDate:
// when the current date differs from the stored date the counter is logically
// zero, regardless of the stored value.
type Account struct {
	AccountNumber      int64           `db:"account_number" json:"account_number"`
	UserID             int64           `db:"user_id" json:"user_id"`
	Balance            decimal.Decimal `db:"balance" json:"balance"`
	DailyWithdrawn     decimal.Decimal `db:"daily_withdrawn_amount" json:"daily_withdrawn_amount"`
	LastWithdrawalDate *time.Time      `db:"last_withdrawal_date" json:"last_withdrawal_date"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// NewAccount creates a new Account for the given user with a zero balance.
func NewAccount(accountNumber, userID int64) *Account {
	now := time.Now().UTC()
	return &Account{
		AccountNumber:  accountNumber,
		UserID:         userID,
		Balance:        decimal.Zero,
		DailyWithdrawn: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
