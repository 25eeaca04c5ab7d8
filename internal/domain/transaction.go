// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the type of an audit record.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeFee        TransactionType = "FEE"
)

// Transaction is an append-only audit record. It is created exactly once per
// committed mutation and never revised; balances are mutable projections,
// transactions are the authoritative history.
type Transaction struct {
	ID                  int64           `db:"id" json:"id"`
	AccountNumber       int64           `db:"account_number" json:"account_number"`
	Type                TransactionType `db:"transaction_type" json:"type"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	TargetAccountNumber *int64          `db:"target_account_number" json:"target_account_number,omitempty"`
	Timestamp           time.Time       `db:"timestamp" json:"timestamp"`
}

// NewTransaction creates a new Transaction instance. target is non-nil only
// for TRANSFER records.
func NewTransaction(accountNumber int64, txType TransactionType, amount decimal.Decimal, target *int64) *Transaction {
	return &Transaction{
		AccountNumber:       accountNumber,
		Type:                txType,
		Amount:              amount,
		TargetAccountNumber: target,
		Timestamp:           time.Now().UTC(),
	}
}
