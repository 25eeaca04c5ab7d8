// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"atm-backend/internal/domain"
)

// TransactionRepository defines the interface for the append-only audit trail.
type TransactionRepository interface {
	// CreateTransaction appends a new audit record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetRecentTransactions retrieves up to limit audit records for an
	// account, most recent first.
	GetRecentTransactions(ctx context.Context, q DBExecutor, accountNumber int64, limit int) ([]domain.Transaction, error)
}
