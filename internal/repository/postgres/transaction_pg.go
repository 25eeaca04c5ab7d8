// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"

	"atm-backend/internal/domain"
	"atm-backend/internal/repository"

	"github.com/jmoiron/sqlx"
)

// TransactionRepository implements repository.TransactionRepository for
// PostgreSQL. The transactions table is append-only: there are no UPDATE or
// DELETE paths.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new audit record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (account_number, transaction_type, amount, target_account_number, timestamp)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.AccountNumber,
		transaction.Type,
		transaction.Amount,
		transaction.TargetAccountNumber,
		transaction.Timestamp,
	).Scan(&transaction.ID)
	if err != nil {
		return wrapStoreError("create transaction", err)
	}
	return nil
}

// GetRecentTransactions retrieves up to limit audit records for an account,
// most recent first.
func (r *TransactionRepository) GetRecentTransactions(ctx context.Context, q repository.DBExecutor, accountNumber int64, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `SELECT id, account_number, transaction_type, amount, target_account_number, timestamp
              FROM transactions
              WHERE account_number = $1
              ORDER BY timestamp DESC
              LIMIT $2`
	err := q.SelectContext(ctx, &transactions, query, accountNumber, limit)
	if err != nil {
		return nil, wrapStoreError("get recent transactions", err)
	}
	return transactions, nil
}
