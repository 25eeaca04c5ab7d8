// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atm-backend/internal/domain"
	"atm-backend/internal/repository"
	"atm-backend/internal/util"

	"github.com/jmoiron/sqlx"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

const accountColumns = `account_number, user_id, balance, daily_withdrawn_amount, last_withdrawal_date, created_at, updated_at`

// CreateAccount inserts a new account using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (account_number, user_id, balance, daily_withdrawn_amount, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query,
		account.AccountNumber,
		account.UserID,
		account.Balance,
		account.DailyWithdrawn,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return wrapStoreError("create account", err)
	}
	return nil
}

// GetAccountByNumber retrieves an account by its number.
func (r *AccountRepository) GetAccountByNumber(ctx context.Context, q repository.DBExecutor, accountNumber int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	err := q.GetContext(ctx, &account, query, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrAccountNotFound
		}
		return nil, wrapStoreError("get account", err)
	}
	return &account, nil
}

// GetAccountByNumberForUpdate retrieves an account with a row-level write
// lock so the read-check-write sequence stays single-writer per account.
func (r *AccountRepository) GetAccountByNumberForUpdate(ctx context.Context, q repository.DBExecutor, accountNumber int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	err := q.GetContext(ctx, &account, query, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrAccountNotFound
		}
		return nil, wrapStoreError("get account for update", err)
	}
	return &account, nil
}

// SaveAccountState atomically persists the balance, daily counter and
// last-withdrawal date in a single UPDATE.
func (r *AccountRepository) SaveAccountState(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `UPDATE accounts
              SET balance = $1,
                  daily_withdrawn_amount = $2,
                  last_withdrawal_date = $3,
                  updated_at = $4
              WHERE account_number = $5`
	result, err := q.ExecContext(ctx, query,
		account.Balance,
		account.DailyWithdrawn,
		account.LastWithdrawalDate,
		time.Now().UTC(),
		account.AccountNumber,
	)
	if err != nil {
		return wrapStoreError("save account state", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapStoreError("save account state rows affected", err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}

// AccountNumberExists reports whether the account number is already taken.
func (r *AccountRepository) AccountNumberExists(ctx context.Context, q repository.DBExecutor, accountNumber int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`
	err := q.GetContext(ctx, &exists, query, accountNumber)
	if err != nil {
		return false, wrapStoreError("check account number", err)
	}
	return exists, nil
}
