// internal/repository/account_repo.go
package repository

import (
	"context"

	"atm-backend/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount adds a new account using the provided DBExecutor.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByNumber retrieves an account by its account number.
	GetAccountByNumber(ctx context.Context, q DBExecutor, accountNumber int64) (*domain.Account, error)
	// GetAccountByNumberForUpdate retrieves an account with a row-level write
	// lock. Must be called inside a transaction.
	GetAccountByNumberForUpdate(ctx context.Context, q DBExecutor, accountNumber int64) (*domain.Account, error)
	// SaveAccountState atomically persists the balance, daily counter and
	// last-withdrawal date of an account.
	SaveAccountState(ctx context.Context, q DBExecutor, account *domain.Account) error
	// AccountNumberExists reports whether the account number is taken.
	AccountNumberExists(ctx context.Context, q DBExecutor, accountNumber int64) (bool, error)
}
