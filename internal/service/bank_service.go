// internal/service/bank_service.go
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"atm-backend/internal/auth"
	"atm-backend/internal/domain"
	"atm-backend/internal/ledger"
	"atm-backend/internal/repository"
	"atm-backend/internal/rules"
	"atm-backend/internal/util"
	"atm-backend/pkg/db"

	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit is the number of audit records returned when the caller
// does not ask for a specific count.
const DefaultHistoryLimit = 5

// maxHistoryLimit caps a single history page.
const maxHistoryLimit = 50

// accountNumberAttempts bounds the retry loop for the random 12-digit
// account number generator.
const accountNumberAttempts = 10

// BankService defines the business-logic boundary consumed by the
// presentation layer.
type BankService interface {
	CreateAccount(ctx context.Context, name, pin string, initialDeposit decimal.Decimal) (*domain.Account, error)
	Login(ctx context.Context, accountNumber int64, pin string) (*domain.Account, error)
	Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error)
	Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, decimal.Decimal, error)
	Transfer(ctx context.Context, fromAccountNumber, toAccountNumber int64, amount decimal.Decimal) (*domain.Account, error)
	GetBalance(ctx context.Context, accountNumber int64) (*domain.Account, error)
	GetTransactionHistory(ctx context.Context, accountNumber int64, limit int) ([]domain.Transaction, error)
}

// bankService implements the BankService interface.
type bankService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g. *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads
	userRepo        repository.UserRepository
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc

	policy rules.Policy
	now    func() time.Time // injected clock; date-dependent logic stays deterministic

	// locks serializes the read-check-write sequence per account number.
	locks sync.Map // map[int64]*sync.Mutex
}

// NewBankService creates a new instance of BankService.
func NewBankService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	policy rules.Policy,
	now func() time.Time,
) BankService {
	if now == nil {
		now = time.Now
	}
	return &bankService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		policy:          policy,
		now:             now,
	}
}

// lockAccount returns the mutex guarding one account number.
func (s *bankService) lockAccount(accountNumber int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(accountNumber, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// guardInvariants rejects an account whose stored state violates the
// balance/counter invariants. Such a record can only come from a partial
// write and must not be treated as an ordinary business rejection.
func guardInvariants(acct *domain.Account) error {
	if acct.Balance.IsNegative() || acct.DailyWithdrawn.IsNegative() {
		return fmt.Errorf("account %d: %w", acct.AccountNumber, util.ErrPartialWrite)
	}
	return nil
}

// generateAccountNumber draws random 12-digit account numbers until it finds
// a free one.
func (s *bankService) generateAccountNumber(ctx context.Context, q repository.DBExecutor) (int64, error) {
	for i := 0; i < accountNumberAttempts; i++ {
		candidate := rand.Int63n(900000000000) + 100000000000
		exists, err := s.accountRepo.AccountNumberExists(ctx, q, candidate)
		if err != nil {
			return 0, fmt.Errorf("failed to check account number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("failed to generate a unique account number after %d attempts", accountNumberAttempts)
}

// CreateAccount creates a user and their account atomically. The PIN is
// hashed before anything is stored; the optional initial deposit is applied
// and audited within the same transaction.
func (s *bankService) CreateAccount(ctx context.Context, name, pin string, initialDeposit decimal.Decimal) (*domain.Account, error) {
	if name == "" {
		return nil, fmt.Errorf("create account: name is required: %w", util.ErrAuth)
	}
	if err := auth.ValidatePIN(pin); err != nil {
		return nil, fmt.Errorf("create account: invalid PIN format: %w", err)
	}
	if initialDeposit.IsNegative() {
		return nil, util.ErrInvalidAmount
	}

	pinHash, err := auth.HashPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("create account: failed to hash PIN: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create account: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create account: transaction controller does not implement DBExecutor")
	}

	user := domain.NewUser(name, pinHash)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("create account: failed to create user: %w", err)
	}

	accountNumber, err := s.generateAccountNumber(ctx, txExecutor)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	account := domain.NewAccount(accountNumber, user.ID)
	if err := s.accountRepo.CreateAccount(ctx, txExecutor, account); err != nil {
		return nil, fmt.Errorf("create account: failed to create account: %w", err)
	}

	if initialDeposit.IsPositive() {
		led := ledger.New(account, s.policy)
		if _, err := led.Deposit(initialDeposit); err != nil {
			return nil, fmt.Errorf("create account: initial deposit rejected: %w", err)
		}
		if err := s.accountRepo.SaveAccountState(ctx, txExecutor, account); err != nil {
			return nil, fmt.Errorf("create account: failed to save initial deposit: %w", err)
		}
		tx := domain.NewTransaction(account.AccountNumber, domain.TransactionTypeDeposit, initialDeposit, nil)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, tx); err != nil {
			return nil, fmt.Errorf("create account: failed to record initial deposit: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create account: failed to commit transaction: %w", err)
	}

	return account, nil
}

// Login authenticates an account number and PIN pair. Unknown accounts and
// wrong PINs surface as the same util.ErrAuth.
func (s *bankService) Login(ctx context.Context, accountNumber int64, pin string) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByNumber(ctx, s.dbExecutor, accountNumber)
	if err != nil {
		if util.IsError(err, util.ErrAccountNotFound) {
			return nil, util.ErrAuth
		}
		return nil, fmt.Errorf("login: failed to load account %d: %w", accountNumber, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, account.UserID)
	if err != nil {
		if util.IsError(err, util.ErrUserNotFound) {
			return nil, util.ErrAuth
		}
		return nil, fmt.Errorf("login: failed to load user %d: %w", account.UserID, err)
	}

	if err := auth.VerifyUser(user, pin); err != nil {
		return nil, err
	}
	return account, nil
}

// Deposit adds money to an account and appends the matching audit record in
// the same database transaction.
func (s *bankService) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidAmount
	}

	mu := s.lockAccount(accountNumber)
	mu.Lock()
	defer mu.Unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	account, err := s.accountRepo.GetAccountByNumberForUpdate(ctx, txExecutor, accountNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to get account %d: %w", accountNumber, err)
	}
	if err := guardInvariants(account); err != nil {
		return nil, nil, err
	}

	led := ledger.New(account, s.policy)
	if _, err := led.Deposit(amount); err != nil {
		return nil, nil, err
	}

	if err := s.accountRepo.SaveAccountState(ctx, txExecutor, account); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to save account state: %w", err)
	}

	transaction := domain.NewTransaction(accountNumber, domain.TransactionTypeDeposit, amount, nil)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to record transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	return account, transaction, nil
}

// Withdraw debits an account under the bank's daily-limit and fee rules and
// returns the new balance and the fee charged. The WITHDRAWAL record and, if
// a fee applies, a separate FEE record are appended in the same database
// transaction as the balance mutation.
func (s *bankService) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, decimal.Decimal, error) {
	mu := s.lockAccount(accountNumber)
	mu.Lock()
	defer mu.Unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, decimal.Zero, fmt.Errorf("withdraw: transaction controller does not implement DBExecutor")
	}

	account, err := s.accountRepo.GetAccountByNumberForUpdate(ctx, txExecutor, accountNumber)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to get account %d: %w", accountNumber, err)
	}
	if err := guardInvariants(account); err != nil {
		return nil, decimal.Zero, err
	}

	led := ledger.New(account, s.policy)
	_, fee, err := led.Withdraw(amount, s.now())
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := s.accountRepo.SaveAccountState(ctx, txExecutor, account); err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to save account state: %w", err)
	}

	transaction := domain.NewTransaction(accountNumber, domain.TransactionTypeWithdrawal, amount, nil)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to record transaction: %w", err)
	}
	if fee.IsPositive() {
		feeTx := domain.NewTransaction(accountNumber, domain.TransactionTypeFee, fee, nil)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, feeTx); err != nil {
			return nil, decimal.Zero, fmt.Errorf("withdraw: failed to record fee: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to commit transaction: %w", err)
	}

	return account, fee, nil
}

// Transfer debits the source under withdrawal rules and credits the target
// with the same amount as one atomic operation. It appends two linked
// TRANSFER records (debit and credit) plus an optional FEE record. Locks are
// taken in ascending account-number order so opposing transfers cannot
// deadlock.
func (s *bankService) Transfer(ctx context.Context, fromAccountNumber, toAccountNumber int64, amount decimal.Decimal) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	if fromAccountNumber == toAccountNumber {
		return nil, util.ErrSameAccountTransfer
	}

	first, second := fromAccountNumber, toAccountNumber
	if second < first {
		first, second = second, first
	}
	muFirst := s.lockAccount(first)
	muSecond := s.lockAccount(second)
	muFirst.Lock()
	defer muFirst.Unlock()
	muSecond.Lock()
	defer muSecond.Unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	// Row locks follow the same ascending order as the mutexes.
	accounts := make(map[int64]*domain.Account, 2)
	for _, number := range []int64{first, second} {
		acct, err := s.accountRepo.GetAccountByNumberForUpdate(ctx, txExecutor, number)
		if err != nil {
			return nil, fmt.Errorf("transfer: failed to get account %d: %w", number, err)
		}
		if err := guardInvariants(acct); err != nil {
			return nil, err
		}
		accounts[number] = acct
	}
	fromAccount := accounts[fromAccountNumber]
	toAccount := accounts[toAccountNumber]

	fromLedger := ledger.New(fromAccount, s.policy)
	toLedger := ledger.New(toAccount, s.policy)

	_, fee, err := fromLedger.Transfer(amount, toLedger, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccountState(ctx, txExecutor, fromAccount); err != nil {
		return nil, fmt.Errorf("transfer: failed to save source account: %w", err)
	}
	if err := s.accountRepo.SaveAccountState(ctx, txExecutor, toAccount); err != nil {
		return nil, fmt.Errorf("transfer: failed to save target account: %w", err)
	}

	debit := domain.NewTransaction(fromAccountNumber, domain.TransactionTypeTransfer, amount, &toAccountNumber)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, debit); err != nil {
		return nil, fmt.Errorf("transfer: failed to record debit leg: %w", err)
	}
	credit := domain.NewTransaction(toAccountNumber, domain.TransactionTypeTransfer, amount, &fromAccountNumber)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, credit); err != nil {
		return nil, fmt.Errorf("transfer: failed to record credit leg: %w", err)
	}
	if fee.IsPositive() {
		feeTx := domain.NewTransaction(fromAccountNumber, domain.TransactionTypeFee, fee, nil)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, feeTx); err != nil {
			return nil, fmt.Errorf("transfer: failed to record fee: %w", err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return fromAccount, nil
}

// GetBalance returns the current state of one account.
func (s *bankService) GetBalance(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountByNumber(ctx, s.dbExecutor, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("get balance: failed to get account %d: %w", accountNumber, err)
	}
	return account, nil
}

// GetTransactionHistory returns the most recent audit records for an account,
// newest first.
func (s *bankService) GetTransactionHistory(ctx context.Context, accountNumber int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if _, err := s.accountRepo.GetAccountByNumber(ctx, s.dbExecutor, accountNumber); err != nil {
		return nil, fmt.Errorf("history: failed to get account %d: %w", accountNumber, err)
	}

	transactions, err := s.transactionRepo.GetRecentTransactions(ctx, s.dbExecutor, accountNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("history: failed to retrieve transactions: %w", err)
	}
	return transactions, nil
}
