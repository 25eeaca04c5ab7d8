// internal/api/handler/bank.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"atm-backend/internal/money"
	"atm-backend/internal/service"
	"atm-backend/internal/util"
)

// DefaultTimeout bounds every request, and with it all store I/O underneath.
const DefaultTimeout = 15 * time.Second

// BankHandler handles HTTP requests for the ATM backend.
type BankHandler struct {
	service service.BankService
	logger  *slog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(svc service.BankService, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *BankHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *BankHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount), util.IsError(err, util.ErrSameAccountTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrAuth):
		statusCode = http.StatusUnauthorized
		message = "Invalid account number or PIN"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = err.Error()
	case util.IsError(err, util.ErrDailyLimitExceeded):
		statusCode = http.StatusForbidden
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrAccountNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Storage temporarily unavailable, retry later"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

func accountNumberParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "accountNumber"), 10, 64)
}

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	PIN            string `json:"pin"`
	InitialDeposit string `json:"initial_deposit"`
}

// CreateAccount handles account opening.
// POST /accounts
func (h *BankHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	if req.InitialDeposit == "" {
		req.InitialDeposit = "0"
	}
	initialDeposit, err := money.Parse(req.InitialDeposit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req.Name, req.PIN, initialDeposit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":        "Account created",
		"account_number": account.AccountNumber,
		"balance":        account.Balance,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	AccountNumber int64  `json:"account_number"`
	PIN           string `json:"pin"`
}

// Login handles the authentication request.
// POST /auth/login
func (h *BankHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrAuth)
		return
	}

	account, err := h.service.Login(r.Context(), req.AccountNumber, req.PIN)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Login successful",
		"account_number": account.AccountNumber,
		"balance":        account.Balance,
	})
}

// AmountRequest represents the request body for deposit and withdrawal.
type AmountRequest struct {
	Amount string `json:"amount"`
}

// Deposit handles the deposit money request.
// POST /accounts/{accountNumber}/deposit
func (h *BankHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := accountNumberParam(r)
	if err != nil {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, transaction, err := h.service.Deposit(r.Context(), accountNumber, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Deposit successful",
		"account_number": account.AccountNumber,
		"new_balance":    account.Balance,
		"transaction_id": transaction.ID,
	})
}

// Withdraw handles the withdraw money request.
// POST /accounts/{accountNumber}/withdraw
func (h *BankHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := accountNumberParam(r)
	if err != nil {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	account, fee, err := h.service.Withdraw(r.Context(), accountNumber, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Withdrawal successful",
		"account_number": account.AccountNumber,
		"new_balance":    account.Balance,
		"fee_charged":    fee,
	})
}

// TransferRequest represents the request body for transfers.
type TransferRequest struct {
	FromAccountNumber int64  `json:"from_account_number"`
	ToAccountNumber   int64  `json:"to_account_number"`
	Amount            string `json:"amount"`
}

// Transfer handles the transfer money request.
// POST /transfers
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	if req.FromAccountNumber == 0 || req.ToAccountNumber == 0 {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	fromAccount, err := h.service.Transfer(r.Context(), req.FromAccountNumber, req.ToAccountNumber, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Transfer successful",
		"source_new_balance": fromAccount.Balance,
	})
}

// GetBalance handles the balance enquiry request.
// GET /accounts/{accountNumber}/balance
func (h *BankHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := accountNumberParam(r)
	if err != nil {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	account, err := h.service.GetBalance(r.Context(), accountNumber)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_number": account.AccountNumber,
		"balance":        account.Balance,
	})
}

// GetTransactionHistory handles the transaction history request.
// GET /accounts/{accountNumber}/transactions?limit=5
func (h *BankHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := accountNumberParam(r)
	if err != nil {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = service.DefaultHistoryLimit
	}

	transactions, err := h.service.GetTransactionHistory(r.Context(), accountNumber, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":  transactions,
		"limit": limit,
	})
}
