// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"atm-backend/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(bankHandler *handler.BankHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/auth/login", bankHandler.Login)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", bankHandler.CreateAccount)
		r.Post("/{accountNumber}/deposit", bankHandler.Deposit)
		r.Post("/{accountNumber}/withdraw", bankHandler.Withdraw)
		r.Get("/{accountNumber}/balance", bankHandler.GetBalance)
		r.Get("/{accountNumber}/transactions", bankHandler.GetTransactionHistory)
	})

	// Transfer is a separate top-level endpoint as it involves two accounts.
	r.Post("/transfers", bankHandler.Transfer)

	return r
}
