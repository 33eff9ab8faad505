/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. RequireAuth on everything under /api except /api/auth/register,
     /api/auth/login, and /health

ROUTE GROUPS:
  /api/auth/*         Registration, login, current user
  /api/balance/*      Balance, credits, ledger history
  /api/expenses/*     Expense CRUD and summary
  /api/categories/*   Category CRUD
  /api/income/*       Income history
  /api/debts/*        Debts and payments
  /api/lendings/*     Lendings and payments
  /api/targets/*      Savings targets
  /api/dashboard/*    Read-only aggregations
  /api/export/*       CSV / Excel / PDF downloads

SEE ALSO:
  - handlers.go and siblings: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Everything else requires a token
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/user", h.Me)

			r.Route("/balance", func(r chi.Router) {
				r.Get("/", h.GetBalance)
				r.Post("/add", h.AddBalance)
				r.Get("/transactions", h.GetTransactions)
				r.Get("/sources", h.GetSources)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.ListExpenses)
				r.Post("/", h.CreateExpense)
				r.Get("/summary", h.ExpenseSummary)
				r.Get("/{id}", h.GetExpense)
				r.Put("/{id}", h.UpdateExpense)
				r.Delete("/{id}", h.DeleteExpense)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.ListCategories)
				r.Post("/", h.CreateCategory)
				r.Put("/{id}", h.UpdateCategory)
				r.Delete("/{id}", h.DeleteCategory)
			})

			r.Route("/income", func(r chi.Router) {
				r.Get("/current", h.CurrentIncome)
				r.Get("/history", h.IncomeHistory)
				r.Post("/", h.SetIncome)
				r.Put("/{id}", h.UpdateIncome)
				r.Delete("/{id}", h.DeleteIncome)
			})

			r.Route("/debts", func(r chi.Router) {
				r.Get("/", h.ListDebts)
				r.Post("/", h.CreateDebt)
				r.Get("/statistics", h.DebtStatistics)
				r.Get("/{id}", h.GetDebt)
				r.Put("/{id}", h.UpdateDebt)
				r.Delete("/{id}", h.DeleteDebt)
				r.Post("/{id}/cancel", h.CancelDebt)
				r.Get("/{id}/payments", h.ListDebtPayments)
				r.Post("/{id}/payments", h.RecordDebtPayment)
			})

			r.Route("/lendings", func(r chi.Router) {
				r.Get("/", h.ListLendings)
				r.Post("/", h.CreateLending)
				r.Get("/summary", h.LendingSummary)
				r.Get("/{id}", h.GetLending)
				r.Put("/{id}", h.UpdateLending)
				r.Delete("/{id}", h.DeleteLending)
				r.Post("/{id}/forgive", h.ForgiveLending)
				r.Post("/{id}/payments", h.RecordLendingPayment)
				r.Delete("/{id}/payments/{paymentID}", h.DeleteLendingPayment)
			})

			r.Route("/targets", func(r chi.Router) {
				r.Get("/", h.ListTargets)
				r.Post("/", h.CreateTarget)
				r.Get("/{id}", h.GetTarget)
				r.Put("/{id}", h.UpdateTarget)
				r.Delete("/{id}", h.DeleteTarget)
				r.Post("/{id}/purchase", h.PurchaseTarget)
				r.Post("/{id}/cancel", h.CancelTarget)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", h.DashboardOverview)
				r.Get("/trends", h.DashboardTrends)
				r.Get("/category-breakdown", h.DashboardCategories)
			})

			r.Route("/export", func(r chi.Router) {
				r.Get("/csv", h.ExportCSV)
				r.Get("/excel", h.ExportExcel)
				r.Get("/pdf", h.ExportPDF)
				r.Get("/history", h.ExportHistory)
			})
		})
	})

	return r
}
