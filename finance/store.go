package finance

import (
	"context"
	"errors"
	"time"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// ErrEmailTaken is returned by CreateUser when the email is already
// registered.
var ErrEmailTaken = errors.New("email already registered")

// ExpenseFilter narrows expense listings. Zero values mean "no
// constraint"; Page/PerPage of zero fall back to store defaults.
type ExpenseFilter struct {
	CategoryID string
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

// DebtFilter narrows debt listings.
type DebtFilter struct {
	Status   DebtStatus
	Priority DebtPriority
	Search   string // matches debtor name, case-insensitive substring
}

// LendingFilter narrows lending listings.
type LendingFilter struct {
	Status LendingStatus
	Search string // matches borrower name
}

// Store is the persistence surface for the finance domain. It embeds
// the ledger store so a single transaction-scoped value can carry a
// domain write together with its balance mutation and entry append.
//
// Get* methods return ledger.ErrNotFound when no row matches; they do
// not enforce ownership, which is the service layer's job.
type Store interface {
	ledger.Store

	// Users
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Expenses
	SaveExpense(ctx context.Context, e Expense) error
	GetExpense(ctx context.Context, id string) (*Expense, error)
	ListExpenses(ctx context.Context, userID string, f ExpenseFilter) ([]Expense, int, error)

	// Categories
	SaveCategory(ctx context.Context, c Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, userID string) ([]Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CountExpensesByCategory(ctx context.Context, categoryID string) (int, error)

	// Income
	SaveIncome(ctx context.Context, in Income) error
	GetIncome(ctx context.Context, id string) (*Income, error)
	ListIncome(ctx context.Context, userID string) ([]Income, error)
	DeleteIncome(ctx context.Context, id string) error

	// Debts
	SaveDebt(ctx context.Context, d Debt) error
	GetDebt(ctx context.Context, id string) (*Debt, error)
	ListDebts(ctx context.Context, userID string, f DebtFilter) ([]Debt, error)
	DeleteDebt(ctx context.Context, id string) error
	SaveDebtPayment(ctx context.Context, p DebtPayment) error
	ListDebtPayments(ctx context.Context, debtID string) ([]DebtPayment, error)

	// Lendings
	SaveLending(ctx context.Context, l Lending) error
	GetLending(ctx context.Context, id string) (*Lending, error)
	ListLendings(ctx context.Context, userID string, f LendingFilter) ([]Lending, error)
	DeleteLending(ctx context.Context, id string) error
	SaveLendingPayment(ctx context.Context, p LendingPayment) error
	GetLendingPayment(ctx context.Context, id string) (*LendingPayment, error)
	ListLendingPayments(ctx context.Context, lendingID string) ([]LendingPayment, error)
	DeleteLendingPayment(ctx context.Context, id string) error

	// Targets
	SaveTarget(ctx context.Context, t Target) error
	GetTarget(ctx context.Context, id string) (*Target, error)
	ListTargets(ctx context.Context, userID string) ([]Target, error)
	DeleteTarget(ctx context.Context, id string) error

	// Export history
	SaveExportRecord(ctx context.Context, r ExportRecord) error
	ListExportRecords(ctx context.Context, userID string) ([]ExportRecord, error)
}

// TxRunner runs fn against a transaction-scoped Store. fn returning an
// error rolls everything back; otherwise the transaction commits.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}

// User is an account holder. PasswordHash is a bcrypt hash, never the
// raw password.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Language     string // "en" or "ar"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
