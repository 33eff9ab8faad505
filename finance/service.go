package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// SERVICE - Domain lifecycle hooks with transactional guarantees
// =============================================================================

// Service owns the write paths of the finance domain. Every operation
// that moves money runs inside a single store transaction: the domain
// row, the balance mutation, and the ledger entry commit together or
// not at all.
type Service struct {
	Store Store
	Tx    TxRunner

	// Now is a clock hook for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store Store, tx TxRunner) *Service {
	return &Service{Store: store, Tx: tx, Now: time.Now}
}

// =============================================================================
// BALANCE
// =============================================================================

// Balance returns the user's current balance, zero if none exists yet.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	b, err := s.Store.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return b.Current, nil
}

// AddToBalance credits the balance with money from an external source
// (salary, gift, and so on). The source must be one of the
// client-suppliable credit sources.
func (s *Service) AddToBalance(ctx context.Context, userID string, amount decimal.Decimal, source ledger.Source, description string) (*ledger.Entry, error) {
	valid := false
	for _, cs := range ledger.CreditSources {
		if source == cs {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("source %q: %w", source, ledger.ErrInvalidAmount)
	}

	var entry ledger.Entry
	err := s.Tx.WithTx(ctx, func(tx Store) error {
		e, _, err := ledger.NewMover(tx).Credit(ctx, userID, amount, source, description)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Transactions lists the user's ledger entries, newest first.
func (s *Service) Transactions(ctx context.Context, userID string, f ledger.EntryFilter) ([]ledger.Entry, int, error) {
	return s.Store.Entries(ctx, userID, f)
}

// =============================================================================
// EXPENSES - Each lifecycle change mirrors into exactly one ledger write
// =============================================================================

// CreateExpense validates the category, stores the expense, and debits
// the balance by the full amount in one transaction.
func (s *Service) CreateExpense(ctx context.Context, userID, categoryID string, amount decimal.Decimal, date time.Time, note string) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	cat, err := s.categoryFor(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	exp := Expense{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: cat.ID,
		Amount:     amount,
		Date:       date,
		Note:       note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveExpense(ctx, exp); err != nil {
			return err
		}
		desc := note
		if desc == "" {
			desc = cat.NameEN
		}
		_, _, err := ledger.NewMover(tx).Debit(ctx, userID, amount, exp.ID, desc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// UpdateExpense applies field changes and mirrors any amount change as
// a single delta entry: a further debit when the amount grew, a refund
// when it shrank. A note-only or category-only update writes nothing
// to the ledger.
func (s *Service) UpdateExpense(ctx context.Context, userID, expenseID string, categoryID *string, amount *decimal.Decimal, date *time.Time, note *string) (*Expense, error) {
	exp, err := s.expenseFor(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	cat, err := s.Store.GetCategory(ctx, exp.CategoryID)
	if err != nil {
		return nil, err
	}
	if categoryID != nil && *categoryID != exp.CategoryID {
		cat, err = s.categoryFor(ctx, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		exp.CategoryID = cat.ID
	}
	if date != nil {
		exp.Date = *date
	}
	if note != nil {
		exp.Note = *note
	}

	delta := decimal.Zero
	if amount != nil {
		if !amount.IsPositive() {
			return nil, ledger.ErrInvalidAmount
		}
		delta = amount.Sub(exp.Amount)
		exp.Amount = *amount
	}
	exp.UpdatedAt = s.Now()

	err = s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveExpense(ctx, *exp); err != nil {
			return err
		}
		if delta.IsZero() {
			return nil
		}
		m := ledger.NewMover(tx)
		desc := fmt.Sprintf("Updated: %s", cat.NameEN)
		if delta.IsPositive() {
			_, _, err := m.Debit(ctx, userID, delta, exp.ID, desc)
			return err
		}
		_, _, err := m.Refund(ctx, userID, delta.Neg(), exp.ID, desc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// DeleteExpense soft-deletes the expense and refunds its full amount.
// The ledger entries from the expense's lifetime remain untouched; the
// refund entry makes the net effect zero.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	exp, err := s.expenseFor(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	cat, err := s.Store.GetCategory(ctx, exp.CategoryID)
	if err != nil {
		return err
	}

	now := s.Now()
	exp.DeletedAt = &now
	exp.UpdatedAt = now

	return s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveExpense(ctx, *exp); err != nil {
			return err
		}
		_, _, err := ledger.NewMover(tx).Refund(ctx, userID, exp.Amount, exp.ID,
			fmt.Sprintf("Deleted: %s", cat.NameEN))
		return err
	})
}

// GetExpense returns one expense after an ownership check.
func (s *Service) GetExpense(ctx context.Context, userID, expenseID string) (*Expense, error) {
	return s.expenseFor(ctx, userID, expenseID)
}

// ListExpenses lists the user's non-deleted expenses.
func (s *Service) ListExpenses(ctx context.Context, userID string, f ExpenseFilter) ([]Expense, int, error) {
	return s.Store.ListExpenses(ctx, userID, f)
}

// expenseFor loads an expense and enforces ownership. Another user's
// expense surfaces as not-found rather than forbidden so that IDs do
// not leak across accounts.
func (s *Service) expenseFor(ctx context.Context, userID, expenseID string) (*Expense, error) {
	exp, err := s.Store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if exp.UserID != userID || exp.DeletedAt != nil {
		return nil, ledger.ErrNotFound
	}
	return exp, nil
}

// categoryFor loads a category the user may attach expenses to: one of
// the system defaults or one of their own.
func (s *Service) categoryFor(ctx context.Context, userID, categoryID string) (*Category, error) {
	cat, err := s.Store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !cat.IsDefault && cat.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return cat, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

// CreateCategory adds a user-owned custom category.
func (s *Service) CreateCategory(ctx context.Context, userID, nameEN, nameAR, icon, color string) (*Category, error) {
	nameEN = strings.TrimSpace(nameEN)
	if nameEN == "" {
		return nil, fmt.Errorf("category name required: %w", ledger.ErrInvalidAmount)
	}
	now := s.Now()
	cat := Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		NameEN:    nameEN,
		NameAR:    strings.TrimSpace(nameAR),
		Icon:      icon,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.SaveCategory(ctx, cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory edits a user-owned category. Defaults are immutable.
func (s *Service) UpdateCategory(ctx context.Context, userID, categoryID string, nameEN, nameAR, icon, color *string) (*Category, error) {
	cat, err := s.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if nameEN != nil {
		cat.NameEN = strings.TrimSpace(*nameEN)
	}
	if nameAR != nil {
		cat.NameAR = strings.TrimSpace(*nameAR)
	}
	if icon != nil {
		cat.Icon = *icon
	}
	if color != nil {
		cat.Color = *color
	}
	cat.UpdatedAt = s.Now()
	if err := s.Store.SaveCategory(ctx, *cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a user-owned category, refusing while any
// non-deleted expense still references it.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	cat, err := s.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	n, err := s.Store.CountExpensesByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ledger.ErrCategoryInUse
	}
	return s.Store.DeleteCategory(ctx, cat.ID)
}

// ListCategories returns system defaults plus the user's own.
func (s *Service) ListCategories(ctx context.Context, userID string) ([]Category, error) {
	return s.Store.ListCategories(ctx, userID)
}

func (s *Service) ownedCategory(ctx context.Context, userID, categoryID string) (*Category, error) {
	cat, err := s.Store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.IsDefault {
		return nil, ledger.ErrDefaultCategory
	}
	if cat.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return cat, nil
}

// =============================================================================
// INCOME - History of monthly income, no ledger coupling
// =============================================================================

// SetIncome appends a new income row. Existing rows are never edited
// by this path; the history is how past months keep their figures.
func (s *Service) SetIncome(ctx context.Context, userID string, monthly decimal.Decimal, effectiveFrom time.Time) (*Income, error) {
	if monthly.IsNegative() {
		return nil, ledger.ErrInvalidAmount
	}
	now := s.Now()
	inc := Income{
		ID:            uuid.NewString(),
		UserID:        userID,
		MonthlyAmount: monthly,
		EffectiveFrom: effectiveFrom,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.SaveIncome(ctx, inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

// UpdateIncome corrects an existing history row in place.
func (s *Service) UpdateIncome(ctx context.Context, userID, incomeID string, monthly *decimal.Decimal, effectiveFrom *time.Time) (*Income, error) {
	inc, err := s.incomeFor(ctx, userID, incomeID)
	if err != nil {
		return nil, err
	}
	if monthly != nil {
		if monthly.IsNegative() {
			return nil, ledger.ErrInvalidAmount
		}
		inc.MonthlyAmount = *monthly
	}
	if effectiveFrom != nil {
		inc.EffectiveFrom = *effectiveFrom
	}
	inc.UpdatedAt = s.Now()
	if err := s.Store.SaveIncome(ctx, *inc); err != nil {
		return nil, err
	}
	return inc, nil
}

// DeleteIncome removes a history row.
func (s *Service) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	inc, err := s.incomeFor(ctx, userID, incomeID)
	if err != nil {
		return err
	}
	return s.Store.DeleteIncome(ctx, inc.ID)
}

// GetCurrentIncome returns the income effective today, nil if none.
func (s *Service) GetCurrentIncome(ctx context.Context, userID string) (*Income, error) {
	history, err := s.Store.ListIncome(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CurrentIncome(history, s.Now()), nil
}

// IncomeHistory lists all income rows, newest effective first.
func (s *Service) IncomeHistory(ctx context.Context, userID string) ([]Income, error) {
	return s.Store.ListIncome(ctx, userID)
}

func (s *Service) incomeFor(ctx context.Context, userID, incomeID string) (*Income, error) {
	inc, err := s.Store.GetIncome(ctx, incomeID)
	if err != nil {
		return nil, err
	}
	if inc.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return inc, nil
}
