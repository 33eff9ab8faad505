package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) SaveExpense(ctx context.Context, e finance.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveExpense(ctx, s.db, e)
}

func (ts *txStore) SaveExpense(ctx context.Context, e finance.Expense) error {
	return saveExpense(ctx, ts.tx, e)
}

func saveExpense(ctx context.Context, c conn, e finance.Expense) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, category_id, amount, date, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category_id = excluded.category_id,
			amount = excluded.amount,
			date = excluded.date,
			note = excluded.note,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`, e.ID, e.UserID, e.CategoryID, e.Amount.String(),
		e.Date.UTC().Format(time.RFC3339), nullString(e.Note),
		e.CreatedAt.UTC().Format(time.RFC3339), e.UpdatedAt.UTC().Format(time.RFC3339),
		nullTime(e.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

const expenseColumns = "id, user_id, category_id, amount, date, note, created_at, updated_at, deleted_at"

func scanExpense(scan func(dest ...any) error) (*finance.Expense, error) {
	var e finance.Expense
	var amount, date, createdAt, updatedAt string
	var note, deletedAt sql.NullString
	err := scan(&e.ID, &e.UserID, &e.CategoryID, &amount, &date, &note,
		&createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Amount = parseDecimal(amount)
	e.Date = parseTime(date)
	e.Note = note.String
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	e.DeletedAt = parseTimePtr(deletedAt)
	return &e, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*finance.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getExpense(ctx, s.db, id)
}

func (ts *txStore) GetExpense(ctx context.Context, id string) (*finance.Expense, error) {
	return getExpense(ctx, ts.tx, id)
}

func getExpense(ctx context.Context, c conn, id string) (*finance.Expense, error) {
	row := c.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	return scanExpense(row.Scan)
}

func (s *Store) ListExpenses(ctx context.Context, userID string, f finance.ExpenseFilter) ([]finance.Expense, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listExpenses(ctx, s.db, userID, f)
}

func (ts *txStore) ListExpenses(ctx context.Context, userID string, f finance.ExpenseFilter) ([]finance.Expense, int, error) {
	return listExpenses(ctx, ts.tx, userID, f)
}

// listExpenses returns non-deleted expenses, newest date first. The
// date range is half-open: From inclusive, To exclusive.
func listExpenses(ctx context.Context, c conn, userID string, f finance.ExpenseFilter) ([]finance.Expense, int, error) {
	where := "user_id = ? AND deleted_at IS NULL"
	args := []any{userID}
	if f.CategoryID != "" {
		where += " AND category_id = ?"
		args = append(args, f.CategoryID)
	}
	if f.From != nil {
		where += " AND date >= ?"
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		where += " AND date < ?"
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}

	var total int
	if err := c.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + where +
		" ORDER BY date DESC, created_at DESC"
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PerPage, (page-1)*f.PerPage)
	}

	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []finance.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (s *Store) CountExpensesByCategory(ctx context.Context, categoryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countExpensesByCategory(ctx, s.db, categoryID)
}

func (ts *txStore) CountExpensesByCategory(ctx context.Context, categoryID string) (int, error) {
	return countExpensesByCategory(ctx, ts.tx, categoryID)
}

func countExpensesByCategory(ctx context.Context, c conn, categoryID string) (int, error) {
	var n int
	err := c.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE category_id = ? AND deleted_at IS NULL",
		categoryID).Scan(&n)
	return n, err
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (s *Store) SaveCategory(ctx context.Context, cat finance.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCategory(ctx, s.db, cat)
}

func (ts *txStore) SaveCategory(ctx context.Context, cat finance.Category) error {
	return saveCategory(ctx, ts.tx, cat)
}

func saveCategory(ctx context.Context, c conn, cat finance.Category) error {
	isDefault := 0
	if cat.IsDefault {
		isDefault = 1
	}
	_, err := c.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name_en, name_ar, icon, color, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name_en = excluded.name_en,
			name_ar = excluded.name_ar,
			icon = excluded.icon,
			color = excluded.color,
			updated_at = excluded.updated_at
	`, cat.ID, cat.UserID, cat.NameEN, cat.NameAR, cat.Icon, cat.Color, isDefault,
		cat.CreatedAt.UTC().Format(time.RFC3339), cat.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func scanCategory(scan func(dest ...any) error) (*finance.Category, error) {
	var cat finance.Category
	var isDefault int
	var createdAt, updatedAt string
	err := scan(&cat.ID, &cat.UserID, &cat.NameEN, &cat.NameAR, &cat.Icon, &cat.Color,
		&isDefault, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cat.IsDefault = isDefault == 1
	cat.CreatedAt = parseTime(createdAt)
	cat.UpdatedAt = parseTime(updatedAt)
	return &cat, nil
}

const categoryColumns = "id, user_id, name_en, name_ar, icon, color, is_default, created_at, updated_at"

func (s *Store) GetCategory(ctx context.Context, id string) (*finance.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCategory(ctx, s.db, id)
}

func (ts *txStore) GetCategory(ctx context.Context, id string) (*finance.Category, error) {
	return getCategory(ctx, ts.tx, id)
}

func getCategory(ctx context.Context, c conn, id string) (*finance.Category, error) {
	row := c.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	return scanCategory(row.Scan)
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]finance.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCategories(ctx, s.db, userID)
}

func (ts *txStore) ListCategories(ctx context.Context, userID string) ([]finance.Category, error) {
	return listCategories(ctx, ts.tx, userID)
}

// listCategories returns the system defaults followed by the user's
// own categories.
func listCategories(ctx context.Context, c conn, userID string) ([]finance.Category, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE is_default = 1 OR user_id = ?"+
			" ORDER BY is_default DESC, name_en", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Category
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *cat)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCategory(ctx, s.db, id)
}

func (ts *txStore) DeleteCategory(ctx context.Context, id string) error {
	return deleteCategory(ctx, ts.tx, id)
}

func deleteCategory(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND is_default = 0", id)
	return err
}

// =============================================================================
// INCOME
// =============================================================================

func (s *Store) SaveIncome(ctx context.Context, in finance.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveIncome(ctx, s.db, in)
}

func (ts *txStore) SaveIncome(ctx context.Context, in finance.Income) error {
	return saveIncome(ctx, ts.tx, in)
}

func saveIncome(ctx context.Context, c conn, in finance.Income) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO income (id, user_id, monthly_amount, effective_from, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			monthly_amount = excluded.monthly_amount,
			effective_from = excluded.effective_from,
			updated_at = excluded.updated_at
	`, in.ID, in.UserID, in.MonthlyAmount.String(),
		in.EffectiveFrom.UTC().Format(time.RFC3339),
		in.CreatedAt.UTC().Format(time.RFC3339), in.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save income: %w", err)
	}
	return nil
}

func scanIncome(scan func(dest ...any) error) (*finance.Income, error) {
	var in finance.Income
	var amount, effectiveFrom, createdAt, updatedAt string
	err := scan(&in.ID, &in.UserID, &amount, &effectiveFrom, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	in.MonthlyAmount = parseDecimal(amount)
	in.EffectiveFrom = parseTime(effectiveFrom)
	in.CreatedAt = parseTime(createdAt)
	in.UpdatedAt = parseTime(updatedAt)
	return &in, nil
}

func (s *Store) GetIncome(ctx context.Context, id string) (*finance.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getIncome(ctx, s.db, id)
}

func (ts *txStore) GetIncome(ctx context.Context, id string) (*finance.Income, error) {
	return getIncome(ctx, ts.tx, id)
}

func getIncome(ctx context.Context, c conn, id string) (*finance.Income, error) {
	row := c.QueryRowContext(ctx,
		"SELECT id, user_id, monthly_amount, effective_from, created_at, updated_at FROM income WHERE id = ?", id)
	return scanIncome(row.Scan)
}

func (s *Store) ListIncome(ctx context.Context, userID string) ([]finance.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listIncome(ctx, s.db, userID)
}

func (ts *txStore) ListIncome(ctx context.Context, userID string) ([]finance.Income, error) {
	return listIncome(ctx, ts.tx, userID)
}

func listIncome(ctx context.Context, c conn, userID string) ([]finance.Income, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT id, user_id, monthly_amount, effective_from, created_at, updated_at"+
			" FROM income WHERE user_id = ? ORDER BY effective_from DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Income
	for rows.Next() {
		in, err := scanIncome(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func (s *Store) DeleteIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteIncome(ctx, s.db, id)
}

func (ts *txStore) DeleteIncome(ctx context.Context, id string) error {
	return deleteIncome(ctx, ts.tx, id)
}

func deleteIncome(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM income WHERE id = ?", id)
	return err
}
