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
// USERS
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u finance.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createUser(ctx, s.db, u)
}

func (ts *txStore) CreateUser(ctx context.Context, u finance.User) error {
	return createUser(ctx, ts.tx, u)
}

func createUser(ctx context.Context, c conn, u finance.User) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Language,
		u.CreatedAt.UTC().Format(time.RFC3339), u.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return finance.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = "id, name, email, password_hash, language, created_at, updated_at"

func scanUser(row *sql.Row) (*finance.User, error) {
	var u finance.User
	var createdAt, updatedAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Language, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getUser(ctx, s.db, id)
}

func (ts *txStore) GetUser(ctx context.Context, id string) (*finance.User, error) {
	return getUser(ctx, ts.tx, id)
}

func getUser(ctx context.Context, c conn, id string) (*finance.User, error) {
	return scanUser(c.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getUserByEmail(ctx, s.db, email)
}

func (ts *txStore) GetUserByEmail(ctx context.Context, email string) (*finance.User, error) {
	return getUserByEmail(ctx, ts.tx, email)
}

func getUserByEmail(ctx context.Context, c conn, email string) (*finance.User, error) {
	return scanUser(c.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// =============================================================================
// BALANCES (ledger.Store interface)
// =============================================================================

func (s *Store) GetBalance(ctx context.Context, userID string) (*ledger.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, userID)
}

func (ts *txStore) GetBalance(ctx context.Context, userID string) (*ledger.Balance, error) {
	return getBalance(ctx, ts.tx, userID)
}

func getBalance(ctx context.Context, c conn, userID string) (*ledger.Balance, error) {
	var b ledger.Balance
	var current, createdAt, updatedAt string
	err := c.QueryRowContext(ctx,
		"SELECT id, user_id, current, created_at, updated_at FROM balances WHERE user_id = ?",
		userID,
	).Scan(&b.ID, &b.UserID, &current, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Current = parseDecimal(current)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

func (s *Store) SaveBalance(ctx context.Context, b ledger.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBalance(ctx, s.db, b)
}

func (ts *txStore) SaveBalance(ctx context.Context, b ledger.Balance) error {
	return saveBalance(ctx, ts.tx, b)
}

func saveBalance(ctx context.Context, c conn, b ledger.Balance) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO balances (id, user_id, current, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current = excluded.current,
			updated_at = excluded.updated_at
	`, b.ID, b.UserID, b.Current.String(),
		b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

// =============================================================================
// BALANCE ENTRIES - Append-only, no UPDATE or DELETE ever
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, e)
}

func (ts *txStore) AppendEntry(ctx context.Context, e ledger.Entry) error {
	return appendEntry(ctx, ts.tx, e)
}

func appendEntry(ctx context.Context, c conn, e ledger.Entry) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO balance_entries
		(id, user_id, direction, amount, source, description, balance_after,
		 expense_id, debt_payment_id, lending_id, target_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.UserID,
		string(e.Direction),
		e.Amount.String(),
		string(e.Source),
		nullString(e.Description),
		e.BalanceAfter.String(),
		nullString(e.ExpenseID),
		nullString(e.DebtPaymentID),
		nullString(e.LendingID),
		nullString(e.TargetID),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

const entryColumns = `id, user_id, direction, amount, source, description, balance_after,
	expense_id, debt_payment_id, lending_id, target_id, created_at`

func scanEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	defer rows.Close()
	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var direction, amount, source, balanceAfter, createdAt string
		var description, expenseID, debtPaymentID, lendingID, targetID sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &direction, &amount, &source, &description,
			&balanceAfter, &expenseID, &debtPaymentID, &lendingID, &targetID, &createdAt); err != nil {
			return nil, err
		}
		e.Direction = ledger.Direction(direction)
		e.Amount = parseDecimal(amount)
		e.Source = ledger.Source(source)
		e.Description = description.String
		e.BalanceAfter = parseDecimal(balanceAfter)
		e.ExpenseID = expenseID.String
		e.DebtPaymentID = debtPaymentID.String
		e.LendingID = lendingID.String
		e.TargetID = targetID.String
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Entries(ctx context.Context, userID string, f ledger.EntryFilter) ([]ledger.Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntries(ctx, s.db, userID, f)
}

func (ts *txStore) Entries(ctx context.Context, userID string, f ledger.EntryFilter) ([]ledger.Entry, int, error) {
	return listEntries(ctx, ts.tx, userID, f)
}

func listEntries(ctx context.Context, c conn, userID string, f ledger.EntryFilter) ([]ledger.Entry, int, error) {
	where := "user_id = ?"
	args := []any{userID}
	if f.Direction != "" {
		where += " AND direction = ?"
		args = append(args, string(f.Direction))
	}
	if f.Source != "" {
		where += " AND source = ?"
		args = append(args, string(f.Source))
	}

	var total int
	if err := c.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM balance_entries WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	args = append(args, perPage, (page-1)*perPage)

	rows, err := c.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM balance_entries WHERE "+where+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *Store) AllEntries(ctx context.Context, userID string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return allEntries(ctx, s.db, userID)
}

func (ts *txStore) AllEntries(ctx context.Context, userID string) ([]ledger.Entry, error) {
	return allEntries(ctx, ts.tx, userID)
}

func allEntries(ctx context.Context, c conn, userID string) ([]ledger.Entry, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM balance_entries WHERE user_id = ? ORDER BY created_at, id",
		userID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}
