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
// LENDINGS
// =============================================================================

func (s *Store) SaveLending(ctx context.Context, l finance.Lending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLending(ctx, s.db, l)
}

func (ts *txStore) SaveLending(ctx context.Context, l finance.Lending) error {
	return saveLending(ctx, ts.tx, l)
}

func saveLending(ctx context.Context, c conn, l finance.Lending) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO lendings
		(id, user_id, borrower_name, borrower_phone, borrower_email, amount,
		 remaining_amount, currency, description, lending_date, expected_return_date,
		 status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			borrower_name = excluded.borrower_name,
			borrower_phone = excluded.borrower_phone,
			borrower_email = excluded.borrower_email,
			remaining_amount = excluded.remaining_amount,
			description = excluded.description,
			expected_return_date = excluded.expected_return_date,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`,
		l.ID, l.UserID, l.BorrowerName, nullString(l.BorrowerPhone), nullString(l.BorrowerEmail),
		l.Amount.String(), l.RemainingAmount.String(), l.Currency, nullString(l.Description),
		l.LendingDate.UTC().Format(time.RFC3339), nullTime(l.ExpectedReturnDate),
		string(l.Status), nullString(l.Notes),
		l.CreatedAt.UTC().Format(time.RFC3339), l.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save lending: %w", err)
	}
	return nil
}

const lendingColumns = `id, user_id, borrower_name, borrower_phone, borrower_email, amount,
	remaining_amount, currency, description, lending_date, expected_return_date,
	status, notes, created_at, updated_at`

func scanLending(scan func(dest ...any) error) (*finance.Lending, error) {
	var l finance.Lending
	var amount, remaining, lendingDate, status, createdAt, updatedAt string
	var phone, email, description, notes, expectedReturn sql.NullString
	err := scan(&l.ID, &l.UserID, &l.BorrowerName, &phone, &email, &amount, &remaining,
		&l.Currency, &description, &lendingDate, &expectedReturn, &status, &notes,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l.BorrowerPhone = phone.String
	l.BorrowerEmail = email.String
	l.Amount = parseDecimal(amount)
	l.RemainingAmount = parseDecimal(remaining)
	l.Description = description.String
	l.LendingDate = parseTime(lendingDate)
	l.ExpectedReturnDate = parseTimePtr(expectedReturn)
	l.Status = finance.LendingStatus(status)
	l.Notes = notes.String
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return &l, nil
}

func (s *Store) GetLending(ctx context.Context, id string) (*finance.Lending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLending(ctx, s.db, id)
}

func (ts *txStore) GetLending(ctx context.Context, id string) (*finance.Lending, error) {
	return getLending(ctx, ts.tx, id)
}

func getLending(ctx context.Context, c conn, id string) (*finance.Lending, error) {
	row := c.QueryRowContext(ctx, "SELECT "+lendingColumns+" FROM lendings WHERE id = ?", id)
	return scanLending(row.Scan)
}

func (s *Store) ListLendings(ctx context.Context, userID string, f finance.LendingFilter) ([]finance.Lending, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLendings(ctx, s.db, userID, f)
}

func (ts *txStore) ListLendings(ctx context.Context, userID string, f finance.LendingFilter) ([]finance.Lending, error) {
	return listLendings(ctx, ts.tx, userID, f)
}

func listLendings(ctx context.Context, c conn, userID string, f finance.LendingFilter) ([]finance.Lending, error) {
	where := "user_id = ?"
	args := []any{userID}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.Search != "" {
		where += " AND borrower_name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+f.Search+"%")
	}

	rows, err := c.QueryContext(ctx,
		"SELECT "+lendingColumns+" FROM lendings WHERE "+where+
			" ORDER BY lending_date DESC, created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Lending
	for rows.Next() {
		l, err := scanLending(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLending(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteLending(ctx, s.db, id)
}

func (ts *txStore) DeleteLending(ctx context.Context, id string) error {
	return deleteLending(ctx, ts.tx, id)
}

// deleteLending removes the lending; payment rows go with it via the
// ON DELETE CASCADE foreign key.
func deleteLending(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM lendings WHERE id = ?", id)
	return err
}

// =============================================================================
// LENDING PAYMENTS
// =============================================================================

func (s *Store) SaveLendingPayment(ctx context.Context, p finance.LendingPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLendingPayment(ctx, s.db, p)
}

func (ts *txStore) SaveLendingPayment(ctx context.Context, p finance.LendingPayment) error {
	return saveLendingPayment(ctx, ts.tx, p)
}

func saveLendingPayment(ctx context.Context, c conn, p finance.LendingPayment) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO lending_payments
		(id, lending_id, amount, payment_date, payment_method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.LendingID, p.Amount.String(),
		p.PaymentDate.UTC().Format(time.RFC3339), string(p.PaymentMethod),
		nullString(p.Notes), p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save lending payment: %w", err)
	}
	return nil
}

const lendingPaymentColumns = "id, lending_id, amount, payment_date, payment_method, notes, created_at"

func scanLendingPayment(scan func(dest ...any) error) (*finance.LendingPayment, error) {
	var p finance.LendingPayment
	var amount, paymentDate, method, createdAt string
	var notes sql.NullString
	err := scan(&p.ID, &p.LendingID, &amount, &paymentDate, &method, &notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Amount = parseDecimal(amount)
	p.PaymentDate = parseTime(paymentDate)
	p.PaymentMethod = finance.PaymentMethod(method)
	p.Notes = notes.String
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func (s *Store) GetLendingPayment(ctx context.Context, id string) (*finance.LendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLendingPayment(ctx, s.db, id)
}

func (ts *txStore) GetLendingPayment(ctx context.Context, id string) (*finance.LendingPayment, error) {
	return getLendingPayment(ctx, ts.tx, id)
}

func getLendingPayment(ctx context.Context, c conn, id string) (*finance.LendingPayment, error) {
	row := c.QueryRowContext(ctx,
		"SELECT "+lendingPaymentColumns+" FROM lending_payments WHERE id = ?", id)
	return scanLendingPayment(row.Scan)
}

func (s *Store) ListLendingPayments(ctx context.Context, lendingID string) ([]finance.LendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLendingPayments(ctx, s.db, lendingID)
}

func (ts *txStore) ListLendingPayments(ctx context.Context, lendingID string) ([]finance.LendingPayment, error) {
	return listLendingPayments(ctx, ts.tx, lendingID)
}

func listLendingPayments(ctx context.Context, c conn, lendingID string) ([]finance.LendingPayment, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT "+lendingPaymentColumns+" FROM lending_payments WHERE lending_id = ?"+
			" ORDER BY payment_date DESC, created_at DESC", lendingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.LendingPayment
	for rows.Next() {
		p, err := scanLendingPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLendingPayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteLendingPayment(ctx, s.db, id)
}

func (ts *txStore) DeleteLendingPayment(ctx context.Context, id string) error {
	return deleteLendingPayment(ctx, ts.tx, id)
}

func deleteLendingPayment(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM lending_payments WHERE id = ?", id)
	return err
}
