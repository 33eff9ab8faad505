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
// DEBTS
// =============================================================================

func (s *Store) SaveDebt(ctx context.Context, d finance.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDebt(ctx, s.db, d)
}

func (ts *txStore) SaveDebt(ctx context.Context, d finance.Debt) error {
	return saveDebt(ctx, ts.tx, d)
}

func saveDebt(ctx context.Context, c conn, d finance.Debt) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO debts
		(id, user_id, debtor_name, debtor_phone, debtor_email, total_amount, paid_amount,
		 description, priority, payment_type, installment_amount, due_date, start_date,
		 status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			debtor_name = excluded.debtor_name,
			debtor_phone = excluded.debtor_phone,
			debtor_email = excluded.debtor_email,
			total_amount = excluded.total_amount,
			paid_amount = excluded.paid_amount,
			description = excluded.description,
			priority = excluded.priority,
			payment_type = excluded.payment_type,
			installment_amount = excluded.installment_amount,
			due_date = excluded.due_date,
			start_date = excluded.start_date,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`,
		d.ID, d.UserID, d.DebtorName, nullString(d.DebtorPhone), nullString(d.DebtorEmail),
		d.TotalAmount.String(), d.PaidAmount.String(), nullString(d.Description),
		string(d.Priority), string(d.PaymentType), d.InstallmentAmount.String(),
		nullTime(d.DueDate), nullTime(d.StartDate), string(d.Status), nullString(d.Notes),
		d.CreatedAt.UTC().Format(time.RFC3339), d.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	return nil
}

const debtColumns = `id, user_id, debtor_name, debtor_phone, debtor_email, total_amount,
	paid_amount, description, priority, payment_type, installment_amount, due_date,
	start_date, status, notes, created_at, updated_at`

func scanDebt(scan func(dest ...any) error) (*finance.Debt, error) {
	var d finance.Debt
	var total, paid, installment, priority, paymentType, status, createdAt, updatedAt string
	var phone, email, description, notes, dueDate, startDate sql.NullString
	err := scan(&d.ID, &d.UserID, &d.DebtorName, &phone, &email, &total, &paid,
		&description, &priority, &paymentType, &installment, &dueDate, &startDate,
		&status, &notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.DebtorPhone = phone.String
	d.DebtorEmail = email.String
	d.TotalAmount = parseDecimal(total)
	d.PaidAmount = parseDecimal(paid)
	d.Description = description.String
	d.Priority = finance.DebtPriority(priority)
	d.PaymentType = finance.PaymentType(paymentType)
	d.InstallmentAmount = parseDecimal(installment)
	d.DueDate = parseTimePtr(dueDate)
	d.StartDate = parseTimePtr(startDate)
	d.Status = finance.DebtStatus(status)
	d.Notes = notes.String
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

func (s *Store) GetDebt(ctx context.Context, id string) (*finance.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDebt(ctx, s.db, id)
}

func (ts *txStore) GetDebt(ctx context.Context, id string) (*finance.Debt, error) {
	return getDebt(ctx, ts.tx, id)
}

func getDebt(ctx context.Context, c conn, id string) (*finance.Debt, error) {
	row := c.QueryRowContext(ctx, "SELECT "+debtColumns+" FROM debts WHERE id = ?", id)
	return scanDebt(row.Scan)
}

func (s *Store) ListDebts(ctx context.Context, userID string, f finance.DebtFilter) ([]finance.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listDebts(ctx, s.db, userID, f)
}

func (ts *txStore) ListDebts(ctx context.Context, userID string, f finance.DebtFilter) ([]finance.Debt, error) {
	return listDebts(ctx, ts.tx, userID, f)
}

func listDebts(ctx context.Context, c conn, userID string, f finance.DebtFilter) ([]finance.Debt, error) {
	where := "user_id = ?"
	args := []any{userID}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		where += " AND priority = ?"
		args = append(args, string(f.Priority))
	}
	if f.Search != "" {
		where += " AND debtor_name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+f.Search+"%")
	}

	rows, err := c.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE "+where+
			" ORDER BY priority, created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Debt
	for rows.Next() {
		d, err := scanDebt(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteDebt(ctx, s.db, id)
}

func (ts *txStore) DeleteDebt(ctx context.Context, id string) error {
	return deleteDebt(ctx, ts.tx, id)
}

// deleteDebt removes the debt; payment rows go with it via the
// ON DELETE CASCADE foreign key.
func deleteDebt(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	return err
}

// MarkOverdueDebts flips every open debt whose due date has passed to
// overdue, across all users. Returns the number of rows changed.
// Intended for the background sweep; safe to rerun.
func (s *Store) MarkOverdueDebts(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE debts SET status = 'overdue', updated_at = ?
		WHERE status IN ('pending', 'in_progress')
		  AND due_date IS NOT NULL AND due_date < ?
	`, now.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue debts: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// DEBT PAYMENTS - Append-only
// =============================================================================

func (s *Store) SaveDebtPayment(ctx context.Context, p finance.DebtPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDebtPayment(ctx, s.db, p)
}

func (ts *txStore) SaveDebtPayment(ctx context.Context, p finance.DebtPayment) error {
	return saveDebtPayment(ctx, ts.tx, p)
}

func saveDebtPayment(ctx context.Context, c conn, p finance.DebtPayment) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO debt_payments
		(id, debt_id, user_id, amount, payment_date, payment_method, notes, ledger_entry_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.DebtID, p.UserID, p.Amount.String(),
		p.PaymentDate.UTC().Format(time.RFC3339), string(p.PaymentMethod),
		nullString(p.Notes), nullString(p.LedgerEntryID),
		p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save debt payment: %w", err)
	}
	return nil
}

func (s *Store) ListDebtPayments(ctx context.Context, debtID string) ([]finance.DebtPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listDebtPayments(ctx, s.db, debtID)
}

func (ts *txStore) ListDebtPayments(ctx context.Context, debtID string) ([]finance.DebtPayment, error) {
	return listDebtPayments(ctx, ts.tx, debtID)
}

func listDebtPayments(ctx context.Context, c conn, debtID string) ([]finance.DebtPayment, error) {
	rows, err := c.QueryContext(ctx, `
		SELECT id, debt_id, user_id, amount, payment_date, payment_method, notes, ledger_entry_id, created_at
		FROM debt_payments WHERE debt_id = ? ORDER BY payment_date DESC, created_at DESC
	`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.DebtPayment
	for rows.Next() {
		var p finance.DebtPayment
		var amount, paymentDate, method, createdAt string
		var notes, entryID sql.NullString
		if err := rows.Scan(&p.ID, &p.DebtID, &p.UserID, &amount, &paymentDate,
			&method, &notes, &entryID, &createdAt); err != nil {
			return nil, err
		}
		p.Amount = parseDecimal(amount)
		p.PaymentDate = parseTime(paymentDate)
		p.PaymentMethod = finance.PaymentMethod(method)
		p.Notes = notes.String
		p.LedgerEntryID = entryID.String
		p.CreatedAt = parseTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}
