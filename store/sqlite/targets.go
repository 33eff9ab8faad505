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
// TARGETS
// =============================================================================

func (s *Store) SaveTarget(ctx context.Context, t finance.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTarget(ctx, s.db, t)
}

func (ts *txStore) SaveTarget(ctx context.Context, t finance.Target) error {
	return saveTarget(ctx, ts.tx, t)
}

func saveTarget(ctx context.Context, c conn, t finance.Target) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO targets
		(id, user_id, name, description, price, image_url, priority, status, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			image_url = excluded.image_url,
			priority = excluded.priority,
			status = excluded.status,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`, t.ID, t.UserID, t.Name, nullString(t.Description), t.Price.String(),
		nullString(t.ImageURL), string(t.Priority), string(t.Status), nullTime(t.CompletedAt),
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save target: %w", err)
	}
	return nil
}

const targetColumns = "id, user_id, name, description, price, image_url, priority, status, completed_at, created_at, updated_at"

func scanTarget(scan func(dest ...any) error) (*finance.Target, error) {
	var t finance.Target
	var price, priority, status, createdAt, updatedAt string
	var description, imageURL, completedAt sql.NullString
	err := scan(&t.ID, &t.UserID, &t.Name, &description, &price, &imageURL,
		&priority, &status, &completedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Price = parseDecimal(price)
	t.ImageURL = imageURL.String
	t.Priority = finance.TargetPriority(priority)
	t.Status = finance.TargetStatus(status)
	t.CompletedAt = parseTimePtr(completedAt)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func (s *Store) GetTarget(ctx context.Context, id string) (*finance.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTarget(ctx, s.db, id)
}

func (ts *txStore) GetTarget(ctx context.Context, id string) (*finance.Target, error) {
	return getTarget(ctx, ts.tx, id)
}

func getTarget(ctx context.Context, c conn, id string) (*finance.Target, error) {
	row := c.QueryRowContext(ctx, "SELECT "+targetColumns+" FROM targets WHERE id = ?", id)
	return scanTarget(row.Scan)
}

func (s *Store) ListTargets(ctx context.Context, userID string) ([]finance.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTargets(ctx, s.db, userID)
}

func (ts *txStore) ListTargets(ctx context.Context, userID string) ([]finance.Target, error) {
	return listTargets(ctx, ts.tx, userID)
}

// listTargets returns active targets first, then completed and
// cancelled, newest first within each group.
func listTargets(ctx context.Context, c conn, userID string) ([]finance.Target, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT "+targetColumns+" FROM targets WHERE user_id = ?"+
			" ORDER BY CASE status WHEN 'active' THEN 0 WHEN 'completed' THEN 1 ELSE 2 END, created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Target
	for rows.Next() {
		t, err := scanTarget(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTarget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteTarget(ctx, s.db, id)
}

func (ts *txStore) DeleteTarget(ctx context.Context, id string) error {
	return deleteTarget(ctx, ts.tx, id)
}

func deleteTarget(ctx context.Context, c conn, id string) error {
	_, err := c.ExecContext(ctx, "DELETE FROM targets WHERE id = ?", id)
	return err
}

// =============================================================================
// EXPORT HISTORY - Append-only audit trail
// =============================================================================

func (s *Store) SaveExportRecord(ctx context.Context, r finance.ExportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveExportRecord(ctx, s.db, r)
}

func (ts *txStore) SaveExportRecord(ctx context.Context, r finance.ExportRecord) error {
	return saveExportRecord(ctx, ts.tx, r)
}

func saveExportRecord(ctx context.Context, c conn, r finance.ExportRecord) error {
	_, err := c.ExecContext(ctx, `
		INSERT INTO export_history
		(id, user_id, format, date_from, date_to, category_id, record_count, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.Format, nullTime(r.DateFrom), nullTime(r.DateTo),
		nullString(r.CategoryID), r.RecordCount, r.FileSize,
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save export record: %w", err)
	}
	return nil
}

func (s *Store) ListExportRecords(ctx context.Context, userID string) ([]finance.ExportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listExportRecords(ctx, s.db, userID)
}

func (ts *txStore) ListExportRecords(ctx context.Context, userID string) ([]finance.ExportRecord, error) {
	return listExportRecords(ctx, ts.tx, userID)
}

func listExportRecords(ctx context.Context, c conn, userID string) ([]finance.ExportRecord, error) {
	rows, err := c.QueryContext(ctx, `
		SELECT id, user_id, format, date_from, date_to, category_id, record_count, file_size, created_at
		FROM export_history WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.ExportRecord
	for rows.Next() {
		var r finance.ExportRecord
		var createdAt string
		var dateFrom, dateTo, categoryID sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Format, &dateFrom, &dateTo,
			&categoryID, &r.RecordCount, &r.FileSize, &createdAt); err != nil {
			return nil, err
		}
		r.DateFrom = parseTimePtr(dateFrom)
		r.DateTo = parseTimePtr(dateTo)
		r.CategoryID = categoryID.String
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
