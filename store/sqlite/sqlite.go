/*
Package sqlite provides the SQLite-backed implementation of the
storage interfaces.

PURPOSE:
  Implements finance.Store (which embeds ledger.Store) and
  finance.TxRunner using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The balance_entries table is append-only:
  - No UPDATE statements on balance_entries
  - No DELETE statements on balance_entries
  - Corrections happen via new refund entries only

KEY TABLES:
  balance_entries: Immutable ledger of all balance changes
  balances:        One current-balance row per user
  expenses:        Soft-deleted via deleted_at
  categories:      System defaults (user_id '') plus user-owned rows
  debts/debt_payments, lendings/lending_payments: payments cascade
  targets, income, export_history, users

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. WithTx holds
  the write lock for the whole transaction, so a balance check and the
  writes that depend on it cannot interleave with another writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time,
  better crash recovery.

USAGE:
  store, err := sqlite.New("./data/expense.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(), and the default expense categories
  are seeded idempotently. For production, use a proper migration tool
  (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - finance/store.go: Interface definitions
  - ledger/mover.go: Money movements built on this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
)

// Store implements finance.Store and finance.TxRunner using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// conn is satisfied by both *sql.DB and *sql.Tx so that every query
// helper can run inside or outside a transaction.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedDefaultCategories(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Current balance, one row per user
	CREATE TABLE IF NOT EXISTS balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		current TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Balance entries (append-only ledger)
	CREATE TABLE IF NOT EXISTS balance_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount TEXT NOT NULL,
		source TEXT NOT NULL,
		description TEXT,
		balance_after TEXT NOT NULL,
		expense_id TEXT,
		debt_payment_id TEXT,
		lending_id TEXT,
		target_id TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: transaction listing, newest first
	CREATE INDEX IF NOT EXISTS idx_entries_user_created
		ON balance_entries(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_user_source
		ON balance_entries(user_id, source);
	CREATE INDEX IF NOT EXISTS idx_entries_expense
		ON balance_entries(expense_id) WHERE expense_id IS NOT NULL;

	-- Categories: user_id '' marks a system default
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		name_en TEXT NOT NULL,
		name_ar TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id);

	-- Expenses (soft-deleted)
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		deleted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_user_date
		ON expenses(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_expenses_category
		ON expenses(category_id);

	-- Income history
	CREATE TABLE IF NOT EXISTS income (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		monthly_amount TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_income_user
		ON income(user_id, effective_from DESC);

	-- Debts owed to the user
	CREATE TABLE IF NOT EXISTS debts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		debtor_name TEXT NOT NULL,
		debtor_phone TEXT,
		debtor_email TEXT,
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		description TEXT,
		priority TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		installment_amount TEXT,
		due_date TEXT,
		start_date TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id, status);

	CREATE TABLE IF NOT EXISTS debt_payments (
		id TEXT PRIMARY KEY,
		debt_id TEXT NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		notes TEXT,
		ledger_entry_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_debt_payments_debt ON debt_payments(debt_id);

	-- Money lent out
	CREATE TABLE IF NOT EXISTS lendings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		borrower_name TEXT NOT NULL,
		borrower_phone TEXT,
		borrower_email TEXT,
		amount TEXT NOT NULL,
		remaining_amount TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		description TEXT,
		lending_date TEXT NOT NULL,
		expected_return_date TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lendings_user ON lendings(user_id, status);

	CREATE TABLE IF NOT EXISTS lending_payments (
		id TEXT PRIMARY KEY,
		lending_id TEXT NOT NULL REFERENCES lendings(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lending_payments_lending
		ON lending_payments(lending_id);

	-- Savings targets
	CREATE TABLE IF NOT EXISTS targets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL,
		image_url TEXT,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_targets_user ON targets(user_id, status);

	-- Export audit trail (append-only)
	CREATE TABLE IF NOT EXISTS export_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		format TEXT NOT NULL,
		date_from TEXT,
		date_to TEXT,
		category_id TEXT,
		record_count INTEGER NOT NULL DEFAULT 0,
		file_size INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_export_history_user
		ON export_history(user_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// defaultCategories are seeded once with fixed IDs so every account
// shares the same defaults and re-running the seed is a no-op.
var defaultCategories = []finance.Category{
	{ID: "cat-food", NameEN: "Food", NameAR: "طعام", Icon: "utensils", Color: "#F59E0B"},
	{ID: "cat-transport", NameEN: "Transport", NameAR: "مواصلات", Icon: "car", Color: "#3B82F6"},
	{ID: "cat-bills", NameEN: "Bills", NameAR: "فواتير", Icon: "file-text", Color: "#EF4444"},
	{ID: "cat-shopping", NameEN: "Shopping", NameAR: "تسوق", Icon: "shopping-bag", Color: "#8B5CF6"},
	{ID: "cat-entertainment", NameEN: "Entertainment", NameAR: "ترفيه", Icon: "film", Color: "#EC4899"},
	{ID: "cat-health", NameEN: "Health", NameAR: "صحة", Icon: "heart", Color: "#10B981"},
}

func (s *Store) seedDefaultCategories() error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range defaultCategories {
		_, err := s.db.Exec(`
			INSERT INTO categories (id, user_id, name_en, name_ar, icon, color, is_default, created_at, updated_at)
			VALUES (?, '', ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, c.ID, c.NameEN, c.NameAR, c.Icon, c.Color, now, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (finance.TxRunner interface)
// =============================================================================

// WithTx executes fn within a database transaction. The write lock is
// held for the whole transaction, so a balance read inside fn cannot
// race another writer.
func (s *Store) WithTx(ctx context.Context, fn func(store finance.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore is the transaction-scoped view of the store. Its methods
// run against the open *sql.Tx and never touch the parent mutex,
// which WithTx already holds.
type txStore struct {
	tx *sql.Tx
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func parseDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
