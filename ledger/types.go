/*
Package ledger provides the balance ledger core.

PURPOSE:
  This package contains the types and operations for the per-user money
  ledger. Every balance-affecting event (income added, expense logged,
  debt payment received, money lent out, savings target purchased) is
  recorded as an immutable Entry, and the running Balance row always
  equals the signed sum of that user's entries.

KEY CONCEPTS IN THIS FILE (types.go):
  - Direction: credit (balance goes up) or debit (balance goes down)
  - Source: closed enumeration tagging where the money came from / went
  - Entry: an immutable ledger record with a balance_after snapshot
  - Balance: the single mutable running total per user

DESIGN PRINCIPLES:
  1. Immutability: entries are never edited or deleted
  2. Precision: decimal.Decimal everywhere, no binary floats
  3. Single choke point: the balance column is only written by the
     money-movement operations in mover.go

SEE ALSO:
  - mover.go: the atomic money-movement operations
  - errors.go: sentinel and structured errors
  - store.go: persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTION
// =============================================================================

// Direction says which way an entry moves the balance.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Credit, Debit:
		return Direction(s), true
	}
	return "", false
}

// =============================================================================
// SOURCE - Where the money came from or went
// =============================================================================

// Source tags a ledger entry with its origin. The set is closed per
// deployed version; new tags are added by extending this block.
type Source string

const (
	SourceSalary        Source = "salary"
	SourceFreelance     Source = "freelance"
	SourceGift          Source = "gift"
	SourceInvestment    Source = "investment"
	SourceRefund        Source = "refund"
	SourceTransfer      Source = "transfer"
	SourceExpense       Source = "expense"
	SourceDebtPayment   Source = "debt_payment"
	SourceLending       Source = "lending"
	SourceLendingReturn Source = "lending_return"
	SourceTarget        Source = "target"
	SourceOther         Source = "other"
)

// Sources lists every valid source tag.
var Sources = []Source{
	SourceSalary,
	SourceFreelance,
	SourceGift,
	SourceInvestment,
	SourceRefund,
	SourceTransfer,
	SourceExpense,
	SourceDebtPayment,
	SourceLending,
	SourceLendingReturn,
	SourceTarget,
	SourceOther,
}

// CreditSources lists the tags a client may supply on POST /balance/add.
// The remaining tags are reserved for system-generated entries.
var CreditSources = []Source{
	SourceSalary,
	SourceFreelance,
	SourceGift,
	SourceInvestment,
	SourceRefund,
	SourceTransfer,
	SourceOther,
}

// ParseSource validates a source string against the closed set.
func ParseSource(s string) (Source, bool) {
	for _, src := range Sources {
		if Source(s) == src {
			return src, true
		}
	}
	return "", false
}

// Label returns the display label for a source in the given language
// ("en" or "ar"). Unknown languages fall back to English.
func (s Source) Label(lang string) string {
	labels, ok := sourceLabels[s]
	if !ok {
		return "Unknown"
	}
	if lang == "ar" {
		return labels[1]
	}
	return labels[0]
}

var sourceLabels = map[Source][2]string{
	SourceSalary:        {"Salary", "راتب"},
	SourceFreelance:     {"Freelance", "عمل حر"},
	SourceGift:          {"Gift", "هدية"},
	SourceInvestment:    {"Investment", "استثمار"},
	SourceRefund:        {"Refund", "استرداد"},
	SourceTransfer:      {"Transfer", "تحويل"},
	SourceExpense:       {"Expense", "مصروف"},
	SourceDebtPayment:   {"Debt Payment", "سداد دين"},
	SourceLending:       {"Lending", "إقراض"},
	SourceLendingReturn: {"Lending Return", "استرداد قرض"},
	SourceTarget:        {"Target", "هدف"},
	SourceOther:         {"Other", "أخرى"},
}

// =============================================================================
// ENTRY - Immutable record of one balance-affecting event
// =============================================================================

// Entry is an append-only ledger record. Once created it is never
// mutated or deleted; BalanceAfter snapshots the running total
// immediately after this entry applied.
type Entry struct {
	ID           string
	UserID       string
	Direction    Direction
	Amount       decimal.Decimal // always positive; sign comes from Direction
	Source       Source
	Description  string
	BalanceAfter decimal.Decimal

	// Optional references to the originating domain row. Only the
	// field relevant to the call site is set.
	ExpenseID     string
	DebtPaymentID string
	LendingID     string
	TargetID      string

	CreatedAt time.Time
}

// Signed returns the entry amount with its direction applied.
func (e Entry) Signed() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// IsCredit reports whether the entry increases the balance.
func (e Entry) IsCredit() bool { return e.Direction == Credit }

// IsDebit reports whether the entry decreases the balance.
func (e Entry) IsDebit() bool { return e.Direction == Debit }

// =============================================================================
// BALANCE - Per-user running total
// =============================================================================

// Balance is the single mutable money row per user. Invariant: Current
// equals the signed sum of that user's entries in creation order.
type Balance struct {
	ID        string
	UserID    string
	Current   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SumEntries folds entries into the balance they imply. Used by tests
// and consistency checks, never as the write path.
func SumEntries(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}
