/*
Package finance holds the domain model around the balance ledger.

PURPOSE:
  Expenses, categories, income history, debts owed to the user, money
  lent to others, savings targets, and export history. The lifecycle
  hooks in service.go funnel every money-moving change into the ledger
  package's operations; the aggregators in report.go fold persisted
  rows into reporting views without mutating anything.

KEY CONCEPTS IN THIS FILE (types.go):
  - Expense: soft-deleted spending record, one ledger write per change
  - Category: system default (unowned, immutable) or user-owned custom
  - Income: monthly amount history; "current" = latest effective <= today
  - Debt: money a third party owes the user, paid down by DebtPayments
  - Lending: money the user lent out, repaid by LendingPayments
  - Target: savings goal purchasable once the balance covers its price

SEE ALSO:
  - service.go: lifecycle hooks (the linked-entity adjustors)
  - report.go: dashboard / statistics aggregators
  - ../ledger: the money-movement operations these types feed
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EXPENSE
// =============================================================================

// Expense is a spending record. Deletion is logical: the row is kept
// with DeletedAt set so ledger entries referencing it stay resolvable.
type Expense struct {
	ID         string
	UserID     string
	CategoryID string
	Amount     decimal.Decimal
	Date       time.Time
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category is either a system default (UserID empty, immutable) or a
// user-owned custom category. Display names are bilingual.
type Category struct {
	ID        string
	UserID    string // empty for defaults
	NameEN    string
	NameAR    string
	Icon      string
	Color     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name returns the display name for the given language, falling back
// to English.
func (c Category) Name(lang string) string {
	if lang == "ar" && c.NameAR != "" {
		return c.NameAR
	}
	return c.NameEN
}

// =============================================================================
// INCOME
// =============================================================================

// Income is one row of the user's monthly-income history. Superseded
// rows are kept; the current income is the latest row whose
// EffectiveFrom is on or before today.
type Income struct {
	ID            string
	UserID        string
	MonthlyAmount decimal.Decimal
	EffectiveFrom time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CurrentIncome picks the income effective as of the given date from a
// history sorted or unsorted: the latest EffectiveFrom <= asOf wins.
// Returns nil if no row is effective yet.
func CurrentIncome(history []Income, asOf time.Time) *Income {
	var current *Income
	for i := range history {
		inc := &history[i]
		if inc.EffectiveFrom.After(asOf) {
			continue
		}
		if current == nil || inc.EffectiveFrom.After(current.EffectiveFrom) {
			current = inc
		}
	}
	return current
}

// =============================================================================
// DEBT - Money a third party owes the user
// =============================================================================

// DebtPriority is a 5-level urgency scale, 1 highest.
type DebtPriority string

const (
	PriorityHighest DebtPriority = "1"
	PriorityHigh    DebtPriority = "2"
	PriorityMedium  DebtPriority = "3"
	PriorityLow     DebtPriority = "4"
	PriorityLowest  DebtPriority = "5"
)

var DebtPriorities = []DebtPriority{
	PriorityHighest, PriorityHigh, PriorityMedium, PriorityLow, PriorityLowest,
}

func ParseDebtPriority(s string) (DebtPriority, bool) {
	for _, p := range DebtPriorities {
		if DebtPriority(s) == p {
			return p, true
		}
	}
	return "", false
}

// Label returns the English display label for the priority.
func (p DebtPriority) Label() string {
	switch p {
	case PriorityHighest:
		return "Highest"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityLowest:
		return "Lowest"
	}
	return "Unknown"
}

// PaymentType classifies how a debt is expected to be repaid.
type PaymentType string

const (
	PaymentOneTime PaymentType = "one_time"
	PaymentMonthly PaymentType = "monthly"
	PaymentYearly  PaymentType = "yearly"
	PaymentCustom  PaymentType = "custom"
)

var PaymentTypes = []PaymentType{
	PaymentOneTime, PaymentMonthly, PaymentYearly, PaymentCustom,
}

func ParsePaymentType(s string) (PaymentType, bool) {
	for _, p := range PaymentTypes {
		if PaymentType(s) == p {
			return p, true
		}
	}
	return "", false
}

// DebtStatus tracks repayment progress. Transitions move forward only
// (pending -> in_progress -> completed); overdue is time-derived by a
// periodic check and cancelled is a manual terminal state.
type DebtStatus string

const (
	DebtPending    DebtStatus = "pending"
	DebtInProgress DebtStatus = "in_progress"
	DebtCompleted  DebtStatus = "completed"
	DebtOverdue    DebtStatus = "overdue"
	DebtCancelled  DebtStatus = "cancelled"
)

var DebtStatuses = []DebtStatus{
	DebtPending, DebtInProgress, DebtCompleted, DebtOverdue, DebtCancelled,
}

func ParseDebtStatus(s string) (DebtStatus, bool) {
	for _, st := range DebtStatuses {
		if DebtStatus(s) == st {
			return st, true
		}
	}
	return "", false
}

// Debt is money a third party owes the user.
type Debt struct {
	ID                string
	UserID            string
	DebtorName        string
	DebtorPhone       string
	DebtorEmail       string
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal // monotonically non-decreasing, capped at TotalAmount
	Description       string
	Priority          DebtPriority
	PaymentType       PaymentType
	InstallmentAmount decimal.Decimal
	DueDate           *time.Time
	StartDate         *time.Time
	Status            DebtStatus
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining returns total minus paid.
func (d Debt) Remaining() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// ProgressPercentage returns paid/total*100 rounded to 2 places.
func (d Debt) ProgressPercentage() decimal.Decimal {
	if !d.TotalAmount.IsPositive() {
		return decimal.Zero
	}
	return d.PaidAmount.Div(d.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsCompleted reports whether the debt is fully paid.
func (d Debt) IsCompleted() bool { return d.Status == DebtCompleted }

// IsOverdue reports whether the due date has passed without completion.
func (d Debt) IsOverdue(now time.Time) bool {
	return d.DueDate != nil && d.DueDate.Before(now) && !d.IsCompleted()
}

// PaymentMethod is how a debt or lending payment was made.
type PaymentMethod string

const (
	MethodCash          PaymentMethod = "cash"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodMobilePayment PaymentMethod = "mobile_payment"
	MethodCheck         PaymentMethod = "check"
	MethodOther         PaymentMethod = "other"
)

var PaymentMethods = []PaymentMethod{
	MethodCash, MethodBankTransfer, MethodMobilePayment, MethodCheck, MethodOther,
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if PaymentMethod(s) == m {
			return m, true
		}
	}
	return "", false
}

// DebtPayment is an append-only child of Debt. LedgerEntryID links the
// credit entry created when the caller opted into add_to_balance.
type DebtPayment struct {
	ID            string
	DebtID        string
	UserID        string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	Notes         string
	LedgerEntryID string
	CreatedAt     time.Time
}

// =============================================================================
// LENDING - Money the user lent to a borrower
// =============================================================================

// LendingStatus is derived from remaining vs original amount, except
// forgiven, which is a terminal manual override.
type LendingStatus string

const (
	LendingPending  LendingStatus = "pending"
	LendingPartial  LendingStatus = "partial"
	LendingPaid     LendingStatus = "paid"
	LendingForgiven LendingStatus = "forgiven"
)

var LendingStatuses = []LendingStatus{
	LendingPending, LendingPartial, LendingPaid, LendingForgiven,
}

func ParseLendingStatus(s string) (LendingStatus, bool) {
	for _, st := range LendingStatuses {
		if LendingStatus(s) == st {
			return st, true
		}
	}
	return "", false
}

// Lending is money the user loaned to a third party.
type Lending struct {
	ID                 string
	UserID             string
	BorrowerName       string
	BorrowerPhone      string
	BorrowerEmail      string
	Amount             decimal.Decimal
	RemainingAmount    decimal.Decimal
	Currency           string // ISO code, informational only; no conversion
	Description        string
	LendingDate        time.Time
	ExpectedReturnDate *time.Time
	Status             LendingStatus
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TotalReceived returns amount minus remaining.
func (l Lending) TotalReceived() decimal.Decimal {
	return l.Amount.Sub(l.RemainingAmount)
}

// ProgressPercentage returns received/amount*100 rounded to 2 places.
func (l Lending) ProgressPercentage() decimal.Decimal {
	if !l.Amount.IsPositive() {
		return decimal.Zero
	}
	return l.TotalReceived().Div(l.Amount).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsOverdue reports whether the expected return date has passed while
// money is still outstanding.
func (l Lending) IsOverdue(now time.Time) bool {
	if l.ExpectedReturnDate == nil || l.Status == LendingPaid || l.Status == LendingForgiven {
		return false
	}
	return l.ExpectedReturnDate.Before(now)
}

// DeriveStatus recomputes the payment-derived status from the amounts.
// Callers must not invoke this on a forgiven lending; forgiveness is
// terminal and never clobbered by payment-triggered recalculation.
func (l *Lending) DeriveStatus() {
	switch {
	case !l.RemainingAmount.IsPositive():
		l.Status = LendingPaid
	case l.RemainingAmount.LessThan(l.Amount):
		l.Status = LendingPartial
	default:
		l.Status = LendingPending
	}
}

// LendingPayment is a child of Lending. Uniquely among this model's
// children it supports deletion, which restores the parent's remaining
// amount (see Service.DeleteLendingPayment).
type LendingPayment struct {
	ID            string
	LendingID     string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	Notes         string
	CreatedAt     time.Time
}

// =============================================================================
// TARGET - Savings goal
// =============================================================================

type TargetStatus string

const (
	TargetActive    TargetStatus = "active"
	TargetCompleted TargetStatus = "completed"
	TargetCancelled TargetStatus = "cancelled"
)

type TargetPriority string

const (
	TargetPriorityLow    TargetPriority = "low"
	TargetPriorityMedium TargetPriority = "medium"
	TargetPriorityHigh   TargetPriority = "high"
)

func ParseTargetPriority(s string) (TargetPriority, bool) {
	switch TargetPriority(s) {
	case TargetPriorityLow, TargetPriorityMedium, TargetPriorityHigh:
		return TargetPriority(s), true
	}
	return "", false
}

// Target is a savings goal the user can purchase once affordable.
// CanAfford and AmountNeeded are computed live against the balance,
// never stored.
type Target struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Priority    TargetPriority
	Status      TargetStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanAfford reports whether the given balance covers the price.
func (t Target) CanAfford(balance decimal.Decimal) bool {
	return balance.GreaterThanOrEqual(t.Price)
}

// AmountNeeded returns max(0, price - balance).
func (t Target) AmountNeeded(balance decimal.Decimal) decimal.Decimal {
	needed := t.Price.Sub(balance)
	if needed.IsNegative() {
		return decimal.Zero
	}
	return needed
}

// =============================================================================
// EXPORT HISTORY
// =============================================================================

// ExportRecord is an append-only audit row written once per export
// request. Write-only from the system's perspective; read back only
// for display.
type ExportRecord struct {
	ID          string
	UserID      string
	Format      string // csv, excel, pdf
	DateFrom    *time.Time
	DateTo      *time.Time
	CategoryID  string
	RecordCount int
	FileSize    int64
	CreatedAt   time.Time
}
