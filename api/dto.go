/*
dto.go - Request/response data structures

PURPOSE:
  Wire-format structs and converters between domain types and JSON.
  Money is always serialized as a fixed two-decimal string ("150.00")
  so clients never see float artifacts. Dates use YYYY-MM-DD,
  timestamps RFC3339.

SEE ALSO:
  - respond.go: Response envelope
  - handlers.go and siblings: Handler implementations
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// =============================================================================
// PAGINATION
// =============================================================================

type MetaDTO struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// =============================================================================
// USERS / AUTH
// =============================================================================

type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Language  string `json:"language"`
	CreatedAt string `json:"created_at"`
}

func toUserDTO(u finance.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Language:  u.Language,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type AuthResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// =============================================================================
// BALANCE / LEDGER
// =============================================================================

type BalanceDTO struct {
	Balance   string `json:"balance"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type EntryDTO struct {
	ID           string `json:"id"`
	Direction    string `json:"direction"`
	Amount       string `json:"amount"`
	Source       string `json:"source"`
	SourceLabel  string `json:"source_label"`
	Description  string `json:"description,omitempty"`
	BalanceAfter string `json:"balance_after"`
	ExpenseID    string `json:"expense_id,omitempty"`
	LendingID    string `json:"lending_id,omitempty"`
	TargetID     string `json:"target_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toEntryDTO(e ledger.Entry, lang string) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		Direction:    string(e.Direction),
		Amount:       money(e.Amount),
		Source:       string(e.Source),
		SourceLabel:  e.Source.Label(lang),
		Description:  e.Description,
		BalanceAfter: money(e.BalanceAfter),
		ExpenseID:    e.ExpenseID,
		LendingID:    e.LendingID,
		TargetID:     e.TargetID,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []ledger.Entry, lang string) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryDTO(e, lang))
	}
	return out
}

type SourceDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// =============================================================================
// EXPENSES / CATEGORIES / INCOME
// =============================================================================

type ExpenseDTO struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"category_id"`
	Category   *CategoryDTO `json:"category,omitempty"`
	Amount     string       `json:"amount"`
	Date       string       `json:"date"`
	Note       string       `json:"note,omitempty"`
	CreatedAt  string       `json:"created_at"`
}

func toExpenseDTO(e finance.Expense, cat *finance.Category, lang string) ExpenseDTO {
	dto := ExpenseDTO{
		ID:         e.ID,
		CategoryID: e.CategoryID,
		Amount:     money(e.Amount),
		Date:       e.Date.Format(dateLayout),
		Note:       e.Note,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
	if cat != nil {
		c := toCategoryDTO(*cat, lang)
		dto.Category = &c
	}
	return dto
}

type CategoryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameEN    string `json:"name_en"`
	NameAR    string `json:"name_ar,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	IsDefault bool   `json:"is_default"`
}

func toCategoryDTO(c finance.Category, lang string) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID,
		Name:      c.Name(lang),
		NameEN:    c.NameEN,
		NameAR:    c.NameAR,
		Icon:      c.Icon,
		Color:     c.Color,
		IsDefault: c.IsDefault,
	}
}

type IncomeDTO struct {
	ID            string `json:"id"`
	MonthlyAmount string `json:"monthly_amount"`
	EffectiveFrom string `json:"effective_from"`
	CreatedAt     string `json:"created_at"`
}

func toIncomeDTO(in finance.Income) IncomeDTO {
	return IncomeDTO{
		ID:            in.ID,
		MonthlyAmount: money(in.MonthlyAmount),
		EffectiveFrom: in.EffectiveFrom.Format(dateLayout),
		CreatedAt:     in.CreatedAt.Format(time.RFC3339),
	}
}

type ExpenseSummaryDTO struct {
	Today     string `json:"today"`
	ThisWeek  string `json:"this_week"`
	ThisMonth string `json:"this_month"`
	ThisYear  string `json:"this_year"`
	AllTime   string `json:"all_time"`
	Count     int    `json:"count"`
}

// =============================================================================
// DEBTS
// =============================================================================

type DebtDTO struct {
	ID                 string           `json:"id"`
	DebtorName         string           `json:"debtor_name"`
	DebtorPhone        string           `json:"debtor_phone,omitempty"`
	DebtorEmail        string           `json:"debtor_email,omitempty"`
	TotalAmount        string           `json:"total_amount"`
	PaidAmount         string           `json:"paid_amount"`
	RemainingAmount    string           `json:"remaining_amount"`
	ProgressPercentage string           `json:"progress_percentage"`
	Description        string           `json:"description,omitempty"`
	Priority           string           `json:"priority"`
	PriorityLabel      string           `json:"priority_label"`
	PaymentType        string           `json:"payment_type"`
	InstallmentAmount  string           `json:"installment_amount,omitempty"`
	DueDate            *string          `json:"due_date,omitempty"`
	StartDate          *string          `json:"start_date,omitempty"`
	Status             string           `json:"status"`
	IsOverdue          bool             `json:"is_overdue"`
	Notes              string           `json:"notes,omitempty"`
	Payments           []DebtPaymentDTO `json:"payments,omitempty"`
	CreatedAt          string           `json:"created_at"`
}

func toDebtDTO(d finance.Debt, now time.Time) DebtDTO {
	dto := DebtDTO{
		ID:                 d.ID,
		DebtorName:         d.DebtorName,
		DebtorPhone:        d.DebtorPhone,
		DebtorEmail:        d.DebtorEmail,
		TotalAmount:        money(d.TotalAmount),
		PaidAmount:         money(d.PaidAmount),
		RemainingAmount:    money(d.Remaining()),
		ProgressPercentage: d.ProgressPercentage().StringFixed(2),
		Description:        d.Description,
		Priority:           string(d.Priority),
		PriorityLabel:      d.Priority.Label(),
		PaymentType:        string(d.PaymentType),
		DueDate:            datePtr(d.DueDate),
		StartDate:          datePtr(d.StartDate),
		Status:             string(d.Status),
		IsOverdue:          d.IsOverdue(now),
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt.Format(time.RFC3339),
	}
	if d.InstallmentAmount.IsPositive() {
		dto.InstallmentAmount = money(d.InstallmentAmount)
	}
	return dto
}

type DebtPaymentDTO struct {
	ID             string `json:"id"`
	Amount         string `json:"amount"`
	PaymentDate    string `json:"payment_date"`
	PaymentMethod  string `json:"payment_method"`
	Notes          string `json:"notes,omitempty"`
	AddedToBalance bool   `json:"added_to_balance"`
	CreatedAt      string `json:"created_at"`
}

func toDebtPaymentDTO(p finance.DebtPayment) DebtPaymentDTO {
	return DebtPaymentDTO{
		ID:             p.ID,
		Amount:         money(p.Amount),
		PaymentDate:    p.PaymentDate.Format(dateLayout),
		PaymentMethod:  string(p.PaymentMethod),
		Notes:          p.Notes,
		AddedToBalance: p.LedgerEntryID != "",
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

type DebtStatsDTO struct {
	TotalDebts     int            `json:"total_debts"`
	TotalAmount    string         `json:"total_amount"`
	TotalPaid      string         `json:"total_paid"`
	TotalRemaining string         `json:"total_remaining"`
	ByStatus       map[string]int `json:"by_status"`
	ByPriority     map[string]int `json:"by_priority"`
	OverdueCount   int            `json:"overdue_count"`
}

// =============================================================================
// LENDINGS
// =============================================================================

type LendingDTO struct {
	ID                 string              `json:"id"`
	BorrowerName       string              `json:"borrower_name"`
	BorrowerPhone      string              `json:"borrower_phone,omitempty"`
	BorrowerEmail      string              `json:"borrower_email,omitempty"`
	Amount             string              `json:"amount"`
	RemainingAmount    string              `json:"remaining_amount"`
	TotalReceived      string              `json:"total_received"`
	ProgressPercentage string              `json:"progress_percentage"`
	Currency           string              `json:"currency"`
	Description        string              `json:"description,omitempty"`
	LendingDate        string              `json:"lending_date"`
	ExpectedReturnDate *string             `json:"expected_return_date,omitempty"`
	Status             string              `json:"status"`
	IsOverdue          bool                `json:"is_overdue"`
	Notes              string              `json:"notes,omitempty"`
	Payments           []LendingPaymentDTO `json:"payments,omitempty"`
	CreatedAt          string              `json:"created_at"`
}

func toLendingDTO(l finance.Lending, now time.Time) LendingDTO {
	return LendingDTO{
		ID:                 l.ID,
		BorrowerName:       l.BorrowerName,
		BorrowerPhone:      l.BorrowerPhone,
		BorrowerEmail:      l.BorrowerEmail,
		Amount:             money(l.Amount),
		RemainingAmount:    money(l.RemainingAmount),
		TotalReceived:      money(l.TotalReceived()),
		ProgressPercentage: l.ProgressPercentage().StringFixed(2),
		Currency:           l.Currency,
		Description:        l.Description,
		LendingDate:        l.LendingDate.Format(dateLayout),
		ExpectedReturnDate: datePtr(l.ExpectedReturnDate),
		Status:             string(l.Status),
		IsOverdue:          l.IsOverdue(now),
		Notes:              l.Notes,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}

type LendingPaymentDTO struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toLendingPaymentDTO(p finance.LendingPayment) LendingPaymentDTO {
	return LendingPaymentDTO{
		ID:            p.ID,
		Amount:        money(p.Amount),
		PaymentDate:   p.PaymentDate.Format(dateLayout),
		PaymentMethod: string(p.PaymentMethod),
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

type LendingSummaryDTO struct {
	TotalLendings    int            `json:"total_lendings"`
	TotalLent        string         `json:"total_lent"`
	TotalOutstanding string         `json:"total_outstanding"`
	TotalReturned    string         `json:"total_returned"`
	TotalForgiven    string         `json:"total_forgiven"`
	ByStatus         map[string]int `json:"by_status"`
	OverdueCount     int            `json:"overdue_count"`
}

// =============================================================================
// TARGETS
// =============================================================================

type TargetDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        string  `json:"price"`
	ImageURL     string  `json:"image_url,omitempty"`
	Priority     string  `json:"priority"`
	Status       string  `json:"status"`
	CanAfford    bool    `json:"can_afford"`
	AmountNeeded string  `json:"amount_needed"`
	CompletedAt  *string `json:"completed_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toTargetDTO(t finance.Target, balance decimal.Decimal) TargetDTO {
	dto := TargetDTO{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Price:        money(t.Price),
		ImageURL:     t.ImageURL,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		CanAfford:    t.Status == finance.TargetActive && t.CanAfford(balance),
		AmountNeeded: money(t.AmountNeeded(balance)),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		dto.CompletedAt = &s
	}
	return dto
}

// =============================================================================
// DASHBOARD
// =============================================================================

type OverviewDTO struct {
	Month              string             `json:"month"`
	TotalBalance       string             `json:"total_balance"`
	MonthlyIncome      string             `json:"monthly_income"`
	TotalExpenses      string             `json:"total_expenses"`
	Remaining          string             `json:"remaining"`
	SpendingPercentage string             `json:"spending_percentage"`
	ExpenseCount       int                `json:"expense_count"`
	TopCategory        *CategorySliceDTO  `json:"top_category"`
	ExpenseByCategory  []CategorySliceDTO `json:"expense_by_category"`
	DailyExpenses      []DailyExpenseDTO  `json:"daily_expenses"`
}

type DailyExpenseDTO struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type TrendDTO struct {
	Month    string `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

type CategorySliceDTO struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
	Color      string `json:"color,omitempty"`
	Total      string `json:"total"`
	Percentage string `json:"percentage"`
	Count      int    `json:"count"`
}

func toCategorySliceDTO(s finance.CategorySlice) CategorySliceDTO {
	return CategorySliceDTO{
		CategoryID: s.CategoryID,
		Name:       s.Name,
		Icon:       s.Icon,
		Color:      s.Color,
		Total:      money(s.Total),
		Percentage: s.Percentage.StringFixed(2),
		Count:      s.Count,
	}
}

// =============================================================================
// EXPORT
// =============================================================================

type ExportRecordDTO struct {
	ID          string  `json:"id"`
	Format      string  `json:"format"`
	DateFrom    *string `json:"date_from,omitempty"`
	DateTo      *string `json:"date_to,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	RecordCount int     `json:"record_count"`
	FileSize    int64   `json:"file_size"`
	CreatedAt   string  `json:"created_at"`
}

func toExportRecordDTO(r finance.ExportRecord) ExportRecordDTO {
	return ExportRecordDTO{
		ID:          r.ID,
		Format:      r.Format,
		DateFrom:    datePtr(r.DateFrom),
		DateTo:      datePtr(r.DateTo),
		CategoryID:  r.CategoryID,
		RecordCount: r.RecordCount,
		FileSize:    r.FileSize,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
