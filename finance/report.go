package finance

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// REPORTING - Read-side aggregators, fold persisted rows, mutate nothing
// =============================================================================

// Overview is the dashboard headline for one month.
type Overview struct {
	Month              string // YYYY-MM
	TotalBalance       decimal.Decimal
	MonthlyIncome      decimal.Decimal
	TotalExpenses      decimal.Decimal
	Remaining          decimal.Decimal // income - expenses, may be negative
	SpendingPercentage decimal.Decimal // 0 when income is 0
	ExpenseCount       int

	ExpenseByCategory []CategorySlice // largest share first
	TopCategory       *CategorySlice  // nil when the month has no expenses
	DailyExpenses     []DailyPoint    // date ascending
}

// DailyPoint is one day of a month's spending series.
type DailyPoint struct {
	Date   time.Time
	Amount decimal.Decimal
}

// MonthTrend is one point of the income/spending trend series.
type MonthTrend struct {
	Month    string // YYYY-MM
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// CategorySlice is one category's share of a month's spending.
type CategorySlice struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Total      decimal.Decimal
	Percentage decimal.Decimal
	Count      int
}

// DebtStatistics summarizes all of a user's debts.
type DebtStatistics struct {
	TotalDebts     int
	TotalAmount    decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalRemaining decimal.Decimal
	ByStatus       map[DebtStatus]int
	ByPriority     map[DebtPriority]int
	OverdueCount   int
}

// LendingSummary summarizes all of a user's lendings.
type LendingSummary struct {
	TotalLendings    int
	TotalLent        decimal.Decimal
	TotalOutstanding decimal.Decimal
	TotalReturned    decimal.Decimal
	TotalForgiven    decimal.Decimal
	ByStatus         map[LendingStatus]int
	OverdueCount     int
}

// ExpenseSummary gives spending totals over standard windows ending now.
type ExpenseSummary struct {
	Today     decimal.Decimal
	ThisWeek  decimal.Decimal
	ThisMonth decimal.Decimal
	ThisYear  decimal.Decimal
	AllTime   decimal.Decimal
	Count     int
}

// monthOf truncates a time to its YYYY-MM key.
func monthOf(t time.Time) string { return t.Format("2006-01") }

// monthBounds returns [start, end) for a YYYY-MM key. A zero month
// means the current month.
func (s *Service) monthBounds(month string) (time.Time, time.Time, string) {
	var start time.Time
	if t, err := time.Parse("2006-01", month); err == nil {
		start = t
	} else {
		now := s.Now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return start, start.AddDate(0, 1, 0), monthOf(start)
}

// DashboardOverview builds the month headline. SpendingPercentage is
// expenses/income*100, defined as zero when income is zero.
func (s *Service) DashboardOverview(ctx context.Context, userID, month, lang string) (*Overview, error) {
	start, end, key := s.monthBounds(month)

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	income := decimal.Zero
	history, err := s.Store.ListIncome(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Income effective at the end of the month, so a mid-month raise
	// counts for that month.
	if inc := CurrentIncome(history, end.Add(-time.Second)); inc != nil {
		income = inc.MonthlyAmount
	}

	expenses, _, err := s.Store.ListExpenses(ctx, userID, ExpenseFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	pct := decimal.Zero
	if income.IsPositive() {
		pct = total.Div(income).Mul(decimal.NewFromInt(100)).Round(2)
	}

	slices, err := s.sliceByCategory(ctx, userID, lang, expenses)
	if err != nil {
		return nil, err
	}
	var top *CategorySlice
	if len(slices) > 0 {
		first := slices[0]
		top = &first
	}

	return &Overview{
		Month:              key,
		TotalBalance:       balance,
		MonthlyIncome:      income,
		TotalExpenses:      total,
		Remaining:          income.Sub(total),
		SpendingPercentage: pct,
		ExpenseCount:       len(expenses),
		ExpenseByCategory:  slices,
		TopCategory:        top,
		DailyExpenses:      dailySeries(expenses),
	}, nil
}

// dailySeries folds expenses into a per-day total series, oldest day
// first.
func dailySeries(expenses []Expense) []DailyPoint {
	byDay := map[string]*DailyPoint{}
	for _, e := range expenses {
		day := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, e.Date.Location())
		key := day.Format("2006-01-02")
		point, ok := byDay[key]
		if !ok {
			point = &DailyPoint{Date: day}
			byDay[key] = point
		}
		point.Amount = point.Amount.Add(e.Amount)
	}
	out := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Trends returns the last limit months of income vs spending, oldest
// first. Income comes from the history row effective in each month;
// expenses from the expense table, not the ledger, so refunds of
// deleted expenses do not distort past months.
func (s *Service) Trends(ctx context.Context, userID string, limit int) ([]MonthTrend, error) {
	if limit <= 0 || limit > 24 {
		limit = 6
	}
	history, err := s.Store.ListIncome(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	trends := make([]MonthTrend, 0, limit)
	for i := limit - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		expenses, _, err := s.Store.ListExpenses(ctx, userID, ExpenseFilter{From: &start, To: &end})
		if err != nil {
			return nil, err
		}
		spent := decimal.Zero
		for _, e := range expenses {
			spent = spent.Add(e.Amount)
		}

		income := decimal.Zero
		if inc := CurrentIncome(history, end.Add(-time.Second)); inc != nil {
			income = inc.MonthlyAmount
		}

		trends = append(trends, MonthTrend{
			Month:    monthOf(start),
			Income:   income,
			Expenses: spent,
			Net:      income.Sub(spent),
		})
	}
	return trends, nil
}

// CategoryBreakdown splits a month's spending per category, largest
// share first. Percentages are of the month total and sum to ~100.
func (s *Service) CategoryBreakdown(ctx context.Context, userID, month, lang string) ([]CategorySlice, error) {
	start, end, _ := s.monthBounds(month)

	expenses, _, err := s.Store.ListExpenses(ctx, userID, ExpenseFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	return s.sliceByCategory(ctx, userID, lang, expenses)
}

// sliceByCategory folds the given expenses into per-category totals,
// largest share first, ties broken by name.
func (s *Service) sliceByCategory(ctx context.Context, userID, lang string, expenses []Expense) ([]CategorySlice, error) {
	categories, err := s.Store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := map[string]*CategorySlice{}
	grand := decimal.Zero
	for _, e := range expenses {
		grand = grand.Add(e.Amount)
		slice, ok := totals[e.CategoryID]
		if !ok {
			cat := byID[e.CategoryID]
			slice = &CategorySlice{
				CategoryID: e.CategoryID,
				Name:       cat.Name(lang),
				Icon:       cat.Icon,
				Color:      cat.Color,
			}
			totals[e.CategoryID] = slice
		}
		slice.Total = slice.Total.Add(e.Amount)
		slice.Count++
	}

	out := make([]CategorySlice, 0, len(totals))
	for _, slice := range totals {
		if grand.IsPositive() {
			slice.Percentage = slice.Total.Div(grand).Mul(decimal.NewFromInt(100)).Round(2)
		}
		out = append(out, *slice)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DebtStats folds the user's debts into one statistics block.
func (s *Service) DebtStats(ctx context.Context, userID string) (*DebtStatistics, error) {
	debts, err := s.Store.ListDebts(ctx, userID, DebtFilter{})
	if err != nil {
		return nil, err
	}
	stats := &DebtStatistics{
		ByStatus:   map[DebtStatus]int{},
		ByPriority: map[DebtPriority]int{},
	}
	now := s.Now()
	for _, d := range debts {
		stats.TotalDebts++
		stats.ByStatus[d.Status]++
		stats.ByPriority[d.Priority]++
		if d.Status == DebtCancelled {
			continue
		}
		stats.TotalAmount = stats.TotalAmount.Add(d.TotalAmount)
		stats.TotalPaid = stats.TotalPaid.Add(d.PaidAmount)
		stats.TotalRemaining = stats.TotalRemaining.Add(d.Remaining())
		if d.IsOverdue(now) {
			stats.OverdueCount++
		}
	}
	return stats, nil
}

// LendingStats folds the user's lendings into one summary block.
func (s *Service) LendingStats(ctx context.Context, userID string) (*LendingSummary, error) {
	lendings, err := s.Store.ListLendings(ctx, userID, LendingFilter{})
	if err != nil {
		return nil, err
	}
	sum := &LendingSummary{ByStatus: map[LendingStatus]int{}}
	now := s.Now()
	for _, l := range lendings {
		sum.TotalLendings++
		sum.ByStatus[l.Status]++
		sum.TotalLent = sum.TotalLent.Add(l.Amount)
		if l.Status == LendingForgiven {
			sum.TotalForgiven = sum.TotalForgiven.Add(l.RemainingAmount)
		} else {
			sum.TotalOutstanding = sum.TotalOutstanding.Add(l.RemainingAmount)
		}
		sum.TotalReturned = sum.TotalReturned.Add(l.TotalReceived())
		if l.IsOverdue(now) {
			sum.OverdueCount++
		}
	}
	return sum, nil
}

// SummarizeExpenses totals the user's spending over the standard
// windows. Week starts on Monday.
func (s *Service) SummarizeExpenses(ctx context.Context, userID string) (*ExpenseSummary, error) {
	expenses, _, err := s.Store.ListExpenses(ctx, userID, ExpenseFilter{})
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week := today.AddDate(0, 0, -(weekday - 1))
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	sum := &ExpenseSummary{}
	for _, e := range expenses {
		sum.AllTime = sum.AllTime.Add(e.Amount)
		sum.Count++
		if !e.Date.Before(today) {
			sum.Today = sum.Today.Add(e.Amount)
		}
		if !e.Date.Before(week) {
			sum.ThisWeek = sum.ThisWeek.Add(e.Amount)
		}
		if !e.Date.Before(month) {
			sum.ThisMonth = sum.ThisMonth.Add(e.Amount)
		}
		if !e.Date.Before(year) {
			sum.ThisYear = sum.ThisYear.Add(e.Amount)
		}
	}
	return sum, nil
}

// LedgerConsistency recomputes the balance from the full entry history
// and compares it to the stored balance. Used by tests and the health
// surface to assert the append-only invariant.
func (s *Service) LedgerConsistency(ctx context.Context, userID string) (stored, computed decimal.Decimal, ok bool, err error) {
	entries, err := s.Store.AllEntries(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	computed = ledger.SumEntries(entries)
	stored, err = s.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	return stored, computed, stored.Equal(computed), nil
}
