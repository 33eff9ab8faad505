package api

import (
	"net/http"
)

// =============================================================================
// DASHBOARD ENDPOINTS - Read-only aggregations
// =============================================================================

// DashboardOverview returns the month headline.
// GET /api/dashboard?month=YYYY-MM
func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ov, err := h.Service.DashboardOverview(r.Context(), user.ID,
		r.URL.Query().Get("month"), lang(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byCategory := make([]CategorySliceDTO, 0, len(ov.ExpenseByCategory))
	for _, s := range ov.ExpenseByCategory {
		byCategory = append(byCategory, toCategorySliceDTO(s))
	}
	daily := make([]DailyExpenseDTO, 0, len(ov.DailyExpenses))
	for _, p := range ov.DailyExpenses {
		daily = append(daily, DailyExpenseDTO{
			Date:   p.Date.Format(dateLayout),
			Amount: money(p.Amount),
		})
	}
	dto := OverviewDTO{
		Month:              ov.Month,
		TotalBalance:       money(ov.TotalBalance),
		MonthlyIncome:      money(ov.MonthlyIncome),
		TotalExpenses:      money(ov.TotalExpenses),
		Remaining:          money(ov.Remaining),
		SpendingPercentage: ov.SpendingPercentage.StringFixed(2),
		ExpenseCount:       ov.ExpenseCount,
		ExpenseByCategory:  byCategory,
		DailyExpenses:      daily,
	}
	if ov.TopCategory != nil {
		top := toCategorySliceDTO(*ov.TopCategory)
		dto.TopCategory = &top
	}
	writeSuccess(w, http.StatusOK, dto, "")
}

// DashboardTrends returns the last N months of income vs spending.
// GET /api/dashboard/trends?months=6
func (h *Handler) DashboardTrends(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	trends, err := h.Service.Trends(r.Context(), user.ID, queryInt(r, "months"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]TrendDTO, 0, len(trends))
	for _, t := range trends {
		dtos = append(dtos, TrendDTO{
			Month:    t.Month,
			Income:   money(t.Income),
			Expenses: money(t.Expenses),
			Net:      money(t.Net),
		})
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// DashboardCategories returns the month's per-category spending split.
// GET /api/dashboard/category-breakdown?month=YYYY-MM
func (h *Handler) DashboardCategories(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	slices, err := h.Service.CategoryBreakdown(r.Context(), user.ID,
		r.URL.Query().Get("month"), lang(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]CategorySliceDTO, 0, len(slices))
	for _, s := range slices {
		dtos = append(dtos, toCategorySliceDTO(s))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}
