/*
handlers.go - HTTP API handlers for the expense tracker

PURPOSE:
  Exposes the finance domain via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS (this file):
  Balance:
    GET    /api/balance                   Current balance
    POST   /api/balance/add               Credit from an external source
    GET    /api/balance/transactions      Ledger history (paginated)
    GET    /api/balance/sources           Valid credit sources

  Expenses:
    GET    /api/expenses                  List (filter + pagination)
    POST   /api/expenses                  Create (debits balance)
    GET    /api/expenses/summary          Spending totals per window
    GET    /api/expenses/{id}             Get one
    PUT    /api/expenses/{id}             Update (delta-adjusts balance)
    DELETE /api/expenses/{id}             Soft delete (refunds balance)

  Categories:
    GET    /api/categories                Defaults + own
    POST   /api/categories                Create custom
    PUT    /api/categories/{id}           Update custom
    DELETE /api/categories/{id}           Delete custom (403 default, 409 in use)

  Income:
    GET    /api/income/current            Income effective today
    GET    /api/income/history            Full history
    POST   /api/income                    Append a history row
    PUT    /api/income/{id}               Correct a row
    DELETE /api/income/{id}               Remove a row

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (finance.Service)
  4. Serialize response in the standard envelope
  5. Map domain errors to HTTP status codes

ERROR HANDLING:
  See respond.go for the envelope and the error-code table.

SEE ALSO:
  - debts.go, lendings.go, targets.go, dashboard.go, export.go
  - auth.go: Authentication endpoints and middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   finance.Store
	Service *finance.Service

	TokenSecret string
	TokenTTL    time.Duration
}

// NewHandler creates a new handler around the given store.
func NewHandler(store finance.Store, tx finance.TxRunner, tokenSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		Store:       store,
		Service:     finance.NewService(store, tx),
		TokenSecret: tokenSecret,
		TokenTTL:    tokenTTL,
	}
}

// parseMoney reads a positive decimal amount from its JSON string or
// number form.
func parseMoney(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, err == nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// =============================================================================
// BALANCE ENDPOINTS
// =============================================================================

// GetBalance returns the current balance.
// GET /api/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	balance, err := h.Service.Balance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, BalanceDTO{Balance: money(balance)}, "")
}

type addBalanceRequest struct {
	Amount      string `json:"amount"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

// AddBalance credits the balance from an external source.
// POST /api/balance/add
func (h *Handler) AddBalance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req addBalanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseMoney(req.Amount)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
		return
	}
	source, ok := ledger.ParseSource(req.Source)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown source")
		return
	}

	entry, err := h.Service.AddToBalance(r.Context(), user.ID, amount, source, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"entry":   toEntryDTO(*entry, lang(r)),
		"balance": money(entry.BalanceAfter),
	}, "balance updated")
}

// GetTransactions returns the ledger history, newest first.
// GET /api/balance/transactions?type=&source=&page=&per_page=
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	f := ledger.EntryFilter{
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	// "direction" is accepted as an alias for "type".
	d := r.URL.Query().Get("type")
	if d == "" {
		d = r.URL.Query().Get("direction")
	}
	if d != "" {
		dir, ok := ledger.ParseDirection(d)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "type must be credit or debit")
			return
		}
		f.Direction = dir
	}
	if s := r.URL.Query().Get("source"); s != "" {
		src, ok := ledger.ParseSource(s)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown source")
			return
		}
		f.Source = src
	}

	entries, total, err := h.Service.Transactions(r.Context(), user.ID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	page, perPage := f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"transactions": toEntryDTOs(entries, lang(r)),
		"meta":         MetaDTO{Page: page, PerPage: perPage, Total: total},
	}, "")
}

// GetSources lists the credit sources a client may supply to
// /api/balance/add, with display labels.
// GET /api/balance/sources
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	l := lang(r)
	out := make([]SourceDTO, 0, len(ledger.CreditSources))
	for _, s := range ledger.CreditSources {
		out = append(out, SourceDTO{Value: string(s), Label: s.Label(l)})
	}
	writeSuccess(w, http.StatusOK, out, "")
}

// =============================================================================
// EXPENSE ENDPOINTS
// =============================================================================

type expenseRequest struct {
	CategoryID *string `json:"category_id"`
	Amount     *string `json:"amount"`
	Date       *string `json:"date"`
	Note       *string `json:"note"`
}

// ListExpenses lists non-deleted expenses, newest first.
// GET /api/expenses?category_id=&date_from=&date_to=&page=&per_page=
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	f := finance.ExpenseFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		Page:       queryInt(r, "page"),
		PerPage:    queryInt(r, "per_page"),
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	if raw := r.URL.Query().Get("date_from"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "date_from must be YYYY-MM-DD")
			return
		}
		f.From = &t
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		t, ok := parseDate(raw)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "date_to must be YYYY-MM-DD")
			return
		}
		// Inclusive on the wire, half-open in the store.
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}

	expenses, total, err := h.Service.ListExpenses(r.Context(), user.ID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	categories, err := h.Store.ListCategories(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byID := make(map[string]finance.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	l := lang(r)
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		var cat *finance.Category
		if c, ok := byID[e.CategoryID]; ok {
			cat = &c
		}
		dtos = append(dtos, toExpenseDTO(e, cat, l))
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"expenses": dtos,
		"meta":     MetaDTO{Page: page, PerPage: f.PerPage, Total: total},
	}, "")
}

// CreateExpense records an expense and debits the balance.
// POST /api/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CategoryID == nil || req.Amount == nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "category_id and amount are required")
		return
	}
	amount, ok := parseMoney(*req.Amount)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
		return
	}
	date := time.Now().UTC()
	if req.Date != nil {
		d, ok := parseDate(*req.Date)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	note := ""
	if req.Note != nil {
		note = *req.Note
	}

	exp, err := h.Service.CreateExpense(r.Context(), user.ID, *req.CategoryID, amount, date, note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cat, _ := h.Store.GetCategory(r.Context(), exp.CategoryID)
	writeSuccess(w, http.StatusCreated, toExpenseDTO(*exp, cat, lang(r)), "expense recorded")
}

// GetExpense returns one expense.
// GET /api/expenses/{id}
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	exp, err := h.Service.GetExpense(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cat, _ := h.Store.GetCategory(r.Context(), exp.CategoryID)
	writeSuccess(w, http.StatusOK, toExpenseDTO(*exp, cat, lang(r)), "")
}

// UpdateExpense applies field changes; an amount change adjusts the
// balance by the difference only.
// PUT /api/expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		a, ok := parseMoney(*req.Amount)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
			return
		}
		amount = &a
	}
	var date *time.Time
	if req.Date != nil {
		d, ok := parseDate(*req.Date)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	exp, err := h.Service.UpdateExpense(r.Context(), user.ID, chi.URLParam(r, "id"),
		req.CategoryID, amount, date, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cat, _ := h.Store.GetCategory(r.Context(), exp.CategoryID)
	writeSuccess(w, http.StatusOK, toExpenseDTO(*exp, cat, lang(r)), "expense updated")
}

// DeleteExpense soft-deletes an expense and refunds its amount.
// DELETE /api/expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteExpense(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "expense deleted")
}

// ExpenseSummary returns spending totals for the standard windows.
// GET /api/expenses/summary
func (h *Handler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	sum, err := h.Service.SummarizeExpenses(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, ExpenseSummaryDTO{
		Today:     money(sum.Today),
		ThisWeek:  money(sum.ThisWeek),
		ThisMonth: money(sum.ThisMonth),
		ThisYear:  money(sum.ThisYear),
		AllTime:   money(sum.AllTime),
		Count:     sum.Count,
	}, "")
}

// =============================================================================
// CATEGORY ENDPOINTS
// =============================================================================

type categoryRequest struct {
	NameEN *string `json:"name_en"`
	NameAR *string `json:"name_ar"`
	Icon   *string `json:"icon"`
	Color  *string `json:"color"`
}

// ListCategories returns the system defaults plus the user's own.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	categories, err := h.Service.ListCategories(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	l := lang(r)
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c, l))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// CreateCategory adds a custom category.
// POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var nameEN, nameAR, icon, color string
	if req.NameEN != nil {
		nameEN = *req.NameEN
	}
	if req.NameAR != nil {
		nameAR = *req.NameAR
	}
	if req.Icon != nil {
		icon = *req.Icon
	}
	if req.Color != nil {
		color = *req.Color
	}

	cat, err := h.Service.CreateCategory(r.Context(), user.ID, nameEN, nameAR, icon, color)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toCategoryDTO(*cat, lang(r)), "category created")
}

// UpdateCategory edits a custom category. Defaults return 403.
// PUT /api/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cat, err := h.Service.UpdateCategory(r.Context(), user.ID, chi.URLParam(r, "id"),
		req.NameEN, req.NameAR, req.Icon, req.Color)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toCategoryDTO(*cat, lang(r)), "category updated")
}

// DeleteCategory removes a custom category. Defaults return 403, a
// category still referenced by expenses returns 409.
// DELETE /api/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteCategory(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "category deleted")
}

// =============================================================================
// INCOME ENDPOINTS
// =============================================================================

type incomeRequest struct {
	MonthlyAmount *string `json:"monthly_amount"`
	EffectiveFrom *string `json:"effective_from"`
}

// CurrentIncome returns the income effective today, null if none.
// GET /api/income/current
func (h *Handler) CurrentIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	inc, err := h.Service.GetCurrentIncome(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if inc == nil {
		writeSuccess(w, http.StatusOK, nil, "no income set")
		return
	}
	writeSuccess(w, http.StatusOK, toIncomeDTO(*inc), "")
}

// IncomeHistory lists all income rows, newest effective first.
// GET /api/income/history
func (h *Handler) IncomeHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	history, err := h.Service.IncomeHistory(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]IncomeDTO, 0, len(history))
	for _, in := range history {
		dtos = append(dtos, toIncomeDTO(in))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// SetIncome appends a new income history row.
// POST /api/income
func (h *Handler) SetIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MonthlyAmount == nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "monthly_amount is required")
		return
	}
	amount, ok := parseMoney(*req.MonthlyAmount)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "monthly_amount must be a decimal string")
		return
	}
	effective := time.Now().UTC()
	if req.EffectiveFrom != nil {
		t, ok := parseDate(*req.EffectiveFrom)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "effective_from must be YYYY-MM-DD")
			return
		}
		effective = t
	}

	inc, err := h.Service.SetIncome(r.Context(), user.ID, amount, effective)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toIncomeDTO(*inc), "income set")
}

// UpdateIncome corrects an income history row.
// PUT /api/income/{id}
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var amount *decimal.Decimal
	if req.MonthlyAmount != nil {
		a, ok := parseMoney(*req.MonthlyAmount)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "monthly_amount must be a decimal string")
			return
		}
		amount = &a
	}
	var effective *time.Time
	if req.EffectiveFrom != nil {
		t, ok := parseDate(*req.EffectiveFrom)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "effective_from must be YYYY-MM-DD")
			return
		}
		effective = &t
	}

	inc, err := h.Service.UpdateIncome(r.Context(), user.ID, chi.URLParam(r, "id"), amount, effective)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toIncomeDTO(*inc), "income updated")
}

// DeleteIncome removes an income history row.
// DELETE /api/income/{id}
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteIncome(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "income deleted")
}
