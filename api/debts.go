package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
)

// =============================================================================
// DEBT ENDPOINTS
// =============================================================================

type debtRequest struct {
	DebtorName        string  `json:"debtor_name"`
	DebtorPhone       string  `json:"debtor_phone"`
	DebtorEmail       string  `json:"debtor_email"`
	TotalAmount       string  `json:"total_amount"`
	Description       string  `json:"description"`
	Priority          string  `json:"priority"`
	PaymentType       string  `json:"payment_type"`
	InstallmentAmount string  `json:"installment_amount"`
	DueDate           *string `json:"due_date"`
	StartDate         *string `json:"start_date"`
	Notes             string  `json:"notes"`
}

func (req debtRequest) toInput(w http.ResponseWriter) (finance.DebtInput, bool) {
	in := finance.DebtInput{
		DebtorName:  req.DebtorName,
		DebtorPhone: req.DebtorPhone,
		DebtorEmail: req.DebtorEmail,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.TotalAmount != "" {
		amount, ok := parseMoney(req.TotalAmount)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "total_amount must be a decimal string")
			return in, false
		}
		in.TotalAmount = amount
	}
	if req.Priority != "" {
		p, ok := finance.ParseDebtPriority(req.Priority)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "priority must be 1 through 5")
			return in, false
		}
		in.Priority = p
	}
	if req.PaymentType != "" {
		pt, ok := finance.ParsePaymentType(req.PaymentType)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown payment_type")
			return in, false
		}
		in.PaymentType = pt
	}
	if req.InstallmentAmount != "" {
		amount, ok := parseMoney(req.InstallmentAmount)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "installment_amount must be a decimal string")
			return in, false
		}
		in.InstallmentAmount = amount
	}
	if req.DueDate != nil {
		t, ok := parseDate(*req.DueDate)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "due_date must be YYYY-MM-DD")
			return in, false
		}
		in.DueDate = &t
	}
	if req.StartDate != nil {
		t, ok := parseDate(*req.StartDate)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "start_date must be YYYY-MM-DD")
			return in, false
		}
		in.StartDate = &t
	}
	return in, true
}

// ListDebts lists debts with optional filters.
// GET /api/debts?status=&priority=&search=
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var f finance.DebtFilter
	if s := r.URL.Query().Get("status"); s != "" {
		st, ok := finance.ParseDebtStatus(s)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown status")
			return
		}
		f.Status = st
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		pr, ok := finance.ParseDebtPriority(p)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "priority must be 1 through 5")
			return
		}
		f.Priority = pr
	}
	f.Search = r.URL.Query().Get("search")

	debts, err := h.Service.ListDebts(r.Context(), user.ID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	now := time.Now()
	dtos := make([]DebtDTO, 0, len(debts))
	for _, d := range debts {
		dtos = append(dtos, toDebtDTO(d, now))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// CreateDebt records a debt owed to the user.
// POST /api/debts
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req debtRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	d, err := h.Service.CreateDebt(r.Context(), user.ID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toDebtDTO(*d, time.Now()), "debt created")
}

// GetDebt returns one debt with its payment history.
// GET /api/debts/{id}
func (h *Handler) GetDebt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	d, payments, err := h.Service.GetDebt(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := toDebtDTO(*d, time.Now())
	dto.Payments = make([]DebtPaymentDTO, 0, len(payments))
	for _, p := range payments {
		dto.Payments = append(dto.Payments, toDebtPaymentDTO(p))
	}
	writeSuccess(w, http.StatusOK, dto, "")
}

// ListDebtPayments returns the payment history for one debt.
// GET /api/debts/{id}/payments
func (h *Handler) ListDebtPayments(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	_, payments, err := h.Service.GetDebt(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]DebtPaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, toDebtPaymentDTO(p))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// UpdateDebt edits debt metadata.
// PUT /api/debts/{id}
func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req debtRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	d, err := h.Service.UpdateDebt(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toDebtDTO(*d, time.Now()), "debt updated")
}

// CancelDebt marks a debt cancelled.
// POST /api/debts/{id}/cancel
func (h *Handler) CancelDebt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	d, err := h.Service.CancelDebt(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toDebtDTO(*d, time.Now()), "debt cancelled")
}

// DeleteDebt removes a debt and its payment rows.
// DELETE /api/debts/{id}
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteDebt(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "debt deleted")
}

type debtPaymentRequest struct {
	Amount        string `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	AddToBalance  *bool  `json:"add_to_balance"`
}

// RecordDebtPayment applies a payment. Overpaying the remaining amount
// is a hard 422, never a silent clamp.
// POST /api/debts/{id}/payments
func (h *Handler) RecordDebtPayment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req debtPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseMoney(req.Amount)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
		return
	}
	paymentDate := time.Now().UTC()
	if req.PaymentDate != "" {
		t, ok := parseDate(req.PaymentDate)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "payment_date must be YYYY-MM-DD")
			return
		}
		paymentDate = t
	}
	var method finance.PaymentMethod
	if req.PaymentMethod != "" {
		m, ok := finance.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown payment_method")
			return
		}
		method = m
	}
	addToBalance := false
	if req.AddToBalance != nil {
		addToBalance = *req.AddToBalance
	}

	p, d, err := h.Service.RecordDebtPayment(r.Context(), user.ID, chi.URLParam(r, "id"),
		amount, paymentDate, method, req.Notes, addToBalance)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"payment": toDebtPaymentDTO(*p),
		"debt":    toDebtDTO(*d, time.Now()),
	}, "payment recorded")
}

// DebtStatistics returns aggregate debt numbers.
// GET /api/debts/statistics
func (h *Handler) DebtStatistics(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := h.Service.DebtStats(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byStatus := make(map[string]int, len(stats.ByStatus))
	for st, n := range stats.ByStatus {
		byStatus[string(st)] = n
	}
	byPriority := make(map[string]int, len(stats.ByPriority))
	for p, n := range stats.ByPriority {
		byPriority[string(p)] = n
	}
	writeSuccess(w, http.StatusOK, DebtStatsDTO{
		TotalDebts:     stats.TotalDebts,
		TotalAmount:    money(stats.TotalAmount),
		TotalPaid:      money(stats.TotalPaid),
		TotalRemaining: money(stats.TotalRemaining),
		ByStatus:       byStatus,
		ByPriority:     byPriority,
		OverdueCount:   stats.OverdueCount,
	}, "")
}
