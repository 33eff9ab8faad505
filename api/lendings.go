package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
)

// =============================================================================
// LENDING ENDPOINTS
// =============================================================================

type lendingRequest struct {
	BorrowerName       string  `json:"borrower_name"`
	BorrowerPhone      string  `json:"borrower_phone"`
	BorrowerEmail      string  `json:"borrower_email"`
	Amount             string  `json:"amount"`
	Currency           string  `json:"currency"`
	Description        string  `json:"description"`
	LendingDate        string  `json:"lending_date"`
	ExpectedReturnDate *string `json:"expected_return_date"`
	Notes              string  `json:"notes"`
	DeductFromBalance  *bool   `json:"deduct_from_balance"`
}

func (req lendingRequest) toInput(w http.ResponseWriter) (finance.LendingInput, bool) {
	in := finance.LendingInput{
		BorrowerName:  req.BorrowerName,
		BorrowerPhone: req.BorrowerPhone,
		BorrowerEmail: req.BorrowerEmail,
		Currency:      req.Currency,
		Description:   req.Description,
		Notes:         req.Notes,
	}
	if req.Amount != "" {
		amount, ok := parseMoney(req.Amount)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
			return in, false
		}
		in.Amount = amount
	}
	if req.LendingDate != "" {
		t, ok := parseDate(req.LendingDate)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "lending_date must be YYYY-MM-DD")
			return in, false
		}
		in.LendingDate = t
	}
	if req.ExpectedReturnDate != nil {
		t, ok := parseDate(*req.ExpectedReturnDate)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "expected_return_date must be YYYY-MM-DD")
			return in, false
		}
		in.ExpectedReturnDate = &t
	}
	return in, true
}

// ListLendings lists lendings with optional filters.
// GET /api/lendings?status=&search=
func (h *Handler) ListLendings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var f finance.LendingFilter
	if s := r.URL.Query().Get("status"); s != "" {
		st, ok := finance.ParseLendingStatus(s)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown status")
			return
		}
		f.Status = st
	}
	f.Search = r.URL.Query().Get("search")

	lendings, err := h.Service.ListLendings(r.Context(), user.ID, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	now := time.Now()
	dtos := make([]LendingDTO, 0, len(lendings))
	for _, l := range lendings {
		dtos = append(dtos, toLendingDTO(l, now))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// CreateLending records money lent out. deduct_from_balance defaults
// to true: the lent amount leaves the balance unless the client says
// otherwise.
// POST /api/lendings
func (h *Handler) CreateLending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req lendingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	deduct := true
	if req.DeductFromBalance != nil {
		deduct = *req.DeductFromBalance
	}

	l, err := h.Service.CreateLending(r.Context(), user.ID, in, deduct)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toLendingDTO(*l, time.Now()), "lending created")
}

// GetLending returns one lending with its payment history.
// GET /api/lendings/{id}
func (h *Handler) GetLending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	l, payments, err := h.Service.GetLending(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := toLendingDTO(*l, time.Now())
	dto.Payments = make([]LendingPaymentDTO, 0, len(payments))
	for _, p := range payments {
		dto.Payments = append(dto.Payments, toLendingPaymentDTO(p))
	}
	writeSuccess(w, http.StatusOK, dto, "")
}

// UpdateLending edits contact details and notes.
// PUT /api/lendings/{id}
func (h *Handler) UpdateLending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req lendingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	l, err := h.Service.UpdateLending(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toLendingDTO(*l, time.Now()), "lending updated")
}

// DeleteLending removes a lending; outstanding money on an unforgiven
// lending is refunded to the balance.
// DELETE /api/lendings/{id}
func (h *Handler) DeleteLending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteLending(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "lending deleted")
}

// ForgiveLending writes off the outstanding amount.
// POST /api/lendings/{id}/forgive
func (h *Handler) ForgiveLending(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	l, err := h.Service.ForgiveLending(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toLendingDTO(*l, time.Now()), "lending forgiven")
}

type lendingPaymentRequest struct {
	Amount        string `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	AddToBalance  *bool  `json:"add_to_balance"`
}

// RecordLendingPayment credits a repayment. add_to_balance defaults to
// true: returned money re-enters the balance unless the client says
// otherwise.
// POST /api/lendings/{id}/payments
func (h *Handler) RecordLendingPayment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req lendingPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, ok := parseMoney(req.Amount)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "amount must be a decimal string")
		return
	}
	var paymentDate time.Time
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
	addToBalance := true
	if req.AddToBalance != nil {
		addToBalance = *req.AddToBalance
	}

	p, l, err := h.Service.RecordLendingPayment(r.Context(), user.ID, chi.URLParam(r, "id"),
		amount, paymentDate, method, req.Notes, addToBalance)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{
		"payment": toLendingPaymentDTO(*p),
		"lending": toLendingDTO(*l, time.Now()),
	}, "payment recorded")
}

// DeleteLendingPayment removes a payment row and restores the parent's
// remaining amount. The balance is deliberately untouched.
// DELETE /api/lendings/{id}/payments/{paymentID}
func (h *Handler) DeleteLendingPayment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	l, err := h.Service.DeleteLendingPayment(r.Context(), user.ID,
		chi.URLParam(r, "id"), chi.URLParam(r, "paymentID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toLendingDTO(*l, time.Now()), "payment deleted")
}

// LendingSummary returns aggregate lending numbers.
// GET /api/lendings/summary
func (h *Handler) LendingSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	sum, err := h.Service.LendingStats(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byStatus := make(map[string]int, len(sum.ByStatus))
	for st, n := range sum.ByStatus {
		byStatus[string(st)] = n
	}
	writeSuccess(w, http.StatusOK, LendingSummaryDTO{
		TotalLendings:    sum.TotalLendings,
		TotalLent:        money(sum.TotalLent),
		TotalOutstanding: money(sum.TotalOutstanding),
		TotalReturned:    money(sum.TotalReturned),
		TotalForgiven:    money(sum.TotalForgiven),
		ByStatus:         byStatus,
		OverdueCount:     sum.OverdueCount,
	}, "")
}
