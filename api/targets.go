package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
)

// =============================================================================
// TARGET ENDPOINTS
// =============================================================================

type targetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
	Priority    string `json:"priority"`
}

func (req targetRequest) toInput(w http.ResponseWriter) (finance.TargetInput, bool) {
	in := finance.TargetInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.Price != "" {
		price, ok := parseMoney(req.Price)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "price must be a decimal string")
			return in, false
		}
		in.Price = price
	}
	if req.Priority != "" {
		p, ok := finance.ParseTargetPriority(req.Priority)
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "priority must be low, medium or high")
			return in, false
		}
		in.Priority = p
	}
	return in, true
}

// ListTargets returns targets with live affordability against the
// current balance.
// GET /api/targets
func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	targets, err := h.Service.ListTargets(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := h.Service.Balance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]TargetDTO, 0, len(targets))
	for _, t := range targets {
		dtos = append(dtos, toTargetDTO(t, balance))
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

// CreateTarget records a savings goal.
// POST /api/targets
func (h *Handler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req targetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	t, err := h.Service.CreateTarget(r.Context(), user.ID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, _ := h.Service.Balance(r.Context(), user.ID)
	writeSuccess(w, http.StatusCreated, toTargetDTO(*t, balance), "target created")
}

// GetTarget returns one target.
// GET /api/targets/{id}
func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	t, err := h.Service.GetTarget(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, err := h.Service.Balance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toTargetDTO(*t, balance), "")
}

// UpdateTarget edits an active target.
// PUT /api/targets/{id}
func (h *Handler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req targetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	t, err := h.Service.UpdateTarget(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, _ := h.Service.Balance(r.Context(), user.ID)
	writeSuccess(w, http.StatusOK, toTargetDTO(*t, balance), "target updated")
}

// PurchaseTarget buys an affordable target, debiting the balance.
// POST /api/targets/{id}/purchase
func (h *Handler) PurchaseTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	t, entry, err := h.Service.PurchaseTarget(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"target":  toTargetDTO(*t, entry.BalanceAfter),
		"entry":   toEntryDTO(*entry, lang(r)),
		"balance": money(entry.BalanceAfter),
	}, "target purchased")
}

// CancelTarget abandons an active target.
// POST /api/targets/{id}/cancel
func (h *Handler) CancelTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	t, err := h.Service.CancelTarget(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	balance, _ := h.Service.Balance(r.Context(), user.ID)
	writeSuccess(w, http.StatusOK, toTargetDTO(*t, balance), "target cancelled")
}

// DeleteTarget removes a target.
// DELETE /api/targets/{id}
func (h *Handler) DeleteTarget(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Service.DeleteTarget(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "target deleted")
}
