package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// DEBTS - Money owed TO the user, paid down by append-only payments
// =============================================================================

// DebtInput carries the writable fields of a debt.
type DebtInput struct {
	DebtorName        string
	DebtorPhone       string
	DebtorEmail       string
	TotalAmount       decimal.Decimal
	Description       string
	Priority          DebtPriority
	PaymentType       PaymentType
	InstallmentAmount decimal.Decimal
	DueDate           *time.Time
	StartDate         *time.Time
	Notes             string
}

// CreateDebt records a new debt. Creating a debt does not touch the
// balance; money only moves when a payment opts into it.
func (s *Service) CreateDebt(ctx context.Context, userID string, in DebtInput) (*Debt, error) {
	if in.DebtorName == "" || !in.TotalAmount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.PaymentType == "" {
		in.PaymentType = PaymentOneTime
	}

	now := s.Now()
	d := Debt{
		ID:                uuid.NewString(),
		UserID:            userID,
		DebtorName:        in.DebtorName,
		DebtorPhone:       in.DebtorPhone,
		DebtorEmail:       in.DebtorEmail,
		TotalAmount:       in.TotalAmount,
		PaidAmount:        decimal.Zero,
		Description:       in.Description,
		Priority:          in.Priority,
		PaymentType:       in.PaymentType,
		InstallmentAmount: in.InstallmentAmount,
		DueDate:           in.DueDate,
		StartDate:         in.StartDate,
		Status:            DebtPending,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.SaveDebt(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDebt edits debt metadata. TotalAmount may grow or shrink but
// never below what has already been paid.
func (s *Service) UpdateDebt(ctx context.Context, userID, debtID string, in DebtInput) (*Debt, error) {
	d, err := s.debtFor(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	if in.DebtorName != "" {
		d.DebtorName = in.DebtorName
	}
	d.DebtorPhone = in.DebtorPhone
	d.DebtorEmail = in.DebtorEmail
	d.Description = in.Description
	d.Notes = in.Notes
	if in.Priority != "" {
		d.Priority = in.Priority
	}
	if in.PaymentType != "" {
		d.PaymentType = in.PaymentType
	}
	if !in.InstallmentAmount.IsZero() {
		d.InstallmentAmount = in.InstallmentAmount
	}
	if in.DueDate != nil {
		d.DueDate = in.DueDate
	}
	if in.StartDate != nil {
		d.StartDate = in.StartDate
	}
	if !in.TotalAmount.IsZero() {
		if in.TotalAmount.LessThan(d.PaidAmount) {
			return nil, ledger.ErrInvalidAmount
		}
		d.TotalAmount = in.TotalAmount
		// A raised total can reopen a completed debt.
		if d.Status == DebtCompleted && d.PaidAmount.LessThan(d.TotalAmount) {
			d.Status = DebtInProgress
		}
	}
	d.UpdatedAt = s.Now()
	if err := s.Store.SaveDebt(ctx, *d); err != nil {
		return nil, err
	}
	return d, nil
}

// CancelDebt marks a debt cancelled. Terminal; payments stop.
func (s *Service) CancelDebt(ctx context.Context, userID, debtID string) (*Debt, error) {
	d, err := s.debtFor(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	d.Status = DebtCancelled
	d.UpdatedAt = s.Now()
	if err := s.Store.SaveDebt(ctx, *d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDebt removes the debt and its payment rows. Ledger entries
// from past payments stay; the ledger is append-only.
func (s *Service) DeleteDebt(ctx context.Context, userID, debtID string) error {
	d, err := s.debtFor(ctx, userID, debtID)
	if err != nil {
		return err
	}
	return s.Store.DeleteDebt(ctx, d.ID)
}

// GetDebt returns one debt with its payments after an ownership check.
func (s *Service) GetDebt(ctx context.Context, userID, debtID string) (*Debt, []DebtPayment, error) {
	d, err := s.debtFor(ctx, userID, debtID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.Store.ListDebtPayments(ctx, d.ID)
	if err != nil {
		return nil, nil, err
	}
	return d, payments, nil
}

// ListDebts lists the user's debts.
func (s *Service) ListDebts(ctx context.Context, userID string, f DebtFilter) ([]Debt, error) {
	return s.Store.ListDebts(ctx, userID, f)
}

// RecordDebtPayment applies a payment against a debt.
//
// Rules enforced here:
//   - the payment must not exceed the remaining amount (hard reject,
//     never silently clamped)
//   - PaidAmount only ever grows; hitting the total flips the status
//     to completed, anything in between flips pending to in_progress
//   - addToBalance additionally credits the balance and links the
//     resulting ledger entry to the payment row
//
// The debt update, payment row, and optional ledger write share one
// transaction.
func (s *Service) RecordDebtPayment(ctx context.Context, userID, debtID string, amount decimal.Decimal, paymentDate time.Time, method PaymentMethod, notes string, addToBalance bool) (*DebtPayment, *Debt, error) {
	if !amount.IsPositive() {
		return nil, nil, ledger.ErrInvalidAmount
	}
	d, err := s.debtFor(ctx, userID, debtID)
	if err != nil {
		return nil, nil, err
	}
	if d.Status == DebtCompleted || d.Status == DebtCancelled {
		return nil, nil, ledger.ErrInvalidAmount
	}
	remaining := d.Remaining()
	if amount.GreaterThan(remaining) {
		return nil, nil, &ledger.ExceedsRemainingError{Remaining: remaining, Requested: amount}
	}
	if method == "" {
		method = MethodCash
	}

	now := s.Now()
	p := DebtPayment{
		ID:            uuid.NewString(),
		DebtID:        d.ID,
		UserID:        userID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
		Notes:         notes,
		CreatedAt:     now,
	}

	d.PaidAmount = d.PaidAmount.Add(amount)
	if d.PaidAmount.GreaterThanOrEqual(d.TotalAmount) {
		d.Status = DebtCompleted
	} else if d.Status == DebtPending || d.Status == DebtOverdue {
		d.Status = DebtInProgress
	}
	d.UpdatedAt = now

	err = s.Tx.WithTx(ctx, func(tx Store) error {
		if addToBalance {
			e, _, err := ledger.NewMover(tx).DebtPaymentCredit(ctx, userID, amount, p.ID, d.DebtorName)
			if err != nil {
				return err
			}
			p.LedgerEntryID = e.ID
		}
		if err := tx.SaveDebtPayment(ctx, p); err != nil {
			return err
		}
		return tx.SaveDebt(ctx, *d)
	})
	if err != nil {
		return nil, nil, err
	}
	return &p, d, nil
}

// MarkOverdueDebts moves past-due open debts into overdue. Intended
// for a periodic sweep; safe to rerun.
func (s *Service) MarkOverdueDebts(ctx context.Context, userID string) (int, error) {
	debts, err := s.Store.ListDebts(ctx, userID, DebtFilter{})
	if err != nil {
		return 0, err
	}
	now := s.Now()
	var n int
	for i := range debts {
		d := &debts[i]
		if d.Status != DebtPending && d.Status != DebtInProgress {
			continue
		}
		if !d.IsOverdue(now) {
			continue
		}
		d.Status = DebtOverdue
		d.UpdatedAt = now
		if err := s.Store.SaveDebt(ctx, *d); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) debtFor(ctx context.Context, userID, debtID string) (*Debt, error) {
	d, err := s.Store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return d, nil
}
