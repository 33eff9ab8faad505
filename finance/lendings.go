package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// LENDINGS - Money the user lent OUT, repaid by deletable payments
// =============================================================================

// LendingInput carries the writable fields of a lending.
type LendingInput struct {
	BorrowerName       string
	BorrowerPhone      string
	BorrowerEmail      string
	Amount             decimal.Decimal
	Currency           string
	Description        string
	LendingDate        time.Time
	ExpectedReturnDate *time.Time
	Notes              string
}

// CreateLending records money lent out. When deductFromBalance is set
// (the default on the HTTP surface) the lent amount is debited from
// the balance in the same transaction.
func (s *Service) CreateLending(ctx context.Context, userID string, in LendingInput, deductFromBalance bool) (*Lending, error) {
	if in.BorrowerName == "" || !in.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.LendingDate.IsZero() {
		in.LendingDate = s.Now()
	}

	now := s.Now()
	l := Lending{
		ID:                 uuid.NewString(),
		UserID:             userID,
		BorrowerName:       in.BorrowerName,
		BorrowerPhone:      in.BorrowerPhone,
		BorrowerEmail:      in.BorrowerEmail,
		Amount:             in.Amount,
		RemainingAmount:    in.Amount,
		Currency:           in.Currency,
		Description:        in.Description,
		LendingDate:        in.LendingDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Status:             LendingPending,
		Notes:              in.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveLending(ctx, l); err != nil {
			return err
		}
		if !deductFromBalance {
			return nil
		}
		_, _, err := ledger.NewMover(tx).DeductForLending(ctx, userID, l.Amount, l.ID, l.BorrowerName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLending edits contact details and notes. The lent amount is
// fixed after creation; repayment progress changes only via payments.
func (s *Service) UpdateLending(ctx context.Context, userID, lendingID string, in LendingInput) (*Lending, error) {
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return nil, err
	}
	if in.BorrowerName != "" {
		l.BorrowerName = in.BorrowerName
	}
	l.BorrowerPhone = in.BorrowerPhone
	l.BorrowerEmail = in.BorrowerEmail
	l.Description = in.Description
	l.Notes = in.Notes
	if in.ExpectedReturnDate != nil {
		l.ExpectedReturnDate = in.ExpectedReturnDate
	}
	l.UpdatedAt = s.Now()
	if err := s.Store.SaveLending(ctx, *l); err != nil {
		return nil, err
	}
	return l, nil
}

// RecordLendingPayment credits a repayment against a lending. The
// remaining amount shrinks, the status re-derives, and when
// addToBalance is set the money re-enters the balance, all in one
// transaction.
func (s *Service) RecordLendingPayment(ctx context.Context, userID, lendingID string, amount decimal.Decimal, paymentDate time.Time, method PaymentMethod, notes string, addToBalance bool) (*LendingPayment, *Lending, error) {
	if !amount.IsPositive() {
		return nil, nil, ledger.ErrInvalidAmount
	}
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return nil, nil, err
	}
	if l.Status == LendingForgiven {
		return nil, nil, ledger.ErrInvalidAmount
	}
	if amount.GreaterThan(l.RemainingAmount) {
		return nil, nil, &ledger.ExceedsRemainingError{Remaining: l.RemainingAmount, Requested: amount}
	}
	if method == "" {
		method = MethodCash
	}
	if paymentDate.IsZero() {
		paymentDate = s.Now()
	}

	now := s.Now()
	p := LendingPayment{
		ID:            uuid.NewString(),
		LendingID:     l.ID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
		Notes:         notes,
		CreatedAt:     now,
	}

	l.RemainingAmount = l.RemainingAmount.Sub(amount)
	l.DeriveStatus()
	l.UpdatedAt = now

	err = s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveLendingPayment(ctx, p); err != nil {
			return err
		}
		if err := tx.SaveLending(ctx, *l); err != nil {
			return err
		}
		if !addToBalance {
			return nil
		}
		_, _, err := ledger.NewMover(tx).AddLendingReturn(ctx, userID, amount, l.ID, l.BorrowerName)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &p, l, nil
}

// DeleteLendingPayment removes a payment row and restores the parent's
// remaining amount. It deliberately writes NOTHING to the ledger: a
// payment recorded with addToBalance keeps its credit entry, so the
// balance does not move back. Callers who need the money out again
// record a correcting debit themselves.
func (s *Service) DeleteLendingPayment(ctx context.Context, userID, lendingID, paymentID string) (*Lending, error) {
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.GetLendingPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.LendingID != l.ID {
		return nil, ledger.ErrNotFound
	}

	l.RemainingAmount = l.RemainingAmount.Add(p.Amount)
	if l.RemainingAmount.GreaterThan(l.Amount) {
		l.RemainingAmount = l.Amount
	}
	if l.Status != LendingForgiven {
		l.DeriveStatus()
	}
	l.UpdatedAt = s.Now()

	err = s.Tx.WithTx(ctx, func(tx Store) error {
		if err := tx.DeleteLendingPayment(ctx, p.ID); err != nil {
			return err
		}
		return tx.SaveLending(ctx, *l)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ForgiveLending writes off the outstanding amount. Terminal: the
// status never re-derives afterwards and the balance is untouched;
// the lent money is simply gone.
func (s *Service) ForgiveLending(ctx context.Context, userID, lendingID string) (*Lending, error) {
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return nil, err
	}
	if l.Status == LendingPaid {
		return nil, ledger.ErrInvalidAmount
	}
	l.Status = LendingForgiven
	l.UpdatedAt = s.Now()
	if err := s.Store.SaveLending(ctx, *l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLending removes a lending and its payments, refunding the
// ORIGINAL lent amount to the balance. Repayments already credited
// keep their entries, so deleting a partially repaid lending leaves
// the balance higher than before the lending existed; that mirrors
// how each movement is recorded once and never reversed.
func (s *Service) DeleteLending(ctx context.Context, userID, lendingID string) error {
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return err
	}
	return s.Tx.WithTx(ctx, func(tx Store) error {
		_, _, err := ledger.NewMover(tx).RefundLending(ctx, userID, l.Amount, l.ID, l.BorrowerName)
		if err != nil {
			return err
		}
		return tx.DeleteLending(ctx, l.ID)
	})
}

// GetLending returns one lending with its payments.
func (s *Service) GetLending(ctx context.Context, userID, lendingID string) (*Lending, []LendingPayment, error) {
	l, err := s.lendingFor(ctx, userID, lendingID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.Store.ListLendingPayments(ctx, l.ID)
	if err != nil {
		return nil, nil, err
	}
	return l, payments, nil
}

// ListLendings lists the user's lendings.
func (s *Service) ListLendings(ctx context.Context, userID string, f LendingFilter) ([]Lending, error) {
	return s.Store.ListLendings(ctx, userID, f)
}

func (s *Service) lendingFor(ctx context.Context, userID, lendingID string) (*Lending, error) {
	l, err := s.Store.GetLending(ctx, lendingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return l, nil
}
