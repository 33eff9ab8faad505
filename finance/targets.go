package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// TARGETS - Savings goals purchasable once the balance covers them
// =============================================================================

// TargetInput carries the writable fields of a target.
type TargetInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Priority    TargetPriority
}

// CreateTarget records a new savings goal.
func (s *Service) CreateTarget(ctx context.Context, userID string, in TargetInput) (*Target, error) {
	if in.Name == "" || !in.Price.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if in.Priority == "" {
		in.Priority = TargetPriorityMedium
	}
	now := s.Now()
	t := Target{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Priority:    in.Priority,
		Status:      TargetActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.SaveTarget(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTarget edits an active target. Completed targets are frozen.
func (s *Service) UpdateTarget(ctx context.Context, userID, targetID string, in TargetInput) (*Target, error) {
	t, err := s.targetFor(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if t.Status != TargetActive {
		return nil, ledger.ErrTargetNotActive
	}
	if in.Name != "" {
		t.Name = in.Name
	}
	t.Description = in.Description
	t.ImageURL = in.ImageURL
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if !in.Price.IsZero() {
		if !in.Price.IsPositive() {
			return nil, ledger.ErrInvalidAmount
		}
		t.Price = in.Price
	}
	t.UpdatedAt = s.Now()
	if err := s.Store.SaveTarget(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// PurchaseTarget buys an active target. The affordability check and
// the debit happen in the same transaction so two concurrent
// purchases cannot both "afford" the same money.
func (s *Service) PurchaseTarget(ctx context.Context, userID, targetID string) (*Target, *ledger.Entry, error) {
	t, err := s.targetFor(ctx, userID, targetID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != TargetActive {
		return nil, nil, ledger.ErrTargetNotActive
	}

	var entry ledger.Entry
	err = s.Tx.WithTx(ctx, func(tx Store) error {
		b, err := tx.GetBalance(ctx, userID)
		if err != nil {
			if err == ledger.ErrNotFound {
				return &ledger.InsufficientBalanceError{
					UserID: userID, Available: decimal.Zero, Requested: t.Price,
				}
			}
			return err
		}
		if !t.CanAfford(b.Current) {
			return &ledger.InsufficientBalanceError{
				UserID: userID, Available: b.Current, Requested: t.Price,
			}
		}
		e, _, err := ledger.NewMover(tx).TargetPurchase(ctx, userID, t.Price, t.ID, t.Name)
		if err != nil {
			return err
		}
		entry = e

		now := s.Now()
		t.Status = TargetCompleted
		t.CompletedAt = &now
		t.UpdatedAt = now
		return tx.SaveTarget(ctx, *t)
	})
	if err != nil {
		return nil, nil, err
	}
	return t, &entry, nil
}

// CancelTarget abandons an active target without moving money.
func (s *Service) CancelTarget(ctx context.Context, userID, targetID string) (*Target, error) {
	t, err := s.targetFor(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if t.Status != TargetActive {
		return nil, ledger.ErrTargetNotActive
	}
	t.Status = TargetCancelled
	t.UpdatedAt = s.Now()
	if err := s.Store.SaveTarget(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTarget removes a target outright.
func (s *Service) DeleteTarget(ctx context.Context, userID, targetID string) error {
	t, err := s.targetFor(ctx, userID, targetID)
	if err != nil {
		return err
	}
	return s.Store.DeleteTarget(ctx, t.ID)
}

// GetTarget returns one target after an ownership check.
func (s *Service) GetTarget(ctx context.Context, userID, targetID string) (*Target, error) {
	return s.targetFor(ctx, userID, targetID)
}

// ListTargets lists the user's targets.
func (s *Service) ListTargets(ctx context.Context, userID string) ([]Target, error) {
	return s.Store.ListTargets(ctx, userID)
}

func (s *Service) targetFor(ctx context.Context, userID, targetID string) (*Target, error) {
	t, err := s.Store.GetTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ledger.ErrNotFound
	}
	return t, nil
}
