/*
mover.go - Atomic money-movement operations

PURPOSE:
  Every way money can move in the system is a named operation here.
  Each operation performs exactly one balance mutation plus one ledger
  append, computes balance_after from the post-mutation total, and
  returns the created entry. Nothing else in the codebase writes the
  balance column.

ATOMICITY:
  A Mover operates on whatever Store it was constructed with. Callers
  that need the balance write and the entry append (and any surrounding
  domain writes) to be all-or-nothing construct the Mover on the
  tx-scoped store their persistence layer hands them, so every
  operation here runs under one database transaction. The store
  additionally serializes writers, which closes the read-modify-write
  race on the balance row.

OPERATION SET:
  Credit            balance += amount   (income, debt payment opt-in)
  Debit             balance -= amount   (expense create / increase)
  Refund            balance += amount   (expense delete / decrease)
  DeductForLending  balance -= amount   (money lent out)
  AddLendingReturn  balance += amount   (borrower repayment)
  RefundLending     balance += amount   (lending deleted)
  TargetPurchase    balance -= price    (affordability pre-checked)

  Debits have no floor: the balance is allowed to go negative. The only
  amount guards are the debt/lending remaining-amount checks and the
  target affordability check, which live with their callers.

SEE ALSO:
  - types.go: Entry, Balance, Source
  - store.go: Store / TxRunner interfaces
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mover performs money-movement operations against a Store.
type Mover struct {
	store Store
}

// NewMover creates a Mover bound to the given store. Pass a tx-scoped
// store to make operations atomic with surrounding domain writes.
func NewMover(store Store) *Mover {
	return &Mover{store: store}
}

// getOrCreate returns the user's balance, creating a zero row on first
// money movement.
func (m *Mover) getOrCreate(ctx context.Context, userID string) (Balance, error) {
	b, err := m.store.GetBalance(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Balance{}, err
	}
	if b != nil {
		return *b, nil
	}
	nb := Balance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Current:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.SaveBalance(ctx, nb); err != nil {
		return Balance{}, err
	}
	return nb, nil
}

// apply mutates the balance by the signed amount and appends the entry.
func (m *Mover) apply(ctx context.Context, e Entry) (Entry, Balance, error) {
	if !e.Amount.IsPositive() {
		return Entry{}, Balance{}, ErrInvalidAmount
	}

	bal, err := m.getOrCreate(ctx, e.UserID)
	if err != nil {
		return Entry{}, Balance{}, fmt.Errorf("load balance: %w", err)
	}

	if e.Direction == Debit {
		bal.Current = bal.Current.Sub(e.Amount)
	} else {
		bal.Current = bal.Current.Add(e.Amount)
	}
	bal.UpdatedAt = time.Now().UTC()
	if err := m.store.SaveBalance(ctx, bal); err != nil {
		return Entry{}, Balance{}, fmt.Errorf("save balance: %w", err)
	}

	e.ID = uuid.NewString()
	e.BalanceAfter = bal.Current
	e.CreatedAt = time.Now().UTC()
	if err := m.store.AppendEntry(ctx, e); err != nil {
		return Entry{}, Balance{}, fmt.Errorf("append entry: %w", err)
	}

	return e, bal, nil
}

// Credit adds money to the balance with a caller-chosen source tag.
// Used for POST /balance/add and the opt-in debt payment credit.
func (m *Mover) Credit(ctx context.Context, userID string, amount decimal.Decimal, source Source, description string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Credit,
		Amount:      amount,
		Source:      source,
		Description: description,
	})
}

// Debit removes money from the balance, optionally referencing the
// originating expense.
func (m *Mover) Debit(ctx context.Context, userID string, amount decimal.Decimal, expenseID, description string) (Entry, Balance, error) {
	source := SourceOther
	if expenseID != "" {
		source = SourceExpense
	}
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Debit,
		Amount:      amount,
		Source:      source,
		Description: description,
		ExpenseID:   expenseID,
	})
}

// Refund returns money to the balance when an expense is deleted or
// its amount decreased.
func (m *Mover) Refund(ctx context.Context, userID string, amount decimal.Decimal, expenseID, description string) (Entry, Balance, error) {
	if description == "" {
		description = "Expense refund"
	}
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Credit,
		Amount:      amount,
		Source:      SourceRefund,
		Description: description,
		ExpenseID:   expenseID,
	})
}

// DeductForLending removes the lent amount from the balance.
func (m *Mover) DeductForLending(ctx context.Context, userID string, amount decimal.Decimal, lendingID, borrowerName string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Debit,
		Amount:      amount,
		Source:      SourceLending,
		Description: fmt.Sprintf("Lent to %s", borrowerName),
		LendingID:   lendingID,
	})
}

// AddLendingReturn credits a borrower repayment back to the balance.
func (m *Mover) AddLendingReturn(ctx context.Context, userID string, amount decimal.Decimal, lendingID, borrowerName string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Credit,
		Amount:      amount,
		Source:      SourceLendingReturn,
		Description: fmt.Sprintf("Payment from %s", borrowerName),
		LendingID:   lendingID,
	})
}

// RefundLending credits the original lent amount back when a lending
// record is deleted.
func (m *Mover) RefundLending(ctx context.Context, userID string, amount decimal.Decimal, lendingID, borrowerName string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Credit,
		Amount:      amount,
		Source:      SourceRefund,
		Description: fmt.Sprintf("Lending to %s cancelled", borrowerName),
		LendingID:   lendingID,
	})
}

// DebtPaymentCredit credits a received debt payment, referencing the
// payment row. Only invoked when the caller opts in (add_to_balance).
func (m *Mover) DebtPaymentCredit(ctx context.Context, userID string, amount decimal.Decimal, debtPaymentID, debtorName string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:        userID,
		Direction:     Credit,
		Amount:        amount,
		Source:        SourceDebtPayment,
		Description:   fmt.Sprintf("Debt payment from %s", debtorName),
		DebtPaymentID: debtPaymentID,
	})
}

// TargetPurchase debits the target price. The affordability check
// belongs to the caller, which runs this inside the same transaction
// that marks the target completed.
func (m *Mover) TargetPurchase(ctx context.Context, userID string, price decimal.Decimal, targetID, targetName string) (Entry, Balance, error) {
	return m.apply(ctx, Entry{
		UserID:      userID,
		Direction:   Debit,
		Amount:      price,
		Source:      SourceTarget,
		Description: fmt.Sprintf("Purchased target: %s", targetName),
		TargetID:    targetID,
	})
}
