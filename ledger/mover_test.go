package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestMover(t *testing.T) (*ledger.Mover, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.CreateUser(context.Background(), finance.User{
		ID:           "user-1",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "x",
		Language:     "en",
	})
	require.NoError(t, err)

	return ledger.NewMover(store), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// CREDIT / DEBIT
// =============================================================================

func TestMover_Credit_CreatesBalanceOnFirstMovement(t *testing.T) {
	// GIVEN: A user with no balance row yet
	// WHEN: Crediting 500 then 200
	// THEN: Balance is 700 and each entry snapshots the running total

	mover, store := newTestMover(t)
	ctx := context.Background()

	// No balance row exists before the first movement
	_, err := store.GetBalance(ctx, "user-1")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	e1, bal, err := mover.Credit(ctx, "user-1", dec("500"), ledger.SourceSalary, "September salary")
	require.NoError(t, err)
	assert.True(t, bal.Current.Equal(dec("500")))
	assert.True(t, e1.BalanceAfter.Equal(dec("500")))

	e2, bal, err := mover.Credit(ctx, "user-1", dec("200"), ledger.SourceFreelance, "Side project")
	require.NoError(t, err)
	assert.True(t, bal.Current.Equal(dec("700")))
	assert.True(t, e2.BalanceAfter.Equal(dec("700")))

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.Credit, entries[0].Direction)
	assert.Equal(t, ledger.SourceSalary, entries[0].Source)
}

func TestMover_Debit_AllowsNegativeBalance(t *testing.T) {
	// GIVEN: A user with zero balance
	// WHEN: Debiting 50 (no floor on debits)
	// THEN: Balance goes to -50 without error

	mover, _ := newTestMover(t)
	ctx := context.Background()

	e, bal, err := mover.Debit(ctx, "user-1", dec("50"), "", "Groceries")
	require.NoError(t, err)
	assert.True(t, bal.Current.Equal(dec("-50")))
	assert.True(t, e.BalanceAfter.Equal(dec("-50")))
	assert.Equal(t, ledger.Debit, e.Direction)
}

func TestMover_NonPositiveAmount_Rejected(t *testing.T) {
	mover, _ := newTestMover(t)
	ctx := context.Background()

	_, _, err := mover.Credit(ctx, "user-1", decimal.Zero, ledger.SourceSalary, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, _, err = mover.Debit(ctx, "user-1", dec("-10"), "", "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

// =============================================================================
// CONSISTENCY INVARIANT
// =============================================================================

func TestMover_BalanceEqualsSignedEntrySum(t *testing.T) {
	// GIVEN: A mix of credits, debits, and refunds
	// WHEN: Folding the entries back into a total
	// THEN: The stored balance matches the recomputed sum exactly

	mover, store := newTestMover(t)
	ctx := context.Background()

	_, _, err := mover.Credit(ctx, "user-1", dec("1000"), ledger.SourceSalary, "Salary")
	require.NoError(t, err)
	_, _, err = mover.Debit(ctx, "user-1", dec("150.25"), "exp-1", "Groceries")
	require.NoError(t, err)
	_, _, err = mover.Refund(ctx, "user-1", dec("150.25"), "exp-1", "Deleted: Food")
	require.NoError(t, err)
	_, _, err = mover.DeductForLending(ctx, "user-1", dec("300"), "lend-1", "Sam")
	require.NoError(t, err)
	_, _, err = mover.AddLendingReturn(ctx, "user-1", dec("120.50"), "lend-1", "Sam")
	require.NoError(t, err)

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 5)

	bal, err := store.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, bal)

	assert.True(t, bal.Current.Equal(ledger.SumEntries(entries)),
		"stored balance %s should equal signed entry sum %s",
		bal.Current, ledger.SumEntries(entries))
	assert.True(t, bal.Current.Equal(dec("820.50")))
}

func TestMover_EntriesCarryDomainReferences(t *testing.T) {
	mover, store := newTestMover(t)
	ctx := context.Background()

	_, _, err := mover.DebtPaymentCredit(ctx, "user-1", dec("75"), "pay-1", "Alex")
	require.NoError(t, err)
	_, _, err = mover.TargetPurchase(ctx, "user-1", dec("250"), "target-1", "Headphones")
	require.NoError(t, err)

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "pay-1", entries[0].DebtPaymentID)
	assert.Equal(t, ledger.SourceDebtPayment, entries[0].Source)
	assert.Equal(t, "target-1", entries[1].TargetID)
	assert.Equal(t, ledger.SourceTarget, entries[1].Source)
}

// =============================================================================
// SOURCE ENUMERATION
// =============================================================================

func TestParseSource_ClosedSet(t *testing.T) {
	src, ok := ledger.ParseSource("salary")
	assert.True(t, ok)
	assert.Equal(t, ledger.SourceSalary, src)

	_, ok = ledger.ParseSource("lottery")
	assert.False(t, ok)
}

func TestSourceLabel_Localized(t *testing.T) {
	assert.Equal(t, "Salary", ledger.SourceSalary.Label("en"))
	assert.Equal(t, "راتب", ledger.SourceSalary.Label("ar"))
	// unknown language falls back to English
	assert.Equal(t, "Salary", ledger.SourceSalary.Label("fr"))
}
