package finance_test

import (
	"context"
	"testing"
	"time"

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

func newTestService(t *testing.T) (*finance.Service, *sqlite.Store) {
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

	return finance.NewService(store, store), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fund(t *testing.T, svc *finance.Service, amount string) {
	t.Helper()
	_, err := svc.AddToBalance(context.Background(), "user-1", dec(amount), ledger.SourceSalary, "funding")
	require.NoError(t, err)
}

func mustBalance(t *testing.T, svc *finance.Service, want string) {
	t.Helper()
	bal, err := svc.Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec(want)), "balance should be %s, got %s", want, bal)
}

func mustConsistent(t *testing.T, svc *finance.Service) {
	t.Helper()
	stored, computed, ok, err := svc.LedgerConsistency(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok, "stored balance %s should equal entry sum %s", stored, computed)
}

// =============================================================================
// BALANCE
// =============================================================================

func TestBalance_ZeroBeforeFirstMovement(t *testing.T) {
	svc, _ := newTestService(t)
	mustBalance(t, svc, "0")
}

func TestAddToBalance_RejectsReservedSources(t *testing.T) {
	// GIVEN: A source tag reserved for system-generated entries
	// WHEN: Crediting through the public add-to-balance path
	// THEN: The credit is rejected

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddToBalance(ctx, "user-1", dec("100"), ledger.SourceExpense, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.AddToBalance(ctx, "user-1", dec("100"), ledger.SourceLending, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

// =============================================================================
// EXPENSES
// =============================================================================

func TestExpense_CreateDeleteRoundTrip(t *testing.T) {
	// GIVEN: A balance of 1000
	// WHEN: Creating a 150 expense and then deleting it
	// THEN: Balance goes 1000 -> 850 -> 1000 and the ledger keeps both movements

	svc, store := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	exp, err := svc.CreateExpense(ctx, "user-1", "cat-food", dec("150"), time.Now(), "groceries")
	require.NoError(t, err)
	mustBalance(t, svc, "850")

	err = svc.DeleteExpense(ctx, "user-1", exp.ID)
	require.NoError(t, err)
	mustBalance(t, svc, "1000")

	// The expense is soft-deleted, not purged
	_, err = svc.GetExpense(ctx, "user-1", exp.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// The debit and the refund both remain in the ledger
	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	mustConsistent(t, svc)
}

func TestExpense_UpdateAmount_MirrorsOnlyTheDelta(t *testing.T) {
	// GIVEN: A 100 expense against a 1000 balance
	// WHEN: Raising it to 150, then lowering it to 90
	// THEN: Only the deltas hit the ledger (debit 50, refund 60)

	svc, store := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	exp, err := svc.CreateExpense(ctx, "user-1", "cat-food", dec("100"), time.Now(), "")
	require.NoError(t, err)
	mustBalance(t, svc, "900")

	up := dec("150")
	_, err = svc.UpdateExpense(ctx, "user-1", exp.ID, nil, &up, nil, nil)
	require.NoError(t, err)
	mustBalance(t, svc, "850")

	down := dec("90")
	_, err = svc.UpdateExpense(ctx, "user-1", exp.ID, nil, &down, nil, nil)
	require.NoError(t, err)
	mustBalance(t, svc, "910")

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.True(t, entries[2].Amount.Equal(dec("50")))
	assert.Equal(t, ledger.Debit, entries[2].Direction)
	assert.True(t, entries[3].Amount.Equal(dec("60")))
	assert.Equal(t, ledger.Credit, entries[3].Direction)
	mustConsistent(t, svc)
}

func TestExpense_NoteOnlyUpdate_WritesNothingToLedger(t *testing.T) {
	// GIVEN: An existing expense
	// WHEN: Updating only its note
	// THEN: No ledger entry is appended and the balance is untouched

	svc, store := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "500")

	exp, err := svc.CreateExpense(ctx, "user-1", "cat-food", dec("75"), time.Now(), "old note")
	require.NoError(t, err)

	note := "new note"
	updated, err := svc.UpdateExpense(ctx, "user-1", exp.ID, nil, nil, nil, &note)
	require.NoError(t, err)
	assert.Equal(t, "new note", updated.Note)

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "funding credit and expense debit only")
	mustBalance(t, svc, "425")
}

func TestExpense_UnknownCategory_Rejected(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateExpense(context.Background(), "user-1", "no-such-cat", dec("10"), time.Now(), "")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// CATEGORIES
// =============================================================================

func TestCategory_DefaultsAreProtected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.DeleteCategory(ctx, "user-1", "cat-food")
	assert.ErrorIs(t, err, ledger.ErrDefaultCategory)

	name := "Renamed"
	_, err = svc.UpdateCategory(ctx, "user-1", "cat-food", &name, nil, nil, nil)
	assert.ErrorIs(t, err, ledger.ErrDefaultCategory)
}

func TestCategory_DeleteBlockedWhileInUse(t *testing.T) {
	// GIVEN: A custom category with an expense attached
	// WHEN: Deleting the category
	// THEN: Rejected until the expense is gone

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "100")

	cat, err := svc.CreateCategory(ctx, "user-1", "Pets", "حيوانات", "🐕", "#aabbcc")
	require.NoError(t, err)

	exp, err := svc.CreateExpense(ctx, "user-1", cat.ID, dec("20"), time.Now(), "")
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, "user-1", cat.ID)
	assert.ErrorIs(t, err, ledger.ErrCategoryInUse)

	require.NoError(t, svc.DeleteExpense(ctx, "user-1", exp.ID))
	assert.NoError(t, svc.DeleteCategory(ctx, "user-1", cat.ID))
}

func TestCategory_OtherUsersCategoryLooksMissing(t *testing.T) {
	// Ownership failures surface as not-found so IDs do not leak.
	svc, store := newTestService(t)
	ctx := context.Background()

	err := store.CreateUser(ctx, finance.User{
		ID: "user-2", Name: "Other", Email: "other@example.com", PasswordHash: "x", Language: "en",
	})
	require.NoError(t, err)

	cat, err := svc.CreateCategory(ctx, "user-2", "Private", "", "", "")
	require.NoError(t, err)

	_, err = svc.CreateExpense(ctx, "user-1", cat.ID, dec("10"), time.Now(), "")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// =============================================================================
// INCOME
// =============================================================================

func TestIncome_CurrentPicksLatestEffectiveRecord(t *testing.T) {
	// GIVEN: Income records effective in the past and in the future
	// WHEN: Asking for the current income
	// THEN: The latest record whose effective date has passed wins

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.SetIncome(ctx, "user-1", dec("3000"), now.AddDate(0, -2, 0))
	require.NoError(t, err)
	_, err = svc.SetIncome(ctx, "user-1", dec("3500"), now.AddDate(0, -1, 0))
	require.NoError(t, err)
	_, err = svc.SetIncome(ctx, "user-1", dec("9000"), now.AddDate(0, 1, 0))
	require.NoError(t, err)

	cur, err := svc.GetCurrentIncome(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.MonthlyAmount.Equal(dec("3500")))

	history, err := svc.IncomeHistory(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

// =============================================================================
// DEBTS
// =============================================================================

func newTestDebt(t *testing.T, svc *finance.Service, total string) *finance.Debt {
	t.Helper()
	d, err := svc.CreateDebt(context.Background(), "user-1", finance.DebtInput{
		DebtorName:  "Alex",
		TotalAmount: dec(total),
	})
	require.NoError(t, err)
	return d
}

func TestDebt_PaymentsDriveStatus(t *testing.T) {
	// GIVEN: A 300 debt
	// WHEN: Paying 100 then 200
	// THEN: Status walks pending -> in_progress -> completed

	svc, _ := newTestService(t)
	ctx := context.Background()
	d := newTestDebt(t, svc, "300")
	assert.Equal(t, finance.DebtPending, d.Status)

	_, d2, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("100"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)
	assert.Equal(t, finance.DebtInProgress, d2.Status)
	assert.True(t, d2.PaidAmount.Equal(dec("100")))

	_, d3, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("200"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)
	assert.Equal(t, finance.DebtCompleted, d3.Status)
	assert.True(t, d3.Remaining().IsZero())

	// No further payments once completed
	_, _, err = svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("1"), time.Now(), finance.MethodCash, "", false)
	assert.Error(t, err)
}

func TestDebt_OverpaymentHardRejected(t *testing.T) {
	// GIVEN: A 300 debt with 100 already paid
	// WHEN: Paying 250 (remaining is 200)
	// THEN: Rejected outright, never clamped

	svc, _ := newTestService(t)
	ctx := context.Background()
	d := newTestDebt(t, svc, "300")

	_, _, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("100"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)

	_, _, err = svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("250"), time.Now(), finance.MethodCash, "", false)
	assert.ErrorIs(t, err, ledger.ErrPaymentExceedsRemaining)

	got, payments, err := svc.GetDebt(ctx, "user-1", d.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(dec("100")), "failed payment must not change paid amount")
	assert.Len(t, payments, 1)
}

func TestDebt_PaymentOptInCreditsBalance(t *testing.T) {
	// GIVEN: A debt payment with add_to_balance set
	// WHEN: Recording it
	// THEN: The balance is credited and the payment links its ledger entry

	svc, _ := newTestService(t)
	ctx := context.Background()
	d := newTestDebt(t, svc, "500")

	p, _, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("200"), time.Now(), finance.MethodBankTransfer, "", true)
	require.NoError(t, err)
	assert.NotEmpty(t, p.LedgerEntryID)
	mustBalance(t, svc, "200")

	// Without opt-in the balance stays put
	p2, _, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("100"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)
	assert.Empty(t, p2.LedgerEntryID)
	mustBalance(t, svc, "200")
	mustConsistent(t, svc)
}

func TestDebt_RaisingTotalReopensCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d := newTestDebt(t, svc, "100")

	_, d2, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("100"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)
	require.Equal(t, finance.DebtCompleted, d2.Status)

	d3, err := svc.UpdateDebt(ctx, "user-1", d.ID, finance.DebtInput{
		DebtorName:  "Alex",
		TotalAmount: dec("150"),
	})
	require.NoError(t, err)
	assert.Equal(t, finance.DebtInProgress, d3.Status)
	assert.True(t, d3.Remaining().Equal(dec("50")))
}

func TestDebt_TotalCannotDropBelowPaid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d := newTestDebt(t, svc, "300")

	_, _, err := svc.RecordDebtPayment(ctx, "user-1", d.ID, dec("200"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)

	_, err = svc.UpdateDebt(ctx, "user-1", d.ID, finance.DebtInput{
		DebtorName:  "Alex",
		TotalAmount: dec("150"),
	})
	assert.Error(t, err)
}

// =============================================================================
// LENDINGS
// =============================================================================

func TestLending_CreateDeductsWhenOptedIn(t *testing.T) {
	// GIVEN: A balance of 1000
	// WHEN: Lending 400 with the deduction flag set
	// THEN: Balance drops to 600 in the same transaction

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	l, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Sam",
		Amount:       dec("400"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, finance.LendingPending, l.Status)
	assert.True(t, l.RemainingAmount.Equal(dec("400")))
	mustBalance(t, svc, "600")
}

func TestLending_RepaymentsDeriveStatus(t *testing.T) {
	// GIVEN: A 400 lending
	// WHEN: The borrower repays 150 then 250
	// THEN: Status walks pending -> partial -> paid

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	l, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Sam",
		Amount:       dec("400"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)

	_, l2, err := svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("150"), time.Now(), finance.MethodCash, "", true)
	require.NoError(t, err)
	assert.Equal(t, finance.LendingPartial, l2.Status)
	mustBalance(t, svc, "750")

	_, l3, err := svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("250"), time.Now(), finance.MethodCash, "", true)
	require.NoError(t, err)
	assert.Equal(t, finance.LendingPaid, l3.Status)
	mustBalance(t, svc, "1000")
	mustConsistent(t, svc)

	// Over-repayment is capped by the remaining amount
	_, _, err = svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("1"), time.Now(), finance.MethodCash, "", true)
	assert.ErrorIs(t, err, ledger.ErrPaymentExceedsRemaining)
}

func TestLending_ForgivenessIsTerminal(t *testing.T) {
	// GIVEN: A partially repaid lending
	// WHEN: Forgiving the remainder
	// THEN: Status is forgiven and later payments are rejected

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "500")

	l, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Sam",
		Amount:       dec("300"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)

	_, _, err = svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("100"), time.Now(), finance.MethodCash, "", true)
	require.NoError(t, err)

	l2, err := svc.ForgiveLending(ctx, "user-1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.LendingForgiven, l2.Status)

	_, _, err = svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("50"), time.Now(), finance.MethodCash, "", true)
	assert.Error(t, err)

	// Forgiving money already fully repaid makes no sense
	l3, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Kim",
		Amount:       dec("50"),
		LendingDate:  time.Now(),
	}, false)
	require.NoError(t, err)
	_, _, err = svc.RecordLendingPayment(ctx, "user-1", l3.ID, dec("50"), time.Now(), finance.MethodCash, "", false)
	require.NoError(t, err)
	_, err = svc.ForgiveLending(ctx, "user-1", l3.ID)
	assert.Error(t, err)
}

func TestLending_DeletePaymentRestoresRemainingWithoutLedgerReversal(t *testing.T) {
	// GIVEN: A lending repayment that credited the balance
	// WHEN: Deleting the payment record
	// THEN: The remaining amount is restored but the ledger credit stays

	svc, store := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	l, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Sam",
		Amount:       dec("400"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)

	p, _, err := svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("150"), time.Now(), finance.MethodCash, "", true)
	require.NoError(t, err)
	mustBalance(t, svc, "750")

	l2, err := svc.DeleteLendingPayment(ctx, "user-1", l.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, l2.RemainingAmount.Equal(dec("400")))
	assert.Equal(t, finance.LendingPending, l2.Status)

	// Balance and ledger deliberately keep the credit
	mustBalance(t, svc, "750")
	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLending_DeleteRefundsOriginalAmount(t *testing.T) {
	// GIVEN: A 300 lending (balance 1000 -> 700) with 100 already repaid (800)
	// WHEN: Deleting the lending
	// THEN: The original 300 is refunded, leaving 1100; the repayment
	//       credit is never reversed

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	l, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Sam",
		Amount:       dec("300"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)
	mustBalance(t, svc, "700")

	_, _, err = svc.RecordLendingPayment(ctx, "user-1", l.ID, dec("100"), time.Now(), finance.MethodCash, "", true)
	require.NoError(t, err)
	mustBalance(t, svc, "800")

	require.NoError(t, svc.DeleteLending(ctx, "user-1", l.ID))
	mustBalance(t, svc, "1100")
	mustConsistent(t, svc)

	// Forgiveness does not change what a delete refunds
	l2, err := svc.CreateLending(ctx, "user-1", finance.LendingInput{
		BorrowerName: "Kim",
		Amount:       dec("200"),
		LendingDate:  time.Now(),
	}, true)
	require.NoError(t, err)
	_, err = svc.ForgiveLending(ctx, "user-1", l2.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLending(ctx, "user-1", l2.ID))
	mustBalance(t, svc, "1100")
}

// =============================================================================
// TARGETS
// =============================================================================

func TestTarget_PurchaseIsAtomicWithAffordabilityCheck(t *testing.T) {
	// GIVEN: A 500 target and only 100 in the balance
	// WHEN: Purchasing
	// THEN: Rejected with the shortfall, target stays active, ledger untouched

	svc, store := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "100")

	target, err := svc.CreateTarget(ctx, "user-1", finance.TargetInput{
		Name:  "Laptop",
		Price: dec("500"),
	})
	require.NoError(t, err)

	_, _, err = svc.PurchaseTarget(ctx, "user-1", target.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	got, err := svc.GetTarget(ctx, "user-1", target.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TargetActive, got.Status)

	entries, err := store.AllEntries(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the funding credit")

	// Top up and retry
	fund(t, svc, "400")
	purchased, entry, err := svc.PurchaseTarget(ctx, "user-1", target.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.TargetCompleted, purchased.Status)
	assert.NotNil(t, purchased.CompletedAt)
	assert.True(t, entry.BalanceAfter.IsZero())
	mustBalance(t, svc, "0")
	mustConsistent(t, svc)
}

func TestTarget_FrozenOnceInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	target, err := svc.CreateTarget(ctx, "user-1", finance.TargetInput{
		Name:  "Phone",
		Price: dec("300"),
	})
	require.NoError(t, err)

	_, err = svc.CancelTarget(ctx, "user-1", target.ID)
	require.NoError(t, err)

	_, err = svc.UpdateTarget(ctx, "user-1", target.ID, finance.TargetInput{
		Name:  "Phone Pro",
		Price: dec("350"),
	})
	assert.ErrorIs(t, err, ledger.ErrTargetNotActive)

	_, _, err = svc.PurchaseTarget(ctx, "user-1", target.ID)
	assert.ErrorIs(t, err, ledger.ErrTargetNotActive)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_SpendingPercentageZeroWithoutIncome(t *testing.T) {
	// GIVEN: Expenses but no income record
	// WHEN: Building the overview
	// THEN: The spending percentage is zero, not a division error

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "500")

	_, err := svc.CreateExpense(ctx, "user-1", "cat-food", dec("120"), time.Now(), "")
	require.NoError(t, err)

	ov, err := svc.DashboardOverview(ctx, "user-1", "", "en")
	require.NoError(t, err)
	assert.True(t, ov.MonthlyIncome.IsZero())
	assert.True(t, ov.TotalExpenses.Equal(dec("120")))
	assert.True(t, ov.SpendingPercentage.IsZero())
}

func TestDashboard_OverviewAgainstIncome(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "2000")

	_, err := svc.SetIncome(ctx, "user-1", dec("1000"), time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, "user-1", "cat-food", dec("250"), time.Now(), "")
	require.NoError(t, err)

	ov, err := svc.DashboardOverview(ctx, "user-1", "", "en")
	require.NoError(t, err)
	assert.True(t, ov.MonthlyIncome.Equal(dec("1000")))
	assert.True(t, ov.SpendingPercentage.Equal(dec("25")))
}

func TestDashboard_OverviewGroupsByCategoryAndDay(t *testing.T) {
	// GIVEN: Expenses across two categories and two days of the month
	// WHEN: Building the overview
	// THEN: Categories come back largest first with the top one called
	//       out, and the daily series is summed per day, oldest first

	svc, _ := newTestService(t)
	ctx := context.Background()
	fund(t, svc, "1000")

	now := time.Now()
	day1 := time.Date(now.Year(), now.Month(), 1, 10, 0, 0, 0, now.Location())
	day2 := day1.AddDate(0, 0, 1)

	_, err := svc.CreateExpense(ctx, "user-1", "cat-food", dec("100"), day1, "")
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, "user-1", "cat-food", dec("50"), day2, "")
	require.NoError(t, err)
	_, err = svc.CreateExpense(ctx, "user-1", "cat-transport", dec("60"), day2, "")
	require.NoError(t, err)

	ov, err := svc.DashboardOverview(ctx, "user-1", "", "en")
	require.NoError(t, err)

	require.Len(t, ov.ExpenseByCategory, 2)
	assert.Equal(t, "cat-food", ov.ExpenseByCategory[0].CategoryID)
	assert.Equal(t, "Food", ov.ExpenseByCategory[0].Name)
	assert.True(t, ov.ExpenseByCategory[0].Total.Equal(dec("150")))
	assert.Equal(t, 2, ov.ExpenseByCategory[0].Count)
	assert.Equal(t, "cat-transport", ov.ExpenseByCategory[1].CategoryID)
	assert.True(t, ov.ExpenseByCategory[1].Total.Equal(dec("60")))

	require.NotNil(t, ov.TopCategory)
	assert.Equal(t, "cat-food", ov.TopCategory.CategoryID)
	assert.True(t, ov.TopCategory.Percentage.Equal(dec("71.43")))

	require.Len(t, ov.DailyExpenses, 2)
	assert.Equal(t, 1, ov.DailyExpenses[0].Date.Day())
	assert.True(t, ov.DailyExpenses[0].Amount.Equal(dec("100")))
	assert.Equal(t, 2, ov.DailyExpenses[1].Date.Day())
	assert.True(t, ov.DailyExpenses[1].Amount.Equal(dec("110")))
	assert.True(t, ov.DailyExpenses[0].Date.Before(ov.DailyExpenses[1].Date))
}

func TestDashboard_TopCategoryNilWithoutExpenses(t *testing.T) {
	svc, _ := newTestService(t)

	ov, err := svc.DashboardOverview(context.Background(), "user-1", "", "en")
	require.NoError(t, err)
	assert.Nil(t, ov.TopCategory)
	assert.Empty(t, ov.ExpenseByCategory)
	assert.Empty(t, ov.DailyExpenses)
}

func TestDebtStats_CountsByStatusAndPriority(t *testing.T) {
	// GIVEN: Three debts, one urgent and cancelled, one urgent, one default
	// WHEN: Building the statistics block
	// THEN: Status and priority counts cover all debts, cancelled included,
	//       while money totals skip the cancelled one

	svc, _ := newTestService(t)
	ctx := context.Background()

	d1, err := svc.CreateDebt(ctx, "user-1", finance.DebtInput{
		DebtorName: "Alex", TotalAmount: dec("300"), Priority: finance.PriorityHighest,
	})
	require.NoError(t, err)
	_, err = svc.CreateDebt(ctx, "user-1", finance.DebtInput{
		DebtorName: "Bea", TotalAmount: dec("200"), Priority: finance.PriorityHighest,
	})
	require.NoError(t, err)
	_, err = svc.CreateDebt(ctx, "user-1", finance.DebtInput{
		DebtorName: "Cid", TotalAmount: dec("100"),
	})
	require.NoError(t, err)

	_, err = svc.CancelDebt(ctx, "user-1", d1.ID)
	require.NoError(t, err)

	stats, err := svc.DebtStats(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalDebts)
	assert.Equal(t, 1, stats.ByStatus[finance.DebtCancelled])
	assert.Equal(t, 2, stats.ByStatus[finance.DebtPending])
	assert.Equal(t, 2, stats.ByPriority[finance.PriorityHighest])
	assert.Equal(t, 1, stats.ByPriority[finance.PriorityMedium])
	assert.True(t, stats.TotalAmount.Equal(dec("300")))
	assert.True(t, stats.TotalRemaining.Equal(dec("300")))
}
