/*
handlers_test.go - HTTP surface tests

Exercises the full router against an in-memory store: auth round trip,
the response envelope, and the error code taxonomy.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testAPI struct {
	router http.Handler
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, store, "test-secret", time.Hour)
	a := &testAPI{router: NewRouter(h, []string{"*"})}

	resp := a.do(t, "POST", "/api/auth/register", map[string]any{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	a.token = resp.data(t)["token"].(string)
	return a
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *testResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return &testResponse{rec}
}

type testResponse struct {
	*httptest.ResponseRecorder
}

func (r *testResponse) envelope(t *testing.T) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &env), "body: %s", r.Body.String())
	return env
}

func (r *testResponse) data(t *testing.T) map[string]any {
	t.Helper()
	data, ok := r.envelope(t)["data"].(map[string]any)
	require.True(t, ok, "expected data object, body: %s", r.Body.String())
	return data
}

func (r *testResponse) errorCode(t *testing.T) string {
	t.Helper()
	env := r.envelope(t)
	require.Equal(t, false, env["success"])
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok, "expected error object, body: %s", r.Body.String())
	return errObj["code"].(string)
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth_RegisterLoginMe(t *testing.T) {
	a := newTestAPI(t)

	// GIVEN: A registered account
	// WHEN: Logging in with the right credentials
	// THEN: A token comes back and identifies the user

	resp := a.do(t, "POST", "/api/auth/login", map[string]any{
		"email":    "test@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	a.token = resp.data(t)["token"].(string)

	resp = a.do(t, "GET", "/api/auth/user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test@example.com", resp.data(t)["email"])
}

func TestAuth_DuplicateEmailRejected(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/auth/register", map[string]any{
		"name":     "Again",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.errorCode(t))
}

func TestAuth_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	a := newTestAPI(t)

	wrong := a.do(t, "POST", "/api/auth/login", map[string]any{
		"email":    "test@example.com",
		"password": "wrong-password",
	})
	unknown := a.do(t, "POST", "/api/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String(),
		"responses must not reveal whether the email exists")
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	a := newTestAPI(t)
	a.token = ""

	resp := a.do(t, "GET", "/api/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", resp.errorCode(t))
}

func TestAuth_NonHS256TokenRejected(t *testing.T) {
	// GIVEN: Tokens signed with the right secret but the wrong algorithm
	// WHEN: Presenting them as bearer tokens
	// THEN: They are rejected, only HS256 is accepted

	a := newTestAPI(t)
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	a.token = hs384
	resp := a.do(t, "GET", "/api/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	a.token = unsigned
	resp = a.do(t, "GET", "/api/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

// =============================================================================
// BALANCE FLOW
// =============================================================================

func (a *testAPI) addBalance(t *testing.T, amount, source string) *testResponse {
	t.Helper()
	return a.do(t, "POST", "/api/balance/add", map[string]any{
		"amount": amount,
		"source": source,
	})
}

func TestBalance_CreditsAccumulate(t *testing.T) {
	// GIVEN: A fresh account
	// WHEN: Adding 500 salary and 200 freelance
	// THEN: The balance reads 700.00 and the history holds both entries

	a := newTestAPI(t)

	resp := a.addBalance(t, "500", "salary")
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "500.00", resp.data(t)["balance"])

	resp = a.addBalance(t, "200", "freelance")
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "700.00", resp.data(t)["balance"])

	resp = a.do(t, "GET", "/api/balance", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "700.00", resp.data(t)["balance"])

	resp = a.do(t, "GET", "/api/balance/transactions", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	env := resp.envelope(t)
	meta := env["data"].(map[string]any)["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
}

func TestBalance_TransactionsFilterByType(t *testing.T) {
	// GIVEN: One credit and one debit in the ledger
	// WHEN: Filtering the history with ?type=credit and ?type=debit
	// THEN: Each filter returns only its side, and "direction" still
	//       works as an alias

	a := newTestAPI(t)
	a.addBalance(t, "500", "salary")
	resp := a.do(t, "POST", "/api/expenses", map[string]any{
		"category_id": "cat-food",
		"amount":      "50",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	total := func(path string) float64 {
		t.Helper()
		resp := a.do(t, "GET", path, nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		meta := resp.data(t)["meta"].(map[string]any)
		return meta["total"].(float64)
	}

	assert.Equal(t, float64(1), total("/api/balance/transactions?type=credit"))
	assert.Equal(t, float64(1), total("/api/balance/transactions?type=debit"))
	assert.Equal(t, float64(1), total("/api/balance/transactions?direction=debit"))

	resp = a.do(t, "GET", "/api/balance/transactions?type=sideways", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.errorCode(t))
}

func TestBalance_UnknownSourceRejected(t *testing.T) {
	a := newTestAPI(t)

	resp := a.addBalance(t, "100", "lottery")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.errorCode(t))
}

func TestBalance_ReservedSourceRejected(t *testing.T) {
	a := newTestAPI(t)

	resp := a.addBalance(t, "100", "expense")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

// =============================================================================
// EXPENSES OVER HTTP
// =============================================================================

func TestExpense_CreateDebitsBalance(t *testing.T) {
	// GIVEN: A balance of 700
	// WHEN: Logging a 50 expense
	// THEN: The balance drops to 650.00

	a := newTestAPI(t)
	a.addBalance(t, "500", "salary")
	a.addBalance(t, "200", "freelance")

	resp := a.do(t, "POST", "/api/expenses", map[string]any{
		"category_id": "cat-food",
		"amount":      "50",
		"note":        "lunch",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = a.do(t, "GET", "/api/balance", nil)
	assert.Equal(t, "650.00", resp.data(t)["balance"])
}

func TestDashboard_OverviewCarriesGroupings(t *testing.T) {
	// GIVEN: One expense this month
	// WHEN: Reading the dashboard overview
	// THEN: The category split, top category, and daily series all
	//       appear on the wire

	a := newTestAPI(t)
	a.addBalance(t, "500", "salary")
	resp := a.do(t, "POST", "/api/expenses", map[string]any{
		"category_id": "cat-food",
		"amount":      "50",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = a.do(t, "GET", "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	data := resp.data(t)

	top, ok := data["top_category"].(map[string]any)
	require.True(t, ok, "body: %s", resp.Body.String())
	assert.Equal(t, "cat-food", top["category_id"])
	assert.Equal(t, "100.00", top["percentage"])

	byCategory := data["expense_by_category"].([]any)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "50.00", byCategory[0].(map[string]any)["total"])

	daily := data["daily_expenses"].([]any)
	require.Len(t, daily, 1)
	assert.Equal(t, "50.00", daily[0].(map[string]any)["amount"])
}

func TestExpense_UnknownIDReads404(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "GET", "/api/expenses/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.errorCode(t))
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

func TestCategory_DeleteDefaultReads403(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "DELETE", "/api/categories/cat-food", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "CANNOT_DELETE_DEFAULT", resp.errorCode(t))
}

func TestCategory_DeleteInUseReads409(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/categories", map[string]any{
		"name_en": "Pets",
		"name_ar": "حيوانات",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	catID := resp.data(t)["id"].(string)

	resp = a.do(t, "POST", "/api/expenses", map[string]any{
		"category_id": catID,
		"amount":      "20",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = a.do(t, "DELETE", "/api/categories/"+catID, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CATEGORY_HAS_EXPENSES", resp.errorCode(t))
}

func TestDebt_OverpaymentReads422(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, "POST", "/api/debts", map[string]any{
		"debtor_name":  "Alex",
		"total_amount": "300",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	debtID := resp.data(t)["id"].(string)

	payURL := fmt.Sprintf("/api/debts/%s/payments", debtID)
	resp = a.do(t, "POST", payURL, map[string]any{"amount": "100"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = a.do(t, "POST", payURL, map[string]any{"amount": "250"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "PAYMENT_EXCEEDS_REMAINING", resp.errorCode(t))
}

func TestTarget_PurchaseBeyondBalanceReads422(t *testing.T) {
	a := newTestAPI(t)
	a.addBalance(t, "100", "salary")

	resp := a.do(t, "POST", "/api/targets", map[string]any{
		"name":  "Laptop",
		"price": "500",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	targetID := resp.data(t)["id"].(string)

	resp = a.do(t, "POST", "/api/targets/"+targetID+"/purchase", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", resp.errorCode(t))
}

// =============================================================================
// OWNERSHIP ISOLATION
// =============================================================================

func TestOwnership_OtherUsersRowsLookMissing(t *testing.T) {
	// GIVEN: Two accounts, one with an expense
	// WHEN: The second account reads the first account's expense
	// THEN: The response is indistinguishable from a missing row

	a := newTestAPI(t)
	a.addBalance(t, "100", "salary")
	resp := a.do(t, "POST", "/api/expenses", map[string]any{
		"category_id": "cat-food",
		"amount":      "20",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	expenseID := resp.data(t)["id"].(string)

	resp = a.do(t, "POST", "/api/auth/register", map[string]any{
		"name":     "Second User",
		"email":    "second@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	a.token = resp.data(t)["token"].(string)

	resp = a.do(t, "GET", "/api/expenses/"+expenseID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.errorCode(t))
}
