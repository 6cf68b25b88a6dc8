package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata/ledger-engine/api"
	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	book := ledger.NewBook(store.NewMemory())
	handler := api.NewHandler(book, nil, zerolog.Nop())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func createCustomer(t *testing.T, base string) api.CustomerDTO {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/api/customers", map[string]any{
		"name":            "Ramesh Textiles",
		"phone":           "9876543210",
		"address":         "14 Ring Road, Surat",
		"opening_balance": "1000.00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var dto api.CustomerDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

// =============================================================================
// CUSTOMER LIFECYCLE
// =============================================================================

func TestAPI_CreateAndGetCustomer(t *testing.T) {
	srv := newTestServer(t)

	created := createCustomer(t, srv.URL)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "+91-98765-43210", created.Phone)
	assert.Equal(t, "1000.00", created.Balance)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/customers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.CustomerDTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Ramesh Textiles", got.Name)
}

func TestAPI_CreateCustomer_BadPhone_400(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/customers", map[string]any{
		"name":    "Bad Phone",
		"phone":   "12345",
		"address": "Somewhere",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Details, "phone")
}

func TestAPI_UpdateCustomer_Missing_404(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/customers/ghost", map[string]any{
		"name": "anyone",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteCustomer_CascadesAndZeroesBalance(t *testing.T) {
	srv := newTestServer(t)
	c := createCustomer(t, srv.URL)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": c.ID,
		"type":        "debit",
		"amount":      "500.00",
		"description": "goods",
		"date":        "2025-03-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/customers/"+c.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Reads degrade, they do not fail.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/customers/"+c.ID+"/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal api.BalanceDTO
	require.NoError(t, json.Unmarshal(body, &bal))
	assert.Equal(t, "0.00", bal.Balance)
	assert.Equal(t, "settled", bal.Status)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/customers/"+c.ID+"/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var txs []api.TransactionDTO
	require.NoError(t, json.Unmarshal(body, &txs))
	assert.Empty(t, txs)
}

// =============================================================================
// TRANSACTIONS AND STATEMENT
// =============================================================================

func TestAPI_TransactionFlow_FreezesBalances(t *testing.T) {
	srv := newTestServer(t)
	c := createCustomer(t, srv.URL)

	// Business dates after the customer's creation, so the statement's
	// opening row stays first under the ascending date sort.
	day1 := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	day2 := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": c.ID,
		"type":        "debit",
		"amount":      "500.00",
		"description": "invoice 1",
		"date":        day1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	var debit api.TransactionDTO
	require.NoError(t, json.Unmarshal(body, &debit))
	assert.Equal(t, "1500.00", debit.BalanceAfter)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": c.ID,
		"type":        "credit",
		"amount":      "2000.00",
		"method":      "upi",
		"description": "payment",
		"date":        day2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var credit api.TransactionDTO
	require.NoError(t, json.Unmarshal(body, &credit))
	assert.Equal(t, "-500.00", credit.BalanceAfter)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/customers/"+c.ID+"/statement", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []api.LedgerEntryDTO
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Opening Balance", entries[0].Particulars)
	assert.Equal(t, "1000.00", entries[0].Balance)
	assert.Equal(t, "1500.00", entries[1].Balance)
	assert.Equal(t, "-500.00", entries[2].Balance)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/customers/"+c.ID+"/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal api.BalanceDTO
	require.NoError(t, json.Unmarshal(body, &bal))
	assert.Equal(t, "-500.00", bal.Balance)
	assert.Equal(t, "advance", bal.Status)
	assert.Equal(t, "₹500.00", bal.Display)
}

func TestAPI_AddTransaction_UnknownCustomer_422(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": "ghost",
		"type":        "debit",
		"amount":      "100.00",
		"description": "goods",
		"date":        "2025-03-10",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAPI_AddTransaction_ZeroAmount_400(t *testing.T) {
	srv := newTestServer(t)
	c := createCustomer(t, srv.URL)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": c.ID,
		"type":        "debit",
		"amount":      "0",
		"description": "nothing",
		"date":        "2025-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// BACKUP / RESTORE AND BUSINESS ENDPOINTS
// =============================================================================

func TestAPI_BackupRestoreRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := createCustomer(t, srv.URL)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", map[string]any{
		"customer_id": c.ID,
		"type":        "credit",
		"amount":      "250.00",
		"description": "part payment",
		"date":        "2025-03-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, backup := doJSON(t, http.MethodGet, srv.URL+"/api/backup", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Restore the backup into a fresh server.
	other := newTestServer(t)
	var doc json.RawMessage = backup
	resp, body := doJSON(t, http.MethodPost, other.URL+"/api/restore", doc)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	resp, body = doJSON(t, http.MethodGet, other.URL+"/api/customers/"+c.ID+"/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bal api.BalanceDTO
	require.NoError(t, json.Unmarshal(body, &bal))
	assert.Equal(t, "750.00", bal.Balance)
}

func TestAPI_Restore_DanglingTransaction_422(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/restore", map[string]any{
		"customers": []map[string]any{},
		"transactions": []map[string]any{{
			"id":          "t1",
			"customer_id": "ghost",
			"type":        "debit",
			"amount":      "10.00",
			"description": "orphan",
			"date":        "2025-01-01T00:00:00Z",
			"created_at":  "2025-01-01T00:00:00Z",
		}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAPI_SummaryAndCapabilities(t *testing.T) {
	srv := newTestServer(t)
	createCustomer(t, srv.URL)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary api.SummaryDTO
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.TotalCustomers)
	assert.Equal(t, "1000.00", summary.TotalOutstanding)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/capabilities", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var caps api.CapabilitiesDTO
	require.NoError(t, json.Unmarshal(body, &caps))
	assert.False(t, caps.EditTransactions)
	assert.False(t, caps.VoidTransactions)
}
