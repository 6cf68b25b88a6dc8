/*
handlers.go - HTTP handlers for the ledger engine

PURPOSE:
  Exposes the ledger core over REST. Handles HTTP request/response and
  JSON serialization, delegates every decision to the Book and Engine.

ENDPOINTS:
  Customers:
    GET    /api/customers                   List with live balances
    POST   /api/customers                   Create customer
    GET    /api/customers/{id}              Get one customer
    PUT    /api/customers/{id}              Partial update
    DELETE /api/customers/{id}              Cascade delete
    GET    /api/customers/{id}/balance      Live derived balance
    GET    /api/customers/{id}/transactions Date-descending history
    GET    /api/customers/{id}/statement    Full chronological ledger

  Transactions:
    POST   /api/transactions                Record credit/debit

  Business:
    GET    /api/summary                     Dashboard rollup
    GET    /api/capabilities                What mutations exist
    GET    /api/backup                      Full dataset export
    POST   /api/restore                     Atomic full-dataset import

ERROR HANDLING:
  - 400: validation errors (caller-fixable input)
  - 404: mutation against a missing id
  - 422: referential integrity violations
  - 500: storage failures
  Read endpoints never 404 on a missing customer; they return zero or
  empty results per the best-effort read contract.

PERSISTENCE:
  When a snapshot persister is configured, every successful mutation is
  followed by a save of the full dataset. A failed save is logged, not
  surfaced: the in-process stores remain the source of truth for the
  session, matching the original app's save-around-mutation model.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/store/snapshot"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Book      *ledger.Book
	Persister snapshot.Persister // optional; nil disables save-after-mutation
	Log       zerolog.Logger
}

// NewHandler creates a handler around a Book. persister may be nil.
func NewHandler(book *ledger.Book, persister snapshot.Persister, log zerolog.Logger) *Handler {
	return &Handler{Book: book, Persister: persister, Log: log}
}

// persist saves the full dataset after a successful mutation.
func (h *Handler) persist(ctx context.Context) {
	if h.Persister == nil {
		return
	}
	customers, transactions, err := h.Book.Export(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("snapshot export failed")
		return
	}
	if err := h.Persister.Save(ctx, customers, transactions); err != nil {
		h.Log.Error().Err(err).Msg("snapshot save failed")
	}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers with their live balances.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customers, _, err := h.Book.Export(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	engine := h.Book.Engine()
	dtos := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		balance, err := engine.CurrentBalance(ctx, c.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
			return
		}
		dtos = append(dtos, customerDTO(c, balance))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCustomer creates a customer from the request body.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Book.CreateCustomer(r.Context(), ledger.CustomerInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		GSTIN:          req.GSTIN,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		writeLedgerError(w, "Failed to create customer", err)
		return
	}

	h.persist(r.Context())
	writeJSON(w, http.StatusCreated, customerDTO(*c, c.OpeningBalance))
}

// GetCustomer returns one customer with its live balance.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	engine := h.Book.Engine()
	c, err := engine.Store.GetCustomer(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get customer", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}

	balance, err := engine.CurrentBalance(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, customerDTO(*c, balance))
}

// UpdateCustomer applies a partial update.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Book.UpdateCustomer(r.Context(), id, ledger.CustomerUpdate{
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		GSTIN:          req.GSTIN,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		writeLedgerError(w, "Failed to update customer", err)
		return
	}

	balance, err := h.Book.Engine().CurrentBalance(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}

	h.persist(r.Context())
	writeJSON(w, http.StatusOK, customerDTO(*c, balance))
}

// DeleteCustomer removes the customer and all its transactions.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	if err := h.Book.DeleteCustomer(r.Context(), id); err != nil {
		writeLedgerError(w, "Failed to delete customer", err)
		return
	}

	h.persist(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": string(id)})
}

// GetBalance returns the live derived balance for a customer. A missing
// customer yields zero, per the best-effort read contract.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	balance, err := h.Book.Engine().CurrentBalance(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, balanceDTO(id, balance))
}

// GetTransactions returns the customer's history, most recent first.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	txs, err := h.Book.Engine().TransactionsFor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get transactions", err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, transactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStatement returns the full chronological ledger for a customer.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	entries, err := h.Book.Engine().BuildStatement(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build statement", err)
		return
	}

	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ledgerEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// AddTransaction records a credit or debit against a customer.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var method *ledger.PaymentMethod
	if req.Method != nil {
		m := ledger.PaymentMethod(*req.Method)
		method = &m
	}

	tx, err := h.Book.AddTransaction(r.Context(), ledger.TransactionInput{
		CustomerID:      ledger.CustomerID(req.CustomerID),
		Type:            ledger.EntryType(req.Type),
		Amount:          req.Amount,
		Method:          method,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		InvoiceNumber:   req.InvoiceNumber,
		Date:            date,
	})
	if err != nil {
		writeLedgerError(w, "Failed to add transaction", err)
		return
	}

	h.persist(r.Context())
	writeJSON(w, http.StatusCreated, transactionDTO(*tx))
}

// =============================================================================
// BUSINESS HANDLERS
// =============================================================================

// GetSummary returns the dashboard rollup.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Book.Engine().Summary(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO(s))
}

// GetCapabilities reports which mutations this engine supports.
func (h *Handler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	caps := h.Book.Capabilities()
	writeJSON(w, http.StatusOK, CapabilitiesDTO{
		EditTransactions: caps.EditTransactions,
		VoidTransactions: caps.VoidTransactions,
	})
}

// Backup exports the full dataset as a snapshot document.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	customers, transactions, err := h.Book.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export data", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot.FromLedger(customers, transactions))
}

// Restore replaces the full dataset from a snapshot document,
// all-or-nothing.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var doc BackupDTO
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customers, transactions := doc.ToLedger()
	if err := h.Book.Import(r.Context(), customers, transactions); err != nil {
		writeLedgerError(w, "Failed to restore data", err)
		return
	}

	h.persist(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "restored",
		"customers":    len(customers),
		"transactions": len(transactions),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseDate accepts the date-only form used by the UI and full RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case ledger.IsReferentialIntegrity(err):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
