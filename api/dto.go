/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP surface, decoupled from the domain types so
  the API contract can evolve without touching ledger internals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Amounts travel as plain decimal strings ("1500.00"). money.Money's
  JSON codec also accepts bare numbers, which older backup files use.

DATES:
  Business dates accept "2006-01-02" or RFC3339; timestamps are always
  emitted as RFC3339.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/money"
	"github.com/khata/ledger-engine/store/snapshot"
)

// =============================================================================
// CUSTOMERS
// =============================================================================

// CustomerDTO represents a customer in API responses. Balance is the
// live derived balance at response time.
type CustomerDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	GSTIN     *string `json:"gstin,omitempty"`
	Opening   string  `json:"opening_balance"`
	Balance   string  `json:"balance"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// CreateCustomerRequest is the payload for POST /api/customers.
type CreateCustomerRequest struct {
	Name           string      `json:"name"`
	Phone          string      `json:"phone"`
	Address        string      `json:"address"`
	GSTIN          *string     `json:"gstin,omitempty"`
	OpeningBalance money.Money `json:"opening_balance"`
}

// UpdateCustomerRequest is the payload for PUT /api/customers/{id}.
// Absent fields are left untouched; gstin set to "" clears it.
type UpdateCustomerRequest struct {
	Name           *string      `json:"name,omitempty"`
	Phone          *string      `json:"phone,omitempty"`
	Address        *string      `json:"address,omitempty"`
	GSTIN          *string      `json:"gstin,omitempty"`
	OpeningBalance *money.Money `json:"opening_balance,omitempty"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a transaction in API responses.
type TransactionDTO struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	Method          *string `json:"method,omitempty"`
	Description     string  `json:"description"`
	ReferenceNumber *string `json:"reference_number,omitempty"`
	InvoiceNumber   *string `json:"invoice_number,omitempty"`
	Date            string  `json:"date"`
	BalanceAfter    string  `json:"balance_after"`
	CreatedAt       string  `json:"created_at"`
}

// CreateTransactionRequest is the payload for POST /api/transactions.
type CreateTransactionRequest struct {
	CustomerID      string      `json:"customer_id"`
	Type            string      `json:"type"`
	Amount          money.Money `json:"amount"`
	Method          *string     `json:"method,omitempty"`
	Description     string      `json:"description"`
	ReferenceNumber *string     `json:"reference_number,omitempty"`
	InvoiceNumber   *string     `json:"invoice_number,omitempty"`
	Date            string      `json:"date"`
}

// =============================================================================
// STATEMENT / BALANCE / SUMMARY
// =============================================================================

// LedgerEntryDTO is one row of a statement.
type LedgerEntryDTO struct {
	Date          string  `json:"date"`
	Reference     string  `json:"reference"`
	Particulars   string  `json:"particulars"`
	Debit         string  `json:"debit"`
	Credit        string  `json:"credit"`
	Balance       string  `json:"balance"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// BalanceDTO reports a customer's live balance plus its display form
// and classification (outstanding / advance / settled).
type BalanceDTO struct {
	CustomerID string `json:"customer_id"`
	Balance    string `json:"balance"`
	Display    string `json:"display"`
	Status     string `json:"status"`
}

// SummaryDTO is the dashboard rollup.
type SummaryDTO struct {
	TotalCustomers       int    `json:"total_customers"`
	OutstandingCustomers int    `json:"outstanding_customers"`
	AdvanceCustomers     int    `json:"advance_customers"`
	SettledCustomers     int    `json:"settled_customers"`
	TotalOutstanding     string `json:"total_outstanding"`
	TotalAdvance         string `json:"total_advance"`
	TotalCredit          string `json:"total_credit"`
	TotalDebit           string `json:"total_debit"`
	ReceivedLast30Days   string `json:"received_last_30_days"`
	BilledLast30Days     string `json:"billed_last_30_days"`
}

// CapabilitiesDTO mirrors ledger.Capabilities.
type CapabilitiesDTO struct {
	EditTransactions bool `json:"edit_transactions"`
	VoidTransactions bool `json:"void_transactions"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Backups reuse the snapshot document format, so a server backup and a
// file snapshot are interchangeable.
type BackupDTO = snapshot.Document

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func customerDTO(c ledger.Customer, balance money.Money) CustomerDTO {
	return CustomerDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		GSTIN:     c.GSTIN,
		Opening:   c.OpeningBalance.String(),
		Balance:   balance.String(),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func transactionDTO(tx ledger.Transaction) TransactionDTO {
	var method *string
	if tx.Method != nil {
		m := string(*tx.Method)
		method = &m
	}
	return TransactionDTO{
		ID:              string(tx.ID),
		CustomerID:      string(tx.CustomerID),
		Type:            string(tx.Type),
		Amount:          tx.Amount.String(),
		Method:          method,
		Description:     tx.Description,
		ReferenceNumber: tx.ReferenceNumber,
		InvoiceNumber:   tx.InvoiceNumber,
		Date:            tx.Date.Format(time.RFC3339),
		BalanceAfter:    tx.BalanceAfter.String(),
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
}

func ledgerEntryDTO(e ledger.LedgerEntry) LedgerEntryDTO {
	var txID *string
	if e.TransactionID != nil {
		id := string(*e.TransactionID)
		txID = &id
	}
	return LedgerEntryDTO{
		Date:          e.Date.Format(time.RFC3339),
		Reference:     e.Reference,
		Particulars:   e.Particulars,
		Debit:         e.Debit.String(),
		Credit:        e.Credit.String(),
		Balance:       e.Balance.String(),
		TransactionID: txID,
	}
}

func balanceDTO(id ledger.CustomerID, balance money.Money) BalanceDTO {
	status := "settled"
	if balance.IsPositive() {
		status = "outstanding"
	} else if balance.IsNegative() {
		status = "advance"
	}
	return BalanceDTO{
		CustomerID: string(id),
		Balance:    balance.String(),
		Display:    balance.Abs().Display(),
		Status:     status,
	}
}

func summaryDTO(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		TotalCustomers:       s.TotalCustomers,
		OutstandingCustomers: s.OutstandingCustomers,
		AdvanceCustomers:     s.AdvanceCustomers,
		SettledCustomers:     s.SettledCustomers,
		TotalOutstanding:     s.TotalOutstanding.String(),
		TotalAdvance:         s.TotalAdvance.String(),
		TotalCredit:          s.TotalCredit.String(),
		TotalDebit:           s.TotalDebit.String(),
		ReceivedLast30Days:   s.ReceivedLast30Days.String(),
		BilledLast30Days:     s.BilledLast30Days.String(),
	}
}
