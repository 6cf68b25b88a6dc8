/*
Package ledger is the accounts-receivable/payable core: customers, their
credit/debit transactions, and the rules that derive a trustworthy running
balance from an opening balance plus the transaction log.

PURPOSE:
  This package owns the domain model and the invariant-bearing logic:
  - Balance derivation (balance.go): fold over the transaction log,
    never cached, never trusted from a snapshot.
  - Statement materialization (statement.go): the chronological ledger
    a bookkeeper reads, rebuilt fresh on every call.
  - Mutation coordination (book.go): the single writer that validates,
    stamps, and freezes balance snapshots on insert.

KEY CONCEPTS IN THIS FILE (types.go):
  - Customer: the account holder, owns the opening balance
  - Transaction: one credit or debit against a customer, immutable
  - LedgerEntry: one row of a materialized statement (never persisted)
  - Typed IDs: CustomerID/TransactionID prevent cross-wiring

SIGN CONVENTION (everywhere in this package):
  positive balance = customer owes the business (outstanding)
  negative balance = business owes the customer (advance)
  A debit INCREASES the balance, a credit DECREASES it. Direction is
  encoded only by Transaction.Type; Amount is always strictly positive.

DESIGN PRINCIPLES:
  1. Precision: money.Money (decimal-backed) for every amount
  2. Immutability: transactions are never edited, only cascade-deleted
     with their customer (see Capabilities)
  3. Derivation over storage: balances are recomputed from source
     records on every read

SEE ALSO:
  - errors.go: error taxonomy
  - store.go: persistence interfaces
  - book.go: the mutation coordinator
*/
package ledger

import (
	"time"

	"github.com/khata/ledger-engine/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID string
type TransactionID string

// =============================================================================
// ENTRY TYPE - credit vs debit
// =============================================================================

type EntryType string

const (
	// EntryCredit records money received from the customer. Decreases balance.
	EntryCredit EntryType = "credit"
	// EntryDebit records money billed to the customer. Increases balance.
	EntryDebit EntryType = "debit"
)

func (t EntryType) Valid() bool {
	return t == EntryCredit || t == EntryDebit
}

// =============================================================================
// PAYMENT METHOD - optional tag on a transaction
// =============================================================================

type PaymentMethod string

const (
	PayCash           PaymentMethod = "cash"
	PayBankTransfer   PaymentMethod = "bank_transfer"
	PayUPI            PaymentMethod = "upi"
	PayCheque         PaymentMethod = "cheque"
	PayCreditCustomer PaymentMethod = "credit_customer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayBankTransfer, PayUPI, PayCheque, PayCreditCustomer:
		return true
	}
	return false
}

// =============================================================================
// CUSTOMER
// =============================================================================

// Customer is an account holder. ID and CreatedAt are immutable after
// creation; UpdatedAt is bumped on every mutation.
type Customer struct {
	ID      CustomerID
	Name    string
	Phone   string // canonical +91-XXXXX-XXXXX form
	Address string
	GSTIN   *string // optional tax id, format-validated when present

	// Balance at account creation, before any recorded transaction.
	// Positive = customer owed this much at onboarding.
	OpeningBalance money.Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is one immutable credit or debit against a customer.
// There is no edit or void operation; a transaction only ever leaves
// the store through its customer's cascade delete.
type Transaction struct {
	ID         TransactionID
	CustomerID CustomerID
	Type       EntryType

	// Amount is strictly positive. Direction lives in Type only.
	Amount money.Money

	Method          *PaymentMethod
	Description     string
	ReferenceNumber *string
	InvoiceNumber   *string

	// Date is the business-effective date supplied by the user.
	// It may differ from CreatedAt (back-dated entries are allowed).
	Date time.Time

	// BalanceAfter is the customer's balance immediately after this
	// transaction was applied, frozen at insertion time. It is a
	// historical snapshot, never recomputed.
	BalanceAfter money.Money

	CreatedAt time.Time
}

// =============================================================================
// LEDGER ENTRY - one row of a materialized statement
// =============================================================================

// LedgerEntry is an ephemeral projection produced by BuildStatement.
// It is never persisted and never cached.
type LedgerEntry struct {
	Date        time.Time
	Reference   string // reference number, else invoice number, else "-"
	Particulars string // description, or "Opening Balance" for the synthetic row
	Debit       money.Money
	Credit      money.Money
	Balance     money.Money // running balance after this row

	// TransactionID links back to the originating transaction.
	// Nil for the synthetic opening row.
	TransactionID *TransactionID
}

// =============================================================================
// CAPABILITIES
// =============================================================================

// Capabilities declares which mutations this engine supports. Transaction
// immutability is a deliberate property of the ledger model, so its
// absence is stated here rather than implied by a missing method.
type Capabilities struct {
	EditTransactions bool
	VoidTransactions bool
}
