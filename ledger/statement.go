/*
statement.go - Ledger statement materialization

PURPOSE:
  Builds the human-readable chronological statement for a customer: one
  synthetic opening row, then one row per transaction with its running
  balance. This is what a bookkeeper reads and what export collaborators
  render.

FROZEN BALANCES:
  Each transaction row shows the BalanceAfter that was frozen when the
  transaction was inserted, NOT a recomputed value. The displayed
  running balance therefore always matches what was in effect
  historically, and agrees with the live CurrentBalance exactly when no
  history has been deleted since the last insertion.

  Consequence (accepted, by design of the original system): a
  back-dated transaction inserted later carries a BalanceAfter from its
  ENTRY time, so its row can look out of sequence next to its
  date-sorted neighbours. The live total stays correct regardless.

ORDERING:
  Rows are sorted ascending by date with a stable sort. The opening row
  is emitted first and transactions are appended in insertion order, so
  ties resolve to: opening row first, then insertion order.

SEE ALSO:
  - balance.go: the live fold the last row is compared against in tests
*/
package ledger

import (
	"context"
	"sort"

	"github.com/khata/ledger-engine/money"
)

// Reference shown on the synthetic opening row.
const openingReference = "Opening"

// Particulars shown on the synthetic opening row.
const openingParticulars = "Opening Balance"

// BuildStatement materializes the full chronological ledger for a
// customer. The result is rebuilt from source records on every call. A
// missing customer yields an empty statement, not an error. A customer
// with no transactions yields just the opening row.
func (e *Engine) BuildStatement(ctx context.Context, id CustomerID) ([]LedgerEntry, error) {
	customer, txs, err := e.Store.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, nil
	}

	entries := make([]LedgerEntry, 0, len(txs)+1)
	entries = append(entries, openingEntry(customer))

	for _, tx := range txs {
		entries = append(entries, transactionEntry(tx))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// openingEntry builds the synthetic first row. A positive opening
// balance appears in the debit column (the customer started out owing),
// a negative one in the credit column (they started in advance).
func openingEntry(c *Customer) LedgerEntry {
	debit, credit := money.Zero(), money.Zero()
	if c.OpeningBalance.IsPositive() {
		debit = c.OpeningBalance
	}
	if c.OpeningBalance.IsNegative() {
		credit = c.OpeningBalance.Abs()
	}

	return LedgerEntry{
		Date:        c.CreatedAt,
		Reference:   openingReference,
		Particulars: openingParticulars,
		Debit:       debit,
		Credit:      credit,
		Balance:     c.OpeningBalance,
	}
}

func transactionEntry(tx Transaction) LedgerEntry {
	debit, credit := money.Zero(), money.Zero()
	if tx.Type == EntryDebit {
		debit = tx.Amount
	} else {
		credit = tx.Amount
	}

	txID := tx.ID
	return LedgerEntry{
		Date:          tx.Date,
		Reference:     referenceFor(tx),
		Particulars:   tx.Description,
		Debit:         debit,
		Credit:        credit,
		Balance:       tx.BalanceAfter,
		TransactionID: &txID,
	}
}

// referenceFor picks the row reference: reference number, falling back
// to invoice number, falling back to "-".
func referenceFor(tx Transaction) string {
	if tx.ReferenceNumber != nil && *tx.ReferenceNumber != "" {
		return *tx.ReferenceNumber
	}
	if tx.InvoiceNumber != nil && *tx.InvoiceNumber != "" {
		return *tx.InvoiceNumber
	}
	return "-"
}
