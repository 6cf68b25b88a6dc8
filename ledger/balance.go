/*
balance.go - Balance derivation

PURPOSE:
  Computes a customer's current balance by folding the transaction log.
  This is the central consistency rule of the whole system: there is no
  stored balance to trust or invalidate. Every read re-derives from the
  opening balance plus the log, so deleting a customer's history (the
  only destructive operation) can never leave a stale total behind.

THE FOLD:
  balance := openingBalance
  for each transaction in INSERTION order:
      credit: balance -= amount
      debit:  balance += amount

  Addition commutes, so the total is order-independent; insertion order
  still matters because AddTransaction freezes BalanceAfter against the
  fold of everything previously inserted (see book.go).

READ CONTRACT:
  CurrentBalance is queried opportunistically while rendering customer
  lists, so a missing customer is not an error: it yields zero.

SEE ALSO:
  - statement.go: the row-by-row projection of the same history
  - report.go: business-wide aggregates built on CurrentBalance
*/
package ledger

import (
	"context"
	"sort"

	"github.com/khata/ledger-engine/money"
)

// =============================================================================
// ENGINE - Read-side derivations over the two stores
// =============================================================================

// Engine derives balances, histories, statements and summaries from a
// Store. All methods are pure reads: nothing is cached across calls.
type Engine struct {
	Store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{Store: store}
}

// Apply returns the balance after applying one credit/debit of the given
// amount to balance. Shared by the live fold and the insert-time freeze.
func Apply(balance money.Money, typ EntryType, amount money.Money) money.Money {
	if typ == EntryCredit {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}

// CurrentBalance folds the customer's transaction log, in insertion
// order, starting from the opening balance. A missing customer yields
// zero, not an error. The customer and its log come from one View call,
// so a concurrent cascade delete yields zero, never the bare opening
// balance with the history already gone.
func (e *Engine) CurrentBalance(ctx context.Context, id CustomerID) (money.Money, error) {
	customer, txs, err := e.Store.View(ctx, id)
	if err != nil {
		return money.Zero(), err
	}
	if customer == nil {
		return money.Zero(), nil
	}

	balance := customer.OpeningBalance
	for _, tx := range txs {
		balance = Apply(balance, tx.Type, tx.Amount)
	}
	return balance, nil
}

// TransactionsFor returns the customer's transactions sorted by business
// date, most recent first, for display. This is a presentation order;
// the fold in CurrentBalance uses insertion order. The sort is stable,
// so same-date transactions keep their insertion order.
func (e *Engine) TransactionsFor(ctx context.Context, id CustomerID) ([]Transaction, error) {
	txs, err := e.Store.TransactionsByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}
