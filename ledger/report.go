/*
report.go - Business-wide aggregates

PURPOSE:
  The dashboard numbers: how much is owed to the business, how much the
  business owes, and recent activity. Like every other read in this
  package, the summary is re-derived from source records on each call.

SEE ALSO:
  - balance.go: per-customer balances these totals are built from
*/
package ledger

import (
	"context"
	"time"

	"github.com/khata/ledger-engine/money"
)

// Summary is a point-in-time rollup across all customers.
type Summary struct {
	TotalCustomers       int
	OutstandingCustomers int // balance > 0
	AdvanceCustomers     int // balance < 0
	SettledCustomers     int // balance == 0

	// TotalOutstanding is the sum of positive balances; TotalAdvance the
	// absolute sum of negative ones. Both are non-negative.
	TotalOutstanding money.Money
	TotalAdvance     money.Money

	// Lifetime transaction volume by direction.
	TotalCredit money.Money
	TotalDebit  money.Money

	// Volume in the 30 days before the as-of instant (by business date).
	ReceivedLast30Days money.Money
	BilledLast30Days   money.Money
}

// Summary computes the rollup as of the given instant. The 30-day
// window is judged against transaction business dates. All numbers come
// from one Snapshot of the two stores, so a mutation landing mid-call
// can never make the customer counts disagree with the volume totals.
func (e *Engine) Summary(ctx context.Context, asOf time.Time) (Summary, error) {
	customers, txs, err := e.Store.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		TotalCustomers:     len(customers),
		TotalOutstanding:   money.Zero(),
		TotalAdvance:       money.Zero(),
		TotalCredit:        money.Zero(),
		TotalDebit:         money.Zero(),
		ReceivedLast30Days: money.Zero(),
		BilledLast30Days:   money.Zero(),
	}

	balances := make(map[CustomerID]money.Money, len(customers))
	for _, c := range customers {
		balances[c.ID] = c.OpeningBalance
	}
	for _, tx := range txs {
		if bal, ok := balances[tx.CustomerID]; ok {
			balances[tx.CustomerID] = Apply(bal, tx.Type, tx.Amount)
		}
	}

	for _, c := range customers {
		balance := balances[c.ID]
		switch {
		case balance.IsPositive():
			s.OutstandingCustomers++
			s.TotalOutstanding = s.TotalOutstanding.Add(balance)
		case balance.IsNegative():
			s.AdvanceCustomers++
			s.TotalAdvance = s.TotalAdvance.Add(balance.Abs())
		default:
			s.SettledCustomers++
		}
	}

	windowStart := asOf.AddDate(0, 0, -30)
	for _, tx := range txs {
		recent := !tx.Date.Before(windowStart) && !tx.Date.After(asOf)
		if tx.Type == EntryCredit {
			s.TotalCredit = s.TotalCredit.Add(tx.Amount)
			if recent {
				s.ReceivedLast30Days = s.ReceivedLast30Days.Add(tx.Amount)
			}
		} else {
			s.TotalDebit = s.TotalDebit.Add(tx.Amount)
			if recent {
				s.BilledLast30Days = s.BilledLast30Days.Add(tx.Amount)
			}
		}
	}
	return s, nil
}
