package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata/ledger-engine/ledger"
)

func TestSummary_ClassifiesCustomersAndTotals(t *testing.T) {
	// GIVEN: an outstanding customer (+150), an advance customer (-40)
	//        and a settled one (0)
	engine, mem := newTestEngine()
	ctx := context.Background()
	asOf := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	seedCustomer(t, mem, "out", 100)
	seedTx(t, mem, "t1", "out", ledger.EntryDebit, 50, jan(10), 150)

	seedCustomer(t, mem, "adv", 0)
	seedTx(t, mem, "t2", "adv", ledger.EntryCredit, 40, jan(12), -40)

	seedCustomer(t, mem, "settled", 0)

	s, err := engine.Summary(ctx, asOf)
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalCustomers)
	assert.Equal(t, 1, s.OutstandingCustomers)
	assert.Equal(t, 1, s.AdvanceCustomers)
	assert.Equal(t, 1, s.SettledCustomers)
	assert.Equal(t, "150.00", s.TotalOutstanding.String())
	assert.Equal(t, "40.00", s.TotalAdvance.String())
	assert.Equal(t, "40.00", s.TotalCredit.String())
	assert.Equal(t, "50.00", s.TotalDebit.String())
}

func TestSummary_ThirtyDayWindow(t *testing.T) {
	engine, mem := newTestEngine()
	asOf := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	seedCustomer(t, mem, "c", 0)
	// Inside the window (Jan 30 is exactly 30 days before Mar 1).
	seedTx(t, mem, "recent-credit", "c", ledger.EntryCredit, 100, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC), -100)
	seedTx(t, mem, "recent-debit", "c", ledger.EntryDebit, 60, time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC), -40)
	// Outside the window.
	seedTx(t, mem, "old-credit", "c", ledger.EntryCredit, 500, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), -540)

	s, err := engine.Summary(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, "100.00", s.ReceivedLast30Days.String())
	assert.Equal(t, "60.00", s.BilledLast30Days.String())
	assert.Equal(t, "600.00", s.TotalCredit.String(), "lifetime volume includes old entries")
}

func TestSummary_EmptyBook(t *testing.T) {
	engine, _ := newTestEngine()

	s, err := engine.Summary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, s.TotalCustomers)
	assert.True(t, s.TotalOutstanding.IsZero())
	assert.True(t, s.TotalAdvance.IsZero())
}
