package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/ledger/store"
	"github.com/khata/ledger-engine/money"
)

func customer(id string) ledger.Customer {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return ledger.Customer{
		ID:             ledger.CustomerID(id),
		Name:           "Customer " + id,
		Phone:          "+91-98765-43210",
		Address:        "Somewhere",
		OpeningBalance: money.Zero(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func transaction(id, customerID string) ledger.Transaction {
	return ledger.Transaction{
		ID:           ledger.TransactionID(id),
		CustomerID:   ledger.CustomerID(customerID),
		Type:         ledger.EntryDebit,
		Amount:       money.FromInt(10),
		Description:  "test",
		Date:         time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		BalanceAfter: money.FromInt(10),
		CreatedAt:    time.Now().UTC(),
	}
}

func TestMemory_InsertionOrderPreserved(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, mem.PutCustomer(ctx, customer(id)))
	}
	for _, id := range []string{"t3", "t1", "t2"} {
		require.NoError(t, mem.AppendTransaction(ctx, transaction(id, "a")))
	}

	customers, err := mem.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.CustomerID("b"), customers[0].ID)
	assert.Equal(t, ledger.CustomerID("a"), customers[1].ID)
	assert.Equal(t, ledger.CustomerID("c"), customers[2].ID)

	txs, err := mem.TransactionsByCustomer(ctx, "a")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, ledger.TransactionID("t3"), txs[0].ID)
	assert.Equal(t, ledger.TransactionID("t1"), txs[1].ID)
	assert.Equal(t, ledger.TransactionID("t2"), txs[2].ID)
}

func TestMemory_PutCustomer_OverwriteKeepsPosition(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutCustomer(ctx, customer("a")))
	require.NoError(t, mem.PutCustomer(ctx, customer("b")))

	updated := customer("a")
	updated.Name = "Renamed"
	require.NoError(t, mem.PutCustomer(ctx, updated))

	customers, err := mem.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Renamed", customers[0].Name)
}

func TestMemory_GetCustomer_CopiesOut(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.PutCustomer(ctx, customer("a")))

	got, err := mem.GetCustomer(ctx, "a")
	require.NoError(t, err)
	got.Name = "mutated by caller"

	again, err := mem.GetCustomer(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Customer a", again.Name, "store record must not alias caller memory")
}

func TestMemory_DeleteCustomerCascade(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutCustomer(ctx, customer("a")))
	require.NoError(t, mem.PutCustomer(ctx, customer("b")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t1", "a")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t2", "b")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t3", "a")))

	found, err := mem.DeleteCustomerCascade(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	got, err := mem.GetCustomer(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	txs, err := mem.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.TransactionID("t2"), txs[0].ID)

	// Missing customer: no-op, reported.
	found, err = mem.DeleteCustomerCascade(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Replace(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutCustomer(ctx, customer("old")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("old-tx", "old")))

	err := mem.Replace(ctx,
		[]ledger.Customer{customer("new")},
		[]ledger.Transaction{transaction("new-tx", "new")},
	)
	require.NoError(t, err)

	customers, err := mem.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, ledger.CustomerID("new"), customers[0].ID)

	txs, err := mem.TransactionsByCustomer(ctx, "new")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	gone, err := mem.TransactionsByCustomer(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestMemory_View_ConsistentPair(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutCustomer(ctx, customer("a")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t1", "a")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t2", "a")))

	c, txs, err := mem.View(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, ledger.CustomerID("a"), c.ID)
	require.Len(t, txs, 2)
	assert.Equal(t, ledger.TransactionID("t1"), txs[0].ID)

	c, txs, err = mem.View(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, txs)
}

func TestMemory_Snapshot_BothCollections(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.PutCustomer(ctx, customer("a")))
	require.NoError(t, mem.PutCustomer(ctx, customer("b")))
	require.NoError(t, mem.AppendTransaction(ctx, transaction("t1", "a")))

	customers, txs, err := mem.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.CustomerID("a"), customers[0].ID)
	assert.Equal(t, ledger.TransactionID("t1"), txs[0].ID)
}

func TestMemory_OptionalPointerFields_CopiedBothWays(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	// GIVEN records whose optional fields are set through pointers.
	gstin := "24AAACR5055K1Z5"
	in := customer("a")
	in.GSTIN = &gstin

	method := ledger.PayUPI
	ref := "REF-1"
	tx := transaction("t1", "a")
	tx.Method = &method
	tx.ReferenceNumber = &ref

	require.NoError(t, mem.PutCustomer(ctx, in))
	require.NoError(t, mem.AppendTransaction(ctx, tx))

	// WHEN the caller mutates its own pointer targets after the put.
	gstin = "clobbered"
	method = ledger.PaymentMethod("clobbered")
	ref = "clobbered"

	// THEN stored records are unaffected.
	got, err := mem.GetCustomer(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.GSTIN)
	assert.Equal(t, "24AAACR5055K1Z5", *got.GSTIN)

	txs, err := mem.TransactionsByCustomer(ctx, "a")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.PayUPI, *txs[0].Method)
	assert.Equal(t, "REF-1", *txs[0].ReferenceNumber)

	// AND mutating a copy handed out by the store leaves it unchanged.
	*got.GSTIN = "mutated by caller"
	*txs[0].ReferenceNumber = "mutated by caller"

	again, err := mem.GetCustomer(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "24AAACR5055K1Z5", *again.GSTIN)

	txsAgain, err := mem.TransactionsByCustomer(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "REF-1", *txsAgain[0].ReferenceNumber)
}
