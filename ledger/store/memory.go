// Package store provides the in-memory ledger.Store implementation.
package store

import (
	"context"
	"sync"

	"github.com/khata/ledger-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps both collections in insertion-order slices guarded by a
// single RWMutex. Records are deep-copied on the way in and out,
// optional pointer fields included, so nothing aliases store-owned
// memory; the store is the sole owner of its records.
type Memory struct {
	mu           sync.RWMutex
	customers    []ledger.Customer
	customerIdx  map[ledger.CustomerID]int
	transactions []ledger.Transaction
	txByCustomer map[ledger.CustomerID][]int
}

func NewMemory() *Memory {
	return &Memory{
		customerIdx:  make(map[ledger.CustomerID]int),
		txByCustomer: make(map[ledger.CustomerID][]int),
	}
}

// =============================================================================
// CUSTOMER STORE
// =============================================================================

func (m *Memory) PutCustomer(_ context.Context, c ledger.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c = cloneCustomer(c)
	if i, ok := m.customerIdx[c.ID]; ok {
		m.customers[i] = c
		return nil
	}
	m.customerIdx[c.ID] = len(m.customers)
	m.customers = append(m.customers, c)
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.getCustomerLocked(id), nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listCustomersLocked(), nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx = cloneTransaction(tx)
	m.txByCustomer[tx.CustomerID] = append(m.txByCustomer[tx.CustomerID], len(m.transactions))
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *Memory) TransactionsByCustomer(_ context.Context, id ledger.CustomerID) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.transactionsByCustomerLocked(id), nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Transaction, len(m.transactions))
	for i, tx := range m.transactions {
		out[i] = cloneTransaction(tx)
	}
	return out, nil
}

// =============================================================================
// CONSISTENT READS
// =============================================================================

// View returns the customer and its transactions under one lock
// acquisition, so a concurrent cascade delete is observed entirely or
// not at all.
func (m *Memory) View(_ context.Context, id ledger.CustomerID) (*ledger.Customer, []ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.getCustomerLocked(id)
	if c == nil {
		return nil, nil, nil
	}
	return c, m.transactionsByCustomerLocked(id), nil
}

// Snapshot returns both collections under one lock acquisition.
func (m *Memory) Snapshot(_ context.Context) ([]ledger.Customer, []ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := make([]ledger.Transaction, len(m.transactions))
	for i, tx := range m.transactions {
		txs[i] = cloneTransaction(tx)
	}
	return m.listCustomersLocked(), txs, nil
}

// =============================================================================
// CASCADE DELETE AND ATOMIC REPLACE
// =============================================================================

// DeleteCustomerCascade removes the customer and its transactions under
// one lock acquisition: readers see either both or neither.
func (m *Memory) DeleteCustomerCascade(_ context.Context, id ledger.CustomerID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customerIdx[id]; !ok {
		return false, nil
	}

	customers := make([]ledger.Customer, 0, len(m.customers)-1)
	for _, c := range m.customers {
		if c.ID != id {
			customers = append(customers, c)
		}
	}
	transactions := make([]ledger.Transaction, 0, len(m.transactions))
	for _, tx := range m.transactions {
		if tx.CustomerID != id {
			transactions = append(transactions, tx)
		}
	}

	m.reindex(customers, transactions)
	return true, nil
}

// Replace swaps both collections wholesale. Slice order becomes the new
// insertion order.
func (m *Memory) Replace(_ context.Context, customers []ledger.Customer, transactions []ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := make([]ledger.Customer, len(customers))
	for i, c := range customers {
		cs[i] = cloneCustomer(c)
	}
	txs := make([]ledger.Transaction, len(transactions))
	for i, tx := range transactions {
		txs[i] = cloneTransaction(tx)
	}

	m.reindex(cs, txs)
	return nil
}

// reindex installs new collections and rebuilds the lookup maps.
// Caller must hold the write lock.
func (m *Memory) reindex(customers []ledger.Customer, transactions []ledger.Transaction) {
	m.customers = customers
	m.transactions = transactions

	m.customerIdx = make(map[ledger.CustomerID]int, len(customers))
	for i, c := range customers {
		m.customerIdx[c.ID] = i
	}
	m.txByCustomer = make(map[ledger.CustomerID][]int, len(customers))
	for i, tx := range transactions {
		m.txByCustomer[tx.CustomerID] = append(m.txByCustomer[tx.CustomerID], i)
	}
}

// =============================================================================
// COPY HELPERS
// =============================================================================

// Callers must hold at least the read lock for the *Locked helpers.

func (m *Memory) getCustomerLocked(id ledger.CustomerID) *ledger.Customer {
	i, ok := m.customerIdx[id]
	if !ok {
		return nil
	}
	c := cloneCustomer(m.customers[i])
	return &c
}

func (m *Memory) listCustomersLocked() []ledger.Customer {
	out := make([]ledger.Customer, len(m.customers))
	for i, c := range m.customers {
		out[i] = cloneCustomer(c)
	}
	return out
}

func (m *Memory) transactionsByCustomerLocked(id ledger.CustomerID) []ledger.Transaction {
	idxs := m.txByCustomer[id]
	out := make([]ledger.Transaction, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, cloneTransaction(m.transactions[i]))
	}
	return out
}

func cloneCustomer(c ledger.Customer) ledger.Customer {
	c.GSTIN = clonePtr(c.GSTIN)
	return c
}

func cloneTransaction(tx ledger.Transaction) ledger.Transaction {
	tx.Method = clonePtr(tx.Method)
	tx.ReferenceNumber = clonePtr(tx.ReferenceNumber)
	tx.InvoiceNumber = clonePtr(tx.InvoiceNumber)
	return tx
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
