/*
store.go - Persistence interfaces for customers and transactions

PURPOSE:
  Defines the boundary between the domain logic and storage. The core
  does not choose the medium; anything that can hold the two record
  collections and replay them in insertion order qualifies.

ITERATION ORDER CONTRACT:
  TransactionsByCustomer and ListTransactions MUST return records in
  insertion order. The balance fold and the frozen BalanceAfter
  snapshots both depend on it (see balance.go).

MUTATION SHAPE:
  - Customers are upserted (PutCustomer) and removed only via
    DeleteCustomerCascade, which atomically removes the customer AND
    every transaction referencing it. A reader must never observe one
    without the other.
  - Transactions are APPEND-ONLY. No update, no single delete. They
    leave the store only through the cascade or a full Replace.
  - Replace swaps both collections in one atomic step (bulk import /
    backup restore).

CONSISTENT READS:
  The cascade guarantee only holds for readers that take their customer
  and transaction views in one step. View and Snapshot are those steps;
  implementations serve them under a single lock acquisition (or a
  single SQL transaction) so no mutation can land between the two
  halves of the read.

IMPLEMENTATIONS:
  - ledger/store/memory.go: mutex-guarded in-memory store
  - store/sqlite/sqlite.go: SQLite with WAL, cascade in one SQL tx

SEE ALSO:
  - book.go: the only writer of a Store
  - balance.go: read-side consumer
*/
package ledger

import "context"

// CustomerStore holds customer records keyed by id.
type CustomerStore interface {
	// PutCustomer inserts or overwrites a customer record.
	PutCustomer(ctx context.Context, c Customer) error

	// GetCustomer returns the customer, or nil when absent.
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)

	// ListCustomers returns all customers in insertion order.
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// TransactionStore holds the append-only transaction log.
type TransactionStore interface {
	// AppendTransaction adds a transaction. Append-only.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// TransactionsByCustomer returns the customer's transactions in
	// insertion order. Empty slice when the customer is unknown.
	TransactionsByCustomer(ctx context.Context, id CustomerID) ([]Transaction, error)

	// ListTransactions returns every transaction in insertion order.
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// Store is the full persistence surface the mutation coordinator needs.
type Store interface {
	CustomerStore
	TransactionStore

	// View returns the customer (nil when absent) and its transactions
	// in insertion order as ONE consistent read. The pair reflects a
	// single point in time: a concurrent cascade delete is observed
	// entirely or not at all, never half-applied. Engine reads that
	// combine a customer with its history MUST go through View rather
	// than pairing GetCustomer with TransactionsByCustomer.
	View(ctx context.Context, id CustomerID) (*Customer, []Transaction, error)

	// Snapshot returns both collections, each in insertion order, as
	// one consistent read of the whole store.
	Snapshot(ctx context.Context) ([]Customer, []Transaction, error)

	// DeleteCustomerCascade removes the customer and every transaction
	// referencing it as one atomic operation. Returns false when the
	// customer did not exist (and removes nothing).
	DeleteCustomerCascade(ctx context.Context, id CustomerID) (bool, error)

	// Replace atomically swaps both collections with the given records,
	// preserving slice order as the new insertion order. All-or-nothing.
	Replace(ctx context.Context, customers []Customer, transactions []Transaction) error
}
