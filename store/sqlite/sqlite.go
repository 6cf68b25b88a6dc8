/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Durable single-file persistence for the ledger. The same patterns
  apply to PostgreSQL; only minor SQL dialect differences.

INSERTION ORDER:
  The ledger's balance fold and frozen snapshots depend on replaying
  transactions in the order they were inserted. A monotonically
  increasing seq column (AUTOINCREMENT) records that order; every read
  sorts by it.

MUTATION SHAPE:
  - Customers: upsert, cascade delete
  - Transactions: INSERT only; rows leave the table through the
    customer cascade or a full Replace
  - Cascade delete and Replace each run inside one SQL transaction, so
    a reader never observes the customer gone with transactions still
    present, or vice versa

WAL MODE:
  Opened with WAL for better concurrency: readers don't block on the
  single writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./khata.db")
  if err != nil { ... }
  defer store.Close()
  book := ledger.NewBook(store)

SEE ALSO:
  - ledger/store.go: interface contracts this file implements
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/money"
)

// Store implements ledger.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL,
		gstin TEXT,
		opening_balance TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT,
		description TEXT NOT NULL,
		reference_number TEXT,
		invoice_number TEXT,
		date TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: per-customer replay in insertion order
	CREATE INDEX IF NOT EXISTS idx_transactions_customer_seq
		ON transactions(customer_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CUSTOMER STORE (ledger.CustomerStore interface)
// =============================================================================

func (s *Store) PutCustomer(ctx context.Context, c ledger.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The upsert keeps the original seq, so insertion position survives
	// an update.
	query := `
		INSERT INTO customers (id, name, phone, address, gstin, opening_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			address = excluded.address,
			gstin = excluded.gstin,
			opening_balance = excluded.opening_balance,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		c.Address,
		nullString(c.GSTIN),
		c.OpeningBalance.String(),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetCustomer(ctx context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address, gstin, opening_balance, created_at, updated_at
		FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCustomers(ctx)
}

// =============================================================================
// TRANSACTION STORE (ledger.TransactionStore interface)
// =============================================================================

func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return execInsertTransaction(ctx, s.db, tx)
}

func (s *Store) TransactionsByCustomer(ctx context.Context, id ledger.CustomerID) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, `
		SELECT id, customer_id, entry_type, amount, method, description,
		       reference_number, invoice_number, date, balance_after, created_at
		FROM transactions WHERE customer_id = ? ORDER BY seq`, id)
}

func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransactions(ctx, `
		SELECT id, customer_id, entry_type, amount, method, description,
		       reference_number, invoice_number, date, balance_after, created_at
		FROM transactions ORDER BY seq`)
}

// =============================================================================
// CONSISTENT READS
// =============================================================================

// View returns the customer and its transactions under one lock
// acquisition. All writes serialize on the same mutex, so the pair is a
// single point-in-time read: a concurrent cascade delete is observed
// entirely or not at all.
func (s *Store) View(ctx context.Context, id ledger.CustomerID) (*ledger.Customer, []ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address, gstin, opening_balance, created_at, updated_at
		FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	txs, err := s.queryTransactions(ctx, `
		SELECT id, customer_id, entry_type, amount, method, description,
		       reference_number, invoice_number, date, balance_after, created_at
		FROM transactions WHERE customer_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, err
	}
	return c, txs, nil
}

// Snapshot returns both tables under one lock acquisition.
func (s *Store) Snapshot(ctx context.Context) ([]ledger.Customer, []ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers, err := s.queryCustomers(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := s.queryTransactions(ctx, `
		SELECT id, customer_id, entry_type, amount, method, description,
		       reference_number, invoice_number, date, balance_after, created_at
		FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, nil, err
	}
	return customers, txs, nil
}

// =============================================================================
// CASCADE DELETE AND ATOMIC REPLACE
// =============================================================================

// DeleteCustomerCascade removes the customer and its transactions in
// one SQL transaction.
func (s *Store) DeleteCustomerCascade(ctx context.Context, id ledger.CustomerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE customer_id = ?`, id); err != nil {
		return false, err
	}
	return true, dbTx.Commit()
}

// Replace swaps both tables wholesale in one SQL transaction. Slice
// order becomes the new seq order.
func (s *Store) Replace(ctx context.Context, customers []ledger.Customer, transactions []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return err
	}
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return err
	}

	for _, c := range customers {
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO customers (id, name, phone, address, gstin, opening_balance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID,
			c.Name,
			c.Phone,
			c.Address,
			nullString(c.GSTIN),
			c.OpeningBalance.String(),
			c.CreatedAt.UTC().Format(time.RFC3339Nano),
			c.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	for _, tx := range transactions {
		if err := execInsertTransaction(ctx, dbTx, tx); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

// =============================================================================
// ROW HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execInsertTransaction(ctx context.Context, db execer, tx ledger.Transaction) error {
	var method *string
	if tx.Method != nil {
		m := string(*tx.Method)
		method = &m
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions
		(id, customer_id, entry_type, amount, method, description,
		 reference_number, invoice_number, date, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.CustomerID,
		tx.Type,
		tx.Amount.String(),
		nullString(method),
		tx.Description,
		nullString(tx.ReferenceNumber),
		nullString(tx.InvoiceNumber),
		tx.Date.UTC().Format(time.RFC3339Nano),
		tx.BalanceAfter.String(),
		tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// queryCustomers lists all customers in seq order. Caller holds a lock.
func (s *Store) queryCustomers(ctx context.Context) ([]ledger.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, address, gstin, opening_balance, created_at, updated_at
		FROM customers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []ledger.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var (
			tx               ledger.Transaction
			amount, balance  string
			method, ref, inv sql.NullString
			date, createdAt  string
		)
		err := rows.Scan(&tx.ID, &tx.CustomerID, &tx.Type, &amount, &method, &tx.Description,
			&ref, &inv, &date, &balance, &createdAt)
		if err != nil {
			return nil, err
		}

		tx.Amount = parseMoney(amount)
		tx.BalanceAfter = parseMoney(balance)
		if method.Valid {
			m := ledger.PaymentMethod(method.String)
			tx.Method = &m
		}
		if ref.Valid {
			v := ref.String
			tx.ReferenceNumber = &v
		}
		if inv.Valid {
			v := inv.String
			tx.InvoiceNumber = &v
		}
		tx.Date, _ = time.Parse(time.RFC3339Nano, date)
		tx.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*ledger.Customer, error) {
	var (
		c                    ledger.Customer
		gstin                sql.NullString
		opening              string
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &gstin, &opening, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if gstin.Valid {
		v := gstin.String
		c.GSTIN = &v
	}
	c.OpeningBalance = parseMoney(opening)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &c, nil
}

func parseMoney(s string) money.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.Zero()
	}
	return money.FromDecimal(d)
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
