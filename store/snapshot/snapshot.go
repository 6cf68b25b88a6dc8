/*
Package snapshot persists a full (customers, transactions) pair as a
JSON document — the backup/restore boundary of the ledger core.

PURPOSE:
  The core does not choose its storage medium; it only requires
  load/save of the two collections around mutating operations. This
  package is the file-backed collaborator: the whole dataset is written
  as one JSON document, the same shape a user-facing backup file has.

ATOMICITY:
  Save writes to a temp file in the same directory and renames it over
  the target, so a crash mid-write never leaves a torn snapshot.

USAGE:
  p := snapshot.NewFile("./khata.json")
  customers, transactions, err := p.Load(ctx)   // nil, nil on first run
  ...
  err = p.Save(ctx, customers, transactions)

SEE ALSO:
  - ledger/book.go: Import/Export, which this package feeds
*/
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khata/ledger-engine/ledger"
	"github.com/khata/ledger-engine/money"
)

// Persister loads and saves the full dataset.
type Persister interface {
	Load(ctx context.Context) ([]ledger.Customer, []ledger.Transaction, error)
	Save(ctx context.Context, customers []ledger.Customer, transactions []ledger.Transaction) error
}

// =============================================================================
// DOCUMENT SHAPE
// =============================================================================

// Document is the on-disk backup format.
type Document struct {
	ExportedAt   time.Time     `json:"exported_at"`
	Customers    []Customer    `json:"customers"`
	Transactions []Transaction `json:"transactions"`
}

// Customer is the serialized form of ledger.Customer.
type Customer struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Phone          string      `json:"phone"`
	Address        string      `json:"address"`
	GSTIN          *string     `json:"gstin,omitempty"`
	OpeningBalance money.Money `json:"opening_balance"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Transaction is the serialized form of ledger.Transaction.
type Transaction struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id"`
	Type            string      `json:"type"`
	Amount          money.Money `json:"amount"`
	Method          *string     `json:"method,omitempty"`
	Description     string      `json:"description"`
	ReferenceNumber *string     `json:"reference_number,omitempty"`
	InvoiceNumber   *string     `json:"invoice_number,omitempty"`
	Date            time.Time   `json:"date"`
	BalanceAfter    money.Money `json:"balance_after"`
	CreatedAt       time.Time   `json:"created_at"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// FromLedger builds a Document from domain records.
func FromLedger(customers []ledger.Customer, transactions []ledger.Transaction) Document {
	doc := Document{
		ExportedAt:   time.Now().UTC(),
		Customers:    make([]Customer, 0, len(customers)),
		Transactions: make([]Transaction, 0, len(transactions)),
	}
	for _, c := range customers {
		doc.Customers = append(doc.Customers, Customer{
			ID:             string(c.ID),
			Name:           c.Name,
			Phone:          c.Phone,
			Address:        c.Address,
			GSTIN:          c.GSTIN,
			OpeningBalance: c.OpeningBalance,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		})
	}
	for _, tx := range transactions {
		var method *string
		if tx.Method != nil {
			m := string(*tx.Method)
			method = &m
		}
		doc.Transactions = append(doc.Transactions, Transaction{
			ID:              string(tx.ID),
			CustomerID:      string(tx.CustomerID),
			Type:            string(tx.Type),
			Amount:          tx.Amount,
			Method:          method,
			Description:     tx.Description,
			ReferenceNumber: tx.ReferenceNumber,
			InvoiceNumber:   tx.InvoiceNumber,
			Date:            tx.Date,
			BalanceAfter:    tx.BalanceAfter,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return doc
}

// ToLedger converts a Document back to domain records.
func (d Document) ToLedger() ([]ledger.Customer, []ledger.Transaction) {
	customers := make([]ledger.Customer, 0, len(d.Customers))
	for _, c := range d.Customers {
		customers = append(customers, ledger.Customer{
			ID:             ledger.CustomerID(c.ID),
			Name:           c.Name,
			Phone:          c.Phone,
			Address:        c.Address,
			GSTIN:          c.GSTIN,
			OpeningBalance: c.OpeningBalance,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		})
	}
	transactions := make([]ledger.Transaction, 0, len(d.Transactions))
	for _, tx := range d.Transactions {
		var method *ledger.PaymentMethod
		if tx.Method != nil {
			m := ledger.PaymentMethod(*tx.Method)
			method = &m
		}
		transactions = append(transactions, ledger.Transaction{
			ID:              ledger.TransactionID(tx.ID),
			CustomerID:      ledger.CustomerID(tx.CustomerID),
			Type:            ledger.EntryType(tx.Type),
			Amount:          tx.Amount,
			Method:          method,
			Description:     tx.Description,
			ReferenceNumber: tx.ReferenceNumber,
			InvoiceNumber:   tx.InvoiceNumber,
			Date:            tx.Date,
			BalanceAfter:    tx.BalanceAfter,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return customers, transactions
}

// =============================================================================
// FILE PERSISTER
// =============================================================================

// File persists the document to a local path.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the snapshot. A missing file is not an error: it returns
// empty collections (first run).
func (f *File) Load(_ context.Context) ([]ledger.Customer, []ledger.Transaction, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	customers, transactions := doc.ToLedger()
	return customers, transactions, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (f *File) Save(_ context.Context, customers []ledger.Customer, transactions []ledger.Transaction) error {
	data, err := json.MarshalIndent(FromLedger(customers, transactions), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".khata-snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}
