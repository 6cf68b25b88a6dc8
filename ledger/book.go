/*
book.go - Mutation coordinator

PURPOSE:
  The Book is the ONLY writer of the customer and transaction stores.
  Every mutation validates fully before touching storage, so a failed
  call has zero side effects. AddTransaction performs the read-fold-
  write that freezes BalanceAfter, so the whole call runs under one
  mutex: two inserts for the same customer must not interleave, or one
  of the frozen snapshots would be computed against a stale fold.

STATE MACHINE (per customer):
  Active -> Active   update
  Active -> Deleted  delete (terminal; cascades to all transactions)

WRITER MODEL:
  Single logical writer, single active session. The mutex exists so
  that an embedding program with concurrent request handlers still gets
  serialized mutations; readers go through the Engine against the
  store's own snapshot semantics.

SEE ALSO:
  - validate.go: the checks each mutation runs first
  - balance.go: the fold AddTransaction freezes against
*/
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khata/ledger-engine/money"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// CustomerInput is the payload for CreateCustomer.
type CustomerInput struct {
	Name           string
	Phone          string
	Address        string
	GSTIN          *string
	OpeningBalance money.Money
}

// CustomerUpdate is a partial update: nil fields are left untouched.
// Setting GSTIN to the empty string clears it.
type CustomerUpdate struct {
	Name           *string
	Phone          *string
	Address        *string
	GSTIN          *string
	OpeningBalance *money.Money
}

// TransactionInput is the payload for AddTransaction. BalanceAfter, ID
// and CreatedAt are assigned by the Book, never by the caller.
type TransactionInput struct {
	CustomerID      CustomerID
	Type            EntryType
	Amount          money.Money
	Method          *PaymentMethod
	Description     string
	ReferenceNumber *string
	InvoiceNumber   *string
	Date            time.Time
}

// =============================================================================
// BOOK - The single writer
// =============================================================================

// Book coordinates all mutations against a Store.
type Book struct {
	store  Store
	engine *Engine

	mu  sync.Mutex
	now func() time.Time
}

func NewBook(store Store) *Book {
	return &Book{
		store:  store,
		engine: NewEngine(store),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Engine returns the read-side engine bound to the same store.
func (b *Book) Engine() *Engine { return b.engine }

// Capabilities reports what this coordinator supports. Transactions are
// immutable once written: no edit, no void.
func (b *Book) Capabilities() Capabilities {
	return Capabilities{EditTransactions: false, VoidTransactions: false}
}

// =============================================================================
// CUSTOMER MUTATIONS
// =============================================================================

// CreateCustomer validates the input, assigns a fresh id and timestamps,
// and inserts. Phone is stored in canonical +91 form.
func (b *Book) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	c := Customer{
		ID:             CustomerID(uuid.NewString()),
		Name:           in.Name,
		Phone:          FormatPhone(in.Phone),
		Address:        in.Address,
		GSTIN:          cloneString(in.GSTIN),
		OpeningBalance: in.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := b.store.PutCustomer(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer merges the provided fields into an existing customer
// and bumps UpdatedAt. ID and CreatedAt are never touched. A missing id
// is a NotFoundError rather than a silent no-op: mutations fail loudly.
func (b *Book) UpdateCustomer(ctx context.Context, id CustomerID, upd CustomerUpdate) (*Customer, error) {
	if err := validateCustomerUpdate(upd); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "customer", ID: string(id)}
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Phone != nil {
		c.Phone = FormatPhone(*upd.Phone)
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.GSTIN != nil {
		if *upd.GSTIN == "" {
			c.GSTIN = nil
		} else {
			gstin := *upd.GSTIN
			c.GSTIN = &gstin
		}
	}
	if upd.OpeningBalance != nil {
		c.OpeningBalance = *upd.OpeningBalance
	}
	c.UpdatedAt = b.now()

	if err := b.store.PutCustomer(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer removes the customer and, atomically, every
// transaction referencing it. Terminal: there is no undelete.
func (b *Book) DeleteCustomer(ctx context.Context, id CustomerID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	found, err := b.store.DeleteCustomerCascade(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Kind: "customer", ID: string(id)}
	}
	return nil
}

// =============================================================================
// TRANSACTION MUTATIONS
// =============================================================================

// AddTransaction validates, computes the balance the customer will have
// after this transaction, freezes it on the record, and appends. The
// pre-insertion balance comes from the live fold, so the snapshot is
// correct exactly because nothing else can write between the fold and
// the append (both happen under the Book's mutex).
func (b *Book) AddTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	if err := validateTransactionInput(in); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	customer, err := b.store.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &ReferentialIntegrityError{CustomerID: in.CustomerID}
	}

	current, err := b.engine.CurrentBalance(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	var method *PaymentMethod
	if in.Method != nil {
		m := *in.Method
		method = &m
	}
	tx := Transaction{
		ID:              TransactionID(uuid.NewString()),
		CustomerID:      in.CustomerID,
		Type:            in.Type,
		Amount:          in.Amount,
		Method:          method,
		Description:     in.Description,
		ReferenceNumber: cloneString(in.ReferenceNumber),
		InvoiceNumber:   cloneString(in.InvoiceNumber),
		Date:            in.Date,
		BalanceAfter:    Apply(current, in.Type, in.Amount),
		CreatedAt:       b.now(),
	}
	if err := b.store.AppendTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// =============================================================================
// BULK IMPORT / EXPORT (backup boundary)
// =============================================================================

// Import replaces both collections with the given payload, all or
// nothing. Every transaction must resolve to a customer in the same
// payload and ids must be unique; otherwise the whole payload is
// rejected and the stores are untouched.
func (b *Book) Import(ctx context.Context, customers []Customer, transactions []Transaction) error {
	seen := make(map[CustomerID]bool, len(customers))
	for _, c := range customers {
		if c.ID == "" {
			return &ValidationError{Field: "customer.id", Reason: "must not be empty"}
		}
		if seen[c.ID] {
			return &ValidationError{Field: "customer.id", Reason: "duplicate id " + string(c.ID)}
		}
		seen[c.ID] = true
	}

	txSeen := make(map[TransactionID]bool, len(transactions))
	for _, tx := range transactions {
		if tx.ID == "" {
			return &ValidationError{Field: "transaction.id", Reason: "must not be empty"}
		}
		if txSeen[tx.ID] {
			return &ValidationError{Field: "transaction.id", Reason: "duplicate id " + string(tx.ID)}
		}
		txSeen[tx.ID] = true
		if !seen[tx.CustomerID] {
			return &ReferentialIntegrityError{CustomerID: tx.CustomerID, TransactionID: tx.ID}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Replace(ctx, customers, transactions)
}

// Export returns a consistent snapshot of both collections for backup.
func (b *Book) Export(ctx context.Context) ([]Customer, []Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.Snapshot(ctx)
}

// cloneString copies an optional string so stored records never share
// pointer targets with caller-owned input.
func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
