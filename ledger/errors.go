/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All failure modes a mutation can report, in one place. Read paths
  (CurrentBalance, TransactionsFor, BuildStatement) never use these:
  they degrade to zero/empty for missing customers.

ERROR CATEGORIES:
  1. Validation errors - malformed or missing input, caller-fixable
  2. Referential integrity errors - transaction points at a customer
     that does not exist (single insert or bulk import)
  3. Not-found errors - mutation targets a nonexistent id

PROPAGATION POLICY:
  All validation happens before any store write. A failed mutation has
  zero side effects; there is nothing to roll back.

USAGE:
  if ledger.IsValidation(err) { ... 400 ... }
  var nf *ledger.NotFoundError
  if errors.As(err, &nf) { ... 404 with nf.ID ... }

SEE ALSO:
  - book.go: the only producer of these errors
  - api/handlers.go: maps them to HTTP statuses
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrReferentialIntegrity is returned when a transaction references
	// a customer that does not exist, or a bulk import payload fails the
	// cross-reference check.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrNotFound is returned when a mutation targets a nonexistent id.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a single invalid or missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ReferentialIntegrityError reports a dangling customer reference.
// TransactionID is set when the offender came from a bulk import payload.
type ReferentialIntegrityError struct {
	CustomerID    CustomerID
	TransactionID TransactionID
}

func (e *ReferentialIntegrityError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("transaction %s references unknown customer %s", e.TransactionID, e.CustomerID)
	}
	return fmt.Sprintf("unknown customer %s", e.CustomerID)
}

func (e *ReferentialIntegrityError) Unwrap() error { return ErrReferentialIntegrity }

// NotFoundError reports a mutation against a missing record.
type NotFoundError struct {
	Kind string // "customer"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err is caller-fixable bad input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsReferentialIntegrity reports a dangling customer reference.
func IsReferentialIntegrity(err error) bool { return errors.Is(err, ErrReferentialIntegrity) }

// IsNotFound reports a mutation against a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
