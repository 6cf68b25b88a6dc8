/*
validate.go - Input validation for customers and transactions

PURPOSE:
  Everything a mutation checks before it is allowed to touch a store.
  All checks here are pure; they produce *ValidationError and nothing
  else. Phone numbers follow the Indian mobile format, tax ids follow
  the GSTIN format.

PHONE RULES:
  Indian mobiles are 10 digits starting 6-9, optionally prefixed with
  the 91 country code. ValidPhone accepts any punctuation/spacing and
  judges only the digits. FormatPhone canonicalizes to +91-XXXXX-XXXXX.

GSTIN:
  15 characters: 2-digit state code, 5 letters, 4 digits, 1 letter,
  1 entity code, literal 'Z', 1 check character.

SEE ALSO:
  - book.go: calls validateCustomerInput / validateTransactionInput
*/
package ledger

import (
	"regexp"
	"strings"
)

var (
	indianMobile = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	nonDigit     = regexp.MustCompile(`[^0-9]`)
)

// ValidPhone reports whether s contains a valid Indian mobile number,
// with or without the 91 country code.
func ValidPhone(s string) bool {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	return indianMobile.MatchString(digits)
}

// FormatPhone canonicalizes a valid Indian mobile to +91-XXXXX-XXXXX.
// Invalid input is returned unchanged.
func FormatPhone(s string) string {
	if !ValidPhone(s) {
		return s
	}
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) == 12 {
		digits = digits[2:]
	}
	return "+91-" + digits[:5] + "-" + digits[5:]
}

// ValidGSTIN reports whether s matches the GSTIN format.
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

func validateCustomerInput(in CustomerInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if !ValidPhone(in.Phone) {
		return &ValidationError{Field: "phone", Reason: "not a valid Indian mobile number"}
	}
	if in.GSTIN != nil && !ValidGSTIN(*in.GSTIN) {
		return &ValidationError{Field: "gstin", Reason: "not a valid GSTIN"}
	}
	return nil
}

func validateCustomerUpdate(upd CustomerUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if upd.Address != nil && strings.TrimSpace(*upd.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if upd.Phone != nil && !ValidPhone(*upd.Phone) {
		return &ValidationError{Field: "phone", Reason: "not a valid Indian mobile number"}
	}
	if upd.GSTIN != nil && *upd.GSTIN != "" && !ValidGSTIN(*upd.GSTIN) {
		return &ValidationError{Field: "gstin", Reason: "not a valid GSTIN"}
	}
	return nil
}

func validateTransactionInput(in TransactionInput) error {
	if in.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Reason: "must not be empty"}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be credit or debit"}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.Method != nil && !in.Method.Valid() {
		return &ValidationError{Field: "method", Reason: "unknown payment method"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	return nil
}
