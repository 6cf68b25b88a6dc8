/*
Package money provides the fixed-precision amount type used everywhere
balances and transaction amounts appear.

PURPOSE:
  Wraps decimal.Decimal with a 2-decimal-place contract so repeated
  additions and subtractions over a long transaction history never drift
  the way binary floats do. Also owns the display contract: Indian
  grouping (lakh/crore) with the rupee symbol.

KEY CONTRACTS:
  - Every constructor rounds to 2 places. There is no way to hold a
    Money with sub-paisa precision.
  - Parse is TOTAL: it strips non-numeric characters and returns zero
    on garbage. User input never produces an error from this package.
  - No other operation can fail given valid operands.

USAGE:
  m := money.FromFloat(1500.50)
  m = m.Add(money.Parse("₹2,000"))
  fmt.Println(m.Display())      // ₹3,500.50
  fmt.Println(m.String())       // 3500.50

SEE ALSO:
  - ledger/types.go: Customer.OpeningBalance, Transaction.Amount
  - ledger/balance.go: the fold that exercises Add/Sub
*/
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Signed amount with 2 decimal places
// =============================================================================

// Money is a signed currency amount, always held at 2 decimal places.
// Positive means the customer owes the business (outstanding), negative
// means the business owes the customer (advance).
type Money struct {
	d decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{d: decimal.Zero}
}

// FromDecimal builds a Money from a decimal, rounding to 2 places.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

// FromFloat builds a Money from a float64, rounding to 2 places.
func FromFloat(f float64) Money {
	return FromDecimal(decimal.NewFromFloat(f))
}

// FromInt builds a Money from whole currency units.
func FromInt(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Parse converts user input to Money. It strips currency symbols,
// grouping separators and other noise, and returns zero when nothing
// parseable remains. Parse never fails.
func Parse(s string) Money {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return Zero()
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero()
	}
	return FromDecimal(d)
}

// =============================================================================
// ARITHMETIC AND COMPARISON
// =============================================================================

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// Cmp returns -1, 0 or 1 when m is less than, equal to, or greater than o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool       { return m.d.IsZero() }
func (m Money) IsPositive() bool   { return m.d.IsPositive() }
func (m Money) IsNegative() bool   { return m.d.IsNegative() }

// Decimal exposes the underlying decimal for storage layers.
func (m Money) Decimal() decimal.Decimal { return m.d }

// =============================================================================
// FORMATTING
// =============================================================================

// String returns the plain fixed-point form, e.g. "-1500.00".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// Display returns the amount with the rupee symbol and Indian grouping,
// e.g. "₹1,50,000.00". The sign precedes the symbol: "-₹500.00".
func (m Money) Display() string {
	if m.IsNegative() {
		return "-₹" + groupIndian(m.Abs().String())
	}
	return "₹" + groupIndian(m.String())
}

// DisplayPlain returns the grouped form without the symbol,
// e.g. "1,50,000.00". Used for tabular output.
func (m Money) DisplayPlain() string {
	if m.IsNegative() {
		return "-" + groupIndian(m.Abs().String())
	}
	return groupIndian(m.String())
}

// groupIndian inserts en-IN digit grouping into a non-negative "123456.78"
// string: last three integer digits, then groups of two.
func groupIndian(fixed string) string {
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	if len(intPart) <= 3 {
		return intPart + "." + fracPart
	}

	head := intPart[:len(intPart)-3]
	tail := intPart[len(intPart)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)
	return strings.Join(groups, ",") + "." + fracPart
}

// =============================================================================
// JSON
// =============================================================================

// MarshalJSON encodes the amount as a plain decimal string: "1500.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number. Parsing
// follows the total Parse contract: malformed input decodes to zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*m = Parse(s)
	return nil
}
