// Package money implements the price format stored with every list item.
//
// Prices are kept as text at rest: two decimals, a comma as the decimal
// separator and a trailing euro sign ("7,50€"). All parsing and formatting of
// that convention lives here.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// Currency is the suffix appended to every formatted amount.
	Currency = "€"

	// invalidText is how a poisoned amount renders.
	invalidText = "NaN"
)

// leadingNumber matches the numeric prefix a lenient float parse would accept.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// Money is a euro amount. The zero value is 0,00€.
//
// A Money may be invalid, which is what parsing a malformed price yields.
// Invalid amounts poison any sum or product they take part in.
type Money struct {
	amount  decimal.Decimal
	invalid bool
}

// Zero is 0,00€.
var Zero = Money{}

// Invalid returns a poisoned amount.
func Invalid() Money {
	return Money{invalid: true}
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -2)}
}

// Parse reads a price the way it is typed or stored: the first "," becomes
// ".", the first "€" is dropped and the longest leading number is used.
// Surrounding text after the number is ignored. Text with no leading number,
// or a number outside the float64 range, gives an invalid Money.
//
// The number is read as a float64 and then held as the shortest decimal that
// converts back to it, so "0,1" stays exactly 0.1.
func Parse(text string) Money {
	s := strings.Replace(text, ",", ".", 1)
	s = strings.Replace(s, Currency, "", 1)
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	lit := leadingNumber.FindString(s)
	if lit == "" {
		return Invalid()
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) {
		return Invalid()
	}
	return Money{amount: decimal.NewFromFloat(f)}
}

// Valid reports whether m holds a number.
func (m Money) Valid() bool {
	return !m.invalid
}

// Decimal returns the amount. It is zero for invalid amounts.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Mul multiplies by a quantity.
func (m Money) Mul(n int) Money {
	if m.invalid {
		return m
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// Add returns m + o. If either side is invalid the result is invalid.
func (m Money) Add(o Money) Money {
	if m.invalid || o.invalid {
		return Invalid()
	}
	return Money{amount: m.amount.Add(o.amount)}
}

// String formats the amount as stored, e.g. "7,50€". Invalid amounts render
// as "NaN€".
func (m Money) String() string {
	if m.invalid {
		return invalidText + Currency
	}
	return strings.Replace(m.amount.StringFixed(2), ".", ",", 1) + Currency
}

// Format is shorthand for m.String().
func Format(m Money) string {
	return m.String()
}

// Sum parses and adds prices. An empty list sums to 0,00€; a single
// malformed price makes the whole sum invalid.
func Sum(prices ...string) Money {
	total := Zero
	for _, p := range prices {
		total = total.Add(Parse(p))
	}
	return total
}

// Multiply is the form rule for a line total: the unit price times the
// quantity. A unit price that does not parse counts as 0,00€.
func Multiply(unitPrice string, quantity int) Money {
	p := Parse(unitPrice)
	if !p.Valid() {
		return Zero
	}
	return p.Mul(quantity)
}
