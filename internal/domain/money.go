package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// All money values are exact decimals. Binary floating point never enters
// the arithmetic, so repeated credit/debit cycles cannot drift.

var (
	// Leading dollar sign, cents mandatory, commas optional, a sign (if any)
	// precedes the dollar sign. e.g. "$10.00", "-$50.00", "$2,500.25"
	dollarPattern = regexp.MustCompile(`^[+-]?\$[0-9]{1,3}(?:,?[0-9]{3})*\.[0-9]{2}$`)

	// Fraction between 0 and 1, leading digit mandatory, at most two
	// fractional digits. e.g. "0.15", "1", "0.1"
	ratePattern = regexp.MustCompile(`^[01](\.[0-9]{1,2})?$`)

	// Plain numeric amount, dollar sign and commas tolerated.
	amountPattern = regexp.MustCompile(`^[+-]?\$?[0-9][0-9,]*(\.[0-9]+)?$`)

	cardIDPattern = regexp.MustCompile(`^[0-9]{10}$`)

	spaceRuns = regexp.MustCompile(` +`)
)

// NormalizeName trims surrounding whitespace and collapses internal runs
// of spaces to a single space.
func NormalizeName(s string) string {
	return spaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidCardID reports whether s is exactly ten decimal digits.
func ValidCardID(s string) bool {
	return cardIDPattern.MatchString(s)
}

// ParseDollar parses a strictly-formatted dollar string ("$1,100.00",
// "-$15.38"). The second return value is false when the string does not
// match the required format.
func ParseDollar(s string) (decimal.Decimal, bool) {
	if !dollarPattern.MatchString(s) {
		return decimal.Zero, false
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount parses a loosely-formatted monetary amount: the dollar sign,
// commas, and fractional digits are all optional ("50", "85.50",
// "-$1,100.00").
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if !amountPattern.MatchString(trimmed) {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: fmt.Sprintf("'%s' is not a valid monetary amount", s)}
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(trimmed)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: fmt.Sprintf("'%s' is not a valid monetary amount", s)}
	}
	return d, nil
}

// ParseRate parses a commission rate. The string must match ratePattern
// and the parsed value must fall in [0,1]. Both failure modes return a
// ValidationError naming the given field.
func ParseRate(field, s string) (decimal.Decimal, error) {
	if !ratePattern.MatchString(s) {
		return decimal.Zero, &ValidationError{
			Field:  field,
			Reason: "must be a percentage expressed as a zero-padded decimal to two decimal places (e.g. 0.17)",
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must be between 0 and 1 inclusive"}
	}
	return d, nil
}

// FormatDollar renders d with a dollar sign, comma thousands grouping, and
// exactly two fractional digits. The minus sign for negative values
// precedes the dollar sign: "-$15.38".
func FormatDollar(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	dot := strings.IndexByte(s, '.')
	whole, cents := s[:dot], s[dot:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(whole[i])
	}
	b.WriteString(cents)
	return b.String()
}
