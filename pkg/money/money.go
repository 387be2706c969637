// Package money implements exact decimal arithmetic for user-entered
// amounts. Amounts travel as strings end to end; binary floating point
// is never used for money.
package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ValidAmount reports whether s is a non-negative decimal string:
// an integer part, optionally followed by a dot and a non-empty
// fraction part. Signs, exponents and thousand separators are rejected.
func ValidAmount(s string) bool {
	return amountRe.MatchString(s)
}

// FracDigits returns the number of digits after the dot, 0 when there
// is no dot.
func FracDigits(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Clamp forces amount into [0, max]. Amounts already in range come back
// unchanged, so the operation is idempotent.
func Clamp(amount, max string) (string, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	m, err := decimal.NewFromString(max)
	if err != nil {
		return "", fmt.Errorf("invalid max %q: %w", max, err)
	}
	if a.IsNegative() {
		return "0", nil
	}
	if a.GreaterThan(m) {
		return m.String(), nil
	}
	return amount, nil
}

// Total renders amount + fee with exactly
// max(FracDigits(amount), FracDigits(fee)) fraction digits, so the sum
// never shows less precision than its most precise operand.
func Total(amount, fee string) (string, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return "", fmt.Errorf("invalid fee %q: %w", fee, err)
	}
	digits := FracDigits(amount)
	if d := FracDigits(fee); d > digits {
		digits = d
	}
	sum := a.Add(f)
	if digits == 0 {
		return sum.String(), nil
	}
	return sum.StringFixed(int32(digits)), nil
}

// Add returns the exact sum of two decimal strings with no fixed scale.
func Add(a, b string) (string, error) {
	x, err := decimal.NewFromString(a)
	if err != nil {
		return "", fmt.Errorf("invalid operand %q: %w", a, err)
	}
	y, err := decimal.NewFromString(b)
	if err != nil {
		return "", fmt.Errorf("invalid operand %q: %w", b, err)
	}
	return x.Add(y).String(), nil
}
