package pos

import (
	"regexp"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// plain decimal notation only: no exponent, at most two fractional digits
var amountPattern = regexp.MustCompile(`^-?\d{1,12}([.,]\d{1,2})?$`)

// ParseAmount converts cashier input into a decimal amount.
// A comma is accepted as decimal separator.
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, shared.NewValidationError("Amount is required")
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, shared.NewValidationError("Amount must be a number with at most 2 decimals: " + truncate(input, 32))
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, shared.NewValidationError("Amount must be a number: " + truncate(input, 32))
	}
	return d, nil
}

var maxAmount = decimal.New(1, 12)

// toCents bounds a money amount and rounds it to cents. The exponent is
// checked first so oversized values are rejected before any rescaling.
func toCents(d decimal.Decimal) (decimal.Decimal, error) {
	if exp := d.Exponent(); exp > 12 || exp < -12 || d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, shared.NewValidationError("Amount is out of range")
	}
	return round2(d), nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
