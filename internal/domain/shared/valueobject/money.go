package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	BOB Currency = "BOB" // Bolivian Boliviano (default)
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = BOB

// CurrencyPlaces is the number of decimal places amounts are settled with
const CurrencyPlaces int32 = 2

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyBOB creates Money in the default currency
func NewMoneyBOB(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: BOB}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Round rounds half away from zero to the currency's settlement places
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(CurrencyPlaces), currency: m.currency}
}

// StringFixed returns the amount with the settlement places and no currency
func (m Money) StringFixed() string {
	return m.amount.StringFixed(CurrencyPlaces)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.StringFixed(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// An empty currency falls back to DefaultCurrency.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
