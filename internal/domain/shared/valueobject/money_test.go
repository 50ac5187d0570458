package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), BOB)
		require.NoError(t, err)
		assert.Equal(t, BOB, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoney_Round(t *testing.T) {
	m := NewMoneyBOB(decimal.RequireFromString("10.005"))
	assert.Equal(t, "10.01", m.Round().StringFixed())
	assert.Equal(t, "10.005", m.Amount().String(), "round returns a copy")
	assert.Equal(t, "-10.01", NewMoneyBOB(decimal.RequireFromString("-10.005")).Round().StringFixed())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyBOB(decimal.NewFromInt(30))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"30.00","currency":"BOB"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.5"}`), &back))
	assert.Equal(t, BOB, back.Currency())
	assert.Equal(t, "12.50", back.StringFixed())

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"1","currency":"USD"}`), &back))
	assert.Equal(t, USD, back.Currency())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"x"}`), &back))
}
