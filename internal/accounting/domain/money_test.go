package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyRoundsToBankersAtCurrencyPrecision(t *testing.T) {
	m := NewMoney(decimal.RequireFromString("24.015"), USD)
	assert.Equal(t, "24.02 USD", m.String())

	m = NewMoney(decimal.RequireFromString("24.025"), USD)
	assert.Equal(t, "24.02 USD", m.String())

	m = NewMoney(decimal.RequireFromString("0.100055683"), BTC)
	assert.Equal(t, "0.10005568 BTC", m.String())

	m = NewMoney(decimal.RequireFromString("5293.64"), JPY)
	assert.Equal(t, "5294 JPY", m.String())
}

func TestMoneyArithmeticSameCurrency(t *testing.T) {
	a := NewMoney(decimal.NewFromInt(100), USD)
	b := NewMoney(decimal.RequireFromString("0.50"), USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "100.50 USD", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "99.50 USD", diff.String())
}

func TestMoneyArithmeticAcrossCurrenciesFails(t *testing.T) {
	a := NewMoney(decimal.NewFromInt(100), USD)
	b := NewMoney(decimal.NewFromInt(1), BTC)

	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Sub(b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyNegationRepresentsDebit(t *testing.T) {
	credit := NewMoney(decimal.NewFromInt(800000), USD)
	debit := credit.Neg()

	assert.True(t, debit.IsNegative())
	assert.Equal(t, "-800000.00 USD", debit.String())
	assert.True(t, debit.Neg().Equal(credit))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	original := NewMoney(decimal.RequireFromString("0.00654993"), BTC)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(original), "decoded %s", decoded)
	assert.Equal(t, BTC, decoded.Currency())
}

func TestCurrencyRegistryLookup(t *testing.T) {
	currency, err := CurrencyFromCode("USDT")
	require.NoError(t, err)
	assert.Equal(t, USDT, currency)

	_, err = CurrencyFromCode("XYZ")
	require.Error(t, err)
}
