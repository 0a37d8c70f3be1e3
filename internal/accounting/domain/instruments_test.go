package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Venue-realistic instrument fixtures shared by the account tests.

func fxInstrument(id string, base, quote Currency, pricePrecision int32) Instrument {
	return Instrument{
		ID:             id,
		BaseCurrency:   base,
		QuoteCurrency:  quote,
		PricePrecision: pricePrecision,
		SizePrecision:  0,
		Multiplier:     decimal.NewFromInt(1),
		MarginInit:     decimal.NewFromFloat(0.03),
		MarginMaint:    decimal.NewFromFloat(0.03),
		MakerFee:       decimal.NewFromFloat(0.00002),
		TakerFee:       decimal.NewFromFloat(0.00002),
	}
}

func audUSD() Instrument {
	return fxInstrument("AUD/USD.SIM", AUD, USD, 5)
}

func usdJPY() Instrument {
	return fxInstrument("USD/JPY.IDEALPRO", USD, JPY, 3)
}

func btcUSDT() Instrument {
	return Instrument{
		ID:             "BTCUSDT.BINANCE",
		BaseCurrency:   BTC,
		QuoteCurrency:  USDT,
		PricePrecision: 2,
		SizePrecision:  6,
		Multiplier:     decimal.NewFromInt(1),
		MarginInit:     decimal.NewFromFloat(0.1),
		MarginMaint:    decimal.NewFromFloat(0.05),
		MakerFee:       decimal.NewFromFloat(0.001),
		TakerFee:       decimal.NewFromFloat(0.001),
	}
}

func adaBTC() Instrument {
	return Instrument{
		ID:             "ADABTC.BINANCE",
		BaseCurrency:   ADA,
		QuoteCurrency:  BTC,
		PricePrecision: 8,
		SizePrecision:  0,
		Multiplier:     decimal.NewFromInt(1),
		MarginInit:     decimal.NewFromFloat(0.1),
		MarginMaint:    decimal.NewFromFloat(0.05),
		MakerFee:       decimal.NewFromFloat(0.001),
		TakerFee:       decimal.NewFromFloat(0.001),
	}
}

func xbtUSD() Instrument {
	return Instrument{
		ID:             "XBT/USD.BITMEX",
		BaseCurrency:   BTC,
		QuoteCurrency:  USD,
		PricePrecision: 1,
		SizePrecision:  0,
		Multiplier:     decimal.NewFromInt(1),
		IsInverse:      true,
		MarginInit:     decimal.NewFromFloat(0.01),
		MarginMaint:    decimal.NewFromFloat(0.0035),
		MakerFee:       decimal.NewFromFloat(-0.00025),
		TakerFee:       decimal.NewFromFloat(0.00075),
	}
}

func mustBalance(t *testing.T, currency Currency, total, free, locked string) AccountBalance {
	t.Helper()
	totalM, err := NewMoneyFromString(total, currency)
	require.NoError(t, err)
	freeM, err := NewMoneyFromString(free, currency)
	require.NoError(t, err)
	lockedM, err := NewMoneyFromString(locked, currency)
	require.NoError(t, err)
	balance, err := NewAccountBalance(totalM, freeM, lockedM)
	require.NoError(t, err)
	return balance
}

func mustState(
	t *testing.T,
	accountID string,
	accountType AccountType,
	base Currency,
	balances ...AccountBalance,
) AccountState {
	t.Helper()
	state, err := NewAccountState(
		accountID,
		accountType,
		base,
		balances,
		true,
		"evt-"+accountID,
		time.Unix(0, 0),
		time.Unix(0, 0),
	)
	require.NoError(t, err)
	return state
}
