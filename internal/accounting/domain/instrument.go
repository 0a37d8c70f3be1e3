package domain

import (
	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type PositionSide string

const (
	PositionSideFlat  PositionSide = "FLAT"
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

type LiquiditySide string

const (
	LiquiditySideNone  LiquiditySide = "NONE"
	LiquiditySideMaker LiquiditySide = "MAKER"
	LiquiditySideTaker LiquiditySide = "TAKER"
)

// Instrument is the venue-provided contract specification consumed by the
// pnl, commission and margin calculators. BaseCurrency is zero for
// instruments without a currency base (index CFDs and the like).
type Instrument struct {
	ID             string          `json:"id"`
	BaseCurrency   Currency        `json:"base_currency"`
	QuoteCurrency  Currency        `json:"quote_currency"`
	PricePrecision int32           `json:"price_precision"`
	SizePrecision  int32           `json:"size_precision"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	IsInverse      bool            `json:"is_inverse"`
	MarginInit     decimal.Decimal `json:"margin_init"`
	MarginMaint    decimal.Decimal `json:"margin_maint"`
	MakerFee       decimal.Decimal `json:"maker_fee"`
	TakerFee       decimal.Decimal `json:"taker_fee"`
}

func (i Instrument) HasBaseCurrency() bool {
	return !i.BaseCurrency.IsZero()
}

// SettlementCurrency is where fills and margins settle: the base currency for
// inverse contracts, otherwise the quote currency.
func (i Instrument) SettlementCurrency(inverseAsQuote bool) Currency {
	if i.IsInverse && !inverseAsQuote {
		return i.BaseCurrency
	}
	return i.QuoteCurrency
}

// Notional returns the contract notional for a quantity at a price. Inverse
// contracts are quoted in the base asset, so their notional is
// quantity * multiplier / price unless the caller asks for the quote-currency
// view.
func (i Instrument) Notional(quantity, price decimal.Decimal, inverseAsQuote bool) Money {
	if i.IsInverse && !inverseAsQuote {
		notional := quantity.Mul(i.Multiplier).Div(price)
		return NewMoney(notional, i.BaseCurrency)
	}
	if i.IsInverse && inverseAsQuote {
		return NewMoney(quantity.Mul(i.Multiplier), i.QuoteCurrency)
	}
	return NewMoney(quantity.Mul(price).Mul(i.Multiplier), i.QuoteCurrency)
}
