package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// MarginAccount adds per-instrument leverage and per-currency margin
// requirements on top of the event-sourced core. Leverage and the margin
// maps are caller-maintained state, independent of the balance history.
type MarginAccount struct {
	baseAccount
	leverages      map[string]decimal.Decimal
	initialMargins map[Currency]Money
	maintMargins   map[Currency]Money
}

func NewMarginAccount(event AccountState) (*MarginAccount, error) {
	core, err := newBaseAccount("MarginAccount", AccountTypeMargin, event)
	if err != nil {
		return nil, err
	}
	return &MarginAccount{
		baseAccount:    core,
		leverages:      make(map[string]decimal.Decimal),
		initialMargins: make(map[Currency]Money),
		maintMargins:   make(map[Currency]Money),
	}, nil
}

// SetLeverage overwrites the leverage configured for an instrument.
func (a *MarginAccount) SetLeverage(instrumentID string, leverage decimal.Decimal) error {
	if !leverage.IsPositive() {
		return fmt.Errorf("%w: got %s for %s", ErrInvalidLeverage, leverage, instrumentID)
	}
	a.leverages[instrumentID] = leverage
	return nil
}

// Leverage returns the configured leverage, defaulting to 1 (unleveraged).
func (a *MarginAccount) Leverage(instrumentID string) decimal.Decimal {
	leverage, ok := a.leverages[instrumentID]
	if !ok {
		return decimal.NewFromInt(1)
	}
	return leverage
}

func (a *MarginAccount) Leverages() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(a.leverages))
	for id, leverage := range a.leverages {
		out[id] = leverage
	}
	return out
}

// UpdateInitialMargin overwrites the stored initial margin for the money's
// currency. This is not an accumulator.
func (a *MarginAccount) UpdateInitialMargin(margin Money) {
	a.initialMargins[margin.Currency()] = margin
}

func (a *MarginAccount) InitialMargin(currency Currency) Money {
	margin, ok := a.initialMargins[currency]
	if !ok {
		return ZeroMoney(currency)
	}
	return margin
}

func (a *MarginAccount) InitialMargins() map[Currency]Money {
	out := make(map[Currency]Money, len(a.initialMargins))
	for currency, margin := range a.initialMargins {
		out[currency] = margin
	}
	return out
}

// UpdateMaintMargin overwrites the stored maintenance margin for the money's
// currency.
func (a *MarginAccount) UpdateMaintMargin(margin Money) {
	a.maintMargins[margin.Currency()] = margin
}

func (a *MarginAccount) MaintMargin(currency Currency) Money {
	margin, ok := a.maintMargins[currency]
	if !ok {
		return ZeroMoney(currency)
	}
	return margin
}

func (a *MarginAccount) MaintMargins() map[Currency]Money {
	out := make(map[Currency]Money, len(a.maintMargins))
	for currency, margin := range a.maintMargins {
		out[currency] = margin
	}
	return out
}

// CalculateInitialMargin returns the capital required to open the position:
// the leverage-adjusted notional scaled by the instrument initial margin
// rate, plus a two-sided taker fee buffer on the adjusted notional. With
// leverage 1 the margin is the full notional at the margin rate.
func (a *MarginAccount) CalculateInitialMargin(
	instrument Instrument,
	quantity, price decimal.Decimal,
	inverseAsQuote bool,
) Money {
	notional := instrument.Notional(quantity, price, inverseAsQuote)
	adjusted := notional.Amount().Div(a.Leverage(instrument.ID))

	margin := adjusted.Mul(instrument.MarginInit)
	margin = margin.Add(adjusted.Mul(instrument.TakerFee).Mul(two))
	return NewMoney(margin, notional.Currency())
}

// CalculateMaintMargin returns the minimum capital to keep the position open
// at the current mark price. Maintenance margin is leverage-agnostic; side
// feeds the rate lookup only and never flips the sign.
func (a *MarginAccount) CalculateMaintMargin(
	instrument Instrument,
	side PositionSide,
	quantity decimal.Decimal,
	last decimal.Decimal,
) Money {
	notional := instrument.Notional(quantity, last, false)

	margin := notional.Amount().Mul(instrument.MarginMaint)
	margin = margin.Add(notional.Amount().Mul(instrument.TakerFee))
	return NewMoney(margin, notional.Currency())
}
