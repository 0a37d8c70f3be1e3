package domain

import "fmt"

// CashAccount settles every fill fully in cash: a buy exchanges quote
// currency for base currency at the fill price, a sell the reverse.
type CashAccount struct {
	baseAccount
}

func NewCashAccount(event AccountState) (*CashAccount, error) {
	core, err := newBaseAccount("CashAccount", AccountTypeCash, event)
	if err != nil {
		return nil, err
	}
	return &CashAccount{baseAccount: core}, nil
}

// CalculatePnLs returns one Money per currency leg moved by the fill, base
// leg first. Buying credits the base holding and debits the quote holding by
// qty * px; selling is the inverse. The position snapshot is part of the
// settlement contract but spot legs derive from the fill alone.
func (a *CashAccount) CalculatePnLs(instrument Instrument, position Position, fill Fill) ([]Money, error) {
	fillQty := fill.LastQty
	fillPx := fill.LastPx
	quoteQty := fillQty.Mul(fillPx).Mul(instrument.Multiplier)

	switch fill.Side {
	case OrderSideBuy:
		quoteQty = quoteQty.Neg()
	case OrderSideSell:
		fillQty = fillQty.Neg()
	default:
		return nil, fmt.Errorf("unrecognized order side: %q", fill.Side)
	}

	quoteLeg := NewMoney(quoteQty, instrument.QuoteCurrency)
	if !instrument.HasBaseCurrency() {
		return []Money{quoteLeg}, nil
	}

	baseLeg := NewMoney(fillQty, instrument.BaseCurrency)
	if instrument.BaseCurrency == instrument.QuoteCurrency {
		net, err := baseLeg.Add(quoteLeg)
		if err != nil {
			return nil, err
		}
		return []Money{net}, nil
	}
	return []Money{baseLeg, quoteLeg}, nil
}
