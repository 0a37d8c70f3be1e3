package domain

import (
	"fmt"
	"sync"
)

type CurrencyType string

const (
	CurrencyTypeFiat   CurrencyType = "FIAT"
	CurrencyTypeCrypto CurrencyType = "CRYPTO"
)

// Currency is a small comparable value type. Balance and margin maps are
// keyed by Currency directly so an unregistered code fails at construction
// rather than surfacing later as a missing string key.
type Currency struct {
	Code      string       `json:"code"`
	Precision int32        `json:"precision"`
	Type      CurrencyType `json:"type"`
}

func (c Currency) String() string {
	return c.Code
}

func (c Currency) IsZero() bool {
	return c.Code == ""
}

var (
	USD  = Currency{Code: "USD", Precision: 2, Type: CurrencyTypeFiat}
	AUD  = Currency{Code: "AUD", Precision: 2, Type: CurrencyTypeFiat}
	EUR  = Currency{Code: "EUR", Precision: 2, Type: CurrencyTypeFiat}
	GBP  = Currency{Code: "GBP", Precision: 2, Type: CurrencyTypeFiat}
	JPY  = Currency{Code: "JPY", Precision: 0, Type: CurrencyTypeFiat}
	BTC  = Currency{Code: "BTC", Precision: 8, Type: CurrencyTypeCrypto}
	ETH  = Currency{Code: "ETH", Precision: 8, Type: CurrencyTypeCrypto}
	ADA  = Currency{Code: "ADA", Precision: 6, Type: CurrencyTypeCrypto}
	USDT = Currency{Code: "USDT", Precision: 8, Type: CurrencyTypeCrypto}
)

var currencyRegistry = struct {
	sync.RWMutex
	byCode map[string]Currency
}{
	byCode: map[string]Currency{
		USD.Code:  USD,
		AUD.Code:  AUD,
		EUR.Code:  EUR,
		GBP.Code:  GBP,
		JPY.Code:  JPY,
		BTC.Code:  BTC,
		ETH.Code:  ETH,
		ADA.Code:  ADA,
		USDT.Code: USDT,
	},
}

// RegisterCurrency adds a venue-specific currency to the process-wide
// registry. Registering an existing code overwrites it.
func RegisterCurrency(currency Currency) {
	currencyRegistry.Lock()
	defer currencyRegistry.Unlock()
	currencyRegistry.byCode[currency.Code] = currency
}

func CurrencyFromCode(code string) (Currency, error) {
	currencyRegistry.RLock()
	defer currencyRegistry.RUnlock()
	currency, ok := currencyRegistry.byCode[code]
	if !ok {
		return Currency{}, fmt.Errorf("unknown currency code: %s", code)
	}
	return currency, nil
}
