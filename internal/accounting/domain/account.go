package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLiquiditySideNone = errors.New("liquidity side must not be NONE")
	ErrInvalidLeverage   = errors.New("leverage must be positive")
)

// Account is the capability surface shared by the cash and margin variants.
// Mutation happens only through Apply; callers must serialize Apply and the
// margin setters per account (one execution-engine loop or a mutex upstream).
type Account interface {
	ID() string
	Type() AccountType
	BaseCurrency() Currency
	Apply(event AccountState) error
	Events() []AccountState
	LastEvent() AccountState
	EventCount() int
	BalanceTotal(currency Currency) (Money, error)
	BalanceFree(currency Currency) (Money, error)
	BalanceLocked(currency Currency) (Money, error)
	BalancesTotal() map[Currency]Money
	BalancesFree() map[Currency]Money
	BalancesLocked() map[Currency]Money
	Balances() map[Currency]AccountBalance
	CalculateCommission(instrument Instrument, lastQty, lastPx decimal.Decimal, liquiditySide LiquiditySide, inverseAsQuote bool) (Money, error)
}

// baseAccount is the event-sourced core embedded by both variants: an
// append-only AccountState history plus a balance map recomputed on apply.
type baseAccount struct {
	kind         string
	id           string
	accountType  AccountType
	baseCurrency Currency
	events       []AccountState
	balances     map[Currency]AccountBalance
}

func newBaseAccount(kind string, accountType AccountType, event AccountState) (baseAccount, error) {
	if event.AccountType != accountType {
		return baseAccount{}, fmt.Errorf("%w: expected %s account state, got %s",
			ErrInvalidEvent, accountType, event.AccountType)
	}
	a := baseAccount{
		kind:         kind,
		id:           event.AccountID,
		accountType:  accountType,
		baseCurrency: event.BaseCurrency,
		balances:     make(map[Currency]AccountBalance),
	}
	if err := a.Apply(event); err != nil {
		return baseAccount{}, err
	}
	return a, nil
}

func (a *baseAccount) ID() string {
	return a.id
}

func (a *baseAccount) Type() AccountType {
	return a.accountType
}

// BaseCurrency returns the account settlement currency, zero for
// multi-currency accounts.
func (a *baseAccount) BaseCurrency() Currency {
	return a.baseCurrency
}

// Apply appends the event and overwrites the derived balances. The event is
// an authoritative venue snapshot, never a delta.
func (a *baseAccount) Apply(event AccountState) error {
	if event.AccountID != a.id {
		return fmt.Errorf("%w: event account_id %s does not match account %s",
			ErrInvalidEvent, event.AccountID, a.id)
	}
	a.events = append(a.events, event)
	for _, balance := range event.Balances {
		a.balances[balance.Currency] = balance
	}
	return nil
}

func (a *baseAccount) Events() []AccountState {
	out := make([]AccountState, len(a.events))
	copy(out, a.events)
	return out
}

func (a *baseAccount) LastEvent() AccountState {
	return a.events[len(a.events)-1]
}

func (a *baseAccount) EventCount() int {
	return len(a.events)
}

// resolveCurrency maps the zero Currency to the account base currency.
// Querying a multi-currency account without an explicit currency fails.
func (a *baseAccount) resolveCurrency(currency Currency) (Currency, error) {
	if !currency.IsZero() {
		return currency, nil
	}
	if a.baseCurrency.IsZero() {
		return Currency{}, fmt.Errorf("%w: multi-currency account %s requires an explicit currency",
			ErrCurrencyNotFound, a.id)
	}
	return a.baseCurrency, nil
}

func (a *baseAccount) balance(currency Currency) (AccountBalance, error) {
	resolved, err := a.resolveCurrency(currency)
	if err != nil {
		return AccountBalance{}, err
	}
	balance, ok := a.balances[resolved]
	if !ok {
		return AccountBalance{}, fmt.Errorf("%w: account %s holds no %s balance",
			ErrCurrencyNotFound, a.id, resolved)
	}
	return balance, nil
}

func (a *baseAccount) BalanceTotal(currency Currency) (Money, error) {
	balance, err := a.balance(currency)
	if err != nil {
		return Money{}, err
	}
	return balance.Total, nil
}

func (a *baseAccount) BalanceFree(currency Currency) (Money, error) {
	balance, err := a.balance(currency)
	if err != nil {
		return Money{}, err
	}
	return balance.Free, nil
}

func (a *baseAccount) BalanceLocked(currency Currency) (Money, error) {
	balance, err := a.balance(currency)
	if err != nil {
		return Money{}, err
	}
	return balance.Locked, nil
}

func (a *baseAccount) BalancesTotal() map[Currency]Money {
	out := make(map[Currency]Money, len(a.balances))
	for currency, balance := range a.balances {
		out[currency] = balance.Total
	}
	return out
}

func (a *baseAccount) BalancesFree() map[Currency]Money {
	out := make(map[Currency]Money, len(a.balances))
	for currency, balance := range a.balances {
		out[currency] = balance.Free
	}
	return out
}

func (a *baseAccount) BalancesLocked() map[Currency]Money {
	out := make(map[Currency]Money, len(a.balances))
	for currency, balance := range a.balances {
		out[currency] = balance.Locked
	}
	return out
}

// Balances returns the full derived balance map, including currencies the
// most recent event did not carry.
func (a *baseAccount) Balances() map[Currency]AccountBalance {
	out := make(map[Currency]AccountBalance, len(a.balances))
	for currency, balance := range a.balances {
		out[currency] = balance
	}
	return out
}

// CalculateCommission computes the fee for a fill. A negative configured rate
// (maker rebate) yields a negative commission, which is a credit to the
// account.
func (a *baseAccount) CalculateCommission(
	instrument Instrument,
	lastQty, lastPx decimal.Decimal,
	liquiditySide LiquiditySide,
	inverseAsQuote bool,
) (Money, error) {
	var rate decimal.Decimal
	switch liquiditySide {
	case LiquiditySideMaker:
		rate = instrument.MakerFee
	case LiquiditySideTaker:
		rate = instrument.TakerFee
	case LiquiditySideNone:
		return Money{}, ErrLiquiditySideNone
	default:
		return Money{}, fmt.Errorf("unrecognized liquidity side: %s", liquiditySide)
	}

	notional := instrument.Notional(lastQty, lastPx, inverseAsQuote)
	return NewMoney(notional.Amount().Mul(rate), notional.Currency()), nil
}

// SameIdentity reports account equality, which is by id only.
func (a *baseAccount) SameIdentity(other Account) bool {
	return other != nil && a.id == other.ID()
}

func (a *baseAccount) String() string {
	base := "MULTI"
	if !a.baseCurrency.IsZero() {
		base = a.baseCurrency.Code
	}
	return fmt.Sprintf("%s(id=%s, type=%s, base=%s)", a.kind, a.id, a.accountType, base)
}
