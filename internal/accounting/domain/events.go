package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidEvent  = errors.New("invalid account event")
	ErrEmptyBalances = errors.New("account state has no balances")
	ErrBalanceBroken = errors.New("balance integrity broken")
)

type AccountType string

const (
	AccountTypeCash   AccountType = "CASH"
	AccountTypeMargin AccountType = "MARGIN"
)

// AccountEvent is the domain event contract shared by everything the
// accounting engine appends to an account history.
type AccountEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// AccountBalance is one currency row of a venue balance snapshot.
// Total == Free + Locked must hold within a single snapshot.
type AccountBalance struct {
	Currency Currency `json:"currency"`
	Total    Money    `json:"total"`
	Free     Money    `json:"free"`
	Locked   Money    `json:"locked"`
}

func NewAccountBalance(total, free, locked Money) (AccountBalance, error) {
	if total.Currency() != free.Currency() || total.Currency() != locked.Currency() {
		return AccountBalance{}, fmt.Errorf("%w: balance rows must share one currency", ErrCurrencyMismatch)
	}
	sum, _ := free.Add(locked)
	if !total.Equal(sum) {
		return AccountBalance{}, fmt.Errorf("%w: total %s != free %s + locked %s",
			ErrBalanceBroken, total, free, locked)
	}
	return AccountBalance{
		Currency: total.Currency(),
		Total:    total,
		Free:     free,
		Locked:   locked,
	}, nil
}

// AccountState is the immutable venue-reported account snapshot. It is the
// only event that mutates account balances; each application overwrites the
// derived balance per carried currency, and currencies the event omits keep
// their last reported balance.
type AccountState struct {
	AccountID    string           `json:"account_id"`
	AccountType  AccountType      `json:"account_type"`
	BaseCurrency Currency         `json:"base_currency"` // zero for multi-currency accounts
	Balances     []AccountBalance `json:"balances"`
	Reported     bool             `json:"reported"`
	EventID      string           `json:"event_id"`
	TsEvent      time.Time        `json:"ts_event"`
	TsInit       time.Time        `json:"ts_init"`
}

func NewAccountState(
	accountID string,
	accountType AccountType,
	baseCurrency Currency,
	balances []AccountBalance,
	reported bool,
	eventID string,
	tsEvent time.Time,
	tsInit time.Time,
) (AccountState, error) {
	if accountID == "" {
		return AccountState{}, fmt.Errorf("%w: account_id is required", ErrInvalidEvent)
	}
	if len(balances) == 0 {
		return AccountState{}, ErrEmptyBalances
	}
	seen := make(map[Currency]struct{}, len(balances))
	for _, b := range balances {
		if _, dup := seen[b.Currency]; dup {
			return AccountState{}, fmt.Errorf("%w: duplicate balance currency %s", ErrInvalidEvent, b.Currency)
		}
		seen[b.Currency] = struct{}{}
	}
	return AccountState{
		AccountID:    accountID,
		AccountType:  accountType,
		BaseCurrency: baseCurrency,
		Balances:     balances,
		Reported:     reported,
		EventID:      eventID,
		TsEvent:      tsEvent,
		TsInit:       tsInit,
	}, nil
}

func (e AccountState) EventType() string { return "AccountState" }

func (e AccountState) OccurredAt() time.Time { return e.TsEvent }
