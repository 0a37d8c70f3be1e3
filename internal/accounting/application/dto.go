package application

import (
	"fmt"
	"time"

	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
)

// BalanceInput is one currency row of an inbound venue snapshot.
type BalanceInput struct {
	Currency string `json:"currency" binding:"required"`
	Total    string `json:"total" binding:"required"`
	Free     string `json:"free" binding:"required"`
	Locked   string `json:"locked" binding:"required"`
}

// AccountStateInput is the wire form of a venue AccountState, shared by the
// kafka consumer and the HTTP replay endpoint.
type AccountStateInput struct {
	AccountID    string         `json:"account_id" binding:"required"`
	AccountType  string         `json:"account_type" binding:"required"`
	BaseCurrency string         `json:"base_currency"`
	Balances     []BalanceInput `json:"balances" binding:"required"`
	Reported     bool           `json:"reported"`
	EventID      string         `json:"event_id"`
	TsEvent      int64          `json:"ts_event"`
}

// ToDomain validates and converts the wire snapshot into the immutable
// domain event.
func (in *AccountStateInput) ToDomain() (domain.AccountState, error) {
	var base domain.Currency
	if in.BaseCurrency != "" {
		currency, err := domain.CurrencyFromCode(in.BaseCurrency)
		if err != nil {
			return domain.AccountState{}, err
		}
		base = currency
	}

	balances := make([]domain.AccountBalance, 0, len(in.Balances))
	for _, row := range in.Balances {
		currency, err := domain.CurrencyFromCode(row.Currency)
		if err != nil {
			return domain.AccountState{}, err
		}
		total, err := domain.NewMoneyFromString(row.Total, currency)
		if err != nil {
			return domain.AccountState{}, err
		}
		free, err := domain.NewMoneyFromString(row.Free, currency)
		if err != nil {
			return domain.AccountState{}, err
		}
		locked, err := domain.NewMoneyFromString(row.Locked, currency)
		if err != nil {
			return domain.AccountState{}, err
		}
		balance, err := domain.NewAccountBalance(total, free, locked)
		if err != nil {
			return domain.AccountState{}, fmt.Errorf("balance row %s: %w", row.Currency, err)
		}
		balances = append(balances, balance)
	}

	return domain.NewAccountState(
		in.AccountID,
		domain.AccountType(in.AccountType),
		base,
		balances,
		in.Reported,
		in.EventID,
		time.Unix(0, in.TsEvent),
		time.Now(),
	)
}

// BalanceDTO is one currency row returned to the interface layer. Decimal
// amounts travel as strings to keep venue precision intact.
type BalanceDTO struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
	Free     string `json:"free"`
	Locked   string `json:"locked"`
}

// AccountDTO is the account detail view.
type AccountDTO struct {
	AccountID    string       `json:"account_id"`
	AccountType  string       `json:"account_type"`
	BaseCurrency string       `json:"base_currency"`
	EventCount   int          `json:"event_count"`
	Balances     []BalanceDTO `json:"balances"`
}

// MoneyDTO carries a single calculated amount.
type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyDTO(m domain.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   m.Amount().StringFixedBank(m.Currency().Precision),
		Currency: m.Currency().Code,
	}
}

func toAccountDTO(account domain.Account) *AccountDTO {
	base := "MULTI"
	if !account.BaseCurrency().IsZero() {
		base = account.BaseCurrency().Code
	}

	totals := account.BalancesTotal()
	free := account.BalancesFree()
	locked := account.BalancesLocked()

	balances := make([]BalanceDTO, 0, len(totals))
	for currency, total := range totals {
		balances = append(balances, BalanceDTO{
			Currency: currency.Code,
			Total:    total.Amount().StringFixedBank(currency.Precision),
			Free:     free[currency].Amount().StringFixedBank(currency.Precision),
			Locked:   locked[currency].Amount().StringFixedBank(currency.Precision),
		})
	}

	return &AccountDTO{
		AccountID:    account.ID(),
		AccountType:  string(account.Type()),
		BaseCurrency: base,
		EventCount:   account.EventCount(),
		Balances:     balances,
	}
}

func snapshotToAccountDTO(snapshot *domain.AccountSnapshot) *AccountDTO {
	base := "MULTI"
	if !snapshot.BaseCurrency.IsZero() {
		base = snapshot.BaseCurrency.Code
	}

	balances := make([]BalanceDTO, 0, len(snapshot.Balances))
	for _, balance := range snapshot.Balances {
		precision := balance.Currency.Precision
		balances = append(balances, BalanceDTO{
			Currency: balance.Currency.Code,
			Total:    balance.Total.Amount().StringFixedBank(precision),
			Free:     balance.Free.Amount().StringFixedBank(precision),
			Locked:   balance.Locked.Amount().StringFixedBank(precision),
		})
	}

	return &AccountDTO{
		AccountID:    snapshot.AccountID,
		AccountType:  string(snapshot.AccountType),
		BaseCurrency: base,
		EventCount:   snapshot.EventCount,
		Balances:     balances,
	}
}
