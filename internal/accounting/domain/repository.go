package domain

import "context"

// AccountSnapshot is the persisted projection of an account's latest derived
// balances, rebuilt from the last applied AccountState.
type AccountSnapshot struct {
	AccountID    string           `json:"account_id"`
	AccountType  AccountType      `json:"account_type"`
	BaseCurrency Currency         `json:"base_currency"`
	Balances     []AccountBalance `json:"balances"`
	EventCount   int              `json:"event_count"`
	LastEventID  string           `json:"last_event_id"`
}

// AccountRepository stores the latest snapshot per account.
type AccountRepository interface {
	Save(ctx context.Context, snapshot *AccountSnapshot) error
	Get(ctx context.Context, accountID string) (*AccountSnapshot, error)
}

// AccountStateStore appends and replays the authoritative event history.
type AccountStateStore interface {
	Append(ctx context.Context, event AccountState) error
	Load(ctx context.Context, accountID string) ([]AccountState, error)
}
