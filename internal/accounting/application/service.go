// Package application holds the use case logic of the accounting engine.
package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
	"github.com/wyfcoding/pkg/logging"
)

// AccountingService owns the live account aggregates. Venue adapters push
// AccountState events in; portfolio and risk components read balances and
// request margin, commission and pnl figures. All mutation funnels through
// the service mutex so each account sees a serialized update stream.
type AccountingService struct {
	mu         sync.RWMutex
	accounts   map[string]domain.Account
	repo       domain.AccountRepository
	stateStore domain.AccountStateStore
}

func NewAccountingService(repo domain.AccountRepository, stateStore domain.AccountStateStore) *AccountingService {
	return &AccountingService{
		accounts:   make(map[string]domain.Account),
		repo:       repo,
		stateStore: stateStore,
	}
}

// ApplyAccountState ingests a venue balance snapshot: it creates the account
// on first sight, applies the event, appends it to the event store and
// refreshes the persisted snapshot.
func (s *AccountingService) ApplyAccountState(ctx context.Context, event domain.AccountState) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[event.AccountID]
	if !ok {
		created, err := s.newAccount(event)
		if err != nil {
			logging.Error(ctx, "Failed to create account from state event",
				"account_id", event.AccountID,
				"account_type", event.AccountType,
				"error", err,
			)
			return err
		}
		s.accounts[event.AccountID] = created
		account = created
		logging.Info(ctx, "Account created from first state event",
			"account_id", event.AccountID,
			"account_type", event.AccountType,
		)
	} else {
		if err := account.Apply(event); err != nil {
			logging.Error(ctx, "Failed to apply account state",
				"account_id", event.AccountID,
				"event_id", event.EventID,
				"error", err,
			)
			return err
		}
	}

	if err := s.stateStore.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append account state: %w", err)
	}
	if err := s.repo.Save(ctx, s.snapshot(account)); err != nil {
		return fmt.Errorf("failed to save account snapshot: %w", err)
	}

	logging.Info(ctx, "Account state applied",
		"account_id", event.AccountID,
		"event_id", event.EventID,
		"event_count", account.EventCount(),
	)
	return nil
}

func (s *AccountingService) newAccount(event domain.AccountState) (domain.Account, error) {
	switch event.AccountType {
	case domain.AccountTypeCash:
		return domain.NewCashAccount(event)
	case domain.AccountTypeMargin:
		return domain.NewMarginAccount(event)
	default:
		return nil, fmt.Errorf("%w: unsupported account type %s", domain.ErrInvalidEvent, event.AccountType)
	}
}

// snapshot projects the account's full derived balance map, not the last
// event's balance list, so partial venue updates never drop currencies from
// the read model.
func (s *AccountingService) snapshot(account domain.Account) *domain.AccountSnapshot {
	balanceMap := account.Balances()
	balances := make([]domain.AccountBalance, 0, len(balanceMap))
	for _, balance := range balanceMap {
		balances = append(balances, balance)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Currency.Code < balances[j].Currency.Code
	})

	return &domain.AccountSnapshot{
		AccountID:    account.ID(),
		AccountType:  account.Type(),
		BaseCurrency: account.BaseCurrency(),
		Balances:     balances,
		EventCount:   account.EventCount(),
		LastEventID:  account.LastEvent().EventID,
	}
}

// GetAccount returns the account detail view. Accounts absent from memory
// are rebuilt from the event store; if the history has been pruned the
// persisted snapshot still serves a read-only view.
func (s *AccountingService) GetAccount(ctx context.Context, accountID string) (*AccountDTO, error) {
	if err := s.ensureLoaded(ctx, accountID); err == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if account, ok := s.accounts[accountID]; ok {
			return toAccountDTO(account), nil
		}
	}

	snapshot, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	return snapshotToAccountDTO(snapshot), nil
}

// ensureLoaded lazily rebuilds an account from the event store when it is
// not in memory, so queries and calculations survive a process restart.
func (s *AccountingService) ensureLoaded(ctx context.Context, accountID string) error {
	s.mu.RLock()
	_, ok := s.accounts[accountID]
	s.mu.RUnlock()
	if ok {
		return nil
	}
	if err := s.Restore(ctx, accountID); err != nil {
		return fmt.Errorf("account not found: %s: %w", accountID, err)
	}
	return nil
}

// SetLeverage configures per-instrument leverage on a margin account.
func (s *AccountingService) SetLeverage(ctx context.Context, accountID, instrumentID string, leverage decimal.Decimal) error {
	if err := s.ensureLoaded(ctx, accountID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.marginAccount(accountID)
	if err != nil {
		return err
	}
	if err := account.SetLeverage(instrumentID, leverage); err != nil {
		logging.Warn(ctx, "Rejected leverage update",
			"account_id", accountID,
			"instrument_id", instrumentID,
			"leverage", leverage.String(),
			"error", err,
		)
		return err
	}

	logging.Info(ctx, "Leverage updated",
		"account_id", accountID,
		"instrument_id", instrumentID,
		"leverage", leverage.String(),
	)
	return nil
}

// CalculatePnLs returns the cash settlement legs for a fill.
func (s *AccountingService) CalculatePnLs(
	ctx context.Context,
	accountID string,
	instrument domain.Instrument,
	position domain.Position,
	fill domain.Fill,
) ([]MoneyDTO, error) {
	if err := s.ensureLoaded(ctx, accountID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	cash, ok := account.(*domain.CashAccount)
	if !ok {
		return nil, fmt.Errorf("account %s is not a cash account", accountID)
	}

	pnls, err := cash.CalculatePnLs(instrument, position, fill)
	if err != nil {
		return nil, err
	}

	out := make([]MoneyDTO, len(pnls))
	for i, pnl := range pnls {
		out[i] = toMoneyDTO(pnl)
	}
	return out, nil
}

// CalculateCommission computes the fee for a fill on any account variant.
func (s *AccountingService) CalculateCommission(
	ctx context.Context,
	accountID string,
	instrument domain.Instrument,
	lastQty, lastPx decimal.Decimal,
	liquiditySide domain.LiquiditySide,
	inverseAsQuote bool,
) (MoneyDTO, error) {
	if err := s.ensureLoaded(ctx, accountID); err != nil {
		return MoneyDTO{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return MoneyDTO{}, fmt.Errorf("account not found: %s", accountID)
	}

	commission, err := account.CalculateCommission(instrument, lastQty, lastPx, liquiditySide, inverseAsQuote)
	if err != nil {
		return MoneyDTO{}, err
	}
	return toMoneyDTO(commission), nil
}

// CalculateInitialMargin computes the capital required to open a position on
// a margin account and records it as the account's current requirement for
// the settlement currency.
func (s *AccountingService) CalculateInitialMargin(
	ctx context.Context,
	accountID string,
	instrument domain.Instrument,
	quantity, price decimal.Decimal,
	inverseAsQuote bool,
) (MoneyDTO, error) {
	if err := s.ensureLoaded(ctx, accountID); err != nil {
		return MoneyDTO{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.marginAccount(accountID)
	if err != nil {
		return MoneyDTO{}, err
	}

	margin := account.CalculateInitialMargin(instrument, quantity, price, inverseAsQuote)
	account.UpdateInitialMargin(margin)
	return toMoneyDTO(margin), nil
}

// CalculateMaintMargin computes the maintenance requirement at the current
// mark price and records it on the account.
func (s *AccountingService) CalculateMaintMargin(
	ctx context.Context,
	accountID string,
	instrument domain.Instrument,
	side domain.PositionSide,
	quantity, last decimal.Decimal,
) (MoneyDTO, error) {
	if err := s.ensureLoaded(ctx, accountID); err != nil {
		return MoneyDTO{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.marginAccount(accountID)
	if err != nil {
		return MoneyDTO{}, err
	}

	margin := account.CalculateMaintMargin(instrument, side, quantity, last)
	account.UpdateMaintMargin(margin)
	return toMoneyDTO(margin), nil
}

func (s *AccountingService) marginAccount(accountID string) (*domain.MarginAccount, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	margin, ok := account.(*domain.MarginAccount)
	if !ok {
		return nil, fmt.Errorf("account %s is not a margin account", accountID)
	}
	return margin, nil
}

// Restore rebuilds an account from its persisted event history, replaying in
// application order. Invoked on the first miss after a restart; a no-op when
// the account is already live.
func (s *AccountingService) Restore(ctx context.Context, accountID string) error {
	events, err := s.stateStore.Load(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account states: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no account states recorded for %s", accountID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; ok {
		return nil
	}

	account, err := s.newAccount(events[0])
	if err != nil {
		return err
	}
	for _, event := range events[1:] {
		if err := account.Apply(event); err != nil {
			return err
		}
	}
	s.accounts[accountID] = account

	logging.Info(ctx, "Account restored from event history",
		"account_id", accountID,
		"event_count", account.EventCount(),
	)
	return nil
}
