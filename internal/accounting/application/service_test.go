package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
)

type memoryAccountRepository struct {
	snapshots map[string]*domain.AccountSnapshot
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{snapshots: make(map[string]*domain.AccountSnapshot)}
}

func (r *memoryAccountRepository) Save(ctx context.Context, snapshot *domain.AccountSnapshot) error {
	r.snapshots[snapshot.AccountID] = snapshot
	return nil
}

func (r *memoryAccountRepository) Get(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	return r.snapshots[accountID], nil
}

type memoryStateStore struct {
	events map[string][]domain.AccountState
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{events: make(map[string][]domain.AccountState)}
}

func (s *memoryStateStore) Append(ctx context.Context, event domain.AccountState) error {
	s.events[event.AccountID] = append(s.events[event.AccountID], event)
	return nil
}

func (s *memoryStateStore) Load(ctx context.Context, accountID string) ([]domain.AccountState, error) {
	return s.events[accountID], nil
}

func usdCashState(t *testing.T, accountID, total, free, locked string) domain.AccountState {
	t.Helper()
	totalM, err := domain.NewMoneyFromString(total, domain.USD)
	require.NoError(t, err)
	freeM, err := domain.NewMoneyFromString(free, domain.USD)
	require.NoError(t, err)
	lockedM, err := domain.NewMoneyFromString(locked, domain.USD)
	require.NoError(t, err)
	balance, err := domain.NewAccountBalance(totalM, freeM, lockedM)
	require.NoError(t, err)

	state, err := domain.NewAccountState(
		accountID,
		domain.AccountTypeCash,
		domain.USD,
		[]domain.AccountBalance{balance},
		true,
		"",
		time.Now(),
		time.Now(),
	)
	require.NoError(t, err)
	return state
}

func usdMarginState(t *testing.T, accountID string) domain.AccountState {
	t.Helper()
	state := usdCashState(t, accountID, "1000000.00", "1000000.00", "0.00")
	state.AccountType = domain.AccountTypeMargin
	return state
}

func balanceRow(t *testing.T, currency domain.Currency, total, free, locked string) domain.AccountBalance {
	t.Helper()
	totalM, err := domain.NewMoneyFromString(total, currency)
	require.NoError(t, err)
	freeM, err := domain.NewMoneyFromString(free, currency)
	require.NoError(t, err)
	lockedM, err := domain.NewMoneyFromString(locked, currency)
	require.NoError(t, err)
	balance, err := domain.NewAccountBalance(totalM, freeM, lockedM)
	require.NoError(t, err)
	return balance
}

func cryptoCashState(t *testing.T, accountID string, balances ...domain.AccountBalance) domain.AccountState {
	t.Helper()
	state, err := domain.NewAccountState(
		accountID,
		domain.AccountTypeCash,
		domain.Currency{},
		balances,
		true,
		"",
		time.Now(),
		time.Now(),
	)
	require.NoError(t, err)
	return state
}

func TestApplyAccountStateCreatesAndUpdates(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	svc := NewAccountingService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.ApplyAccountState(ctx, usdCashState(t, "SIM-001", "1000.00", "1000.00", "0.00")))
	require.NoError(t, svc.ApplyAccountState(ctx, usdCashState(t, "SIM-001", "1000.00", "750.00", "250.00")))

	dto, err := svc.GetAccount(ctx, "SIM-001")
	require.NoError(t, err)
	assert.Equal(t, 2, dto.EventCount)
	require.Len(t, dto.Balances, 1)
	assert.Equal(t, "USD", dto.Balances[0].Currency)
	assert.Equal(t, "750.00", dto.Balances[0].Free)
	assert.Equal(t, "250.00", dto.Balances[0].Locked)

	assert.Len(t, store.events["SIM-001"], 2)
	require.NotNil(t, repo.snapshots["SIM-001"])
	assert.Equal(t, 2, repo.snapshots["SIM-001"].EventCount)
}

func TestApplyAccountStateAssignsEventID(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	svc := NewAccountingService(repo, store)

	state := usdCashState(t, "SIM-002", "100.00", "100.00", "0.00")
	require.Empty(t, state.EventID)
	require.NoError(t, svc.ApplyAccountState(context.Background(), state))

	require.Len(t, store.events["SIM-002"], 1)
	assert.NotEmpty(t, store.events["SIM-002"][0].EventID)
}

// A venue update carrying only one currency must not evict the others from
// the persisted snapshot.
func TestSnapshotKeepsCurrenciesOmittedFromPartialUpdate(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	svc := NewAccountingService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.ApplyAccountState(ctx, cryptoCashState(t, "SIM-010",
		balanceRow(t, domain.BTC, "10.0", "10.0", "0.0"),
		balanceRow(t, domain.ETH, "20.0", "20.0", "0.0"),
	)))
	require.NoError(t, svc.ApplyAccountState(ctx, cryptoCashState(t, "SIM-010",
		balanceRow(t, domain.BTC, "9.0", "8.5", "0.5"),
	)))

	snapshot := repo.snapshots["SIM-010"]
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Balances, 2)
	assert.Equal(t, domain.BTC, snapshot.Balances[0].Currency)
	assert.Equal(t, "9.00000000 BTC", snapshot.Balances[0].Total.String())
	assert.Equal(t, domain.ETH, snapshot.Balances[1].Currency)
	assert.Equal(t, "20.00000000 ETH", snapshot.Balances[1].Total.String())

	dto, err := svc.GetAccount(ctx, "SIM-010")
	require.NoError(t, err)
	assert.Len(t, dto.Balances, 2)
}

func TestGetAccountRestoresAfterRestart(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	ctx := context.Background()

	first := NewAccountingService(repo, store)
	require.NoError(t, first.ApplyAccountState(ctx, usdCashState(t, "SIM-011", "500.00", "300.00", "200.00")))

	restarted := NewAccountingService(repo, store)
	dto, err := restarted.GetAccount(ctx, "SIM-011")
	require.NoError(t, err)
	assert.Equal(t, 1, dto.EventCount)
	assert.Equal(t, "300.00", dto.Balances[0].Free)

	_, err = restarted.GetAccount(ctx, "SIM-404")
	require.Error(t, err)
}

func TestCalculationsRestoreAfterRestart(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	ctx := context.Background()

	first := NewAccountingService(repo, store)
	require.NoError(t, first.ApplyAccountState(ctx, usdMarginState(t, "SIM-012")))

	restarted := NewAccountingService(repo, store)
	require.NoError(t, restarted.SetLeverage(ctx, "SIM-012", "AUD/USD.SIM", decimal.NewFromInt(10)))
}

// With the event history pruned, the persisted snapshot still answers
// account queries.
func TestGetAccountFallsBackToSnapshot(t *testing.T) {
	repo := newMemoryAccountRepository()
	svc := NewAccountingService(repo, newMemoryStateStore())

	repo.snapshots["SIM-013"] = &domain.AccountSnapshot{
		AccountID:    "SIM-013",
		AccountType:  domain.AccountTypeCash,
		BaseCurrency: domain.USD,
		Balances: []domain.AccountBalance{
			balanceRow(t, domain.USD, "100.00", "100.00", "0.00"),
		},
		EventCount:  3,
		LastEventID: "evt-3",
	}

	dto, err := svc.GetAccount(context.Background(), "SIM-013")
	require.NoError(t, err)
	assert.Equal(t, "USD", dto.BaseCurrency)
	assert.Equal(t, 3, dto.EventCount)
	require.Len(t, dto.Balances, 1)
	assert.Equal(t, "100.00", dto.Balances[0].Total)
}

func TestRestoreReplaysHistory(t *testing.T) {
	repo := newMemoryAccountRepository()
	store := newMemoryStateStore()
	ctx := context.Background()

	first := NewAccountingService(repo, store)
	require.NoError(t, first.ApplyAccountState(ctx, usdCashState(t, "SIM-003", "500.00", "500.00", "0.00")))
	require.NoError(t, first.ApplyAccountState(ctx, usdCashState(t, "SIM-003", "500.00", "300.00", "200.00")))

	restored := NewAccountingService(repo, store)
	require.NoError(t, restored.Restore(ctx, "SIM-003"))

	dto, err := restored.GetAccount(ctx, "SIM-003")
	require.NoError(t, err)
	assert.Equal(t, 2, dto.EventCount)
	assert.Equal(t, "300.00", dto.Balances[0].Free)
}

func TestRestoreUnknownAccountFails(t *testing.T) {
	svc := NewAccountingService(newMemoryAccountRepository(), newMemoryStateStore())
	require.Error(t, svc.Restore(context.Background(), "SIM-404"))
}

func TestSetLeverageRequiresMarginAccount(t *testing.T) {
	svc := NewAccountingService(newMemoryAccountRepository(), newMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, svc.ApplyAccountState(ctx, usdCashState(t, "SIM-004", "100.00", "100.00", "0.00")))
	err := svc.SetLeverage(ctx, "SIM-004", "AUD/USD.SIM", decimal.NewFromInt(10))
	require.Error(t, err)

	require.NoError(t, svc.ApplyAccountState(ctx, usdMarginState(t, "SIM-005")))
	require.NoError(t, svc.SetLeverage(ctx, "SIM-005", "AUD/USD.SIM", decimal.NewFromInt(10)))
}

func TestCalculateInitialMarginRecordsRequirement(t *testing.T) {
	svc := NewAccountingService(newMemoryAccountRepository(), newMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, svc.ApplyAccountState(ctx, usdMarginState(t, "SIM-006")))
	require.NoError(t, svc.SetLeverage(ctx, "SIM-006", "AUD/USD.SIM", decimal.NewFromInt(50)))

	instrument := domain.Instrument{
		ID:            "AUD/USD.SIM",
		BaseCurrency:  domain.AUD,
		QuoteCurrency: domain.USD,
		Multiplier:    decimal.NewFromInt(1),
		MarginInit:    decimal.RequireFromString("0.03"),
		MarginMaint:   decimal.RequireFromString("0.03"),
		MakerFee:      decimal.RequireFromString("0.00002"),
		TakerFee:      decimal.RequireFromString("0.00002"),
	}

	margin, err := svc.CalculateInitialMargin(
		ctx, "SIM-006", instrument,
		decimal.NewFromInt(100_000), decimal.RequireFromString("0.80000"), false,
	)
	require.NoError(t, err)
	assert.Equal(t, MoneyDTO{Amount: "48.06", Currency: "USD"}, margin)
}

func TestCalculateCommissionViaService(t *testing.T) {
	svc := NewAccountingService(newMemoryAccountRepository(), newMemoryStateStore())
	ctx := context.Background()

	require.NoError(t, svc.ApplyAccountState(ctx, usdCashState(t, "SIM-007", "100.00", "100.00", "0.00")))

	instrument := domain.Instrument{
		ID:            "XBT/USD.BITMEX",
		BaseCurrency:  domain.BTC,
		QuoteCurrency: domain.USD,
		Multiplier:    decimal.NewFromInt(1),
		IsInverse:     true,
		MakerFee:      decimal.RequireFromString("-0.00025"),
		TakerFee:      decimal.RequireFromString("0.00075"),
	}

	commission, err := svc.CalculateCommission(
		ctx, "SIM-007", instrument,
		decimal.NewFromInt(100_000), decimal.RequireFromString("11450.50"),
		domain.LiquiditySideTaker, false,
	)
	require.NoError(t, err)
	assert.Equal(t, MoneyDTO{Amount: "0.00654993", Currency: "BTC"}, commission)

	_, err = svc.CalculateCommission(
		ctx, "SIM-007", instrument,
		decimal.NewFromInt(100_000), decimal.RequireFromString("11450.50"),
		domain.LiquiditySideNone, false,
	)
	require.ErrorIs(t, err, domain.ErrLiquiditySideNone)
}
