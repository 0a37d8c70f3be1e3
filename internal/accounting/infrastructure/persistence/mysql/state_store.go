package mysql

import (
	"context"
	"encoding/json"

	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type StateStore struct {
	db *gorm.DB
}

func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{db: db}
}

func (s *StateStore) Append(ctx context.Context, event domain.AccountState) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	po := &AccountStatePO{
		AccountID: event.AccountID,
		EventID:   event.EventID,
		EventType: event.EventType(),
		Payload:   string(payload),
		TsEvent:   event.TsEvent.UnixNano(),
	}
	return s.getDB(ctx).Create(po).Error
}

// Load replays the full history for an account in append order.
func (s *StateStore) Load(ctx context.Context, accountID string) ([]domain.AccountState, error) {
	var pos []AccountStatePO
	err := s.getDB(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	events := make([]domain.AccountState, 0, len(pos))
	for _, po := range pos {
		var event domain.AccountState
		if err := json.Unmarshal([]byte(po.Payload), &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *StateStore) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return s.db
}
