package mysql

import (
	"encoding/json"

	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
	"gorm.io/gorm"
)

// AccountStatePO is one appended venue balance snapshot. The balances travel
// as a JSON payload so new currencies never need a schema change.
type AccountStatePO struct {
	gorm.Model
	AccountID string `gorm:"column:account_id;type:varchar(64);index;not null"`
	EventID   string `gorm:"column:event_id;type:varchar(64);uniqueIndex;not null"`
	EventType string `gorm:"column:event_type;type:varchar(32);not null"`
	Payload   string `gorm:"column:payload;type:json;not null"`
	TsEvent   int64  `gorm:"column:ts_event;not null"`
}

func (AccountStatePO) TableName() string {
	return "account_states"
}

// AccountSnapshotPO is the latest derived balance view per account.
type AccountSnapshotPO struct {
	gorm.Model
	AccountID    string `gorm:"column:account_id;type:varchar(64);uniqueIndex;not null"`
	AccountType  string `gorm:"column:account_type;type:varchar(20);not null"`
	BaseCurrency string `gorm:"column:base_currency;type:varchar(10)"`
	Balances     string `gorm:"column:balances;type:json;not null"`
	EventCount   int    `gorm:"column:event_count;not null"`
	LastEventID  string `gorm:"column:last_event_id;type:varchar(64);not null"`
}

func (AccountSnapshotPO) TableName() string {
	return "account_snapshots"
}

func (po *AccountSnapshotPO) ToDomain() (*domain.AccountSnapshot, error) {
	var balances []domain.AccountBalance
	if err := json.Unmarshal([]byte(po.Balances), &balances); err != nil {
		return nil, err
	}

	var base domain.Currency
	if po.BaseCurrency != "" {
		currency, err := domain.CurrencyFromCode(po.BaseCurrency)
		if err != nil {
			return nil, err
		}
		base = currency
	}

	return &domain.AccountSnapshot{
		AccountID:    po.AccountID,
		AccountType:  domain.AccountType(po.AccountType),
		BaseCurrency: base,
		Balances:     balances,
		EventCount:   po.EventCount,
		LastEventID:  po.LastEventID,
	}, nil
}

func (po *AccountSnapshotPO) FromDomain(snapshot *domain.AccountSnapshot) error {
	balances, err := json.Marshal(snapshot.Balances)
	if err != nil {
		return err
	}
	po.AccountID = snapshot.AccountID
	po.AccountType = string(snapshot.AccountType)
	po.BaseCurrency = snapshot.BaseCurrency.Code
	po.Balances = string(balances)
	po.EventCount = snapshot.EventCount
	po.LastEventID = snapshot.LastEventID
	return nil
}
