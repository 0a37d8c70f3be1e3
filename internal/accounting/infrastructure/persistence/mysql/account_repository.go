package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Save(ctx context.Context, snapshot *domain.AccountSnapshot) error {
	var po AccountSnapshotPO
	if err := po.FromDomain(snapshot); err != nil {
		return err
	}

	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_type", "base_currency", "balances", "event_count", "last_event_id", "updated_at",
		}),
	}).Create(&po).Error
}

func (r *accountRepository) Get(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	var po AccountSnapshotPO
	err := r.getDB(ctx).Where("account_id = ?", accountID).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return po.ToDomain()
}

func (r *accountRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
