package persistence

import (
	"context"

	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
)

type compositeAccountRepository struct {
	mysql domain.AccountRepository
	redis domain.AccountRepository
}

// NewCompositeAccountRepository writes through to MySQL and treats Redis as
// a best-effort cache.
func NewCompositeAccountRepository(mysql, redis domain.AccountRepository) domain.AccountRepository {
	return &compositeAccountRepository{
		mysql: mysql,
		redis: redis,
	}
}

func (r *compositeAccountRepository) Save(ctx context.Context, snapshot *domain.AccountSnapshot) error {
	if err := r.mysql.Save(ctx, snapshot); err != nil {
		return err
	}
	_ = r.redis.Save(ctx, snapshot) // cache write failure must not fail the command
	return nil
}

func (r *compositeAccountRepository) Get(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	snapshot, err := r.redis.Get(ctx, accountID)
	if err == nil && snapshot != nil {
		return snapshot, nil
	}

	snapshot, err = r.mysql.Get(ctx, accountID)
	if err != nil || snapshot == nil {
		return snapshot, err
	}

	_ = r.redis.Save(ctx, snapshot)
	return snapshot, nil
}
