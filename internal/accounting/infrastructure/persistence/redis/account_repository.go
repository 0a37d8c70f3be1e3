package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/accountingengine/internal/accounting/domain"
)

type accountRedisRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewAccountRedisRepository(client redis.UniversalClient) domain.AccountRepository {
	return &accountRedisRepository{
		client: client,
		prefix: "accounting:snapshot:",
		ttl:    24 * time.Hour,
	}
}

func (r *accountRedisRepository) Save(ctx context.Context, snapshot *domain.AccountSnapshot) error {
	if snapshot == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(snapshot.AccountID), data, r.ttl).Err()
}

func (r *accountRedisRepository) Get(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	data, err := r.client.Get(ctx, r.key(accountID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.AccountSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *accountRedisRepository) key(id string) string {
	return r.prefix + id
}
