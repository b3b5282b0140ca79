package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/autoparts-storefront/pkg/redis"
)

// RedisPersister keeps each session's cart under its own namespaced key.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister binds the persister to client. A zero ttl keeps carts until overwritten.
func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

// NewMemoryPersister keeps carts in process memory for local runs and tests.
func NewMemoryPersister() *RedisPersister {
	return NewRedisPersister(redis.NewInMemory(), 0)
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := p.client.LoadCart(ctx, sessionID)
	if redis.IsMiss(err) {
		return nil, ErrSnapshotNotFound
	}
	return raw, err
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, payload []byte) error {
	return p.client.SaveCart(ctx, sessionID, payload, p.ttl)
}
