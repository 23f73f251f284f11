package locks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLocker stores leases in Redis so multiple instances share one lock
// space. Lease values are JSON so the competing holder and expiry can be
// reported on conflict.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func redisKey(resource string, id uint) string {
	return "editlock:" + key(resource, id)
}

func (r *RedisLocker) Acquire(resource string, id, holderID uint) (Lease, error) {
	ctx := context.Background()
	k := redisKey(resource, id)

	lease := Lease{HolderID: holderID, ExpiresAt: time.Now().Add(LockTTL)}
	payload, err := json.Marshal(lease)
	if err != nil {
		return Lease{}, err
	}

	ok, err := r.client.SetNX(ctx, k, payload, LockTTL).Result()
	if err != nil {
		return Lease{}, err
	}
	if ok {
		return lease, nil
	}

	existing, err := r.lease(ctx, k)
	if err != nil {
		return Lease{}, err
	}
	if existing == nil {
		// Expired between SetNX and Get; retry once
		return r.Acquire(resource, id, holderID)
	}
	if existing.HolderID != holderID {
		return Lease{}, &ErrLocked{Lease: *existing}
	}

	// Idempotent renewal by the current holder
	if err := r.client.Set(ctx, k, payload, LockTTL).Err(); err != nil {
		return Lease{}, err
	}
	return lease, nil
}

func (r *RedisLocker) Release(resource string, id, holderID uint) error {
	ctx := context.Background()
	k := redisKey(resource, id)

	existing, err := r.lease(ctx, k)
	if err != nil {
		return err
	}
	if existing == nil || existing.HolderID != holderID {
		return nil
	}
	return r.client.Del(ctx, k).Err()
}

func (r *RedisLocker) Check(resource string, id, holderID uint) error {
	existing, err := r.lease(context.Background(), redisKey(resource, id))
	if err != nil {
		return err
	}
	if existing == nil || existing.HolderID == holderID {
		return nil
	}
	return &ErrLocked{Lease: *existing}
}

func (r *RedisLocker) lease(ctx context.Context, k string) (*Lease, error) {
	raw, err := r.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lease Lease
	if err := json.Unmarshal(raw, &lease); err != nil {
		return nil, err
	}
	return &lease, nil
}
