package sale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps workflows in Redis so any console instance can serve a sale.
type RedisStore struct {
	client  *redis.Client
	locker  *redislock.Client
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time
}

// NewRedisStore constructs the store. lockTTL bounds both how long an update
// may hold the workflow and how long a request waits for it.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		locker:  redislock.New(client),
		ttl:     ttl,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func sessionKey(id string) string {
	return "sale:session:" + id
}

func sessionLockKey(id string) string {
	return "sale:session:" + id + ":lock"
}

func (s *RedisStore) Create(ctx context.Context, w *Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("sale: encode workflow: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(w.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("sale: save workflow: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Workflow, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sale: load workflow: %w", err)
	}
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("sale: decode workflow: %w", err)
	}
	return &w, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Workflow) error) (*Workflow, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	lock, err := s.locker.Obtain(lockCtx, sessionLockKey(id), s.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	cancel()
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("sale: obtain lock: %w", err)
	}
	defer func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}()

	w, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	w.UpdatedAt = s.now()
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("sale: encode workflow: %w", err)
	}
	ttl := s.ttl
	if w.Stage == StageCommitted {
		ttl = redis.KeepTTL
	}
	if err := s.client.Set(ctx, sessionKey(id), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("sale: save workflow: %w", err)
	}
	return w, nil
}

func (s *RedisStore) Expire(ctx context.Context, id string, after time.Duration) error {
	ok, err := s.client.PExpire(ctx, sessionKey(id), after).Result()
	if err != nil {
		return fmt.Errorf("sale: expire workflow: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("sale: delete workflow: %w", err)
	}
	return nil
}
