package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/config"
	"github.com/avykov/multiauth/internal/logger"
)

const redisKeyPrefix = "multiauth:sess:"

// RedisStore is the redis-backed session [Manager]. Every session lives in
// one redis hash under redisKeyPrefix + id, expiring after the configured
// idle TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisStore connects to redis using the configured URL and verifies the
// connection with a ping before returning.
func NewRedisStore(cfg config.Session, log *logger.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("func", "NewRedisStore").Msg("connected to redis successfully")

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		logger: log,
	}, nil
}

// Session opens a handle onto the session identified by id. An empty id
// starts a fresh session; onIDChange is called immediately with the new
// identifier.
func (s *RedisStore) Session(id string, onIDChange func(newID string)) auth.SessionStore {
	if onIDChange == nil {
		onIDChange = func(string) {}
	}

	if id == "" {
		id = uuid.NewString()
		onIDChange(id)
	}

	return &redisSession{store: s, id: id, onIDChange: onIDChange}
}

// Close releases the underlying redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisSession is one caller's session handle; implements
// [auth.SessionStore].
type redisSession struct {
	store      *RedisStore
	id         string
	onIDChange func(newID string)
}

func (s *redisSession) key() string {
	return redisKeyPrefix + s.id
}

func (s *redisSession) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.store.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis session get failed: %w", err)
	}

	return []byte(value), true, nil
}

func (s *redisSession) Set(ctx context.Context, key string, value []byte) error {
	pipe := s.store.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, value)
	pipe.Expire(ctx, s.key(), s.store.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session set failed: %w", err)
	}

	return nil
}

func (s *redisSession) Delete(ctx context.Context, key string) error {
	if err := s.store.client.HDel(ctx, s.key(), key).Err(); err != nil {
		return fmt.Errorf("redis session delete failed: %w", err)
	}

	return nil
}

func (s *redisSession) Destroy(ctx context.Context) error {
	if err := s.store.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis session destroy failed: %w", err)
	}

	s.onIDChange("")
	return nil
}

func (s *redisSession) RegenerateID(ctx context.Context) error {
	newID := uuid.NewString()

	// RENAME preserves the hash contents and its TTL. A brand-new session
	// has no key yet; that rename failure is fine, the new id is simply
	// adopted empty.
	err := s.store.client.Rename(ctx, s.key(), redisKeyPrefix+newID).Err()
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("redis session regenerate failed: %w", err)
	}

	s.id = newID
	s.onIDChange(newID)
	return nil
}

func isNoSuchKey(err error) bool {
	return err != nil && err.Error() == "ERR no such key"
}
