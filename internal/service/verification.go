package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/salon-booking/internal/utils"
)

// ErrVerificationToken is returned for unknown, expired or reused tokens.
var ErrVerificationToken = errors.New("invalid or expired verification token")

// VerificationStore keeps single-use email verification tokens.
type VerificationStore interface {
	Put(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	Take(ctx context.Context, token string) (uint64, error)
}

// RedisVerificationStore stores token hashes in Redis with a TTL.
type RedisVerificationStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisVerificationStore(rdb *redis.Client) *RedisVerificationStore {
	return &RedisVerificationStore{rdb: rdb, prefix: "verify"}
}

func (s *RedisVerificationStore) key(token string) string {
	return s.prefix + ":" + utils.HashRefreshRaw(token)
}

func (s *RedisVerificationStore) Put(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(token), userID, ttl).Err()
}

// Take redeems token; a second Take of the same token fails.
func (s *RedisVerificationStore) Take(ctx context.Context, token string) (uint64, error) {
	v, err := s.rdb.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrVerificationToken
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrVerificationToken
	}
	return id, nil
}
