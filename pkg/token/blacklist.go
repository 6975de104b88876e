package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// BlacklistTTL bounds how long a revoked token is remembered. It only
// needs to outlive the access-token expiry.
const BlacklistTTL = time.Hour

// Blacklist is a time-bounded set of explicitly revoked tokens, checked
// before signature verification.
type Blacklist interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}

// MemoryBlacklist keeps revocations in-process. Entries self-expire after
// BlacklistTTL. It does not survive restarts and does not synchronize
// across horizontally scaled instances; use RedisBlacklist for that.
type MemoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]struct{}
	ttl    time.Duration
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]struct{}),
		ttl:    BlacklistTTL,
	}
}

func (b *MemoryBlacklist) Add(_ context.Context, token string) error {
	b.mu.Lock()
	b.tokens[token] = struct{}{}
	b.mu.Unlock()

	time.AfterFunc(b.ttl, func() {
		b.mu.Lock()
		delete(b.tokens, token)
		b.mu.Unlock()
	})
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[token]
	return ok, nil
}

// RedisBlacklist shares revocations across server instances through a
// keyspace with native TTL eviction. Tokens are stored hashed so the raw
// credential never lands in Redis.
type RedisBlacklist struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client, ttl: BlacklistTTL}
}

func (b *RedisBlacklist) Add(ctx context.Context, token string) error {
	return b.client.Set(ctx, blacklistKey(token), "1", b.ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}
